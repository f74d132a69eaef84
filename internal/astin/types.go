package astin

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/flowlang/flowc/internal/errs"
	"github.com/flowlang/flowc/internal/typesys"
)

// typeDecoder turns the documented Type JSON shapes into typesys.Type,
// resolving "ref" nodes against the Registry so that cyclic nominal types
// round-trip through a RefCell instead of recursing forever (spec §4.3).
type typeDecoder struct {
	registry *typesys.Registry
}

// decodeType reads one Type node:
//
//	{"kind":"int"}
//	{"kind":"bool"}
//	{"kind":"tuple","elems":[Type...]}
//	{"kind":"function","args":[Type...],"ret":Type}
//	{"kind":"ref","name":"<declared type name>"}
func (d *typeDecoder) decodeType(node gjson.Result, path string) (typesys.Type, error) {
	if !node.Exists() {
		return nil, errs.New(errs.InputMalformed, "astin", "missing type node").WithPath(path)
	}
	kind := node.Get("kind").String()
	switch kind {
	case "int":
		return typesys.Int, nil
	case "bool":
		return typesys.Bool, nil
	case "tuple":
		elemsNode := node.Get("elems")
		if !elemsNode.IsArray() {
			return nil, errs.New(errs.InputMalformed, "astin", "tuple type missing \"elems\" array").WithPath(path)
		}
		var elems []typesys.Type
		var err error
		i := 0
		elemsNode.ForEach(func(_, v gjson.Result) bool {
			var t typesys.Type
			t, err = d.decodeType(v, fmt.Sprintf("%s.elems[%d]", path, i))
			if err != nil {
				return false
			}
			elems = append(elems, t)
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
		return &typesys.Tuple{Elems: elems}, nil
	case "function":
		argsNode := node.Get("args")
		if !argsNode.IsArray() {
			return nil, errs.New(errs.InputMalformed, "astin", "function type missing \"args\" array").WithPath(path)
		}
		var args []typesys.Type
		var err error
		i := 0
		argsNode.ForEach(func(_, v gjson.Result) bool {
			var t typesys.Type
			t, err = d.decodeType(v, fmt.Sprintf("%s.args[%d]", path, i))
			if err != nil {
				return false
			}
			args = append(args, t)
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
		ret, err := d.decodeType(node.Get("ret"), path+".ret")
		if err != nil {
			return nil, err
		}
		return &typesys.Function{Args: args, Ret: ret}, nil
	case "ref":
		name := node.Get("name").String()
		if name == "" {
			return nil, errs.New(errs.InputMalformed, "astin", "ref type missing \"name\"").WithPath(path)
		}
		return &typesys.Reference{Cell: d.registry.CellFor(name)}, nil
	default:
		return nil, errs.New(errs.InputMalformed, "astin", fmt.Sprintf("unknown type kind %q", kind)).WithPath(path)
	}
}

// decodeTypeDefs reads the top-level "type_defs" array in two passes so
// that a union whose payload refers back to a type declared earlier (or
// to itself) resolves correctly (spec §4.3): pass one allocates a RefCell
// per declared name, pass two builds each Union (resolving "ref" nodes
// against those cells) and patches the matching cell.
func (d *typeDecoder) decodeTypeDefs(node gjson.Result) ([]TypeDef, error) {
	if !node.Exists() {
		return nil, nil
	}
	if !node.IsArray() {
		return nil, errs.New(errs.InputMalformed, "astin", "\"type_defs\" must be an array").WithPath("$.type_defs")
	}

	defs := node.Array()
	names := make([]string, len(defs))
	for i, def := range defs {
		name := def.Get("name").String()
		if name == "" {
			return nil, errs.New(errs.InputMalformed, "astin", "type_def missing \"name\"").
				WithPath(fmt.Sprintf("$.type_defs[%d]", i))
		}
		names[i] = name
		d.registry.CellFor(name) // allocate the cell up front so forward/self refs resolve
	}

	out := make([]TypeDef, len(defs))
	for i, def := range defs {
		path := fmt.Sprintf("$.type_defs[%d]", i)
		u, err := d.decodeUnion(def, path)
		if err != nil {
			return nil, err
		}
		d.registry.CellFor(names[i]).Patch(u)
		d.registry.Declare(u)
		out[i] = TypeDef{Name: names[i], Union: u}
	}
	return out, nil
}

func (d *typeDecoder) decodeUnion(def gjson.Result, path string) (*typesys.Union, error) {
	variantsNode := def.Get("variants")
	if !variantsNode.IsArray() {
		return nil, errs.New(errs.InputMalformed, "astin", "type_def missing \"variants\" array").WithPath(path)
	}
	var variants []typesys.UnionVariant
	var err error
	i := 0
	variantsNode.ForEach(func(_, v gjson.Result) bool {
		name := v.Get("name").String()
		payloadNode := v.Get("payload")
		var payload typesys.Type
		if payloadNode.Exists() && payloadNode.Type != gjson.Null {
			payload, err = d.decodeType(payloadNode, fmt.Sprintf("%s.variants[%d].payload", path, i))
			if err != nil {
				return false
			}
		}
		variants = append(variants, typesys.UnionVariant{Name: name, Payload: payload})
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return &typesys.Union{Variants: variants}, nil
}
