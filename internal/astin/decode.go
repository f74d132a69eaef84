package astin

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/flowlang/flowc/internal/errs"
	"github.com/flowlang/flowc/internal/typesys"
)

// Decode reads a typed-AST Program from raw JSON bytes (spec §6). It is
// tolerant of unresolved forward references within the same document
// (recursive union types, spec §4.3) but reports errs.InputMalformed for
// anything else structurally wrong.
func Decode(data []byte) (*Program, error) {
	if !gjson.ValidBytes(data) {
		return nil, errs.New(errs.InputMalformed, "astin", "input is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	registry := typesys.NewRegistry()
	td := &typeDecoder{registry: registry}
	typeDefs, err := td.decodeTypeDefs(root.Get("type_defs"))
	if err != nil {
		return nil, err
	}

	d := &decoder{types: td, registry: registry}
	mainNode := root.Get("main")
	if !mainNode.Exists() {
		return nil, errs.New(errs.InputMalformed, "astin", "missing top-level \"main\"").WithPath("$.main")
	}
	main, err := d.decodeLambda(mainNode, "$.main")
	if err != nil {
		return nil, err
	}

	return &Program{TypeDefs: typeDefs, Main: main}, nil
}

type decoder struct {
	types    *typeDecoder
	registry *typesys.Registry
}

func (d *decoder) decodeLambda(node gjson.Result, path string) (*Lambda, error) {
	var params []Param
	paramsNode := node.Get("params")
	if paramsNode.Exists() {
		if !paramsNode.IsArray() {
			return nil, errs.New(errs.InputMalformed, "astin", "\"params\" must be an array").WithPath(path)
		}
		var err error
		i := 0
		paramsNode.ForEach(func(_, v gjson.Result) bool {
			name := v.Get("name").String()
			if name == "" {
				err = errs.New(errs.InputMalformed, "astin", "param missing \"name\"").
					WithPath(fmt.Sprintf("%s.params[%d]", path, i))
				return false
			}
			var t typesys.Type
			t, err = d.types.decodeType(v.Get("type"), fmt.Sprintf("%s.params[%d].type", path, i))
			if err != nil {
				return false
			}
			params = append(params, Param{Name: name, Type: t})
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	body, err := d.decodeBlock(node.Get("body"), path+".body")
	if err != nil {
		return nil, err
	}
	return &Lambda{Params: params, Body: body}, nil
}

// decodeBlock reads a Block: {"defs":[Assignment...],"return":Expr}. A
// node with neither a "defs" nor a "return" key is treated as a bare
// expression-valued block
// (an If/Match branch written as a single expression rather than a
// def-list), which is equivalent to {"defs":[],"return": node}.
func (d *decoder) decodeBlock(node gjson.Result, path string) (*Block, error) {
	if !node.Exists() {
		return nil, errs.New(errs.InputMalformed, "astin", "missing block").WithPath(path)
	}

	if !node.Get("defs").Exists() && !node.Get("return").Exists() {
		// Shorthand: the node itself is the return expression.
		ret, err := d.decodeExpr(node, path)
		if err != nil {
			return nil, err
		}
		return &Block{Return: ret}, nil
	}

	var defs []Assignment
	defsNode := node.Get("defs")
	if defsNode.Exists() {
		if !defsNode.IsArray() {
			return nil, errs.New(errs.InputMalformed, "astin", "\"defs\" must be an array").WithPath(path)
		}
		var err error
		i := 0
		defsNode.ForEach(func(_, v gjson.Result) bool {
			name := v.Get("name").String()
			if name == "" {
				err = errs.New(errs.InputMalformed, "astin", "assignment missing \"name\"").
					WithPath(fmt.Sprintf("%s.defs[%d]", path, i))
				return false
			}
			var val Expr
			val, err = d.decodeExpr(v.Get("value"), fmt.Sprintf("%s.defs[%d].value", path, i))
			if err != nil {
				return false
			}
			defs = append(defs, Assignment{Name: name, Value: val})
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	ret, err := d.decodeExpr(node.Get("return"), path+".return")
	if err != nil {
		return nil, err
	}
	return &Block{Defs: defs, Return: ret}, nil
}

func (d *decoder) decodeExprList(node gjson.Result, path string) ([]Expr, error) {
	if !node.IsArray() {
		return nil, errs.New(errs.InputMalformed, "astin", "expected an array").WithPath(path)
	}
	var out []Expr
	var err error
	i := 0
	node.ForEach(func(_, v gjson.Result) bool {
		var e Expr
		e, err = d.decodeExpr(v, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return false
		}
		out = append(out, e)
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *decoder) decodeExpr(node gjson.Result, path string) (Expr, error) {
	if !node.Exists() {
		return nil, errs.New(errs.InputMalformed, "astin", "missing expression").WithPath(path)
	}
	kind := node.Get("kind").String()
	switch kind {
	case "integer":
		return IntLit{Val: node.Get("value").Int()}, nil
	case "boolean":
		return BoolLit{Val: node.Get("value").Bool()}, nil
	case "variable":
		name := node.Get("name").String()
		if name == "" {
			return nil, errs.New(errs.InputMalformed, "astin", "variable missing \"name\"").WithPath(path)
		}
		return Variable{Name: name}, nil
	case "builtin":
		name := node.Get("name").String()
		t, err := d.types.decodeType(node.Get("type"), path+".type")
		if err != nil {
			return nil, err
		}
		fnType, ok := t.(*typesys.Function)
		if !ok {
			return nil, errs.New(errs.InputMalformed, "astin", "builtin's \"type\" must be a function type").WithPath(path)
		}
		return BuiltinRef{Name: name, Type: fnType}, nil
	case "tuple":
		elems, err := d.decodeExprList(node.Get("elements"), path+".elements")
		if err != nil {
			return nil, err
		}
		return TupleExpr{Elems: elems}, nil
	case "element_access":
		val, err := d.decodeExpr(node.Get("value"), path+".value")
		if err != nil {
			return nil, err
		}
		return ElementAccess{Value: val, Index: int(node.Get("index").Int())}, nil
	case "if":
		cond, err := d.decodeExpr(node.Get("condition"), path+".condition")
		if err != nil {
			return nil, err
		}
		then, err := d.decodeBlock(node.Get("then"), path+".then")
		if err != nil {
			return nil, err
		}
		els, err := d.decodeBlock(node.Get("else"), path+".else")
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: els}, nil
	case "match":
		subject, err := d.decodeExpr(node.Get("subject"), path+".subject")
		if err != nil {
			return nil, err
		}
		union := node.Get("union").String()
		if union == "" {
			return nil, errs.New(errs.InputMalformed, "astin", "match missing \"union\"").WithPath(path)
		}
		branchesNode := node.Get("branches")
		if !branchesNode.IsArray() {
			return nil, errs.New(errs.InputMalformed, "astin", "match missing \"branches\" array").WithPath(path)
		}
		var branches []MatchBranch
		i := 0
		branchesNode.ForEach(func(_, v gjson.Result) bool {
			body, berr := d.decodeBlock(v.Get("body"), fmt.Sprintf("%s.branches[%d].body", path, i))
			if berr != nil {
				err = berr
				return false
			}
			branches = append(branches, MatchBranch{Target: v.Get("target").String(), Body: body})
			i++
			return true
		})
		if err != nil {
			return nil, err
		}
		return &Match{Subject: subject, Union: union, Branches: branches}, nil
	case "function_definition":
		lam, err := d.decodeLambda(node, path)
		if err != nil {
			return nil, err
		}
		return LambdaExpr{Lambda: lam}, nil
	case "function_call":
		fn, err := d.decodeExpr(node.Get("function"), path+".function")
		if err != nil {
			return nil, err
		}
		args, err := d.decodeExprList(node.Get("args"), path+".args")
		if err != nil {
			return nil, err
		}
		return Call{Fn: fn, Args: args}, nil
	case "constructor_call":
		union := node.Get("union").String()
		if union == "" {
			return nil, errs.New(errs.InputMalformed, "astin", "constructor_call missing \"union\"").WithPath(path)
		}
		var data Expr
		dataNode := node.Get("data")
		if dataNode.Exists() && dataNode.Type != gjson.Null {
			var err error
			data, err = d.decodeExpr(dataNode, path+".data")
			if err != nil {
				return nil, err
			}
		}
		return Ctor{Union: union, Index: int(node.Get("index").Int()), Data: data}, nil
	default:
		return nil, errs.New(errs.UnsupportedConstruct, "astin", fmt.Sprintf("unknown expression kind %q", kind)).WithPath(path)
	}
}
