package astin

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/flowlang/flowc/internal/typesys"
)

// Dump re-serialises a Program to the same JSON shape Decode reads,
// for the CLI's --dump-ast diagnostic (SPEC_FULL.md §6). It is built
// incrementally with sjson.SetBytes rather than a struct + encoding/json,
// matching the tolerant, path-addressed style the rest of this package
// decodes with.
func Dump(p *Program) ([]byte, error) {
	data := []byte("{}")
	var err error

	for i, td := range p.TypeDefs {
		data, err = sjson.SetBytes(data, fmt.Sprintf("type_defs.%d", i), dumpUnion(td))
		if err != nil {
			return nil, err
		}
	}

	data, err = sjson.SetBytes(data, "main", dumpLambda(p.Main))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func dumpUnion(td TypeDef) map[string]any {
	variants := make([]map[string]any, len(td.Union.Variants))
	for i, v := range td.Union.Variants {
		m := map[string]any{"name": v.Name}
		if v.Payload != nil {
			m["payload"] = dumpType(v.Payload)
		} else {
			m["payload"] = nil
		}
		variants[i] = m
	}
	return map[string]any{"name": td.Name, "variants": variants}
}

func dumpType(t typesys.Type) map[string]any {
	switch v := t.(type) {
	case typesys.Atomic:
		switch v {
		case typesys.Int:
			return map[string]any{"kind": "int"}
		case typesys.Bool:
			return map[string]any{"kind": "bool"}
		}
		return map[string]any{"kind": "int"}
	case *typesys.Tuple:
		elems := make([]map[string]any, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = dumpType(e)
		}
		return map[string]any{"kind": "tuple", "elems": elems}
	case *typesys.Function:
		args := make([]map[string]any, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpType(a)
		}
		return map[string]any{"kind": "function", "args": args, "ret": dumpType(v.Ret)}
	case *typesys.Reference:
		name := ""
		if v.Cell != nil {
			name = v.Cell.Name
		}
		return map[string]any{"kind": "ref", "name": name}
	default:
		return map[string]any{"kind": "int"}
	}
}

func dumpLambda(l *Lambda) map[string]any {
	params := make([]map[string]any, len(l.Params))
	for i, p := range l.Params {
		params[i] = map[string]any{"name": p.Name, "type": dumpType(p.Type)}
	}
	return map[string]any{"params": params, "body": dumpBlock(l.Body)}
}

func dumpBlock(b *Block) map[string]any {
	defs := make([]map[string]any, len(b.Defs))
	for i, d := range b.Defs {
		defs[i] = map[string]any{"name": d.Name, "value": dumpExpr(d.Value)}
	}
	return map[string]any{"defs": defs, "return": dumpExpr(b.Return)}
}

func dumpExpr(e Expr) map[string]any {
	switch v := e.(type) {
	case IntLit:
		return map[string]any{"kind": "integer", "value": v.Val}
	case BoolLit:
		return map[string]any{"kind": "boolean", "value": v.Val}
	case Variable:
		return map[string]any{"kind": "variable", "name": v.Name}
	case BuiltinRef:
		return map[string]any{"kind": "builtin", "name": v.Name, "type": dumpType(v.Type)}
	case TupleExpr:
		elems := make([]map[string]any, len(v.Elems))
		for i, el := range v.Elems {
			elems[i] = dumpExpr(el)
		}
		return map[string]any{"kind": "tuple", "elements": elems}
	case ElementAccess:
		return map[string]any{"kind": "element_access", "value": dumpExpr(v.Value), "index": v.Index}
	case *If:
		return map[string]any{
			"kind":      "if",
			"condition": dumpExpr(v.Cond),
			"then":      dumpBlock(v.Then),
			"else":      dumpBlock(v.Else),
		}
	case *Match:
		branches := make([]map[string]any, len(v.Branches))
		for i, br := range v.Branches {
			branches[i] = map[string]any{"target": br.Target, "body": dumpBlock(br.Body)}
		}
		return map[string]any{
			"kind":     "match",
			"subject":  dumpExpr(v.Subject),
			"union":    v.Union,
			"branches": branches,
		}
	case LambdaExpr:
		m := dumpLambda(v.Lambda)
		m["kind"] = "function_definition"
		return m
	case Call:
		args := make([]map[string]any, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpExpr(a)
		}
		return map[string]any{"kind": "function_call", "function": dumpExpr(v.Fn), "args": args}
	case Ctor:
		m := map[string]any{"kind": "constructor_call", "union": v.Union, "index": v.Index}
		if v.Data != nil {
			m["data"] = dumpExpr(v.Data)
		} else {
			m["data"] = nil
		}
		return m
	default:
		return map[string]any{"kind": "unknown"}
	}
}
