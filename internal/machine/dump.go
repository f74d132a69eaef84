package machine

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// Dump serialises a Program to JSON for the CLI's `compile` output (spec
// §6 leaves the emitted encoding to the emitter). It follows
// internal/astin's Dump: built incrementally with sjson.SetBytes rather
// than a struct + encoding/json, so every node carries the same
// "kind"-tagged shape astin.Dump produces for its own tree.
func Dump(p *Program) ([]byte, error) {
	data := []byte("{}")
	var err error

	for i, td := range p.TypeDefs {
		data, err = sjson.SetBytes(data, fmt.Sprintf("type_defs.%d", i), map[string]any{
			"name":  td.Name,
			"ctors": td.Ctors,
		})
		if err != nil {
			return nil, err
		}
	}

	for i, def := range p.FnDefs {
		data, err = sjson.SetBytes(data, fmt.Sprintf("fn_defs.%d", i), dumpFnDef(def))
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func dumpFnDef(def *FnDef) map[string]any {
	args := make([]string, len(def.Args))
	argTypes := make([]any, len(def.ArgTypes))
	for i, a := range def.Args {
		args[i] = a.Id
		argTypes[i] = dumpType(def.ArgTypes[i])
	}
	envTypes := make([]any, len(def.EnvTypes))
	for i, t := range def.EnvTypes {
		envTypes[i] = dumpType(t)
	}
	stmts := make([]any, len(def.Statements))
	for i, st := range def.Statements {
		stmts[i] = dumpStatement(st)
	}
	return map[string]any{
		"name":         def.Name,
		"args":         args,
		"arg_types":    argTypes,
		"statements":   stmts,
		"ret":          dumpValue(def.Ret),
		"ret_type":     dumpType(def.RetType),
		"env_types":    envTypes,
		"is_recursive": def.IsRecursive,
		"size_lo":      def.SizeLo,
		"size_hi":      def.SizeHi,
	}
}

func dumpType(t MachineType) any {
	switch v := t.(type) {
	case nil:
		return nil
	case Atomic:
		if v == Int {
			return map[string]any{"kind": "int"}
		}
		return map[string]any{"kind": "bool"}
	case *Tuple:
		elems := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = dumpType(e)
		}
		return map[string]any{"kind": "tuple", "elements": elems}
	case *Fn:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpType(a)
		}
		return map[string]any{"kind": "fn", "args": args, "ret": dumpType(v.Ret)}
	case *WeakFn:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpType(a)
		}
		return map[string]any{"kind": "weak_fn", "args": args, "ret": dumpType(v.Ret)}
	case *Union:
		return map[string]any{"kind": "union", "ctors": v.Ctors}
	case Named:
		return map[string]any{"kind": "named", "name": v.Name}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func dumpValue(v Value) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Memory:
		return map[string]any{"kind": "memory", "id": val.Id}
	case IntLiteral:
		return map[string]any{"kind": "integer", "value": val.Val}
	case BoolLiteral:
		return map[string]any{"kind": "boolean", "value": val.Val}
	case NamedBuiltInFn:
		return map[string]any{"kind": "builtin", "name": val.Name, "type": dumpType(val.Type)}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func dumpExpr(e Expression) any {
	switch v := e.(type) {
	case ValueExpr:
		return map[string]any{"kind": "value", "value": dumpValue(v.Value)}
	case ElementAccess:
		return map[string]any{"kind": "element_access", "value": dumpValue(v.Value), "index": v.Index}
	case TupleExpression:
		values := make([]any, len(v.Values))
		for i, val := range v.Values {
			values[i] = dumpValue(val)
		}
		return map[string]any{"kind": "tuple", "values": values}
	case FnCall:
		args := make([]any, len(v.Args))
		for i, a := range v.Args {
			args[i] = dumpValue(a)
		}
		return map[string]any{"kind": "call", "fn": dumpValue(v.Fn), "fn_type": dumpType(v.FnType), "args": args}
	case ConstructorCall:
		m := map[string]any{"kind": "ctor_call", "type_name": v.TypeName, "index": v.Idx}
		if v.CtorName != "" {
			m["ctor_name"] = v.CtorName
			m["payload"] = dumpValue(v.Payload)
		}
		return m
	case ClosureInstantiation:
		m := map[string]any{"kind": "closure", "fn_name": v.FnName, "has_env": v.HasEnv}
		if v.HasEnv {
			m["env"] = dumpValue(v.Env)
		}
		return m
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func dumpStatement(st Statement) any {
	switch v := st.(type) {
	case Await:
		ids := make([]any, len(v.Memories))
		for i, m := range v.Memories {
			ids[i] = dumpValue(m)
		}
		return map[string]any{"kind": "await", "memories": ids}
	case Declaration:
		return map[string]any{"kind": "declaration", "type": dumpType(v.Type), "target": dumpValue(v.Target)}
	case Allocation:
		env := make([]any, len(v.Env))
		for i, slot := range v.Env {
			env[i] = map[string]any{"value": dumpValue(slot.Value), "fn_name": slot.FnName}
		}
		return map[string]any{"kind": "allocation", "type_name": v.TypeName, "env": env, "target": dumpValue(v.Target)}
	case Assignment:
		return map[string]any{"kind": "assignment", "target": dumpValue(v.Target), "expr": dumpExpr(v.Expr)}
	case IfStatement:
		then := make([]any, len(v.Then))
		for i, s := range v.Then {
			then[i] = dumpStatement(s)
		}
		els := make([]any, len(v.Else))
		for i, s := range v.Else {
			els[i] = dumpStatement(s)
		}
		return map[string]any{"kind": "if", "condition": dumpValue(v.Cond), "then": then, "else": els}
	case MatchStatement:
		branches := make([]any, len(v.Branches))
		for i, br := range v.Branches {
			body := make([]any, len(br.Body))
			for j, s := range br.Body {
				body[j] = dumpStatement(s)
			}
			b := map[string]any{"ctor_name": br.CtorName, "body": body}
			if br.Target != nil {
				b["target"] = dumpValue(*br.Target)
			}
			branches[i] = b
		}
		return map[string]any{
			"kind":       "match",
			"subject":    dumpValue(v.Subject),
			"union_type": dumpType(v.UnionType),
			"aux":        dumpValue(v.Aux),
			"branches":   branches,
		}
	case Enqueue:
		return map[string]any{"kind": "enqueue", "target": dumpValue(v.Target)}
	default:
		return map[string]any{"kind": "unknown"}
	}
}
