// Package lowering implements C4: translating the name-based typed AST
// (internal/astin) into the registered, SSA-form intermediate IR
// (internal/ir), assigning registers, unfolding tuples, and resolving
// recursive type references through the type registry.
//
// The walk mirrors the way go-dws/internal/bytecode's Compiler carries a
// chain of lexical scopes (locals map plus an enclosing pointer) while
// emitting one instruction per sub-expression; here each sub-expression
// emits at most one ir.Statement and returns the ir.Value naming its
// result.
package lowering

import (
	"fmt"

	"github.com/flowlang/flowc/internal/astin"
	"github.com/flowlang/flowc/internal/errs"
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
	"github.com/flowlang/flowc/internal/typesys"
)

// Lowering carries the state shared across an entire program lowering: the
// register allocator (fresh tags must never repeat, even across nested
// lambdas) and the declared-union registry built from the AST's type defs.
type Lowering struct {
	alloc    *register.Allocator
	registry *typesys.Registry
}

// scope is one lexical level of name -> bound value, chained to its
// enclosing scope the way the teacher's bytecode Compiler chains locals to
// an enclosing *Compiler.
type scope struct {
	vars     map[string]ir.Value
	enclosing *scope
}

func newScope(enclosing *scope) *scope {
	return &scope{vars: make(map[string]ir.Value), enclosing: enclosing}
}

func (s *scope) lookup(name string) (ir.Value, bool) {
	for cur := s; cur != nil; cur = cur.enclosing {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) bind(name string, v ir.Value) {
	s.vars[name] = v
}

// Lower runs C4 over a full astin.Program, returning the IR program with
// its declared union types carried along unchanged (the type registry
// does not need re-lowering; astin.TypeDef.Union values are already
// typesys.Type).
func Lower(prog *astin.Program) (*ir.Program, error) {
	return LowerWith(register.NewAllocator(), prog)
}

// LowerWith runs C4 using a caller-supplied allocator, so later pipeline
// stages (the optimiser's Refresher, the translator) keep minting
// Registers from the same counter instead of risking a collision with a
// second fresh Allocator.
func LowerWith(alloc *register.Allocator, prog *astin.Program) (*ir.Program, error) {
	l := &Lowering{alloc: alloc, registry: typesys.NewRegistry()}

	declared := make([]*typesys.Union, len(prog.TypeDefs))
	for i, td := range prog.TypeDefs {
		declared[i] = td.Union
		l.registry.CellFor(td.Name).Patch(td.Union)
		l.registry.Declare(td.Union)
	}

	top := newScope(nil)
	main, err := l.lowerLambda(prog.Main, top, "$.main")
	if err != nil {
		return nil, err
	}
	return &ir.Program{Main: main, Declared: declared}, nil
}

func (l *Lowering) lowerLambda(lam *astin.Lambda, enclosing *scope, path string) (*ir.Lambda, error) {
	s := newScope(enclosing)
	args := make([]ir.Arg, len(lam.Params))
	for i, p := range lam.Params {
		reg := l.alloc.Fresh()
		args[i] = ir.Arg{Type: p.Type, Reg: reg}
		s.bind(p.Name, ir.Arg{Type: p.Type, Reg: reg})
	}

	var stmts []ir.Statement
	body, err := l.lowerBlock(lam.Body, s, &stmts, path+".body")
	if err != nil {
		return nil, err
	}
	return &ir.Lambda{Args: args, Body: &ir.Block{Statements: stmts, Return: body}}, nil
}

// lowerBlock lowers one astin.Block's defs (appending to stmts in order)
// and returns the Value its return expression evaluates to.
func (l *Lowering) lowerBlock(b *astin.Block, s *scope, stmts *[]ir.Statement, path string) (ir.Value, error) {
	inner := newScope(s)
	for i, def := range b.Defs {
		v, err := l.lowerExpr(def.Value, inner, stmts, fmt.Sprintf("%s.defs[%d].value", path, i))
		if err != nil {
			return nil, err
		}
		inner.bind(def.Name, v)
	}
	return l.lowerExpr(b.Return, inner, stmts, path+".return")
}

// emit appends a fresh Assignment for expr and returns the Memory naming
// its result.
func (l *Lowering) emit(expr ir.Expression, typ typesys.Type, stmts *[]ir.Statement) ir.Value {
	reg := l.alloc.Fresh()
	*stmts = append(*stmts, ir.Statement{Reg: reg, Expr: expr})
	return ir.Memory{Type: typ, Reg: reg}
}

func (l *Lowering) lowerExpr(e astin.Expr, s *scope, stmts *[]ir.Statement, path string) (ir.Value, error) {
	switch v := e.(type) {
	case astin.IntLit:
		return ir.IntLiteral{Val: v.Val}, nil
	case astin.BoolLit:
		return ir.BoolLiteral{Val: v.Val}, nil
	case astin.BuiltinRef:
		return ir.BuiltInFn{Name: v.Name, Type: v.Type}, nil
	case astin.Variable:
		val, ok := s.lookup(v.Name)
		if !ok {
			return nil, errs.New(errs.UnsupportedConstruct, "lowering", fmt.Sprintf("unbound variable %q", v.Name)).WithPath(path)
		}
		return val, nil
	case astin.TupleExpr:
		values := make([]ir.Value, len(v.Elems))
		for i, el := range v.Elems {
			val, err := l.lowerExpr(el, s, stmts, fmt.Sprintf("%s.elements[%d]", path, i))
			if err != nil {
				return nil, err
			}
			values[i] = val
		}
		return l.emit(ir.TupleExpression{Values: values}, tupleType(values), stmts), nil
	case astin.ElementAccess:
		val, err := l.lowerExpr(v.Value, s, stmts, path+".value")
		if err != nil {
			return nil, err
		}
		return l.emit(ir.ElementAccess{Value: val, Index: v.Index}, elementType(val, v.Index), stmts), nil
	case *astin.If:
		cond, err := l.lowerExpr(v.Cond, s, stmts, path+".condition")
		if err != nil {
			return nil, err
		}
		var thenStmts, elseStmts []ir.Statement
		thenRet, err := l.lowerBlock(v.Then, s, &thenStmts, path+".then")
		if err != nil {
			return nil, err
		}
		elseRet, err := l.lowerBlock(v.Else, s, &elseStmts, path+".else")
		if err != nil {
			return nil, err
		}
		thenType := valueType(thenRet)
		ifExpr := &ir.If{
			Cond: cond,
			Then: &ir.Block{Statements: thenStmts, Return: thenRet},
			Else: &ir.Block{Statements: elseStmts, Return: elseRet},
		}
		return l.emit(ifExpr, thenType, stmts), nil
	case *astin.Match:
		subject, err := l.lowerExpr(v.Subject, s, stmts, path+".subject")
		if err != nil {
			return nil, err
		}
		union := l.registry.ByName(v.Union)
		branches := make([]ir.MatchBranch, len(v.Branches))
		var retType typesys.Type
		for i, br := range v.Branches {
			bs := newScope(s)
			var target *ir.Arg
			if br.Target != "" {
				var payload typesys.Type
				if union != nil && i < len(union.Variants) {
					payload = union.Variants[i].Payload
				}
				reg := l.alloc.Fresh()
				target = &ir.Arg{Type: payload, Reg: reg}
				bs.bind(br.Target, ir.Arg{Type: payload, Reg: reg})
			}
			var branchStmts []ir.Statement
			ret, err := l.lowerBlock(br.Body, bs, &branchStmts, fmt.Sprintf("%s.branches[%d].body", path, i))
			if err != nil {
				return nil, err
			}
			if retType == nil {
				retType = valueType(ret)
			}
			branches[i] = ir.MatchBranch{Target: target, Body: &ir.Block{Statements: branchStmts, Return: ret}}
		}
		matchExpr := &ir.Match{Subject: subject, Branches: branches}
		return l.emit(matchExpr, retType, stmts), nil
	case astin.LambdaExpr:
		lam, err := l.lowerLambda(v.Lambda, s, path)
		if err != nil {
			return nil, err
		}
		return l.emit(lam, lambdaType(lam), stmts), nil
	case astin.Call:
		fn, err := l.lowerExpr(v.Fn, s, stmts, path+".function")
		if err != nil {
			return nil, err
		}
		args := make([]ir.Value, len(v.Args))
		for i, a := range v.Args {
			val, err := l.lowerExpr(a, s, stmts, fmt.Sprintf("%s.args[%d]", path, i))
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		return l.emit(ir.FnCall{Fn: fn, Args: args}, callReturnType(fn), stmts), nil
	case astin.Ctor:
		union := l.registry.ByName(v.Union)
		var data ir.Value
		if v.Data != nil {
			val, err := l.lowerExpr(v.Data, s, stmts, path+".data")
			if err != nil {
				return nil, err
			}
			data = val
		}
		return l.emit(ir.CtorCall{Index: v.Index, Data: data, UnionType: union}, ctorType(union), stmts), nil
	default:
		return nil, errs.New(errs.UnsupportedConstruct, "lowering", fmt.Sprintf("unhandled AST expression %T", e)).WithPath(path)
	}
}

func valueType(v ir.Value) typesys.Type {
	switch val := v.(type) {
	case ir.Memory:
		return val.Type
	case ir.Arg:
		return val.Type
	case ir.IntLiteral:
		return typesys.Int
	case ir.BoolLiteral:
		return typesys.Bool
	case ir.BuiltInFn:
		return val.Type
	}
	return nil
}

func tupleType(values []ir.Value) typesys.Type {
	elems := make([]typesys.Type, len(values))
	for i, v := range values {
		elems[i] = valueType(v)
	}
	return &typesys.Tuple{Elems: elems}
}

func elementType(v ir.Value, idx int) typesys.Type {
	t := valueType(v)
	if tup, ok := t.(*typesys.Tuple); ok && idx < len(tup.Elems) {
		return tup.Elems[idx]
	}
	if ref, ok := t.(*typesys.Reference); ok && ref.Cell != nil {
		if tup, ok := ref.Cell.Target.(*typesys.Tuple); ok && idx < len(tup.Elems) {
			return tup.Elems[idx]
		}
	}
	return nil
}

func lambdaType(l *ir.Lambda) typesys.Type {
	args := make([]typesys.Type, len(l.Args))
	for i, a := range l.Args {
		args[i] = a.Type
	}
	return &typesys.Function{Args: args, Ret: valueType(l.Body.Return)}
}

func callReturnType(fn ir.Value) typesys.Type {
	t := valueType(fn)
	if f, ok := t.(*typesys.Function); ok {
		return f.Ret
	}
	if ref, ok := t.(*typesys.Reference); ok && ref.Cell != nil {
		if f, ok := ref.Cell.Target.(*typesys.Function); ok {
			return f.Ret
		}
	}
	return nil
}

func ctorType(u *typesys.Union) typesys.Type {
	if u == nil {
		return nil
	}
	return u
}
