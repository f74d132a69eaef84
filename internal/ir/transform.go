package ir

import "github.com/flowlang/flowc/internal/register"

// Subst is a Register -> Register renaming, the primitive substitution
// operation the Refresher (C7, alpha-renaming), the copy propagator (C5,
// inlining a copy's source register at every use) and the redundancy
// eliminator's CSE normalisation (C8, rewriting a register to its "normal"
// representative) all build on. Registers not present in the map are left
// unchanged; it is always safe to apply a Subst built for one lambda to a
// nested lambda's body, since an inner binder simply never appears as a
// key.
type Subst map[register.Register]register.Register

// Reg rewrites a single register through the substitution.
func (s Subst) Reg(r register.Register) register.Register {
	if r2, ok := s[r]; ok {
		return r2
	}
	return r
}

// Value rewrites the Memory/Arg register carried by v, if any; literals and
// BuiltInFns are returned unchanged (they carry no register).
func (s Subst) Value(v Value) Value {
	switch val := v.(type) {
	case Memory:
		return Memory{Type: val.Type, Reg: s.Reg(val.Reg)}
	case Arg:
		return Arg{Type: val.Type, Reg: s.Reg(val.Reg)}
	default:
		return v
	}
}

func (s Subst) values(vs []Value) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = s.Value(v)
	}
	return out
}

// Expression rewrites every register reachable from e, recursing into
// nested Lambdas/Ifs/Matches.
func (s Subst) Expression(e Expression) Expression {
	switch ex := e.(type) {
	case ValueExpr:
		return ValueExpr{Value: s.Value(ex.Value)}
	case ElementAccess:
		return ElementAccess{Value: s.Value(ex.Value), Index: ex.Index}
	case TupleExpression:
		return TupleExpression{Values: s.values(ex.Values)}
	case FnCall:
		return FnCall{Fn: s.Value(ex.Fn), Args: s.values(ex.Args)}
	case CtorCall:
		var data Value
		if ex.Data != nil {
			data = s.Value(ex.Data)
		}
		return CtorCall{Index: ex.Index, Data: data, UnionType: ex.UnionType}
	case *Lambda:
		return s.Lambda(ex)
	case *If:
		return &If{Cond: s.Value(ex.Cond), Then: s.Block(ex.Then), Else: s.Block(ex.Else)}
	case *Match:
		branches := make([]MatchBranch, len(ex.Branches))
		for i, b := range ex.Branches {
			branches[i] = MatchBranch{Target: s.arg(b.Target), Body: s.Block(b.Body)}
		}
		return &Match{Subject: s.Value(ex.Subject), Branches: branches}
	default:
		return e
	}
}

func (s Subst) arg(a *Arg) *Arg {
	if a == nil {
		return nil
	}
	rewritten := Arg{Type: a.Type, Reg: s.Reg(a.Reg)}
	return &rewritten
}

// Statement rewrites a single Assignment, including its bound register
// (useful when the caller has arranged for the binder itself to be
// renamed, as the Refresher does).
func (s Subst) Statement(st Statement) Statement {
	return Statement{Reg: s.Reg(st.Reg), Expr: s.Expression(st.Expr)}
}

// Block rewrites every statement and the return value of b.
func (s Subst) Block(b *Block) *Block {
	if b == nil {
		return nil
	}
	stmts := make([]Statement, len(b.Statements))
	for i, st := range b.Statements {
		stmts[i] = s.Statement(st)
	}
	return &Block{Statements: stmts, Return: s.Value(b.Return)}
}

// Lambda rewrites a lambda's Args and Body. Callers that want alpha
// renaming (C7) include the lambda's own Arg registers as keys in s;
// callers that only want to rebind open variables (e.g. the translator
// lifting a closure, spec §4.10) only include those.
func (s Subst) Lambda(l *Lambda) *Lambda {
	if l == nil {
		return nil
	}
	args := make([]Arg, len(l.Args))
	for i, a := range l.Args {
		args[i] = Arg{Type: a.Type, Reg: s.Reg(a.Reg)}
	}
	return &Lambda{Args: args, Body: s.Block(l.Body)}
}
