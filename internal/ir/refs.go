package ir

import "github.com/flowlang/flowc/internal/register"

// regSet is an insertion-ordered set of registers, used to keep the
// deterministic first-encounter order spec §3.2/§4.10 rely on for a
// closure's environment tuple ("declaration order").
type regSet struct {
	seen  map[register.Register]bool
	order []register.Register
}

func newRegSet() *regSet {
	return &regSet{seen: make(map[register.Register]bool)}
}

func (s *regSet) add(r register.Register) {
	if !s.seen[r] {
		s.seen[r] = true
		s.order = append(s.order, r)
	}
}

func (s *regSet) has(r register.Register) bool {
	return s.seen[r]
}

// BoundRegisters returns every register bound by an Arg or an Assignment
// reachable from body (including Args themselves and every nested
// Lambda/If/Match branch), i.e. every register whose binder lives
// textually inside the lambda args/body pair.
func BoundRegisters(args []Arg, body *Block) map[register.Register]bool {
	s := newRegSet()
	for _, a := range args {
		s.add(a.Reg)
	}
	walkBoundBlock(body, s)
	return s.seen
}

func walkBoundBlock(b *Block, s *regSet) {
	if b == nil {
		return
	}
	for _, st := range b.Statements {
		s.add(st.Reg)
		walkBoundExpr(st.Expr, s)
	}
}

func walkBoundExpr(e Expression, s *regSet) {
	switch ex := e.(type) {
	case *Lambda:
		for _, a := range ex.Args {
			s.add(a.Reg)
		}
		walkBoundBlock(ex.Body, s)
	case *If:
		walkBoundBlock(ex.Then, s)
		walkBoundBlock(ex.Else, s)
	case *Match:
		for _, br := range ex.Branches {
			if br.Target != nil {
				s.add(br.Target.Reg)
			}
			walkBoundBlock(br.Body, s)
		}
	}
}

// ReferencedValues returns, in first-encounter order, every Memory/Arg
// Value referenced anywhere reachable from body (statements' expressions
// and the return value), including inside nested Lambda/If/Match. Literal
// and BuiltInFn values carry no register and are never returned.
func ReferencedValues(body *Block) []Value {
	var out []Value
	seen := make(map[register.Register]bool)
	record := func(v Value) {
		r, ok := regOf(v)
		if !ok {
			return
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, v)
		}
	}
	walkRefsBlock(body, record)
	return out
}

func regOf(v Value) (register.Register, bool) {
	switch val := v.(type) {
	case Memory:
		return val.Reg, true
	case Arg:
		return val.Reg, true
	default:
		return register.Register{}, false
	}
}

func walkRefsBlock(b *Block, record func(Value)) {
	if b == nil {
		return
	}
	for _, st := range b.Statements {
		walkRefsExpr(st.Expr, record)
	}
	record(b.Return)
}

func walkRefsExpr(e Expression, record func(Value)) {
	switch ex := e.(type) {
	case ValueExpr:
		record(ex.Value)
	case ElementAccess:
		record(ex.Value)
	case TupleExpression:
		for _, v := range ex.Values {
			record(v)
		}
	case FnCall:
		record(ex.Fn)
		for _, v := range ex.Args {
			record(v)
		}
	case CtorCall:
		if ex.Data != nil {
			record(ex.Data)
		}
	case *Lambda:
		walkRefsBlock(ex.Body, record)
	case *If:
		record(ex.Cond)
		walkRefsBlock(ex.Then, record)
		walkRefsBlock(ex.Else, record)
	case *Match:
		record(ex.Subject)
		for _, br := range ex.Branches {
			walkRefsBlock(br.Body, record)
		}
	}
}

// OpenVars returns a lambda's open variables (spec §3.2, §9): the
// Memory/Arg values it references whose defining register is not bound
// anywhere inside it. Order is first-encounter, which the translator
// relies on for a deterministic closure-environment layout.
func OpenVars(l *Lambda) []Value {
	bound := BoundRegisters(l.Args, l.Body)
	var open []Value
	for _, v := range ReferencedValues(l.Body) {
		r, _ := regOf(v)
		if !bound[r] {
			open = append(open, v)
		}
	}
	return open
}
