// Package translate is C13-C17: lowering optimised internal/ir into
// internal/machine. The translator (C13) lifts every Lambda (the
// program's entry point and every nested closure literal) to a
// top-level machine.FnDef, turning open variables into an explicit
// environment parameter; the weakener (C14) breaks closure reference
// cycles found by analysis.FindClosureCycles; the statement reorderer
// (C15) is the machine-level analogue of the IR redundancy eliminator's
// weak-reorder pass; the await deduplicator (C16) collapses the
// conservative per-statement Awaits C13 emits; the enqueuer (C17) marks
// which assignments the scheduler runs as independent tasks.
package translate

import (
	"fmt"

	"github.com/flowlang/flowc/internal/analysis"
	"github.com/flowlang/flowc/internal/errs"
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/machine"
	"github.com/flowlang/flowc/internal/register"
	"github.com/flowlang/flowc/internal/typesys"
)

// Translator carries the state shared across every FnDef lifted out of
// one ir.Program: the memory-id counter, the generated FnDefs in
// emission order, and the declared-union-to-generated-name table.
type Translator struct {
	memCounter int
	fnCounter  int
	fnDefs     []*machine.FnDef
	typeNames  map[*typesys.Union]string
	typeDefs   []machine.TypeDef
}

// New returns a Translator ready to translate a single ir.Program.
func New() *Translator {
	return &Translator{typeNames: make(map[*typesys.Union]string)}
}

// frame maps one lambda's ir registers to the machine.Memory cells that
// hold them during translation of its body.
type frame struct {
	regs map[register.Register]machine.Memory
}

func newFrame() *frame { return &frame{regs: make(map[register.Register]machine.Memory)} }

func (t *Translator) freshMem() machine.Memory {
	m := machine.Memory{Id: fmt.Sprintf("m%d", t.memCounter)}
	t.memCounter++
	return m
}

func (t *Translator) unionName(u *typesys.Union) string {
	if name, ok := t.typeNames[u]; ok {
		return name
	}
	name := fmt.Sprintf("T%d", len(t.typeDefs))
	t.typeNames[u] = name
	ctors := make([]string, len(u.Variants))
	for i, v := range u.Variants {
		if v.Name != "" {
			ctors[i] = v.Name
		} else {
			ctors[i] = fmt.Sprintf("%sC%d", name, i)
		}
	}
	t.typeNames[u] = name
	t.typeDefs = append(t.typeDefs, machine.TypeDef{Name: name, Ctors: ctors})
	return name
}

// Translate implements C13: runs the translator over prog, returning the
// finished machine.Program.
func Translate(prog *ir.Program) (*machine.Program, error) {
	t := New()
	for _, u := range prog.Declared {
		t.unionName(u)
	}
	_, err := t.liftLambda(prog.Main, "Main")
	if err != nil {
		return nil, err
	}
	return &machine.Program{TypeDefs: t.typeDefs, FnDefs: t.fnDefs}, nil
}

// liftLambda lifts l to a new top-level FnDef named name (or the next
// generated "Fn{n}" name if name is ""), translating its body in a fresh
// frame seeded with its own parameters plus, for every open variable,
// an ElementAccess unpacking an implicit environment parameter. The
// ClosureInstantiation/Allocation machinery a caller needs at the
// lambda's use site is built by the caller (translateExpr), not here;
// liftLambda only returns the FnDef's final name.
func (t *Translator) liftLambda(l *ir.Lambda, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("Fn%d", t.fnCounter)
		t.fnCounter++
	}

	open := ir.OpenVars(l)
	f := newFrame()

	var stmts []machine.Statement
	var envTypes []typesys.Type
	if len(open) > 0 {
		envMem := t.freshMem()
		envTypes = make([]typesys.Type, len(open))
		for i, v := range open {
			r, typ := regAndType(v)
			envTypes[i] = typ
			slot := t.freshMem()
			stmts = append(stmts,
				machine.Declaration{Type: machineType(typ), Target: slot},
				machine.Assignment{Target: slot, Expr: machine.ElementAccess{Value: envMem, Index: i}},
			)
			f.regs[r] = slot
		}
	}

	args := make([]machine.Memory, len(l.Args))
	argTypes := make([]machine.MachineType, len(l.Args))
	for i, a := range l.Args {
		m := t.freshMem()
		args[i] = m
		argTypes[i] = machineType(a.Type)
		f.regs[a.Reg] = m
	}

	table := analysis.BuildFnTable(l)
	bodyStmts, retVal, err := t.translateBlock(l.Body, f, table)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, bodyStmts...)

	retType := blockType(l.Body)
	def := &machine.FnDef{
		Name:       name,
		Args:       args,
		ArgTypes:   argTypes,
		Statements: stmts,
		Ret:        retVal,
		RetType:    machineType(retType),
	}
	if len(open) > 0 {
		def.EnvTypes = make([]machine.MachineType, len(envTypes))
		for i, ty := range envTypes {
			def.EnvTypes[i] = machineType(ty)
		}
	}
	t.fnDefs = append(t.fnDefs, def)
	return name, nil
}

func regAndType(v ir.Value) (register.Register, typesys.Type) {
	switch val := v.(type) {
	case ir.Memory:
		return val.Reg, val.Type
	case ir.Arg:
		return val.Reg, val.Type
	default:
		return register.Register{}, nil
	}
}

// translateBlock translates an ir.Block's statements into machine
// statements inside frame f, conservatively preceding every statement
// that reads a Memory-bound value with an Await of those memories (C16
// later collapses the redundancy this introduces).
func (t *Translator) translateBlock(b *ir.Block, f *frame, table map[register.Register]analysis.FnInst) ([]machine.Statement, machine.Value, error) {
	var out []machine.Statement
	for _, st := range b.Statements {
		target := t.freshMem()
		stmts, expr, err := t.translateExpr(st.Expr, f, table, target, st.Reg)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, stmts...)
		out = append(out, machine.Assignment{Target: target, Expr: expr})
		f.regs[st.Reg] = target
	}
	retVal, awaits := t.translateValue(b.Return, f)
	if len(awaits) > 0 {
		out = append(out, machine.Await{Memories: awaits})
	}
	return out, retVal, nil
}

// translateValue resolves an ir.Value against f, returning the machine
// Value and, if it names a Memory cell, that cell as something the
// caller must Await before reading it.
func (t *Translator) translateValue(v ir.Value, f *frame) (machine.Value, []machine.Memory) {
	switch val := v.(type) {
	case ir.IntLiteral:
		return machine.IntLiteral{Val: val.Val}, nil
	case ir.BoolLiteral:
		return machine.BoolLiteral{Val: val.Val}, nil
	case ir.BuiltInFn:
		return machine.NamedBuiltInFn{Name: val.Name, Type: machineFnType(val.Type)}, nil
	case ir.Memory:
		m := f.regs[val.Reg]
		return m, []machine.Memory{m}
	case ir.Arg:
		m := f.regs[val.Reg]
		return m, []machine.Memory{m}
	default:
		return nil, nil
	}
}

func (t *Translator) translateValues(vs []ir.Value, f *frame) ([]machine.Value, []machine.Memory) {
	out := make([]machine.Value, len(vs))
	var awaits []machine.Memory
	for i, v := range vs {
		mv, a := t.translateValue(v, f)
		out[i] = mv
		awaits = append(awaits, a...)
	}
	return out, awaits
}

// translateExpr translates a single ir.Expression bound to target (defined
// by register stReg in the enclosing block, used to look stReg's own entry
// up in table when the expression is a Lambda, so C9's recursion verdict
// can be stamped onto the lifted FnDef), returning the helper statements
// it needs (Awaits, nested Allocation/Assignment for a lifted closure)
// plus the resulting machine.Expression to assign to target.
func (t *Translator) translateExpr(e ir.Expression, f *frame, table map[register.Register]analysis.FnInst, target machine.Memory, stReg register.Register) ([]machine.Statement, machine.Expression, error) {
	switch v := e.(type) {
	case ir.ValueExpr:
		mv, awaits := t.translateValue(v.Value, f)
		return awaitStmts(awaits), machine.ValueExpr{Value: mv}, nil

	case ir.ElementAccess:
		mv, awaits := t.translateValue(v.Value, f)
		return awaitStmts(awaits), machine.ElementAccess{Value: mv, Index: v.Index}, nil

	case ir.TupleExpression:
		mvs, awaits := t.translateValues(v.Values, f)
		return awaitStmts(awaits), machine.TupleExpression{Values: mvs}, nil

	case ir.FnCall:
		fn, fnAwait := t.translateValue(v.Fn, f)
		args, argAwait := t.translateValues(v.Args, f)
		awaits := append(fnAwait, argAwait...)
		return awaitStmts(awaits), machine.FnCall{Fn: fn, FnType: callFnType(v), Args: args}, nil

	case ir.CtorCall:
		name := t.unionName(v.UnionType)
		ctorName := ""
		if v.Index < len(v.UnionType.Variants) {
			ctorName = v.UnionType.Variants[v.Index].Name
		}
		if ctorName == "" {
			ctorName = fmt.Sprintf("%sC%d", name, v.Index)
		}
		var payload machine.Value
		var awaits []machine.Memory
		if v.Data != nil {
			payload, awaits = t.translateValue(v.Data, f)
		}
		return awaitStmts(awaits), machine.ConstructorCall{TypeName: name, Idx: v.Index, CtorName: ctorName, Payload: payload}, nil

	case *ir.Lambda:
		fnName, err := t.liftLambda(v, "")
		if err != nil {
			return nil, nil, err
		}
		if inst, ok := table[stReg]; ok {
			if _, isLambda := inst.(analysis.FnLambda); isLambda {
				t.fnDefs[len(t.fnDefs)-1].IsRecursive = analysis.IsRecursive(table, stReg)
			}
		}
		open := ir.OpenVars(v)
		if len(open) == 0 {
			return nil, machine.ClosureInstantiation{FnName: fnName, HasEnv: false}, nil
		}
		envVals, awaits := t.translateValues(open, f)
		envMem := t.freshMem()
		slots := make([]machine.EnvSlot, len(envVals))
		for i, ev := range envVals {
			m, ok := ev.(machine.Memory)
			if !ok {
				return nil, nil, errs.New(errs.InvariantViolation, "translate", "open variable did not resolve to a Memory cell")
			}
			slots[i] = machine.EnvSlot{Value: m, FnName: fnName}
		}
		stmts := awaitStmts(awaits)
		stmts = append(stmts, machine.Allocation{TypeName: fnName + "Env", Env: slots, Target: envMem})
		return stmts, machine.ClosureInstantiation{FnName: fnName, Env: envMem, HasEnv: true}, nil

	case *ir.If:
		cond, condAwait := t.translateValue(v.Cond, f)
		thenStmts, thenRet, err := t.translateBlock(v.Then, forkFrame(f), table)
		if err != nil {
			return nil, nil, err
		}
		elseStmts, elseRet, err := t.translateBlock(v.Else, forkFrame(f), table)
		if err != nil {
			return nil, nil, err
		}
		thenStmts = append(thenStmts, machine.Assignment{Target: target, Expr: machine.ValueExpr{Value: thenRet}})
		elseStmts = append(elseStmts, machine.Assignment{Target: target, Expr: machine.ValueExpr{Value: elseRet}})
		stmts := awaitStmts(condAwait)
		stmts = append(stmts, machine.Declaration{Type: machineType(blockType(v.Then)), Target: target})
		stmts = append(stmts, machine.IfStatement{Cond: cond, Then: thenStmts, Else: elseStmts})
		return stmts, machine.ValueExpr{Value: target}, nil

	case *ir.Match:
		subj, subjAwait := t.translateValue(v.Subject, f)
		union := resolveUnion(subjectType(v.Subject))
		unionName := t.unionName(union)
		branches := make([]machine.MatchBranch, len(v.Branches))
		for i, br := range v.Branches {
			bf := forkFrame(f)
			var tgt *machine.Memory
			if br.Target != nil {
				m := t.freshMem()
				bf.regs[br.Target.Reg] = m
				tgt = &m
			}
			bodyStmts, bodyRet, err := t.translateBlock(br.Body, bf, table)
			if err != nil {
				return nil, nil, err
			}
			bodyStmts = append(bodyStmts, machine.Assignment{Target: target, Expr: machine.ValueExpr{Value: bodyRet}})
			ctorName := ""
			if i < len(union.Variants) {
				ctorName = union.Variants[i].Name
			}
			if ctorName == "" {
				ctorName = fmt.Sprintf("%sC%d", unionName, i)
			}
			branches[i] = machine.MatchBranch{CtorName: ctorName, Target: tgt, Body: bodyStmts}
		}
		var declType typesys.Type
		if len(v.Branches) > 0 {
			declType = blockType(v.Branches[0].Body)
		}
		aux := t.freshMem()
		stmts := awaitStmts(subjAwait)
		stmts = append(stmts, machine.Declaration{Type: machineType(declType), Target: target})
		stmts = append(stmts, machine.MatchStatement{Subject: subj, UnionType: machine.Named{Name: unionName}, Aux: aux, Branches: branches})
		return stmts, machine.ValueExpr{Value: target}, nil

	default:
		return nil, nil, errs.New(errs.UnsupportedConstruct, "translate", fmt.Sprintf("unhandled ir.Expression %T", e))
	}
}

// forkFrame gives a branch its own frame sharing the parent's bindings;
// writes inside a branch (If/Match payload targets) must not leak to
// sibling branches, but reads of outer-scope memories must resolve.
func forkFrame(f *frame) *frame {
	child := newFrame()
	for r, m := range f.regs {
		child.regs[r] = m
	}
	return child
}

func awaitStmts(mems []machine.Memory) []machine.Statement {
	mems = dedupeMem(mems)
	if len(mems) == 0 {
		return nil
	}
	return []machine.Statement{machine.Await{Memories: mems}}
}

func dedupeMem(mems []machine.Memory) []machine.Memory {
	if len(mems) < 2 {
		return mems
	}
	seen := make(map[machine.Memory]bool, len(mems))
	out := mems[:0:0]
	for _, m := range mems {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func callFnType(v ir.FnCall) *machine.Fn {
	switch fn := v.Fn.(type) {
	case ir.BuiltInFn:
		return machineFnType(fn.Type)
	default:
		return nil
	}
}

func machineFnType(f *typesys.Function) *machine.Fn {
	if f == nil {
		return nil
	}
	args := make([]machine.MachineType, len(f.Args))
	for i, a := range f.Args {
		args[i] = machineType(a)
	}
	return &machine.Fn{Args: args, Ret: machineType(f.Ret)}
}

func machineType(ty typesys.Type) machine.MachineType {
	switch t := ty.(type) {
	case nil:
		return nil
	case typesys.Atomic:
		if t == typesys.Bool {
			return machine.Bool
		}
		return machine.Int
	case *typesys.Tuple:
		elems := make([]machine.MachineType, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = machineType(e)
		}
		return &machine.Tuple{Elems: elems}
	case *typesys.Function:
		return machineFnType(t)
	case *typesys.Union:
		ctors := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			ctors[i] = v.Name
		}
		return &machine.Union{Ctors: ctors}
	case *typesys.Reference:
		return machineType(t.Cell.Target)
	default:
		return nil
	}
}

func blockType(b *ir.Block) typesys.Type {
	return valueType(b.Return)
}

// valueType recovers an ir.Value's type without re-running inference: a
// Memory/Arg carries its own type, a literal's type is fixed by its kind,
// and a BuiltInFn's type is its declared typesys.Function.
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
	default:
		return nil
	}
}

func subjectType(v ir.Value) typesys.Type {
	return valueType(v)
}

// resolveUnion unwraps a Reference to reach the underlying Union a
// match's subject type names.
func resolveUnion(ty typesys.Type) *typesys.Union {
	switch t := ty.(type) {
	case *typesys.Union:
		return t
	case *typesys.Reference:
		return resolveUnion(t.Cell.Target)
	default:
		return &typesys.Union{}
	}
}
