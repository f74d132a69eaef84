// Package machine is C12: the machine program the translator (C13)
// emits - explicit closures, constructor calls, typed memory cells,
// declarations, assignments, if/match statements, and the asynchronous
// Await/Enqueue execution discipline (spec §3.3).
package machine

// MachineType is the closed sum of machine-level types.
type MachineType interface{ machineTypeNode() }

// Atomic is a primitive machine type.
type Atomic uint8

const (
	Int Atomic = iota
	Bool
)

func (Atomic) machineTypeNode() {}

// Tuple is a fixed-arity ordered sequence of element types.
type Tuple struct {
	Elems []MachineType
}

func (*Tuple) machineTypeNode() {}

// Fn is a strong (owning) function-reference type.
type Fn struct {
	Args []MachineType
	Ret  MachineType
}

func (*Fn) machineTypeNode() {}

// WeakFn is a non-owning function-reference type, used in a closure
// environment slot that would otherwise complete a reference cycle
// (spec §3.3, §4.11).
type WeakFn struct {
	Args []MachineType
	Ret  MachineType
}

func (*WeakFn) machineTypeNode() {}

// Union names a generated union type by its constructor names, in
// declaration order (spec §3.4: `T{i}C{j}`).
type Union struct {
	Ctors []string
}

func (*Union) machineTypeNode() {}

// Named references a declared type definition by its generated name
// (`T0`, `T1`, ...).
type Named struct {
	Name string
}

func (Named) machineTypeNode() {}

// Memory is a stable string-identified memory cell (`m0, m1, ...`).
type Memory struct {
	Id string
}

// Value is BuiltIn (Integer/Boolean/NamedBuiltInFn literal) or Memory.
type Value interface{ valueNode() }

func (Memory) valueNode() {}

// IntLiteral is a BuiltIn integer literal.
type IntLiteral struct{ Val int64 }

func (IntLiteral) valueNode() {}

// BoolLiteral is a BuiltIn boolean literal.
type BoolLiteral struct{ Val bool }

func (BoolLiteral) valueNode() {}

// NamedBuiltInFn is a BuiltIn reference to a named primitive function.
type NamedBuiltInFn struct {
	Name string
	Type *Fn
}

func (NamedBuiltInFn) valueNode() {}

// Expression is the closed sum of machine expression forms.
type Expression interface{ exprNode() }

// ValueExpr lifts a Value into an Expression.
type ValueExpr struct{ Value Value }

func (ValueExpr) exprNode() {}

// ElementAccess projects element Index out of a tuple-typed Value.
type ElementAccess struct {
	Value Value
	Index int
}

func (ElementAccess) exprNode() {}

// TupleExpression constructs a tuple from its element values.
type TupleExpression struct{ Values []Value }

func (TupleExpression) exprNode() {}

// FnCall applies Fn (already Await-ed if it names a Memory) to Args.
type FnCall struct {
	Fn     Value
	FnType *Fn
	Args   []Value
}

func (FnCall) exprNode() {}

// ConstructorCall constructs variant Idx of the union named TypeName,
// with an optional (constructor name, payload value) pair.
type ConstructorCall struct {
	TypeName string
	Idx      int
	CtorName string // "" when no payload
	Payload  Value  // nil when no payload
}

func (ConstructorCall) exprNode() {}

// ClosureInstantiation builds a closure value for the FnDef named
// FnName, with an optional environment Memory (nil when the function
// has no open variables).
type ClosureInstantiation struct {
	FnName string
	Env    Memory
	HasEnv bool
}

func (ClosureInstantiation) exprNode() {}

// Statement is the closed sum of machine statement forms.
type Statement interface{ stmtNode() }

// Await suspends until every named Memory is fulfilled.
type Await struct{ Memories []Memory }

func (Await) stmtNode() {}

// Declaration introduces Target with the given type, ahead of a branch
// that may assign it (spec §3.3 invariant).
type Declaration struct {
	Type   MachineType
	Target Memory
}

func (Declaration) stmtNode() {}

// EnvSlot is one entry of an Allocation's closure environment: the open
// variable's Memory, and the FnName of the closure's own defining FnDef
// (used to tell the runtime which declared type/weakness that slot needs
// if it is itself function-typed).
type EnvSlot struct {
	Value  Memory
	FnName string
}

// Allocation builds an environment tuple out of Env and binds it to
// Target.
type Allocation struct {
	TypeName string
	Env      []EnvSlot
	Target   Memory
}

func (Allocation) stmtNode() {}

// Assignment binds Target to the result of Expr.
type Assignment struct {
	Target Memory
	Expr   Expression
}

func (Assignment) stmtNode() {}

// IfStatement is the statement-form if: both branches assign the same
// (enclosing-declared) result Memory.
type IfStatement struct {
	Cond Value
	Then []Statement
	Else []Statement
}

func (IfStatement) stmtNode() {}

// MatchBranch is one arm of a MatchStatement.
type MatchBranch struct {
	CtorName string
	Target   *Memory // nil when the variant carries no payload or the arm ignores it
	Body     []Statement
}

// MatchStatement is the statement-form match over Subject (of UnionType),
// assigning Aux in every branch.
type MatchStatement struct {
	Subject   Value
	UnionType Named
	Aux       Memory
	Branches  []MatchBranch
}

func (MatchStatement) stmtNode() {}

// Enqueue hands the task computing Target to the scheduler.
type Enqueue struct{ Target Memory }

func (Enqueue) stmtNode() {}

// FnDef is a top-level function definition.
type FnDef struct {
	Name        string
	Args        []Memory
	ArgTypes    []MachineType
	Statements  []Statement
	Ret         Value
	RetType     MachineType
	EnvTypes    []MachineType
	IsRecursive bool
	SizeLo      int
	SizeHi      int
}

// TypeDef is a generated union type definition.
type TypeDef struct {
	Name  string
	Ctors []string
}

// Program is the final machine program: TypeDefs plus FnDefs, the last
// of which is always named "Main" (spec §3.4).
type Program struct {
	TypeDefs []TypeDef
	FnDefs   []*FnDef
}
