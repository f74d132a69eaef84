// Package astin is the reader for the upstream typed AST (spec §6's
// input interface, left unspecified there beyond "JSON, tolerate cyclic
// nominal type references"). It decodes the documented node shapes into a
// small name-based AST — structurally the same shape as internal/ir,
// but with source-level names in place of registers — which
// internal/lowering then turns into registered SSA form.
//
// Deserialisation and the front-end type checker that produces this JSON
// are both out of this pipeline's core scope (spec §1); this package is
// the external-interface reader spec §6 calls for.
package astin

import "github.com/flowlang/flowc/internal/typesys"

// Program is the deserialised typed AST: the declared union types (in
// document order, the order the translator's T0, T1, ... naming and this
// package's cycle patch-up both rely on) plus the entry-point lambda.
type Program struct {
	TypeDefs []TypeDef
	Main     *Lambda
}

// TypeDef pairs a declared union type with the source-level name it was
// declared under, for diagnostics and for --dump-ast round-tripping
// (the union itself, per spec §3.1, carries no name — only Reference
// cells do).
type TypeDef struct {
	Name  string
	Union *typesys.Union
}

// Param is a lambda parameter as written in the source: a name and its
// checked type.
type Param struct {
	Name string
	Type typesys.Type
}

// Lambda is a function-definition node: zero or more Params and a Body.
type Lambda struct {
	Params []Param
	Body   *Block
}

// Assignment is a let-binding definition inside a Block: Name is bound to
// Value for the remainder of the block (and is not visible outside it).
type Assignment struct {
	Name  string
	Value Expr
}

// Block is a straight-line sequence of Assignment definitions followed by
// a return expression — the AST shape for a lambda body, an if-branch, or
// a match-branch body.
type Block struct {
	Defs   []Assignment
	Return Expr
}

// Expr is the closed sum of typed-AST expression forms spec §6 documents:
// Integer, Boolean, Tuple, Variable, ElementAccess, If, Match,
// FunctionDefinition (here Lambda), FunctionCall, ConstructorCall, plus a
// BuiltinRef leaf for references to primitive operators.
type Expr interface {
	astExprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Val int64
}

func (IntLit) astExprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Val bool
}

func (BoolLit) astExprNode() {}

// Variable references a name bound by an enclosing Assignment or Param.
type Variable struct {
	Name string
}

func (Variable) astExprNode() {}

// BuiltinRef references a named primitive function, e.g. "+" or "<=>",
// the way a FnCall's callee or any other function-typed value position
// can name an operator directly instead of routing through a Variable.
type BuiltinRef struct {
	Name string
	Type *typesys.Function
}

func (BuiltinRef) astExprNode() {}

// TupleExpr constructs a tuple from its element expressions in order.
type TupleExpr struct {
	Elems []Expr
}

func (TupleExpr) astExprNode() {}

// ElementAccess projects element Index out of a tuple-typed expression.
type ElementAccess struct {
	Value Expr
	Index int
}

func (ElementAccess) astExprNode() {}

// If is the if-as-expression form.
type If struct {
	Cond Expr
	Then *Block
	Else *Block
}

func (*If) astExprNode() {}

// MatchBranch is one arm of a Match: Target, if non-empty, names the
// binding the variant's payload is exposed under inside Body.
type MatchBranch struct {
	Target string // "" means no binding (nullary constructor or wildcard)
	Body   *Block
}

// Match is the match-as-expression form. Union names the declared union
// type the Subject is matched against.
type Match struct {
	Subject  Expr
	Union    string
	Branches []MatchBranch
}

func (*Match) astExprNode() {}

// LambdaExpr wraps a nested function definition in expression position.
type LambdaExpr struct {
	*Lambda
}

func (LambdaExpr) astExprNode() {}

// Call applies Fn to Args.
type Call struct {
	Fn   Expr
	Args []Expr
}

func (Call) astExprNode() {}

// Ctor constructs variant Index of the union type named Union, with
// optional payload Data (nil for a nullary constructor).
type Ctor struct {
	Union string
	Index int
	Data  Expr
}

func (Ctor) astExprNode() {}
