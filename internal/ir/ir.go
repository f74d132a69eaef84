// Package ir is the intermediate representation the lowering pass (C4)
// produces and the optimiser (C5-C8) rewrites: SSA-style registers,
// expressions, statements, blocks, lambdas, if/match as expressions, and
// structural/recursive type references (spec §3.2).
//
// Following the sealed-interface idiom go-dws/internal/ast uses for its
// Expression/Statement node hierarchy, each closed sum here is an
// interface with an unexported marker method; passes dispatch on the
// concrete type with a type switch rather than OO polymorphism, per
// spec §9's note that ADT dispatch suits passes that restructure nodes.
package ir

import (
	"github.com/flowlang/flowc/internal/register"
	"github.com/flowlang/flowc/internal/typesys"
)

// Arg is a lambda parameter: a typed binding site for a Register.
type Arg struct {
	Type typesys.Type
	Reg  register.Register
}

func (Arg) valueNode() {}

// Memory is the result of an Assignment: a typed binding site for a
// Register, distinct from Arg only in how it came to be bound.
type Memory struct {
	Type typesys.Type
	Reg  register.Register
}

func (Memory) valueNode() {}

// Value is the closed sum of things an expression can hold without
// further computation: a BuiltIn literal/function, a Memory, or an Arg.
type Value interface {
	valueNode()
}

// IntLiteral is a BuiltIn integer literal value.
type IntLiteral struct {
	Val int64
}

func (IntLiteral) valueNode() {}

// BoolLiteral is a BuiltIn boolean literal value.
type BoolLiteral struct {
	Val bool
}

func (BoolLiteral) valueNode() {}

// BuiltInFn is a BuiltIn reference to a named primitive function (e.g. an
// arithmetic or comparison operator) with its function type.
type BuiltInFn struct {
	Name string
	Type *typesys.Function
}

func (BuiltInFn) valueNode() {}

// Expression is the closed sum of intermediate expression forms (spec
// §3.2): Value, ElementAccess, TupleExpression, FnCall, CtorCall, Lambda,
// If, Match.
type Expression interface {
	exprNode()
}

// ValueExpr lifts a Value into an Expression; the trivial "just read this
// value" expression form the redundancy eliminator and copy propagator
// both substitute in for already-computed results.
type ValueExpr struct {
	Value Value
}

func (ValueExpr) exprNode() {}

// ElementAccess projects element Index out of a tuple-typed Value.
type ElementAccess struct {
	Value Value
	Index int
}

func (ElementAccess) exprNode() {}

// TupleExpression constructs a tuple from its element values in order.
type TupleExpression struct {
	Values []Value
}

func (TupleExpression) exprNode() {}

// FnCall applies Fn (a BuiltInFn, Memory, or Arg of function type) to Args.
type FnCall struct {
	Fn   Value
	Args []Value
}

func (FnCall) exprNode() {}

// CtorCall constructs variant Index of UnionType, with optional payload
// Data (nil for a nullary constructor).
type CtorCall struct {
	Index     int
	Data      Value // nil for a nullary constructor
	UnionType *typesys.Union
}

func (CtorCall) exprNode() {}

// Lambda is both a top-level entity (a Program's mainLambda) and, when it
// appears in expression position, the expression form that produces a
// closure value. Its open variables — the Memorys/Args it references
// whose defining Register is not bound inside it — become the
// translator's closure environment (spec §3.2).
type Lambda struct {
	Args []Arg
	Body *Block
}

func (*Lambda) exprNode() {}

// If is the if-as-expression form: both branches' return values must share
// a type (spec §3.2 invariant).
type If struct {
	Cond Value
	Then *Block
	Else *Block
}

func (*If) exprNode() {}

// MatchBranch is one arm of a Match: an optional target Arg that binds the
// variant's payload (nil for a nullary constructor or a wildcard branch
// that ignores it), plus the branch body.
type MatchBranch struct {
	Target *Arg
	Body   *Block
}

// Match is the match-as-expression form over a union-typed Subject. Every
// constructor index must match exactly one branch, or be covered by a
// trailing wildcard branch (spec §3.2 invariant).
type Match struct {
	Subject  Value
	Branches []MatchBranch
}

func (*Match) exprNode() {}

// Statement is the sole statement form in the intermediate IR: an
// assignment binding Reg to the result of Expr. Every Register is defined
// by at most one Assignment in its enclosing lambda (SSA, spec §3.2).
type Statement struct {
	Reg  register.Register
	Expr Expression
}

// Block is a straight-line sequence of Statements followed by a return
// Value.
type Block struct {
	Statements []Statement
	Return     Value
}

// Program is the lowered unit: the entry-point Lambda plus the Union types
// declared by the source program, in declaration order.
type Program struct {
	Main     *Lambda
	Declared []*typesys.Union
}
