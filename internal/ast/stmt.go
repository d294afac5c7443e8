package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtAssign
	StmtExpr
	StmtReturn
	StmtBreak
	StmtContinue
	StmtPass
	StmtIf
	StmtWhile
	StmtFor
	StmtMatch
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtBlockData struct {
	Stmts []StmtID
}

// StmtLetData binds a pattern; plain `let x = ...` is a binding pattern.
type StmtLetData struct {
	Pattern PatID
	Type    TypeID // NoTypeID when un-annotated
	Value   ExprID
}

// AssignOp distinguishes `=` from the augmented forms.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd          // +=
	AssignSub          // -=
	AssignMul          // *=
	AssignDiv          // /=
	AssignMod          // %=
)

type StmtAssignData struct {
	Target ExprID
	Op     AssignOp
	Value  ExprID
}

type StmtExprData struct {
	Value ExprID
}

type StmtReturnData struct {
	Value ExprID // NoExprID for a bare `return`
}

// StmtIfData chains elif branches through Else as nested if statements.
type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID, another StmtIf, or a block
}

type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

type StmtForData struct {
	Pattern PatID
	Iter    ExprID
	Body    StmtID
}

type MatchArm struct {
	Span    source.Span
	Pattern PatID
	Guard   ExprID // NoExprID without `if`
	Body    StmtID
}

type StmtMatchData struct {
	Subject ExprID
	Arms    []MatchArm
}
