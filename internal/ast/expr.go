package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprBinary
	ExprUnary
	ExprCall
	ExprMember
	ExprIndex
	ExprStructInit
	ExprList
	ExprDict
	ExprComprehension
	ExprRange
	ExprIf
	ExprMatch
	ExprAwait
	ExprSpawn
	ExprLambda
	ExprFString
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type ExprIdentData struct {
	Name source.StringID
}

type ExprLitKind uint8

const (
	LitInt ExprLitKind = iota
	LitFloat
	LitString
	LitBool
	LitNone
)

// ExprLiteralData keeps Value as decoded text for strings and raw digits
// for numbers; numeric parsing happens during lowering.
type ExprLiteralData struct {
	Kind  ExprLitKind
	Value source.StringID
}

type ExprBinaryOp uint8

const (
	BinAdd ExprBinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
	BinIs
	BinIsNot
)

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryOp uint8

const (
	UnNeg ExprUnaryOp = iota
	UnPos
	UnNot
)

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Target ExprID
	Args   []ExprID
}

type ExprMemberData struct {
	Target    ExprID
	Field     source.StringID
	FieldSpan source.Span
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type StructInitField struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

type ExprStructInitData struct {
	Type   TypeID
	Fields []StructInitField
}

type ExprListData struct {
	Elems []ExprID
}

type DictEntry struct {
	Key   ExprID
	Value ExprID
}

type ExprDictData struct {
	Entries []DictEntry
}

// ExprComprehensionData is `[elem for pat in iter if cond]`.
type ExprComprehensionData struct {
	Elem    ExprID
	Pattern PatID
	Iter    ExprID
	Cond    ExprID // NoExprID without a filter
}

type ExprRangeData struct {
	Start     ExprID
	End       ExprID
	Inclusive bool
}

// ExprIfData is the conditional expression `then if cond else els`.
type ExprIfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type MatchExprArm struct {
	Span    source.Span
	Pattern PatID
	Guard   ExprID
	Value   ExprID
}

type ExprMatchData struct {
	Subject ExprID
	Arms    []MatchExprArm
}

type ExprAwaitData struct {
	Value ExprID
}

type ExprSpawnData struct {
	Value ExprID
}

type ExprLambdaData struct {
	Params []FnParam
	Body   ExprID
}

// FStringPart is either a literal chunk (Expr == NoExprID, Text set) or a
// placeholder expression.
type FStringPart struct {
	Text source.StringID
	Expr ExprID
}

type ExprFStringData struct {
	Parts []FStringPart
}
