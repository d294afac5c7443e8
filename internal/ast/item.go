package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemStruct
	ItemEnum
	ItemTypeAlias
	ItemUse
	// ItemStmt wraps a top-level let or expression statement.
	ItemStmt
)

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// TypeParam is one name in a `[T, U]` generic parameter list.
type TypeParam struct {
	Name source.StringID
	Span source.Span
}

// FnParam is one function or lambda parameter.
// Default is NoExprID when the parameter has no default value.
type FnParam struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Default  ExprID
}

type ItemFnData struct {
	Name       source.StringID
	NameSpan   source.Span
	TypeParams []TypeParam
	Params     []FnParam
	Ret        TypeID // NoTypeID means the None (unit) type
	Body       StmtID // always a block statement
	Pub        bool
}

type StructField struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
}

type ItemStructData struct {
	Name       source.StringID
	NameSpan   source.Span
	TypeParams []TypeParam
	Fields     []StructField
	Methods    []ItemID // nested fn items
	Pub        bool
}

// EnumVariant is one variant; Payloads lists its payload types in order,
// empty for a bare (payload-free) variant.
type EnumVariant struct {
	Name     source.StringID
	NameSpan source.Span
	Payloads []TypeID
}

type ItemEnumData struct {
	Name       source.StringID
	NameSpan   source.Span
	TypeParams []TypeParam
	Variants   []EnumVariant
	Pub        bool
}

type ItemTypeAliasData struct {
	Name       source.StringID
	NameSpan   source.Span
	TypeParams []TypeParam
	Target     TypeID
	Pub        bool
}

type ItemUseData struct {
	Path     []source.StringID
	PathSpan source.Span
	Alias    source.StringID // NoStringID without `as`
	Pub      bool
}

type ItemStmtData struct {
	Stmt StmtID
}
