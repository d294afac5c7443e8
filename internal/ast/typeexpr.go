package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type TypeExprKind uint8

const (
	// TypeExprName covers primitives, named types, and generic
	// applications like list[int] or Option[T].
	TypeExprName TypeExprKind = iota
	// TypeExprFn is a function type `fn(int, str) -> bool`.
	TypeExprFn
)

type TypeExpr struct {
	Kind    TypeExprKind
	Span    source.Span
	Payload PayloadID
}

type TypeNameData struct {
	Path     []source.StringID // `Name` or `module.Name`
	PathSpan source.Span
	Args     []TypeID
}

type TypeFnData struct {
	Params []TypeID
	Ret    TypeID // NoTypeID means the None (unit) type
}

// Types manages allocation of type expressions.
type Types struct {
	Arena *Arena[TypeExpr]
	Names *Arena[TypeNameData]
	Fns   *Arena[TypeFnData]
}

func NewTypes(capHint uint) *Types {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Types{
		Arena: NewArena[TypeExpr](capHint),
		Names: NewArena[TypeNameData](capHint),
		Fns:   NewArena[TypeFnData](capHint),
	}
}

func (t *Types) new(kind TypeExprKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (t *Types) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

func (t *Types) NewName(span source.Span, path []source.StringID, pathSpan source.Span, args []TypeID) TypeID {
	payload := t.Names.Allocate(TypeNameData{
		Path:     append([]source.StringID(nil), path...),
		PathSpan: pathSpan,
		Args:     append([]TypeID(nil), args...),
	})
	return t.new(TypeExprName, span, PayloadID(payload))
}

func (t *Types) Name(id TypeID) (*TypeNameData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprName {
		return nil, false
	}
	return t.Names.Get(uint32(te.Payload)), true
}

func (t *Types) NewFn(span source.Span, params []TypeID, ret TypeID) TypeID {
	payload := t.Fns.Allocate(TypeFnData{
		Params: append([]TypeID(nil), params...),
		Ret:    ret,
	})
	return t.new(TypeExprFn, span, PayloadID(payload))
}

func (t *Types) Fn(id TypeID) (*TypeFnData, bool) {
	te := t.Get(id)
	if te == nil || te.Kind != TypeExprFn {
		return nil, false
	}
	return t.Fns.Get(uint32(te.Payload)), true
}
