package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type PatKind uint8

const (
	PatWildcard PatKind = iota
	PatLiteral
	PatBinding
	PatEnumVariant
	PatStruct
	PatList
)

type Pat struct {
	Kind    PatKind
	Span    source.Span
	Payload PayloadID
}

type PatLiteralData struct {
	Kind  ExprLitKind
	Value source.StringID
}

type PatBindingData struct {
	Name source.StringID
}

// PatEnumVariantData matches `Variant(p...)` or `Enum.Variant(p...)`.
// Path holds one segment for the bare form, two for the qualified form.
type PatEnumVariantData struct {
	Path     []source.StringID
	PathSpan source.Span
	Args     []PatID
}

type PatStructField struct {
	Name     source.StringID
	NameSpan source.Span
	// Pattern is NoPatID for shorthand `{x}`, binding the field name.
	Pattern PatID
}

type PatStructData struct {
	Name     source.StringID
	NameSpan source.Span
	Fields   []PatStructField
}

// PatListData matches a list. With HasRest, Elems[:RestIndex] match the
// prefix, Elems[RestIndex:] the suffix, and the middle binds to RestName
// (NoStringID for an anonymous `..`).
type PatListData struct {
	Elems     []PatID
	HasRest   bool
	RestIndex uint32
	RestName  source.StringID
	RestSpan  source.Span
}

// Pats manages allocation of patterns.
type Pats struct {
	Arena    *Arena[Pat]
	Literals *Arena[PatLiteralData]
	Bindings *Arena[PatBindingData]
	Variants *Arena[PatEnumVariantData]
	Structs  *Arena[PatStructData]
	Lists    *Arena[PatListData]
}

func NewPats(capHint uint) *Pats {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Pats{
		Arena:    NewArena[Pat](capHint),
		Literals: NewArena[PatLiteralData](capHint),
		Bindings: NewArena[PatBindingData](capHint),
		Variants: NewArena[PatEnumVariantData](capHint),
		Structs:  NewArena[PatStructData](capHint),
		Lists:    NewArena[PatListData](capHint),
	}
}

func (p *Pats) new(kind PatKind, span source.Span, payload PayloadID) PatID {
	return PatID(p.Arena.Allocate(Pat{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (p *Pats) Get(id PatID) *Pat {
	return p.Arena.Get(uint32(id))
}

func (p *Pats) NewWildcard(span source.Span) PatID {
	return p.new(PatWildcard, span, NoPayloadID)
}

func (p *Pats) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) PatID {
	payload := p.Literals.Allocate(PatLiteralData{Kind: kind, Value: value})
	return p.new(PatLiteral, span, PayloadID(payload))
}

func (p *Pats) Literal(id PatID) (*PatLiteralData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatLiteral {
		return nil, false
	}
	return p.Literals.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewBinding(span source.Span, name source.StringID) PatID {
	payload := p.Bindings.Allocate(PatBindingData{Name: name})
	return p.new(PatBinding, span, PayloadID(payload))
}

func (p *Pats) Binding(id PatID) (*PatBindingData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatBinding {
		return nil, false
	}
	return p.Bindings.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewEnumVariant(span source.Span, path []source.StringID, pathSpan source.Span, args []PatID) PatID {
	payload := p.Variants.Allocate(PatEnumVariantData{
		Path:     append([]source.StringID(nil), path...),
		PathSpan: pathSpan,
		Args:     append([]PatID(nil), args...),
	})
	return p.new(PatEnumVariant, span, PayloadID(payload))
}

func (p *Pats) EnumVariant(id PatID) (*PatEnumVariantData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatEnumVariant {
		return nil, false
	}
	return p.Variants.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewStruct(span source.Span, name source.StringID, nameSpan source.Span, fields []PatStructField) PatID {
	payload := p.Structs.Allocate(PatStructData{
		Name:     name,
		NameSpan: nameSpan,
		Fields:   append([]PatStructField(nil), fields...),
	})
	return p.new(PatStruct, span, PayloadID(payload))
}

func (p *Pats) Struct(id PatID) (*PatStructData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatStruct {
		return nil, false
	}
	return p.Structs.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewList(span source.Span, data PatListData) PatID {
	data.Elems = append([]PatID(nil), data.Elems...)
	payload := p.Lists.Allocate(data)
	return p.new(PatList, span, PayloadID(payload))
}

func (p *Pats) List(id PatID) (*PatListData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatList {
		return nil, false
	}
	return p.Lists.Get(uint32(pat.Payload)), true
}
