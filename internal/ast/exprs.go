package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena          *Arena[Expr]
	Idents         *Arena[ExprIdentData]
	Literals       *Arena[ExprLiteralData]
	Binaries       *Arena[ExprBinaryData]
	Unaries        *Arena[ExprUnaryData]
	Calls          *Arena[ExprCallData]
	Members        *Arena[ExprMemberData]
	Indices        *Arena[ExprIndexData]
	StructInits    *Arena[ExprStructInitData]
	Lists          *Arena[ExprListData]
	Dicts          *Arena[ExprDictData]
	Comprehensions *Arena[ExprComprehensionData]
	Ranges         *Arena[ExprRangeData]
	Ifs            *Arena[ExprIfData]
	Matches        *Arena[ExprMatchData]
	Awaits         *Arena[ExprAwaitData]
	Spawns         *Arena[ExprSpawnData]
	Lambdas        *Arena[ExprLambdaData]
	FStrings       *Arena[ExprFStringData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:          NewArena[Expr](capHint),
		Idents:         NewArena[ExprIdentData](capHint),
		Literals:       NewArena[ExprLiteralData](capHint),
		Binaries:       NewArena[ExprBinaryData](capHint),
		Unaries:        NewArena[ExprUnaryData](capHint),
		Calls:          NewArena[ExprCallData](capHint),
		Members:        NewArena[ExprMemberData](capHint),
		Indices:        NewArena[ExprIndexData](capHint),
		StructInits:    NewArena[ExprStructInitData](capHint),
		Lists:          NewArena[ExprListData](capHint),
		Dicts:          NewArena[ExprDictData](capHint),
		Comprehensions: NewArena[ExprComprehensionData](capHint),
		Ranges:         NewArena[ExprRangeData](capHint),
		Ifs:            NewArena[ExprIfData](capHint),
		Matches:        NewArena[ExprMatchData](capHint),
		Awaits:         NewArena[ExprAwaitData](capHint),
		Spawns:         NewArena[ExprSpawnData](capHint),
		Lambdas:        NewArena[ExprLambdaData](capHint),
		FStrings:       NewArena[ExprFStringData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, PayloadID(payload))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value})
	return e.new(ExprLit, span, PayloadID(payload))
}

func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewCall(span source.Span, target ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{
		Target: target,
		Args:   append([]ExprID(nil), args...),
	})
	return e.new(ExprCall, span, PayloadID(payload))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMember(span source.Span, target ExprID, field source.StringID, fieldSpan source.Span) ExprID {
	payload := e.Members.Allocate(ExprMemberData{Target: target, Field: field, FieldSpan: fieldSpan})
	return e.new(ExprMember, span, PayloadID(payload))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMember {
		return nil, false
	}
	return e.Members.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIndex(span source.Span, target, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Target: target, Index: index})
	return e.new(ExprIndex, span, PayloadID(payload))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewStructInit(span source.Span, typ TypeID, fields []StructInitField) ExprID {
	payload := e.StructInits.Allocate(ExprStructInitData{
		Type:   typ,
		Fields: append([]StructInitField(nil), fields...),
	})
	return e.new(ExprStructInit, span, PayloadID(payload))
}

func (e *Exprs) StructInit(id ExprID) (*ExprStructInitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStructInit {
		return nil, false
	}
	return e.StructInits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewList(span source.Span, elems []ExprID) ExprID {
	payload := e.Lists.Allocate(ExprListData{Elems: append([]ExprID(nil), elems...)})
	return e.new(ExprList, span, PayloadID(payload))
}

func (e *Exprs) List(id ExprID) (*ExprListData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprList {
		return nil, false
	}
	return e.Lists.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewDict(span source.Span, entries []DictEntry) ExprID {
	payload := e.Dicts.Allocate(ExprDictData{Entries: append([]DictEntry(nil), entries...)})
	return e.new(ExprDict, span, PayloadID(payload))
}

func (e *Exprs) Dict(id ExprID) (*ExprDictData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprDict {
		return nil, false
	}
	return e.Dicts.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewComprehension(span source.Span, elem ExprID, pattern PatID, iter, cond ExprID) ExprID {
	payload := e.Comprehensions.Allocate(ExprComprehensionData{
		Elem:    elem,
		Pattern: pattern,
		Iter:    iter,
		Cond:    cond,
	})
	return e.new(ExprComprehension, span, PayloadID(payload))
}

func (e *Exprs) Comprehension(id ExprID) (*ExprComprehensionData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprComprehension {
		return nil, false
	}
	return e.Comprehensions.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewRange(span source.Span, start, end ExprID, inclusive bool) ExprID {
	payload := e.Ranges.Allocate(ExprRangeData{Start: start, End: end, Inclusive: inclusive})
	return e.new(ExprRange, span, PayloadID(payload))
}

func (e *Exprs) Range(id ExprID) (*ExprRangeData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprRange {
		return nil, false
	}
	return e.Ranges.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIf(span source.Span, cond, then, els ExprID) ExprID {
	payload := e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els})
	return e.new(ExprIf, span, PayloadID(payload))
}

func (e *Exprs) If(id ExprID) (*ExprIfData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIf {
		return nil, false
	}
	return e.Ifs.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMatch(span source.Span, subject ExprID, arms []MatchExprArm) ExprID {
	payload := e.Matches.Allocate(ExprMatchData{
		Subject: subject,
		Arms:    append([]MatchExprArm(nil), arms...),
	})
	return e.new(ExprMatch, span, PayloadID(payload))
}

func (e *Exprs) Match(id ExprID) (*ExprMatchData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMatch {
		return nil, false
	}
	return e.Matches.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewAwait(span source.Span, value ExprID) ExprID {
	payload := e.Awaits.Allocate(ExprAwaitData{Value: value})
	return e.new(ExprAwait, span, PayloadID(payload))
}

func (e *Exprs) Await(id ExprID) (*ExprAwaitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAwait {
		return nil, false
	}
	return e.Awaits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewSpawn(span source.Span, value ExprID) ExprID {
	payload := e.Spawns.Allocate(ExprSpawnData{Value: value})
	return e.new(ExprSpawn, span, PayloadID(payload))
}

func (e *Exprs) Spawn(id ExprID) (*ExprSpawnData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSpawn {
		return nil, false
	}
	return e.Spawns.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewLambda(span source.Span, params []FnParam, body ExprID) ExprID {
	payload := e.Lambdas.Allocate(ExprLambdaData{
		Params: append([]FnParam(nil), params...),
		Body:   body,
	})
	return e.new(ExprLambda, span, PayloadID(payload))
}

func (e *Exprs) Lambda(id ExprID) (*ExprLambdaData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLambda {
		return nil, false
	}
	return e.Lambdas.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewFString(span source.Span, parts []FStringPart) ExprID {
	payload := e.FStrings.Allocate(ExprFStringData{Parts: append([]FStringPart(nil), parts...)})
	return e.new(ExprFString, span, PayloadID(payload))
}

func (e *Exprs) FString(id ExprID) (*ExprFStringData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprFString {
		return nil, false
	}
	return e.FStrings.Get(uint32(expr.Payload)), true
}
