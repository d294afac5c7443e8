package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

// Items manages allocation of top-level items.
type Items struct {
	Arena   *Arena[Item]
	Fns     *Arena[ItemFnData]
	Structs *Arena[ItemStructData]
	Enums   *Arena[ItemEnumData]
	Aliases *Arena[ItemTypeAliasData]
	Uses    *Arena[ItemUseData]
	Stmts   *Arena[ItemStmtData]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{
		Arena:   NewArena[Item](capHint),
		Fns:     NewArena[ItemFnData](capHint),
		Structs: NewArena[ItemStructData](capHint),
		Enums:   NewArena[ItemEnumData](capHint),
		Aliases: NewArena[ItemTypeAliasData](capHint),
		Uses:    NewArena[ItemUseData](capHint),
		Stmts:   NewArena[ItemStmtData](capHint),
	}
}

func (it *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(it.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

func (it *Items) Get(id ItemID) *Item {
	return it.Arena.Get(uint32(id))
}

func (it *Items) NewFn(span source.Span, data ItemFnData) ItemID {
	payload := it.Fns.Allocate(data)
	return it.new(ItemFn, span, PayloadID(payload))
}

func (it *Items) Fn(id ItemID) (*ItemFnData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return it.Fns.Get(uint32(item.Payload)), true
}

func (it *Items) NewStruct(span source.Span, data ItemStructData) ItemID {
	payload := it.Structs.Allocate(data)
	return it.new(ItemStruct, span, PayloadID(payload))
}

func (it *Items) Struct(id ItemID) (*ItemStructData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return it.Structs.Get(uint32(item.Payload)), true
}

func (it *Items) NewEnum(span source.Span, data ItemEnumData) ItemID {
	payload := it.Enums.Allocate(data)
	return it.new(ItemEnum, span, PayloadID(payload))
}

func (it *Items) Enum(id ItemID) (*ItemEnumData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return it.Enums.Get(uint32(item.Payload)), true
}

func (it *Items) NewTypeAlias(span source.Span, data ItemTypeAliasData) ItemID {
	payload := it.Aliases.Allocate(data)
	return it.new(ItemTypeAlias, span, PayloadID(payload))
}

func (it *Items) TypeAlias(id ItemID) (*ItemTypeAliasData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemTypeAlias {
		return nil, false
	}
	return it.Aliases.Get(uint32(item.Payload)), true
}

func (it *Items) NewUse(span source.Span, data ItemUseData) ItemID {
	payload := it.Uses.Allocate(data)
	return it.new(ItemUse, span, PayloadID(payload))
}

func (it *Items) Use(id ItemID) (*ItemUseData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemUse {
		return nil, false
	}
	return it.Uses.Get(uint32(item.Payload)), true
}

func (it *Items) NewStmt(span source.Span, stmt StmtID) ItemID {
	payload := it.Stmts.Allocate(ItemStmtData{Stmt: stmt})
	return it.new(ItemStmt, span, PayloadID(payload))
}

func (it *Items) Stmt(id ItemID) (*ItemStmtData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemStmt {
		return nil, false
	}
	return it.Stmts.Get(uint32(item.Payload)), true
}
