package mir

import (
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

type FuncID int32
type BlockID int32
type LocalID int32
type ExternID int32

const (
	NoFuncID   FuncID   = -1
	NoBlockID  BlockID  = -1
	NoLocalID  LocalID  = -1
	NoExternID ExternID = -1
)

// Local is one function-scope slot: a named binding or a lowering temp.
type Local struct {
	Sym    symbols.SymbolID // NoSymbolID for temps
	Type   types.TypeID
	Name   string
	Span   source.Span
	Rooted bool // result of an allocation, registered as a GC root
}

type PlaceProjKind uint8

const (
	// PlaceProjField selects a struct field slot by declaration index.
	// Lists and dicts reuse slot 0 for their length header.
	PlaceProjField PlaceProjKind = iota
	// PlaceProjTag selects an enum value's tag slot.
	PlaceProjTag
	// PlaceProjPayload selects payload #Index of an enum value whose tag
	// is already established.
	PlaceProjPayload
	// PlaceProjIndex indexes a list or dict by the value in IndexLocal.
	PlaceProjIndex
	// PlaceProjElem selects list element #Index from the front.
	PlaceProjElem
	// PlaceProjElemBack selects the element Index positions from the end.
	PlaceProjElemBack
)

type PlaceProj struct {
	Kind       PlaceProjKind
	Index      uint32
	IndexLocal LocalID
}

// Place is an assignable location: a local plus zero or more projections.
type Place struct {
	Local LocalID
	Proj  []PlaceProj
}

func (p Place) IsValid() bool { return p.Local != NoLocalID }

func local(id LocalID) Place { return Place{Local: id} }

func (p Place) field(idx uint32) Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjField, Index: idx})}
}

func (p Place) tag() Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjTag})}
}

func (p Place) payload(idx uint32) Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjPayload, Index: idx})}
}

func (p Place) index(idx LocalID) Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjIndex, IndexLocal: idx})}
}

func (p Place) elem(idx uint32) Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjElem, Index: idx})}
}

func (p Place) elemBack(idx uint32) Place {
	return Place{Local: p.Local, Proj: appendProj(p.Proj, PlaceProj{Kind: PlaceProjElemBack, Index: idx})}
}

func appendProj(proj []PlaceProj, next PlaceProj) []PlaceProj {
	out := make([]PlaceProj, len(proj), len(proj)+1)
	copy(out, proj)
	return append(out, next)
}
