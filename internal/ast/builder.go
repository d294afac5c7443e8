package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

type Hints struct{ Files, Items, Stmts, Exprs, Pats, Types uint }

// Builder owns all arenas for one parse. Node IDs are only meaningful
// against the builder that produced them.
type Builder struct {
	Files   *Files
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Pats    *Pats
	Types   *Types
	Strings *source.Interner
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Items == 0 {
		hints.Items = 1 << 7
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Pats == 0 {
		hints.Pats = 1 << 7
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	return &Builder{
		Files:   NewFiles(hints.Files),
		Items:   NewItems(hints.Items),
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs),
		Pats:    NewPats(hints.Pats),
		Types:   NewTypes(hints.Types),
		Strings: source.NewInterner(),
	}
}

func (b *Builder) NewFile(sp source.Span, src source.FileID) FileID {
	return b.Files.New(sp, src)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}
