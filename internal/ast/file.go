package ast

import (
	"github.com/Ottrlang/otterlang/internal/source"
)

// File is one parsed compilation unit: an ordered list of top-level items.
type File struct {
	Span   source.Span
	Source source.FileID
	Items  []ItemID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span, src source.FileID) FileID {
	return FileID(f.Arena.Allocate(File{Span: sp, Source: src}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
