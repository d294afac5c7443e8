package driver

import (
	"fortio.org/safecast"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/source"
)

// ParseResult carries one parsed file together with the arenas that own
// its nodes.
type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse loads a file and parses it into a fresh builder.
func Parse(path string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return ParseInto(fs, fileID, ast.NewBuilder(ast.Hints{}), maxDiagnostics)
}

// ParseInto parses a loaded file into the given builder. Sharing one
// builder across files keeps string and symbol identity aligned, which
// the directory driver relies on.
func ParseInto(fs *source.FileSet, fileID source.FileID, builder *ast.Builder, maxDiagnostics int) (*ParseResult, error) {
	file := fs.Get(fileID)
	bag := diag.NewBag(maxDiagnostics)

	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, err
	}

	result := parser.ParseFile(file, builder, parser.Options{
		Reporter:  diag.BagReporter{Bag: bag},
		MaxErrors: maxErrors,
	})

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  result.File,
		Bag:     bag,
	}, nil
}
