package symbols

import (
	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolImport
	SymbolFunction
	SymbolStruct
	SymbolEnum
	SymbolTypeAlias
	SymbolTypeParam
	SymbolLet
	SymbolParam
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolImport:
		return "import"
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEnum:
		return "enum"
	case SymbolTypeAlias:
		return "type alias"
	case SymbolTypeParam:
		return "type parameter"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "parameter"
	default:
		return "invalid"
	}
}

// IsType reports whether the symbol kind can appear in type position.
func (k SymbolKind) IsType() bool {
	switch k {
	case SymbolStruct, SymbolEnum, SymbolTypeAlias, SymbolTypeParam:
		return true
	default:
		return false
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagBuiltin
	SymbolFlagImported
)

// SymbolDecl points at the AST origin of a declaration. Index carries the
// position inside the owner for parameters, type parameters, and methods.
type SymbolDecl struct {
	SourceFile source.FileID
	ASTFile    ast.FileID
	Item       ast.ItemID
	Stmt       ast.StmtID
	Expr       ast.ExprID
	Pat        ast.PatID
	Index      uint32
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name   source.StringID
	Kind   SymbolKind
	Scope  ScopeID
	Span   source.Span
	Flags  SymbolFlags
	Decl   SymbolDecl
	Module string // import target key, dotted
}
