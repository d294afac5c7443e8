package symbols

import (
	"fmt"
	"strings"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

// ResolveOptions controls a resolve pass for a single AST file.
type ResolveOptions struct {
	Table    *Table
	Hints    Hints
	Prelude  []PreludeEntry
	Reporter diag.Reporter
	// Modules is consulted for use items. Nil disables cross-module
	// resolution (single-file mode): use items still bind a name.
	Modules *ModuleTable
}

// Result captures resolve artefacts for one file. The maps bind AST nodes
// to declarations so later stages never look names up again.
type Result struct {
	Table     *Table
	File      ast.FileID
	FileScope ScopeID

	ItemSyms  map[ast.ItemID]SymbolID
	ExprSyms  map[ast.ExprID]SymbolID
	TypeSyms  map[ast.TypeID]SymbolID
	PatSyms   map[ast.PatID]SymbolID // qualified variant / struct pattern heads
	BindSyms  map[ast.PatID]SymbolID // binding patterns
	RestSyms  map[ast.PatID]SymbolID // list-pattern rest bindings
	FieldSyms map[ast.PatID][]SymbolID // struct-pattern shorthand bindings, field order

	ParamSyms       map[ast.ItemID][]SymbolID
	TypeParamSyms   map[ast.ItemID][]SymbolID
	MethodSyms      map[ast.ItemID][]SymbolID
	LambdaParamSyms map[ast.ExprID][]SymbolID

	Exports map[source.StringID]SymbolID
}

// ResolveFile resolves one AST file in two passes: collect every top-level
// declaration first, then walk bodies, so forward references within the
// file work for all items.
func ResolveFile(builder *ast.Builder, fileID ast.FileID, opts ResolveOptions) Result {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, builder.Strings)
	}

	result := Result{
		Table:           table,
		File:            fileID,
		ItemSyms:        make(map[ast.ItemID]SymbolID),
		ExprSyms:        make(map[ast.ExprID]SymbolID),
		TypeSyms:        make(map[ast.TypeID]SymbolID),
		PatSyms:         make(map[ast.PatID]SymbolID),
		BindSyms:        make(map[ast.PatID]SymbolID),
		RestSyms:        make(map[ast.PatID]SymbolID),
		FieldSyms:       make(map[ast.PatID][]SymbolID),
		ParamSyms:       make(map[ast.ItemID][]SymbolID),
		TypeParamSyms:   make(map[ast.ItemID][]SymbolID),
		MethodSyms:      make(map[ast.ItemID][]SymbolID),
		LambdaParamSyms: make(map[ast.ExprID][]SymbolID),
		Exports:         make(map[source.StringID]SymbolID),
	}

	file := builder.Files.Get(fileID)
	if file == nil {
		return result
	}

	sourceFile := file.Source
	fileScope := table.FileRoot(sourceFile, file.Span)
	result.FileScope = fileScope

	resolver := NewResolver(table, fileScope, opts.Reporter)
	prelude := opts.Prelude
	if prelude == nil {
		prelude = DefaultPrelude()
	}
	resolver.installPrelude(fileScope, prelude)

	fr := fileResolver{
		builder:    builder,
		result:     &result,
		resolver:   resolver,
		reporter:   opts.Reporter,
		modules:    opts.Modules,
		fileID:     fileID,
		sourceFile: sourceFile,
	}
	for _, itemID := range file.Items {
		fr.collectItem(itemID)
	}
	for _, itemID := range file.Items {
		fr.walkItem(itemID)
	}
	return result
}

type fileResolver struct {
	builder    *ast.Builder
	result     *Result
	resolver   *Resolver
	reporter   diag.Reporter
	modules    *ModuleTable
	fileID     ast.FileID
	sourceFile source.FileID
}

// collectItem is the declaration pass: it installs every top-level name
// without touching bodies.
func (fr *fileResolver) collectItem(id ast.ItemID) {
	item := fr.builder.Items.Get(id)
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFn:
		if fn, ok := fr.builder.Items.Fn(id); ok {
			fr.declareItem(id, fn.Name, fn.NameSpan, SymbolFunction, fn.Pub)
		}
	case ast.ItemStruct:
		if st, ok := fr.builder.Items.Struct(id); ok {
			fr.declareItem(id, st.Name, st.NameSpan, SymbolStruct, st.Pub)
		}
	case ast.ItemEnum:
		if en, ok := fr.builder.Items.Enum(id); ok {
			fr.declareItem(id, en.Name, en.NameSpan, SymbolEnum, en.Pub)
		}
	case ast.ItemTypeAlias:
		if alias, ok := fr.builder.Items.TypeAlias(id); ok {
			fr.declareItem(id, alias.Name, alias.NameSpan, SymbolTypeAlias, alias.Pub)
		}
	case ast.ItemUse:
		if use, ok := fr.builder.Items.Use(id); ok {
			fr.declareUse(id, use)
		}
	case ast.ItemStmt:
		if wrap, ok := fr.builder.Items.Stmt(id); ok {
			if let, ok := fr.builder.Stmts.Let(wrap.Stmt); ok {
				fr.declarePattern(let.Pattern, wrap.Stmt)
			}
		}
	}
}

func (fr *fileResolver) declareItem(id ast.ItemID, name source.StringID, span source.Span, kind SymbolKind, pub bool) {
	if name == source.NoStringID {
		return
	}
	flags := SymbolFlags(0)
	if pub {
		flags |= SymbolFlagPublic
	}
	symID, ok := fr.resolver.Declare(Symbol{
		Name:  name,
		Kind:  kind,
		Span:  span,
		Flags: flags,
		Decl:  SymbolDecl{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id},
	})
	if !ok {
		return
	}
	fr.result.ItemSyms[id] = symID
	if pub {
		fr.result.Exports[name] = symID
	}
}

func (fr *fileResolver) declareUse(id ast.ItemID, use *ast.ItemUseData) {
	if len(use.Path) == 0 {
		return
	}
	segs := make([]string, 0, len(use.Path))
	for _, seg := range use.Path {
		segs = append(segs, fr.builder.Strings.MustLookup(seg))
	}
	key := strings.Join(segs, ".")

	if fr.modules != nil {
		mod, known := fr.modules.Get(key)
		switch {
		case !known:
			fr.reportf(diag.NameUnknownModule, use.PathSpan, "unknown module '%s'", key)
			return
		case mod.State == ModuleResolving:
			fr.reportf(diag.NameCircularImport, use.PathSpan,
				"circular module dependency through '%s'", key)
			return
		}
	}

	name := use.Alias
	if name == source.NoStringID {
		name = use.Path[len(use.Path)-1]
	}
	flags := SymbolFlagImported
	if use.Pub {
		flags |= SymbolFlagPublic
	}
	symID, ok := fr.resolver.Declare(Symbol{
		Name:   name,
		Kind:   SymbolImport,
		Span:   use.PathSpan,
		Flags:  flags,
		Decl:   SymbolDecl{SourceFile: fr.sourceFile, ASTFile: fr.fileID, Item: id},
		Module: key,
	})
	if !ok {
		return
	}
	fr.result.ItemSyms[id] = symID
	if use.Pub {
		fr.result.Exports[name] = symID
	}
}

func (fr *fileResolver) reportf(code diag.Code, span source.Span, format string, args ...any) {
	if fr.reporter == nil {
		return
	}
	fr.reporter.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil)
}
