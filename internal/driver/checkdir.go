package driver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

// SourceExt is the file extension the directory driver picks up.
const SourceExt = ".ot"

// DirResult is the outcome of checking every source file under a
// directory. Files are ordered by module key; Bag merges every file's
// diagnostics in that order.
type DirResult struct {
	Files []*CheckResult
	Keys  []string
	Bag   *diag.Bag
}

// HasErrors reports whether any file produced an error.
func (r *DirResult) HasErrors() bool {
	return r.Bag.HasErrors()
}

type dirFile struct {
	key    string
	path   string
	parsed *ParseResult
	deps   []string
	out    *CheckResult
}

// CheckDir runs the front-end on every .ot file under dir. All files
// share one builder and one symbol table so that use items resolve
// against sibling exports; imports are walked depth-first with the
// module table's cycle marks, then type checking fans out per file in
// an errgroup.
func CheckDir(ctx context.Context, dir string, maxDiagnostics int) (*DirResult, error) {
	paths, err := listSources(dir)
	if err != nil {
		return nil, err
	}

	fs := source.NewFileSet()
	builder := ast.NewBuilder(ast.Hints{})
	files := make(map[string]*dirFile, len(paths))
	keys := make([]string, 0, len(paths))

	for _, path := range paths {
		fileID, err := fs.Load(path)
		if err != nil {
			return nil, err
		}
		parsed, err := ParseInto(fs, fileID, builder, maxDiagnostics)
		if err != nil {
			return nil, err
		}
		df := &dirFile{
			key:    moduleKey(dir, path),
			path:   path,
			parsed: parsed,
			deps:   useDeps(builder, parsed.FileID),
		}
		files[df.key] = df
		keys = append(keys, df.key)
	}
	sort.Strings(keys)

	// Resolution is sequential: exports of a dependency must be final
	// before its importers look names up.
	table := symbols.NewTable(symbols.Hints{}, builder.Strings)
	modules := symbols.NewModuleTable()
	for _, key := range keys {
		resolveModule(files, files[key], table, modules)
	}

	// A checker chases imported declarations into the declaring file's
	// AST, so every file must see every file's annotation bindings.
	shareResolvedDecls(files, keys)

	// Type checking only reads the shared arenas, so files check in
	// parallel, each with its own inference state.
	sema.WarmNames(builder.Strings)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, key := range keys {
		df := files[key]
		g.Go(func() error {
			reporter := diag.BagReporter{Bag: df.out.Bag}
			df.out.Sema = guardCheck(reporter, func() sema.Result {
				return sema.Check(builder, df.parsed.FileID, sema.Options{
					Reporter: reporter,
					Symbols:  &df.out.Symbols,
				})
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &DirResult{
		Keys: keys,
		Bag:  diag.NewBag(maxDiagnostics),
	}
	for _, key := range keys {
		df := files[key]
		res.Files = append(res.Files, df.out)
		res.Bag.Merge(df.out.Bag)
	}
	return res, nil
}

// resolveModule resolves one file after its local dependencies,
// depth-first. A dependency already on the walk stays grey and the use
// site reports the cycle.
func resolveModule(files map[string]*dirFile, df *dirFile, table *symbols.Table, modules *symbols.ModuleTable) {
	if df.out != nil {
		return
	}
	if !modules.Begin(df.key) {
		return
	}
	for _, dep := range df.deps {
		if depFile, ok := files[dep]; ok {
			resolveModule(files, depFile, table, modules)
		}
	}
	df.out = &CheckResult{ParseResult: *df.parsed}
	reporter := diag.BagReporter{Bag: df.out.Bag}
	df.out.Symbols = guardResolve(reporter, func() symbols.Result {
		return symbols.ResolveFile(df.parsed.Builder, df.parsed.FileID, symbols.ResolveOptions{
			Table:    table,
			Reporter: reporter,
			Modules:  modules,
		})
	})
	modules.Finish(df.key, df.out.Symbols.Exports)
}

// shareResolvedDecls merges the declaration-level resolver maps of all
// files and hands the merged maps back to each file. Signature building
// for an imported function resolves its parameter and return annotations
// through these maps; without the merge the lookup misses and the
// signature degrades to fresh type variables. The merged maps are only
// read during type checking, so sharing them across the parallel phase
// is safe.
func shareResolvedDecls(files map[string]*dirFile, keys []string) {
	typeSyms := make(map[ast.TypeID]symbols.SymbolID)
	paramSyms := make(map[ast.ItemID][]symbols.SymbolID)
	typeParamSyms := make(map[ast.ItemID][]symbols.SymbolID)
	methodSyms := make(map[ast.ItemID][]symbols.SymbolID)
	for _, key := range keys {
		syms := &files[key].out.Symbols
		for id, sym := range syms.TypeSyms {
			typeSyms[id] = sym
		}
		for item, list := range syms.ParamSyms {
			paramSyms[item] = list
		}
		for item, list := range syms.TypeParamSyms {
			typeParamSyms[item] = list
		}
		for item, list := range syms.MethodSyms {
			methodSyms[item] = list
		}
	}
	for _, key := range keys {
		syms := &files[key].out.Symbols
		syms.TypeSyms = typeSyms
		syms.ParamSyms = paramSyms
		syms.TypeParamSyms = typeParamSyms
		syms.MethodSyms = methodSyms
	}
}

// useDeps lists the dotted module paths a file imports.
func useDeps(builder *ast.Builder, fileID ast.FileID) []string {
	file := builder.Files.Get(fileID)
	if file == nil {
		return nil
	}
	var deps []string
	for _, itemID := range file.Items {
		use, ok := builder.Items.Use(itemID)
		if !ok {
			continue
		}
		segs := make([]string, 0, len(use.Path))
		for _, seg := range use.Path {
			segs = append(segs, builder.Strings.MustLookup(seg))
		}
		deps = append(deps, strings.Join(segs, "."))
	}
	return deps
}

// moduleKey derives the dotted module path from a file's location
// under the root, e.g. std/math.ot becomes std.math.
func moduleKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, SourceExt)
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

func listSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == SourceExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
