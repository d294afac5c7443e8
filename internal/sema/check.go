package sema

import (
	"fmt"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

// Options configure a checking pass over one resolved file.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Types    *types.Interner
}

// FieldInfo is one declared struct field with its semantic type. Types of
// generic declarations contain rigid parameters.
type FieldInfo struct {
	Name source.StringID
	Type types.TypeID
}

// StructInfo describes a checked struct declaration.
type StructInfo struct {
	Item       ast.ItemID
	TypeParams []types.TypeID
	Fields     []FieldInfo
	Methods    map[source.StringID]symbols.SymbolID
}

// VariantInfo is one enum variant: its tag is the slice index.
type VariantInfo struct {
	Name     source.StringID
	Payloads []types.TypeID
}

// EnumInfo describes a checked enum declaration.
type EnumInfo struct {
	Item       ast.ItemID
	TypeParams []types.TypeID
	Variants   []VariantInfo
}

// FnSig is a function's checked signature. Required is the count of
// parameters without defaults.
type FnSig struct {
	Item       ast.ItemID
	TypeParams []types.TypeID
	Params     []types.TypeID
	Required   int
	Ret        types.TypeID
	Recv       symbols.SymbolID // owning struct for methods
}

// FnInstance records one generic call site: the callee and the concrete
// type arguments inferred there. Monomorphization keys its cache on these.
type FnInstance struct {
	Sym      symbols.SymbolID
	TypeArgs []types.TypeID
}

// VariantRef binds an expression or pattern to an enum variant tag.
type VariantRef struct {
	Enum symbols.SymbolID // NoSymbolID for the built-in Option
	Tag  uint32
}

// Result is the typed-AST side table: every expression, binding, and
// pattern carries a resolved type, plus the declaration info lowering
// needs for layout.
type Result struct {
	Types *types.Interner
	Subst *types.Subst

	ExprTypes map[ast.ExprID]types.TypeID
	DeclTypes map[symbols.SymbolID]types.TypeID
	PatTypes  map[ast.PatID]types.TypeID

	Structs map[symbols.SymbolID]*StructInfo
	Enums   map[symbols.SymbolID]*EnumInfo
	FnSigs  map[symbols.SymbolID]*FnSig

	// CallTargets binds direct call expressions to their callee symbol;
	// Instances carries the inferred type arguments for generic callees.
	CallTargets map[ast.ExprID]symbols.SymbolID
	Instances   map[ast.ExprID]FnInstance
	// VariantRefs binds variant-constructing expressions and variant
	// patterns to their tag.
	VariantRefs map[ast.ExprID]VariantRef
	PatVariants map[ast.PatID]VariantRef
}

// Check type-checks one resolved file. Inference state (the substitution)
// is local to this call, so separate files check independently.
func Check(builder *ast.Builder, fileID ast.FileID, opts Options) Result {
	interner := opts.Types
	if interner == nil {
		interner = types.NewInterner()
	}
	res := Result{
		Types:       interner,
		Subst:       types.NewSubst(),
		ExprTypes:   make(map[ast.ExprID]types.TypeID),
		DeclTypes:   make(map[symbols.SymbolID]types.TypeID),
		PatTypes:    make(map[ast.PatID]types.TypeID),
		Structs:     make(map[symbols.SymbolID]*StructInfo),
		Enums:       make(map[symbols.SymbolID]*EnumInfo),
		FnSigs:      make(map[symbols.SymbolID]*FnSig),
		CallTargets: make(map[ast.ExprID]symbols.SymbolID),
		Instances:   make(map[ast.ExprID]FnInstance),
		VariantRefs: make(map[ast.ExprID]VariantRef),
		PatVariants: make(map[ast.PatID]VariantRef),
	}
	if builder == nil || !fileID.IsValid() || opts.Symbols == nil {
		return res
	}

	tc := typeChecker{
		builder:  builder,
		fileID:   fileID,
		reporter: opts.Reporter,
		syms:     opts.Symbols,
		types:    interner,
		subst:    res.Subst,
		result:   &res,

		aliases:    make(map[symbols.SymbolID]*aliasInfo),
		aliasBusy:  make(map[symbols.SymbolID]bool),
		memberSyms: make(map[ast.ExprID]symbols.SymbolID),
	}
	tc.run()
	return res
}

type typeChecker struct {
	builder  *ast.Builder
	fileID   ast.FileID
	reporter diag.Reporter
	syms     *symbols.Result
	types    *types.Interner
	subst    *types.Subst
	result   *Result

	names      builtinNames
	aliases    map[symbols.SymbolID]*aliasInfo
	aliasBusy  map[symbols.SymbolID]bool
	memberSyms map[ast.ExprID]symbols.SymbolID

	vars     []types.TypeID
	retStack []types.TypeID
	errors   int
}

func (tc *typeChecker) run() {
	file := tc.builder.Files.Get(tc.fileID)
	if file == nil {
		return
	}
	// Declarations first: signatures, fields, variants. Bodies can then
	// reference any top-level item regardless of order.
	tc.declareAll(file.Items)
	for _, itemID := range file.Items {
		tc.checkItem(itemID)
	}
	tc.finalize()
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	tc.errors++
	if tc.reporter == nil {
		return
	}
	tc.reporter.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil)
}

func (tc *typeChecker) freshVar() types.TypeID {
	v := tc.types.NewVar()
	tc.vars = append(tc.vars, v)
	return v
}

// declName renders a declaring symbol for diagnostics.
func (tc *typeChecker) declName(decl uint32) string {
	sym := tc.syms.Table.Symbols.Get(symbols.SymbolID(decl))
	if sym == nil {
		return "<anon>"
	}
	return tc.syms.Table.Strings.MustLookup(sym.Name)
}

func (tc *typeChecker) format(id types.TypeID) string {
	return tc.types.Format(tc.subst.Apply(tc.types, id), tc.declName)
}

// finalize resolves every recorded type through the substitution. Let
// bindings whose type is still open are ambiguous; whatever variables
// remain after that are defaulted so downstream stages see ground types.
func (tc *typeChecker) finalize() {
	// Ambiguity only matters on otherwise-clean input; after a real error
	// the leftover variables are usually its fallout.
	if tc.errors == 0 {
		for symID, t := range tc.result.DeclTypes {
			applied := tc.subst.Apply(tc.types, t)
			if tc.subst.HasFreeVars(tc.types, applied) {
				if sym := tc.syms.Table.Symbols.Get(symID); sym != nil && sym.Kind == symbols.SymbolLet {
					tc.report(diag.TypeAmbiguous, sym.Span,
						"cannot infer the type of '%s'", tc.syms.Table.Strings.MustLookup(sym.Name))
				}
			}
		}
	}
	unit := tc.types.Builtins().Unit
	for _, v := range tc.vars {
		if tc.subst.Walk(tc.types, v) == v {
			tc.subst.Bind(v, unit)
		}
	}
	for id, t := range tc.result.ExprTypes {
		tc.result.ExprTypes[id] = tc.subst.Apply(tc.types, t)
	}
	for id, t := range tc.result.DeclTypes {
		tc.result.DeclTypes[id] = tc.subst.Apply(tc.types, t)
	}
	for id, t := range tc.result.PatTypes {
		tc.result.PatTypes[id] = tc.subst.Apply(tc.types, t)
	}
	for id, inst := range tc.result.Instances {
		for i, arg := range inst.TypeArgs {
			inst.TypeArgs[i] = tc.subst.Apply(tc.types, arg)
		}
		tc.result.Instances[id] = inst
	}
}
