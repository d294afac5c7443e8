package symbols_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

func parseForResolve(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte(src))
	bag := diag.NewBag(64)
	builder := ast.NewBuilder(ast.Hints{})
	parsed := parser.ParseFile(fs.Get(id), builder, parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	return builder, parsed.File, bag
}

func resolveSrc(t *testing.T, src string, modules *symbols.ModuleTable) (*ast.Builder, symbols.Result, *diag.Bag) {
	t.Helper()
	builder, file, bag := parseForResolve(t, src)
	res := symbols.ResolveFile(builder, file, symbols.ResolveOptions{
		Reporter: diag.BagReporter{Bag: bag},
		Modules:  modules,
	})
	return builder, res, bag
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestForwardReferenceWithinFile(t *testing.T) {
	src := "fn caller() -> int:\n" +
		"    return callee()\n" +
		"fn callee() -> int:\n" +
		"    return 1\n"
	_, _, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestUndefinedSymbol(t *testing.T) {
	_, _, bag := resolveSrc(t, "fn f() -> int:\n    return missing\n", nil)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameUndefined {
		t.Fatalf("expected one NAM3001, got %v", got)
	}
}

func TestDuplicateTopLevel(t *testing.T) {
	src := "fn f():\n    pass\nfn f():\n    pass\n"
	_, _, bag := resolveSrc(t, src, nil)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameDuplicate {
		t.Fatalf("expected one NAM3002, got %v", got)
	}
}

func TestDuplicateLetInSameBlock(t *testing.T) {
	src := "fn f():\n    let x = 1\n    let x = 2\n"
	_, _, bag := resolveSrc(t, src, nil)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameDuplicate {
		t.Fatalf("expected one NAM3002, got %v", got)
	}
}

func TestShadowingInNestedScopeIsAllowed(t *testing.T) {
	src := "let x = 1\n" +
		"fn f() -> int:\n" +
		"    let x = 2\n" +
		"    return x\n"
	builder, res, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("shadowing must not error: %+v", bag.Items())
	}

	// The return expression must bind to the inner x.
	var inner symbols.SymbolID
	for exprID, symID := range res.ExprSyms {
		if _, ok := builder.Exprs.Ident(exprID); ok {
			inner = symID
		}
	}
	sym := res.Table.Symbols.Get(inner)
	if sym == nil {
		t.Fatal("return expression not bound")
	}
	if scope := res.Table.Scopes.Get(sym.Scope); scope.Kind != symbols.ScopeBlock {
		t.Fatalf("bound to %s scope, want the inner block", scope.Kind)
	}
}

func TestPatternBindingsVisibleInGuardAndBody(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v) if v > 0:\n" +
		"            return v\n" +
		"        case _:\n" +
		"            return 0\n"
	_, res, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(res.BindSyms) != 1 {
		t.Fatalf("expected one pattern binding, got %d", len(res.BindSyms))
	}
}

func TestListRestBinding(t *testing.T) {
	src := "fn f(xs: list[int]):\n    let [a, b, ..rest] = xs\n"
	_, res, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(res.RestSyms) != 1 {
		t.Fatal("rest binding not declared")
	}
	if len(res.BindSyms) != 2 {
		t.Fatalf("expected bindings for a and b, got %d", len(res.BindSyms))
	}
}

func TestTypeParamsAreVisibleInSignature(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n    return x\n"
	_, res, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	var fnItem ast.ItemID
	for id := range res.ParamSyms {
		fnItem = id
	}
	if got := len(res.TypeParamSyms[fnItem]); got != 1 {
		t.Fatalf("expected 1 type parameter symbol, got %d", got)
	}
}

func TestUnknownTypeAnnotation(t *testing.T) {
	_, _, bag := resolveSrc(t, "fn f(x: Widget):\n    pass\n", nil)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameUndefined {
		t.Fatalf("expected one NAM3001, got %v", got)
	}
}

func TestValueNameIsNotAType(t *testing.T) {
	// `thing` is a let binding; type lookup masks value kinds out.
	src := "let thing = 1\nfn f(x: thing):\n    pass\n"
	_, _, bag := resolveSrc(t, src, nil)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameUndefined {
		t.Fatalf("expected one NAM3001, got %v", got)
	}
}

func TestUseWithoutModuleTableBindsName(t *testing.T) {
	_, _, bag := resolveSrc(t, "use std.math as m\n", nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestUnknownModule(t *testing.T) {
	_, _, bag := resolveSrc(t, "use no.such.module\n", symbols.NewModuleTable())
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameUnknownModule {
		t.Fatalf("expected one NAM3006, got %v", got)
	}
}

func TestCircularImport(t *testing.T) {
	modules := symbols.NewModuleTable()
	modules.Begin("a") // a is on the current resolution path
	_, _, bag := resolveSrc(t, "use a\n", modules)
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameCircularImport {
		t.Fatalf("expected one NAM3005, got %v", got)
	}
}

func TestModuleMemberResolution(t *testing.T) {
	src := "use std.math as m\nlet y = m.sqrt(2.0)\n"
	builder, file, bag := parseForResolve(t, src)

	table := symbols.NewTable(symbols.Hints{}, builder.Strings)
	sqrt := builder.Strings.Intern("sqrt")
	sqrtSym := table.Symbols.New(symbols.Symbol{
		Name:  sqrt,
		Kind:  symbols.SymbolFunction,
		Flags: symbols.SymbolFlagPublic,
	})
	modules := symbols.NewModuleTable()
	modules.Finish("std.math", map[source.StringID]symbols.SymbolID{sqrt: sqrtSym})

	res := symbols.ResolveFile(builder, file, symbols.ResolveOptions{
		Table:    table,
		Reporter: diag.BagReporter{Bag: bag},
		Modules:  modules,
	})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}

	found := false
	for _, symID := range res.ExprSyms {
		if symID == sqrtSym {
			found = true
		}
	}
	if !found {
		t.Fatal("m.sqrt did not bind to the exported symbol")
	}
}

func TestUnknownModuleMember(t *testing.T) {
	src := "use std.math as m\nlet y = m.sqrt(2.0)\n"
	builder, file, bag := parseForResolve(t, src)

	table := symbols.NewTable(symbols.Hints{}, builder.Strings)
	modules := symbols.NewModuleTable()
	modules.Finish("std.math", map[source.StringID]symbols.SymbolID{})

	symbols.ResolveFile(builder, file, symbols.ResolveOptions{
		Table:    table,
		Reporter: diag.BagReporter{Bag: bag},
		Modules:  modules,
	})
	if got := codes(bag); len(got) != 1 || got[0] != diag.NameUnknownMember {
		t.Fatalf("expected one NAM3004, got %v", got)
	}
}

func TestExports(t *testing.T) {
	src := "pub fn api():\n    pass\nfn private():\n    pass\n"
	_, res, bag := resolveSrc(t, src, nil)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(res.Exports) != 1 {
		t.Fatalf("expected exactly the pub fn exported, got %d entries", len(res.Exports))
	}
}
