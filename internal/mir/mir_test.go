package mir_test

import (
	"strings"
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/mir"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

type fixture struct {
	builder *ast.Builder
	file    ast.FileID
	syms    symbols.Result
	sems    sema.Result
	bag     *diag.Bag
}

func (f *fixture) namer() types.DeclNamer {
	return func(decl uint32) string {
		sym := f.syms.Table.Symbols.Get(symbols.SymbolID(decl))
		if sym == nil {
			return "<anon>"
		}
		return f.syms.Table.Strings.MustLookup(sym.Name)
	}
}

func check(t *testing.T, src string) *fixture {
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
	resolved := symbols.ResolveFile(builder, parsed.File, symbols.ResolveOptions{
		Reporter: diag.BagReporter{Bag: bag},
	})
	checked := sema.Check(builder, parsed.File, sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Symbols:  &resolved,
	})
	if bag.HasErrors() {
		t.Fatalf("check errors: %+v", bag.Items())
	}
	return &fixture{builder: builder, file: parsed.File, syms: resolved, sems: checked, bag: bag}
}

func lower(t *testing.T, src string, target mir.Target) (*fixture, *mir.Module) {
	t.Helper()
	f := check(t, src)
	m := mir.Lower(f.builder, f.file, mir.Options{
		Reporter: diag.BagReporter{Bag: f.bag},
		Symbols:  &f.syms,
		Sema:     &f.sems,
		Target:   target,
	})
	if f.bag.HasErrors() {
		t.Fatalf("lowering errors: %+v", f.bag.Items())
	}
	if err := mir.Validate(m); err != nil {
		t.Fatalf("invalid module: %v", err)
	}
	return f, m
}

func findFunc(t *testing.T, m *mir.Module, name string) *mir.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if f != nil && f.Name == name {
			return f
		}
	}
	t.Fatalf("no function named %q", name)
	return nil
}

func callsExtern(f *mir.Func, name string) bool {
	for i := range f.Blocks {
		for _, ins := range f.Blocks[i].Instrs {
			if ins.Kind == mir.InstrCall &&
				ins.Call.Callee.Kind == mir.CalleeExtern &&
				ins.Call.Callee.Name == name {
				return true
			}
		}
	}
	return false
}

func moduleCallsExtern(m *mir.Module, name string) bool {
	for _, f := range m.Funcs {
		if f != nil && callsExtern(f, name) {
			return true
		}
	}
	return false
}

func TestTopLevelPrintLowersToRuntimeWrite(t *testing.T) {
	_, m := lower(t, "println(\"hi\")\n", mir.TargetNative)

	top := findFunc(t, m, "__toplevel")
	if !callsExtern(top, mir.ExternToString) {
		t.Error("println should stringify through otter_to_string")
	}
	if !callsExtern(top, mir.ExternStrConcat) {
		t.Error("println should append the newline via otter_str_concat")
	}
	if !callsExtern(top, mir.ExternWrite) {
		t.Error("native println should write through otter_write")
	}
}

func TestWasmTargetWritesThroughHostImport(t *testing.T) {
	_, m := lower(t, "println(\"hi\")\n", mir.TargetWasm)

	top := findFunc(t, m, "__toplevel")
	if !callsExtern(top, mir.ExternHostWrite) {
		t.Error("wasm println should write through host_write")
	}
	if moduleCallsExtern(m, mir.ExternWrite) {
		t.Error("wasm modules must not reference otter_write")
	}
}

func TestDumpIsByteStableAcrossLowerings(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"fn dist(p: Point) -> int:\n" +
		"    return p.x * p.x + p.y * p.y\n" +
		"fn main() -> int:\n" +
		"    let p = Point(x: 3, y: 4)\n" +
		"    return dist(p)\n"
	f1, m1 := lower(t, src, mir.TargetNative)
	f2, m2 := lower(t, src, mir.TargetNative)

	d1 := m1.Dump(f1.sems.Types, f1.namer())
	d2 := m2.Dump(f2.sems.Types, f2.namer())
	if d1 != d2 {
		t.Fatalf("dumps differ:\n--- first\n%s\n--- second\n%s", d1, d2)
	}
}

func TestMatchLowersToTagSwitch(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v):\n" +
		"            return v\n" +
		"        case None:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, m := lower(t, src, mir.TargetNative)

	f := findFunc(t, m, "f")
	found := false
	for i := range f.Blocks {
		term := f.Blocks[i].Term
		if term.Kind != mir.TermSwitchTag {
			continue
		}
		found = true
		if len(term.SwitchTag.Cases) != 2 {
			t.Errorf("tag switch has %d cases, want 2", len(term.SwitchTag.Cases))
		}
		if term.SwitchTag.Default != mir.NoBlockID {
			t.Error("exhaustive option match should carry no default")
		}
	}
	if !found {
		t.Fatal("match did not lower to a tag switch")
	}
}

func TestGenericCallProducesSpecializedFunction(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n" +
		"    return x\n" +
		"fn main() -> int:\n" +
		"    return id(1)\n"
	_, m := lower(t, src, mir.TargetNative)

	findFunc(t, m, "id[int]")
	main := findFunc(t, m, "main")
	called := false
	for i := range main.Blocks {
		for _, ins := range main.Blocks[i].Instrs {
			if ins.Kind == mir.InstrCall && ins.Call.Callee.Kind == mir.CalleeFunc {
				if target := m.Func(ins.Call.Callee.Func); target != nil && target.Name == "id[int]" {
					called = true
				}
			}
		}
	}
	if !called {
		t.Error("main should call the specialized instance directly")
	}
}

func TestSpawnAndAwaitUseTaskRuntime(t *testing.T) {
	src := "fn work() -> int:\n" +
		"    return 1\n" +
		"fn main() -> int:\n" +
		"    let h = spawn work()\n" +
		"    return await h\n"
	_, m := lower(t, src, mir.TargetNative)

	main := findFunc(t, m, "main")
	if !callsExtern(main, mir.ExternTaskSubmit) {
		t.Error("spawn should submit through otter_task_submit")
	}
	if !callsExtern(main, mir.ExternTaskJoin) {
		t.Error("await should join through otter_task_join")
	}
	spawned := false
	for _, f := range m.Funcs {
		if f != nil && strings.HasPrefix(f.Name, "spawn$") {
			spawned = true
		}
	}
	if !spawned {
		t.Error("spawn should synthesize a task body function")
	}
}

func TestAllocationsAreRootedAndReleased(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"fn make() -> Point:\n" +
		"    return Point(x: 1, y: 2)\n"
	_, m := lower(t, src, mir.TargetNative)

	f := findFunc(t, m, "make")
	if !callsExtern(f, mir.ExternAlloc) {
		t.Error("struct construction should allocate")
	}
	if !callsExtern(f, mir.ExternAddRoot) {
		t.Error("fresh allocations should register as GC roots")
	}
	if !callsExtern(f, mir.ExternRemoveRoot) {
		t.Error("returns should release the function's roots")
	}
}

func TestStringConcatGoesThroughRuntime(t *testing.T) {
	src := "fn greet(name: str) -> str:\n" +
		"    return \"hello \" + name\n"
	_, m := lower(t, src, mir.TargetNative)

	f := findFunc(t, m, "greet")
	if !callsExtern(f, mir.ExternStrConcat) {
		t.Error("string + should lower to otter_str_concat")
	}
}

func TestComprehensionPushesThroughRuntime(t *testing.T) {
	src := "fn squares(xs: list[int]) -> list[int]:\n" +
		"    return [x * x for x in xs if x > 0]\n"
	_, m := lower(t, src, mir.TargetNative)

	f := findFunc(t, m, "squares")
	if !callsExtern(f, mir.ExternListPush) {
		t.Error("comprehension should append through otter_list_push")
	}
}

func TestLambdaBecomesClosureCell(t *testing.T) {
	src := "fn apply(f: fn(int) -> int, x: int) -> int:\n" +
		"    return f(x)\n" +
		"fn main() -> int:\n" +
		"    let k = 10\n" +
		"    return apply(lambda n: n + k, 5)\n"
	_, m := lower(t, src, mir.TargetNative)

	found := false
	for _, f := range m.Funcs {
		if f != nil && strings.HasPrefix(f.Name, "lambda$") {
			found = true
			if f.ParamCount != 2 {
				t.Errorf("lambda thunk has %d params, want 2 (env + n)", f.ParamCount)
			}
		}
	}
	if !found {
		t.Fatal("lambda should synthesize a thunk function")
	}

	apply := findFunc(t, m, "apply")
	indirect := false
	for i := range apply.Blocks {
		for _, ins := range apply.Blocks[i].Instrs {
			if ins.Kind == mir.InstrCall && ins.Call.Callee.Kind == mir.CalleeValue {
				indirect = true
			}
		}
	}
	if !indirect {
		t.Error("calling a function parameter should go through the closure value")
	}
}
