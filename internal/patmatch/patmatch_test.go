package patmatch_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/patmatch"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

type fixture struct {
	builder *ast.Builder
	syms    symbols.Result
	sems    sema.Result
	bag     *diag.Bag
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
	return &fixture{builder: builder, syms: resolved, sems: checked, bag: bag}
}

func (f *fixture) opts() patmatch.Options {
	return patmatch.Options{
		Reporter: diag.BagReporter{Bag: f.bag},
		Symbols:  &f.syms,
		Sema:     &f.sems,
	}
}

// compileFirstMatch compiles the first match statement in the source.
func compileFirstMatch(t *testing.T, src string) (*fixture, *patmatch.Tree) {
	t.Helper()
	f := check(t, src)
	for i := uint32(1); i <= f.builder.Stmts.Arena.Len(); i++ {
		data, ok := f.builder.Stmts.Match(ast.StmtID(i))
		if !ok {
			continue
		}
		arms := make([]patmatch.Arm, 0, len(data.Arms))
		for _, arm := range data.Arms {
			arms = append(arms, patmatch.Arm{Pattern: arm.Pattern, Guard: arm.Guard})
		}
		tree := patmatch.Compile(f.builder, arms, f.builder.Stmts.Get(ast.StmtID(i)).Span, f.opts())
		if f.bag.HasErrors() {
			t.Fatalf("compile errors: %+v", f.bag.Items())
		}
		return f, tree
	}
	t.Fatal("no match statement in source")
	return nil, nil
}

// compileFirstLet compiles the pattern of the first destructuring let.
func compileFirstLet(t *testing.T, src string) (*fixture, *patmatch.Tree) {
	t.Helper()
	f := check(t, src)
	for i := uint32(1); i <= f.builder.Stmts.Arena.Len(); i++ {
		data, ok := f.builder.Stmts.Let(ast.StmtID(i))
		if !ok {
			continue
		}
		pat := f.builder.Pats.Get(data.Pattern)
		if pat.Kind == ast.PatBinding {
			continue
		}
		tree := patmatch.CompileLet(f.builder, data.Pattern, pat.Span, f.opts())
		if f.bag.HasErrors() {
			t.Fatalf("compile errors: %+v", f.bag.Items())
		}
		return f, tree
	}
	t.Fatal("no destructuring let in source")
	return nil, nil
}

func leafFor(t *testing.T, tree *patmatch.Tree, id patmatch.NodeID) *patmatch.Node {
	t.Helper()
	n := tree.Node(id)
	if n == nil || n.Kind != patmatch.NodeLeaf {
		t.Fatalf("node %d is not a leaf: %+v", id, n)
	}
	return n
}

func TestSharedLeadingTagHasOneBranch(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(1):\n" +
		"            return 1\n" +
		"        case Some(v):\n" +
		"            return v\n" +
		"        case None:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || root.Test != patmatch.TestEnumTag {
		t.Fatalf("root = %+v, want tag switch", root)
	}
	someBranches := 0
	for _, cs := range root.Cases {
		if cs.Tag == 0 {
			someBranches++
		}
	}
	if someBranches != 1 {
		t.Fatalf("Some branches = %d, want 1", someBranches)
	}
	if len(root.Cases) != 2 || root.Default.IsValid() {
		t.Fatalf("cases = %d (default %v), want 2 with no default", len(root.Cases), root.Default.IsValid())
	}
}

func TestSharedTagRecursesOnPayload(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(1):\n" +
		"            return 1\n" +
		"        case Some(v):\n" +
		"            return v\n" +
		"        case None:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	sub := tree.Node(root.Cases[0].Node)
	if sub.Kind != patmatch.NodeSwitch || sub.Test != patmatch.TestLiteral {
		t.Fatalf("Some subtree = %+v, want literal switch", sub)
	}
	if len(sub.Path) != 1 || sub.Path[0].Kind != patmatch.StepPayload || sub.Path[0].Index != 0 {
		t.Fatalf("literal switch path = %+v, want payload 0", sub.Path)
	}
	one := leafFor(t, tree, sub.Cases[0].Node)
	if one.Arm != 0 {
		t.Fatalf("literal case leads to arm %d, want 0", one.Arm)
	}
	fallback := leafFor(t, tree, sub.Default)
	if fallback.Arm != 1 {
		t.Fatalf("default leads to arm %d, want 1", fallback.Arm)
	}
}

func TestFirstMatchWinsOverLaterArms(t *testing.T) {
	src := "fn f(x: int) -> int:\n" +
		"    match x:\n" +
		"        case _:\n" +
		"            return 0\n" +
		"        case 1:\n" +
		"            return 1\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := leafFor(t, tree, tree.Root)
	if root.Arm != 0 {
		t.Fatalf("root leaf arm = %d, want 0", root.Arm)
	}
	if tree.Len() != 1 {
		t.Fatalf("tree has %d nodes, want 1: later arms are unreachable", tree.Len())
	}
}

func TestExhaustiveEnumNeedsNoDefault(t *testing.T) {
	src := "enum Shape:\n" +
		"    Circle: (float)\n" +
		"    Square: (float)\n" +
		"fn f(s: Shape) -> float:\n" +
		"    match s:\n" +
		"        case Circle(r):\n" +
		"            return r\n" +
		"        case Square(w):\n" +
		"            return w\n" +
		"    return 0.0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || len(root.Cases) != 2 {
		t.Fatalf("root = %+v, want 2-case tag switch", root)
	}
	if root.Default.IsValid() {
		t.Fatal("exhaustive switch should carry no default")
	}
	if tree.CanFail() {
		t.Fatal("exhaustive match compiled to a refutable tree")
	}
}

func TestGuardedLeafFallsThrough(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v) if v > 0:\n" +
		"            return v\n" +
		"        case Some(v):\n" +
		"            return 0 - v\n" +
		"        case None:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	var someNode patmatch.NodeID
	for _, cs := range root.Cases {
		if cs.Tag == 0 {
			someNode = cs.Node
		}
	}
	guarded := leafFor(t, tree, someNode)
	if guarded.Arm != 0 || !guarded.Guard.IsValid() {
		t.Fatalf("guarded leaf = %+v, want arm 0 with guard", guarded)
	}
	fallback := leafFor(t, tree, guarded.Else)
	if fallback.Arm != 1 || fallback.Guard.IsValid() {
		t.Fatalf("fallback leaf = %+v, want unguarded arm 1", fallback)
	}
}

func TestListRestBindsPrefixSuffixAndSlice(t *testing.T) {
	src := "fn f(l: list[int]):\n" +
		"    match l:\n" +
		"        case [a, b, ..rest]:\n" +
		"            println(a)\n" +
		"            println(b)\n" +
		"            println(rest)\n" +
		"        case _:\n" +
		"            pass\n"
	f, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || root.Test != patmatch.TestListMinLen {
		t.Fatalf("root = %+v, want min-length switch", root)
	}
	if len(root.Cases) != 1 || root.Cases[0].Tag != 2 {
		t.Fatalf("cases = %+v, want single min-length 2", root.Cases)
	}
	leaf := leafFor(t, tree, root.Cases[0].Node)
	if len(leaf.Bindings) != 3 {
		t.Fatalf("bindings = %d, want a, b, rest", len(leaf.Bindings))
	}
	byName := make(map[string]patmatch.Path)
	for _, b := range leaf.Bindings {
		sym := f.syms.Table.Symbols.Get(b.Sym)
		byName[f.syms.Table.Strings.MustLookup(sym.Name)] = b.Path
	}
	if p := byName["a"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepElem, Index: 0}) {
		t.Fatalf("a bound at %+v", p)
	}
	if p := byName["b"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepElem, Index: 1}) {
		t.Fatalf("b bound at %+v", p)
	}
	if p := byName["rest"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepRest, Index: 2, Aux: 0}) {
		t.Fatalf("rest bound at %+v", p)
	}
	fallback := leafFor(t, tree, root.Default)
	if fallback.Arm != 1 {
		t.Fatalf("short lists reach arm %d, want 1", fallback.Arm)
	}
}

func TestRestBetweenPrefixAndSuffix(t *testing.T) {
	src := "fn f(l: list[int]):\n" +
		"    match l:\n" +
		"        case [first, ..mid, last]:\n" +
		"            println(first)\n" +
		"            println(mid)\n" +
		"            println(last)\n" +
		"        case _:\n" +
		"            pass\n"
	f, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	leaf := leafFor(t, tree, root.Cases[0].Node)
	byName := make(map[string]patmatch.Path)
	for _, b := range leaf.Bindings {
		sym := f.syms.Table.Symbols.Get(b.Sym)
		byName[f.syms.Table.Strings.MustLookup(sym.Name)] = b.Path
	}
	if p := byName["last"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepElemBack, Index: 1}) {
		t.Fatalf("last bound at %+v", p)
	}
	if p := byName["mid"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepRest, Index: 1, Aux: 1}) {
		t.Fatalf("mid bound at %+v", p)
	}
}

func TestExactLengthListSwitch(t *testing.T) {
	src := "fn f(l: list[int]) -> int:\n" +
		"    match l:\n" +
		"        case [x]:\n" +
		"            return x\n" +
		"        case _:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || root.Test != patmatch.TestListLen {
		t.Fatalf("root = %+v, want exact-length switch", root)
	}
	if root.Cases[0].Tag != 1 {
		t.Fatalf("length = %d, want 1", root.Cases[0].Tag)
	}
	if !root.Default.IsValid() {
		t.Fatal("expected a default branch for other lengths")
	}
}

func TestStructPatternDecomposesWithoutSwitch(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"fn f(p: Point) -> int:\n" +
		"    match p:\n" +
		"        case Point(a, b):\n" +
		"            return a + b\n" +
		"    return 0\n"
	f, tree := compileFirstMatch(t, src)

	leaf := leafFor(t, tree, tree.Root)
	if len(leaf.Bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(leaf.Bindings))
	}
	byName := make(map[string]patmatch.Path)
	for _, b := range leaf.Bindings {
		sym := f.syms.Table.Symbols.Get(b.Sym)
		byName[f.syms.Table.Strings.MustLookup(sym.Name)] = b.Path
	}
	if p := byName["a"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepField, Index: 0}) {
		t.Fatalf("a bound at %+v", p)
	}
	if p := byName["b"]; len(p) != 1 || p[0] != (patmatch.Step{Kind: patmatch.StepField, Index: 1}) {
		t.Fatalf("b bound at %+v", p)
	}
}

func TestBoolMatchCoveringBothValues(t *testing.T) {
	src := "fn f(b: bool) -> int:\n" +
		"    match b:\n" +
		"        case true:\n" +
		"            return 1\n" +
		"        case false:\n" +
		"            return 0\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || root.Test != patmatch.TestLiteral {
		t.Fatalf("root = %+v, want literal switch", root)
	}
	if len(root.Cases) != 2 || root.Default.IsValid() {
		t.Fatal("bool match covering both values needs no default")
	}
	if tree.CanFail() {
		t.Fatal("covered bool match compiled to a refutable tree")
	}
}

func TestNestedVariantPatterns(t *testing.T) {
	src := "enum Tree:\n" +
		"    Leaf: (int)\n" +
		"    Pair: (int, int)\n" +
		"fn f(n: Tree) -> int:\n" +
		"    match n:\n" +
		"        case Leaf(v):\n" +
		"            return v\n" +
		"        case Pair(a, b):\n" +
		"            return a + b\n" +
		"    return 0\n"
	_, tree := compileFirstMatch(t, src)

	root := tree.Node(tree.Root)
	if len(root.Cases) != 2 || root.Default.IsValid() {
		t.Fatalf("root = %+v, want exhaustive 2-case switch", root)
	}
	pair := leafFor(t, tree, root.Cases[1].Node)
	if len(pair.Bindings) != 2 {
		t.Fatalf("pair bindings = %d, want 2", len(pair.Bindings))
	}
	for i, b := range pair.Bindings {
		want := patmatch.Step{Kind: patmatch.StepPayload, Index: uint32(i), Aux: 1}
		if len(b.Path) != 1 || b.Path[0] != want {
			t.Fatalf("payload %d bound at %+v, want %+v", i, b.Path, want)
		}
	}
}

func TestDestructuringLetListIsRefutable(t *testing.T) {
	src := "fn f(l: list[int]) -> int:\n" +
		"    let [x, y] = l\n" +
		"    return x + y\n"
	_, tree := compileFirstLet(t, src)

	if !tree.CanFail() {
		t.Fatal("fixed-length list destructuring must be refutable")
	}
	root := tree.Node(tree.Root)
	if root.Kind != patmatch.NodeSwitch || root.Test != patmatch.TestListLen || root.Cases[0].Tag != 2 {
		t.Fatalf("root = %+v, want exact-length-2 switch", root)
	}
}
