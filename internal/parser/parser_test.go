package parser_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte(src))
	bag := diag.NewBag(64)
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(fs.Get(id), builder, parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	return builder, res.File, bag
}

func mustNoErrors(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestParseFnItem(t *testing.T) {
	b, file, bag := parseSrc(t, "fn add(x: int, y: int) -> int:\n    return x + y\n")
	mustNoErrors(t, bag)

	items := b.Files.Get(file).Items
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	fn, ok := b.Items.Fn(items[0])
	if !ok {
		t.Fatal("expected a fn item")
	}
	if got, _ := b.Strings.Lookup(fn.Name); got != "add" {
		t.Fatalf("fn name = %q", got)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	retName, ok := b.Types.Name(fn.Ret)
	if !ok || b.Strings.MustLookup(retName.Path[0]) != "int" {
		t.Fatal("return type must be the named type int")
	}

	block, ok := b.Stmts.Block(fn.Body)
	if !ok || len(block.Stmts) != 1 {
		t.Fatal("body must be a block with one statement")
	}
	ret, ok := b.Stmts.Return(block.Stmts[0])
	if !ok {
		t.Fatal("body statement must be a return")
	}
	bin, ok := b.Exprs.Binary(ret.Value)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatal("return value must be x + y")
	}
}

func TestDefaultParamOrderRejected(t *testing.T) {
	_, _, bag := parseSrc(t, "fn f(a: int, b: int = 1, c: int):\n    pass\n")
	if !hasCode(bag, diag.SynDefaultParamOrder) {
		t.Fatal("expected SYN2010 for non-default parameter after default")
	}
}

func TestMissingBlockIsError(t *testing.T) {
	_, _, bag := parseSrc(t, "fn f():\nlet x = 1\n")
	if !hasCode(bag, diag.SynMissingBlock) {
		t.Fatal("expected SYN2008 for header without indented block")
	}
}

func TestPrecedence(t *testing.T) {
	b, file, bag := parseSrc(t, "let r = 1 + 2 * 3\n")
	mustNoErrors(t, bag)

	stmtItem, _ := b.Items.Stmt(b.Files.Get(file).Items[0])
	let, _ := b.Stmts.Let(stmtItem.Stmt)
	add, ok := b.Exprs.Binary(let.Value)
	if !ok || add.Op != ast.BinAdd {
		t.Fatal("top operator must be +")
	}
	mul, ok := b.Exprs.Binary(add.Right)
	if !ok || mul.Op != ast.BinMul {
		t.Fatal("* must bind tighter than +")
	}
}

func TestUnaryBindsTighterThanBinary(t *testing.T) {
	b, file, bag := parseSrc(t, "let r = not a or b\n")
	mustNoErrors(t, bag)

	stmtItem, _ := b.Items.Stmt(b.Files.Get(file).Items[0])
	let, _ := b.Stmts.Let(stmtItem.Stmt)
	or, ok := b.Exprs.Binary(let.Value)
	if !ok || or.Op != ast.BinOr {
		t.Fatal("top operator must be or")
	}
	if _, ok := b.Exprs.Unary(or.Left); !ok {
		t.Fatal("left operand must be the not expression")
	}
}

func TestRangeBindsLooserThanArithmetic(t *testing.T) {
	b, file, bag := parseSrc(t, "let r = 0..n + 1\n")
	mustNoErrors(t, bag)

	stmtItem, _ := b.Items.Stmt(b.Files.Get(file).Items[0])
	let, _ := b.Stmts.Let(stmtItem.Stmt)
	rng, ok := b.Exprs.Range(let.Value)
	if !ok {
		t.Fatal("top node must be a range")
	}
	if _, ok := b.Exprs.Binary(rng.End); !ok {
		t.Fatal("range end must be n + 1")
	}
}

func TestStructInitKeywordForm(t *testing.T) {
	b, file, bag := parseSrc(t, "let p = Point(x: 1, y: 2)\n")
	mustNoErrors(t, bag)

	stmtItem, _ := b.Items.Stmt(b.Files.Get(file).Items[0])
	let, _ := b.Stmts.Let(stmtItem.Stmt)
	init, ok := b.Exprs.StructInit(let.Value)
	if !ok {
		t.Fatal("expected struct instantiation")
	}
	if len(init.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(init.Fields))
	}
	if b.Strings.MustLookup(init.Fields[0].Name) != "x" {
		t.Fatal("first field must be x")
	}
}

func TestPositionalStructInitRejected(t *testing.T) {
	_, _, bag := parseSrc(t, "let p = Point(1, y: 2)\n")
	if !hasCode(bag, diag.SynPositionalStructInit) {
		t.Fatal("expected SYN2011 for positional argument in struct instantiation")
	}
}

func TestEnumDecl(t *testing.T) {
	b, file, bag := parseSrc(t, "enum Option[T]:\n    Some: (T)\n    None\n")
	mustNoErrors(t, bag)

	enum, ok := b.Items.Enum(b.Files.Get(file).Items[0])
	if !ok {
		t.Fatal("expected enum item")
	}
	if len(enum.TypeParams) != 1 || b.Strings.MustLookup(enum.TypeParams[0].Name) != "T" {
		t.Fatal("expected type parameter T")
	}
	if len(enum.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(enum.Variants))
	}
	if len(enum.Variants[0].Payloads) != 1 || len(enum.Variants[1].Payloads) != 0 {
		t.Fatal("Some carries one payload, None carries none")
	}
	if b.Strings.MustLookup(enum.Variants[1].Name) != "None" {
		t.Fatal("second variant must be None")
	}
}

func TestStructDeclWithMethod(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"    fn len(self) -> float:\n" +
		"        return 0.0\n"
	b, file, bag := parseSrc(t, src)
	mustNoErrors(t, bag)

	st, ok := b.Items.Struct(b.Files.Get(file).Items[0])
	if !ok {
		t.Fatal("expected struct item")
	}
	if len(st.Fields) != 2 || len(st.Methods) != 1 {
		t.Fatalf("fields=%d methods=%d", len(st.Fields), len(st.Methods))
	}
}

func TestUseAndAlias(t *testing.T) {
	b, file, bag := parseSrc(t, "use std.math as m\npub use std.io\n")
	mustNoErrors(t, bag)

	items := b.Files.Get(file).Items
	u0, _ := b.Items.Use(items[0])
	if len(u0.Path) != 2 || b.Strings.MustLookup(u0.Alias) != "m" {
		t.Fatal("first use must alias std.math as m")
	}
	u1, _ := b.Items.Use(items[1])
	if !u1.Pub {
		t.Fatal("second use must be pub")
	}
}

func TestTypeAliasWithFnType(t *testing.T) {
	b, file, bag := parseSrc(t, "type Handler[T] = fn(T, int) -> bool\n")
	mustNoErrors(t, bag)

	alias, ok := b.Items.TypeAlias(b.Files.Get(file).Items[0])
	if !ok {
		t.Fatal("expected type alias item")
	}
	fnType, ok := b.Types.Fn(alias.Target)
	if !ok || len(fnType.Params) != 2 {
		t.Fatal("alias target must be a 2-parameter function type")
	}
}

func TestMatchStmtWithPatterns(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v) if v > 0:\n" +
		"            return v\n" +
		"        case Option.None:\n" +
		"            return 0\n" +
		"        case _:\n" +
		"            return -1\n"
	b, file, bag := parseSrc(t, src)
	mustNoErrors(t, bag)

	fn, _ := b.Items.Fn(b.Files.Get(file).Items[0])
	block, _ := b.Stmts.Block(fn.Body)
	match, ok := b.Stmts.Match(block.Stmts[0])
	if !ok || len(match.Arms) != 3 {
		t.Fatal("expected a match with 3 arms")
	}
	if !match.Arms[0].Guard.IsValid() {
		t.Fatal("first arm must carry a guard")
	}
	variant, ok := b.Pats.EnumVariant(match.Arms[0].Pattern)
	if !ok || len(variant.Args) != 1 {
		t.Fatal("first arm pattern must be Some(v)")
	}
	qualified, ok := b.Pats.EnumVariant(match.Arms[1].Pattern)
	if !ok || len(qualified.Path) != 2 {
		t.Fatal("second arm pattern must be the qualified Option.None")
	}
	if b.Pats.Get(match.Arms[2].Pattern).Kind != ast.PatWildcard {
		t.Fatal("third arm must be the wildcard")
	}
}

func TestListPatternWithRest(t *testing.T) {
	b, file, bag := parseSrc(t, "let [a, b, ..rest] = xs\n")
	mustNoErrors(t, bag)

	stmtItem, _ := b.Items.Stmt(b.Files.Get(file).Items[0])
	let, _ := b.Stmts.Let(stmtItem.Stmt)
	list, ok := b.Pats.List(let.Pattern)
	if !ok {
		t.Fatal("expected list pattern")
	}
	if len(list.Elems) != 2 || !list.HasRest || list.RestIndex != 2 {
		t.Fatalf("rest must follow two prefix elements: %+v", list)
	}
	if b.Strings.MustLookup(list.RestName) != "rest" {
		t.Fatal("rest binding must be named rest")
	}
}

func TestComprehensionAndLambda(t *testing.T) {
	b, file, bag := parseSrc(t, "let squares = [x * x for x in 0..10 if x % 2 == 0]\nlet f = lambda a, b: a + b\n")
	mustNoErrors(t, bag)

	items := b.Files.Get(file).Items
	let0, _ := b.Stmts.Let(mustStmt(t, b, items[0]))
	comp, ok := b.Exprs.Comprehension(let0.Value)
	if !ok || !comp.Cond.IsValid() {
		t.Fatal("expected comprehension with filter")
	}
	let1, _ := b.Stmts.Let(mustStmt(t, b, items[1]))
	lam, ok := b.Exprs.Lambda(let1.Value)
	if !ok || len(lam.Params) != 2 {
		t.Fatal("expected 2-parameter lambda")
	}
}

func TestFStringParts(t *testing.T) {
	b, file, bag := parseSrc(t, "let s = f\"sum: {a + b}!\"\n")
	mustNoErrors(t, bag)

	let, _ := b.Stmts.Let(mustStmt(t, b, b.Files.Get(file).Items[0]))
	fstr, ok := b.Exprs.FString(let.Value)
	if !ok || len(fstr.Parts) != 3 {
		t.Fatalf("expected text, expr, text parts; got %d", len(fstr.Parts))
	}
	if b.Strings.MustLookup(fstr.Parts[0].Text) != "sum: " {
		t.Fatal("leading text chunk mismatch")
	}
	if !fstr.Parts[1].Expr.IsValid() {
		t.Fatal("middle part must be the placeholder expression")
	}
}

func TestConditionalExpression(t *testing.T) {
	b, file, bag := parseSrc(t, "let m = a if a > b else b\n")
	mustNoErrors(t, bag)

	let, _ := b.Stmts.Let(mustStmt(t, b, b.Files.Get(file).Items[0]))
	ifExpr, ok := b.Exprs.If(let.Value)
	if !ok {
		t.Fatal("expected conditional expression")
	}
	if _, ok := b.Exprs.Binary(ifExpr.Cond); !ok {
		t.Fatal("condition must be a > b")
	}
}

func TestMatchExpression(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    let r = match o:\n" +
		"        case Some(v): v\n" +
		"        case _: 0\n" +
		"    return r\n"
	b, file, bag := parseSrc(t, src)
	mustNoErrors(t, bag)

	fn, _ := b.Items.Fn(b.Files.Get(file).Items[0])
	block, _ := b.Stmts.Block(fn.Body)
	let, _ := b.Stmts.Let(block.Stmts[0])
	m, ok := b.Exprs.Match(let.Value)
	if !ok || len(m.Arms) != 2 {
		t.Fatal("expected 2-arm match expression")
	}
}

func TestStatementRecovery(t *testing.T) {
	src := "fn f():\n" +
		"    let = 1\n" +
		"    let @ = 2\n" +
		"    pass\n" +
		"fn g():\n" +
		"    pass\n"
	b, file, bag := parseSrc(t, src)
	if !bag.HasErrors() {
		t.Fatal("expected syntax errors")
	}
	// Both functions survive despite the bad statements.
	items := b.Files.Get(file).Items
	fns := 0
	for _, it := range items {
		if _, ok := b.Items.Fn(it); ok {
			fns++
		}
	}
	if fns != 2 {
		t.Fatalf("expected both fn items to be recovered, got %d", fns)
	}
}

func TestAugmentedAssign(t *testing.T) {
	src := "fn f():\n    x += 2\n    y[0] = 1\n"
	b, file, bag := parseSrc(t, src)
	mustNoErrors(t, bag)

	fn, _ := b.Items.Fn(b.Files.Get(file).Items[0])
	block, _ := b.Stmts.Block(fn.Body)
	aug, ok := b.Stmts.Assign(block.Stmts[0])
	if !ok || aug.Op != ast.AssignAdd {
		t.Fatal("first statement must be +=")
	}
	idx, ok := b.Stmts.Assign(block.Stmts[1])
	if !ok || idx.Op != ast.AssignSet {
		t.Fatal("second statement must be index assignment")
	}
	if _, ok := b.Exprs.Index(idx.Target); !ok {
		t.Fatal("assignment target must be an index expression")
	}
}

func mustStmt(t *testing.T, b *ast.Builder, item ast.ItemID) ast.StmtID {
	t.Helper()
	data, ok := b.Items.Stmt(item)
	if !ok {
		t.Fatal("expected a top-level statement item")
	}
	return data.Stmt
}
