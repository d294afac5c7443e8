package sema_test

import (
	"strings"
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
	"github.com/Ottrlang/otterlang/internal/types"
)

func checkSrc(t *testing.T, src string) (sema.Result, *diag.Bag) {
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
	if bag.HasErrors() {
		t.Fatalf("resolve errors: %+v", bag.Items())
	}
	res := sema.Check(builder, parsed.File, sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Symbols:  &resolved,
	})
	return res, bag
}

func mustClean(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func codes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestSimpleFunctionChecks(t *testing.T) {
	src := "fn add(x: int, y: int) -> int:\n" +
		"    return x + y\n"
	res, bag := checkSrc(t, src)
	mustClean(t, bag)

	if len(res.FnSigs) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(res.FnSigs))
	}
	for _, sig := range res.FnSigs {
		if sig.Ret != res.Types.Builtins().Int {
			t.Fatalf("return type = %v, want int", sig.Ret)
		}
		if len(sig.Params) != 2 {
			t.Fatalf("params = %d, want 2", len(sig.Params))
		}
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	src := "fn f() -> int:\n" +
		"    return \"s\"\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeMismatch {
		t.Fatalf("expected one TYP4001, got %v", got)
	}
}

func TestNonexhaustiveOptionMatch(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v):\n" +
		"            return v\n" +
		"    return 0\n"
	_, bag := checkSrc(t, src)
	got := codes(bag)
	if len(got) != 1 || got[0] != diag.TypeNonexhaustiveMatch {
		t.Fatalf("expected one TYP4007, got %v", got)
	}
	if msg := bag.Items()[0].Message; !strings.Contains(msg, "None") {
		t.Fatalf("diagnostic must name the missing variant, got %q", msg)
	}
}

func TestGuardedArmDoesNotCount(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v) if v > 0:\n" +
		"            return v\n" +
		"        case Option.None:\n" +
		"            return 0\n" +
		"    return -1\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeNonexhaustiveMatch {
		t.Fatalf("guarded Some must not count as coverage, got %v", got)
	}
}

func TestExhaustiveEnumMatch(t *testing.T) {
	src := "enum Shape:\n" +
		"    Circle: (float)\n" +
		"    Square: (float)\n" +
		"fn area(s: Shape) -> float:\n" +
		"    match s:\n" +
		"        case Circle(r):\n" +
		"            return r * r\n" +
		"        case Square(w):\n" +
		"            return w * w\n" +
		"    return 0.0\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestMissingEnumVariantIsNamed(t *testing.T) {
	src := "enum Shape:\n" +
		"    Circle: (float)\n" +
		"    Square: (float)\n" +
		"fn f(s: Shape) -> int:\n" +
		"    match s:\n" +
		"        case Circle(r):\n" +
		"            return 1\n" +
		"    return 0\n"
	_, bag := checkSrc(t, src)
	got := codes(bag)
	if len(got) != 1 || got[0] != diag.TypeNonexhaustiveMatch {
		t.Fatalf("expected one TYP4007, got %v", got)
	}
	if msg := bag.Items()[0].Message; !strings.Contains(msg, "Square") {
		t.Fatalf("diagnostic must name Square, got %q", msg)
	}
}

func TestOccursCheckRejectsInfiniteType(t *testing.T) {
	src := "fn f(x):\n" +
		"    let l = [x, [x]]\n"
	_, bag := checkSrc(t, src)
	found := false
	for _, c := range codes(bag) {
		if c == diag.TypeOccursCheck {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected TYP4002, got %v", codes(bag))
	}
}

func TestStructInitAndFieldAccess(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"fn f() -> int:\n" +
		"    let p = Point(x: 1, y: 2)\n" +
		"    return p.x\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestStructInitMissingField(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"    y: int\n" +
		"fn f() -> int:\n" +
		"    let p = Point(x: 1)\n" +
		"    return p.x\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeMissingField {
		t.Fatalf("expected one TYP4008, got %v", got)
	}
}

func TestStructInitUnknownField(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"fn f() -> int:\n" +
		"    let p = Point(x: 1, z: 2)\n" +
		"    return p.x\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeExtraField {
		t.Fatalf("expected one TYP4009, got %v", got)
	}
}

func TestUnknownFieldAccess(t *testing.T) {
	src := "struct Point:\n" +
		"    x: int\n" +
		"fn f(p: Point) -> int:\n" +
		"    return p.z\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeUnknownField {
		t.Fatalf("expected one TYP4011, got %v", got)
	}
}

func TestMethodCall(t *testing.T) {
	src := "struct Counter:\n" +
		"    n: int\n" +
		"    fn bump(self, by: int) -> int:\n" +
		"        return self.n + by\n" +
		"fn f(c: Counter) -> int:\n" +
		"    return c.bump(2)\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestGenericCallInstantiation(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n" +
		"    return x\n" +
		"fn f() -> int:\n" +
		"    return id(1)\n"
	res, bag := checkSrc(t, src)
	mustClean(t, bag)

	if len(res.Instances) != 1 {
		t.Fatalf("expected 1 instantiation, got %d", len(res.Instances))
	}
	for _, inst := range res.Instances {
		if len(inst.TypeArgs) != 1 || inst.TypeArgs[0] != res.Types.Builtins().Int {
			t.Fatalf("type args = %v, want [int]", inst.TypeArgs)
		}
	}
}

func TestWrongArgumentCount(t *testing.T) {
	src := "fn add(x: int, y: int) -> int:\n" +
		"    return x + y\n" +
		"fn f() -> int:\n" +
		"    return add(1)\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeWrongArgCount {
		t.Fatalf("expected one TYP4003, got %v", got)
	}
}

func TestDefaultParameterRelaxesArity(t *testing.T) {
	src := "fn greet(name: str, loud: bool = false) -> str:\n" +
		"    return name\n" +
		"fn f() -> str:\n" +
		"    return greet(\"otter\")\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestConditionMustBeBool(t *testing.T) {
	src := "fn f():\n" +
		"    if 1:\n" +
		"        pass\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeCondNotBool {
		t.Fatalf("expected one TYP4017, got %v", got)
	}
}

func TestStringConcatCoercion(t *testing.T) {
	src := "fn f(n: int) -> str:\n" +
		"    return \"count: \" + n\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestIsNoneComparison(t *testing.T) {
	src := "fn f(o: Option[int]) -> bool:\n" +
		"    return o is None\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestIsRequiresOption(t *testing.T) {
	src := "fn f(n: int) -> bool:\n" +
		"    return n is None\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeInvalidBinaryOp {
		t.Fatalf("expected one TYP4005, got %v", got)
	}
}

func TestSomeConstructorInfersOption(t *testing.T) {
	src := "fn f() -> Option[int]:\n" +
		"    return Some(1)\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestSpawnAndAwait(t *testing.T) {
	src := "fn work() -> int:\n" +
		"    return 42\n" +
		"fn f() -> int:\n" +
		"    let task = spawn work()\n" +
		"    return await task\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestAwaitRejectsNonTask(t *testing.T) {
	src := "fn f() -> int:\n" +
		"    return await 1\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeBadAwait {
		t.Fatalf("expected one TYP4016, got %v", got)
	}
}

func TestForOverRangeAndList(t *testing.T) {
	src := "fn f(xs: list[int]) -> int:\n" +
		"    let total = 0\n" +
		"    for i in 0..10:\n" +
		"        total += i\n" +
		"    for x in xs:\n" +
		"        total += x\n" +
		"    return total\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestNotIterable(t *testing.T) {
	src := "fn f():\n" +
		"    for x in 1:\n" +
		"        pass\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeNotIterable {
		t.Fatalf("expected one TYP4012, got %v", got)
	}
}

func TestLambdaInference(t *testing.T) {
	src := "fn f() -> int:\n" +
		"    let double = lambda x: x * 2\n" +
		"    return double(21)\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestDictIndexing(t *testing.T) {
	src := "fn f(d: dict[str, int]) -> int:\n" +
		"    return d[\"k\"]\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestIndexingNonIndexable(t *testing.T) {
	src := "fn f(n: int) -> int:\n" +
		"    return n[0]\n"
	_, bag := checkSrc(t, src)
	if got := codes(bag); len(got) != 1 || got[0] != diag.TypeNotIndexable {
		t.Fatalf("expected one TYP4015, got %v", got)
	}
}

func TestTypeAliasExpansion(t *testing.T) {
	src := "type Names = list[str]\n" +
		"fn f(ns: Names) -> int:\n" +
		"    return len(ns)\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}

func TestLiteralNoneTypesAsOption(t *testing.T) {
	src := "fn f() -> Option[int]:\n" +
		"    return None\n"
	res, bag := checkSrc(t, src)
	mustClean(t, bag)
	for _, sig := range res.FnSigs {
		walked, ok := res.Types.Lookup(sig.Ret)
		if !ok || walked.Kind != types.KindOption {
			t.Fatalf("return type kind = %v, want Option", walked.Kind)
		}
	}
}

func TestFStringIsStr(t *testing.T) {
	src := "fn f(n: int) -> str:\n" +
		"    return f\"n is {n}\"\n"
	_, bag := checkSrc(t, src)
	mustClean(t, bag)
}
