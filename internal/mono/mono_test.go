package mono_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/mono"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/sema"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/symbols"
)

func collect(t *testing.T, src string) *mono.Cache {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte(src))
	bag := diag.NewBag(64)
	builder := ast.NewBuilder(ast.Hints{})
	parsed := parser.ParseFile(fs.Get(id), builder, parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	resolved := symbols.ResolveFile(builder, parsed.File, symbols.ResolveOptions{
		Reporter: diag.BagReporter{Bag: bag},
	})
	checked := sema.Check(builder, parsed.File, sema.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Symbols:  &resolved,
	})
	if bag.HasErrors() {
		t.Fatalf("front-end errors: %+v", bag.Items())
	}
	namer := func(decl uint32) string {
		sym := resolved.Table.Symbols.Get(symbols.SymbolID(decl))
		if sym == nil {
			return "<anon>"
		}
		return resolved.Table.Strings.MustLookup(sym.Name)
	}
	cache := mono.NewCache(checked.Types, namer)
	mono.Collect(cache, &resolved, &checked)
	return cache
}

func TestSameTupleSharesOneInstance(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n" +
		"    return x\n" +
		"fn main():\n" +
		"    let a = id(1)\n" +
		"    let b = id(2)\n" +
		"    println(a)\n" +
		"    println(b)\n"
	cache := collect(t, src)
	if cache.Len() != 1 {
		t.Fatalf("instances = %d, want 1", cache.Len())
	}
	inst := cache.Instances()[0]
	if inst.Name != "id[int]" {
		t.Fatalf("mangled name = %q, want id[int]", inst.Name)
	}
}

func TestDistinctTuplesGetDistinctInstances(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n" +
		"    return x\n" +
		"fn main():\n" +
		"    let a = id(1)\n" +
		"    let b = id(\"s\")\n" +
		"    println(a)\n" +
		"    println(b)\n"
	cache := collect(t, src)
	if cache.Len() != 2 {
		t.Fatalf("instances = %d, want 2", cache.Len())
	}
	got := []string{cache.Instances()[0].Name, cache.Instances()[1].Name}
	if got[0] != "id[int]" || got[1] != "id[str]" {
		t.Fatalf("instance names = %v, want [id[int] id[str]]", got)
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	src := "fn id[T](x: T) -> T:\n" +
		"    return x\n" +
		"fn main():\n" +
		"    println(id(1))\n"
	cache := collect(t, src)
	if cache.Len() != 1 {
		t.Fatalf("instances = %d, want 1", cache.Len())
	}
	inst := cache.Instances()[0]
	again, fresh := cache.Record(inst.Sym, "id", inst.TypeArgs)
	if fresh {
		t.Fatal("re-recording the same tuple must hit the cache")
	}
	if again != inst {
		t.Fatal("cache hit returned a different instance")
	}
}
