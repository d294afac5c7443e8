package diagfmt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/diagfmt"
	"github.com/Ottrlang/otterlang/internal/parser"
	"github.com/Ottrlang/otterlang/internal/source"
)

func dumpAST(t *testing.T, src string) string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte(src))
	bag := diag.NewBag(16)
	builder := ast.NewBuilder(ast.Hints{})
	parsed := parser.ParseFile(fs.Get(id), builder, parser.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	var buf bytes.Buffer
	diagfmt.DumpAST(&buf, builder, parsed.File)
	return buf.String()
}

func TestDumpASTFunction(t *testing.T) {
	out := dumpAST(t, "fn dist(a: float, b: float) -> float:\n    return a + b\n")
	for _, want := range []string{
		"fn dist",
		"param a: float",
		"param b: float",
		"ret float",
		"return",
		"binary +",
		"ident a",
		"ident b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
}

func TestDumpASTMatchAndPatterns(t *testing.T) {
	src := "fn f(o: Option[int]) -> int:\n" +
		"    match o:\n" +
		"        case Some(v) if v > 0:\n" +
		"            return v\n" +
		"        case _:\n" +
		"            return 0\n"
	out := dumpAST(t, src)
	for _, want := range []string{
		"param o: Option[int]",
		"match",
		"pat variant Some",
		"pat bind v",
		"guard",
		"pat _",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
}

func TestDumpASTStructEnumUse(t *testing.T) {
	src := "use std.mathx as m\n" +
		"struct Point[T]:\n" +
		"    x: T\n" +
		"    y: T\n" +
		"enum Shape:\n" +
		"    Dot\n" +
		"    Circle: (float)\n"
	out := dumpAST(t, src)
	for _, want := range []string{
		"use std.mathx as m",
		"struct Point[T]",
		"field x: T",
		"enum Shape",
		"variant Dot",
		"variant Circle(float)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
}
