package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/diagfmt"
	"github.com/Ottrlang/otterlang/internal/lexer"
	"github.com/Ottrlang/otterlang/internal/source"
)

func TestTokenDumpGolden(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte("fn main():\n    println(\"hi\")\n"))
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{})

	var buf bytes.Buffer
	diagfmt.FormatTokensPretty(&buf, toks)

	g := goldie.New(t)
	g.Assert(t, "tokens_hello", buf.Bytes())
}

func demoBag(fs *source.FileSet) (*diag.Bag, source.FileID) {
	id := fs.AddVirtual("test.ot", []byte("let x = 1 + y\n"))
	bag := diag.NewBag(16)
	bag.Add(diag.NewError(diag.NameUndefined,
		source.Span{File: id, Start: 12, End: 13}, "undefined name 'y'"))
	bag.Add(diag.New(diag.SevWarning, diag.TypeInfo,
		source.Span{File: id, Start: 0, End: 3}, "example warning").
		WithNote(source.Span{File: id, Start: 8, End: 9}, "first defined here"))
	return bag, id
}

func TestPrettyGolden(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := demoBag(fs)

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{
		ShowSource: true,
		ShowNotes:  true,
	})

	g := goldie.New(t)
	g.Assert(t, "pretty_diags", buf.Bytes())
}

func TestPrettyColorWrapsSeverity(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := demoBag(fs)

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("expected ANSI escapes with Color enabled")
	}

	buf.Reset()
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{Color: false})
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("expected plain output with Color disabled")
	}
}

func TestJSONRoundTrips(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := demoBag(fs)

	var buf bytes.Buffer
	err := diagfmt.JSON(&buf, bag, fs, diagfmt.JSONOpts{
		IncludePositions: true,
		IncludeNotes:     true,
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d, want 2", out.Count)
	}
	first := out.Diagnostics[0]
	if first.Code != "NAM3001" || first.Severity != "ERROR" {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if first.Location.StartLine != 1 || first.Location.StartCol != 13 {
		t.Errorf("unexpected location: %+v", first.Location)
	}
	if len(out.Diagnostics[1].Notes) != 1 {
		t.Errorf("expected one note on the warning, got %+v", out.Diagnostics[1].Notes)
	}
}

func TestJSONHonorsMax(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := demoBag(fs)

	out := diagfmt.BuildDiagnosticsOutput(bag, fs, diagfmt.JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	if bag.Len() != 2 {
		t.Fatal("Max must not touch the bag itself")
	}
}

func TestSummary(t *testing.T) {
	fs := source.NewFileSet()
	bag, _ := demoBag(fs)
	if got := diagfmt.Summary(bag); got != "1 error, 1 warning" {
		t.Errorf("Summary = %q", got)
	}
	if got := diagfmt.Summary(diag.NewBag(1)); got != "" {
		t.Errorf("clean bag summary = %q, want empty", got)
	}
}
