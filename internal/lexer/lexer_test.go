package lexer_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/lexer"
	"github.com/Ottrlang/otterlang/internal/source"
	"github.com/Ottrlang/otterlang/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte(src))
	bag := diag.NewBag(64)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []string {
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind.String())
	}
	return out
}

func TestHelloWorldTokens(t *testing.T) {
	src := "fn main():\n    println(\"Hello\")\n"
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"FN", "IDENT", "LPAREN", "RPAREN", "COLON", "NEWLINE",
		"INDENT", "IDENT", "LPAREN", "STRING", "RPAREN", "NEWLINE",
		"DEDENT", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestIndentDedentBalance(t *testing.T) {
	src := strings.Join([]string{
		"fn f():",
		"    if true:",
		"        pass",
		"    elif false:",
		"        while true:",
		"            pass",
		"    else:",
		"        pass",
		"",
		"fn g():",
		"    pass",
	}, "\n") + "\n"
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	indents, dedents := 0, 0
	for _, tok := range toks {
		switch tok.Kind {
		case token.Indent:
			indents++
		case token.Dedent:
			dedents++
		}
	}
	if indents != dedents {
		t.Fatalf("INDENT/DEDENT imbalance: %d indents, %d dedents", indents, dedents)
	}
	if indents == 0 {
		t.Fatal("expected at least one INDENT")
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("stream must end with EOF")
	}
}

func TestMissingTrailingNewline(t *testing.T) {
	toks, bag := lex(t, "let x = 1")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{"LET", "IDENT", "ASSIGN", "INT", "NEWLINE", "EOF"}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestBlankAndCommentLines(t *testing.T) {
	src := strings.Join([]string{
		"fn f():",
		"",
		"    # a comment at some other depth",
		"        ",
		"    pass  # trailing comment",
		"",
	}, "\n")
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"FN", "IDENT", "LPAREN", "RPAREN", "COLON", "NEWLINE",
		"INDENT", "PASS", "NEWLINE",
		"DEDENT", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTabIndentIsError(t *testing.T) {
	_, bag := lex(t, "fn f():\n\tpass\n")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexTabIndent {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1002 for tab in indentation")
	}
}

func TestInconsistentDedent(t *testing.T) {
	src := "if true:\n    pass\n  pass\n"
	_, bag := lex(t, src)
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexInconsistentIndent {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1003 for dedent to a width not on the stack")
	}
}

func TestNewlineSuppressedInsideBrackets(t *testing.T) {
	src := "let xs = [1,\n    2,\n    3]\n"
	toks, bag := lex(t, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"LET", "IDENT", "ASSIGN", "LBRACKET",
		"INT", "COMMA", "INT", "COMMA", "INT",
		"RBRACKET", "NEWLINE", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"0", token.IntLit},
		{"1_000_000", token.IntLit},
		{"0xFF", token.IntLit},
		{"0x_dead_beef", token.IntLit},
		{"0b1010", token.IntLit},
		{"3.14", token.FloatLit},
		{"10.0", token.FloatLit},
		{"1e9", token.FloatLit},
		{"6.02e23", token.FloatLit},
		{"1.5e-3", token.FloatLit},
		{"2E+8", token.FloatLit},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			toks, bag := lex(t, tc.src+"\n")
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %+v", bag.Items())
			}
			if toks[0].Kind != tc.kind {
				t.Fatalf("got %v, want %v", toks[0].Kind, tc.kind)
			}
			if toks[0].Text != tc.src {
				t.Fatalf("got text %q, want %q", toks[0].Text, tc.src)
			}
		})
	}
}

func TestBadNumberLiterals(t *testing.T) {
	for _, src := range []string{"0x", "0b", "1_", "0b12", "1abc"} {
		t.Run(src, func(t *testing.T) {
			_, bag := lex(t, src+"\n")
			found := false
			for _, d := range bag.Items() {
				if d.Code == diag.LexBadNumber {
					found = true
				}
			}
			if !found {
				t.Fatal("expected LEX1006")
			}
		})
	}
}

func TestRangeDoesNotEatFloat(t *testing.T) {
	toks, bag := lex(t, "0..10\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{"INT", "DOTDOT", "INT", "NEWLINE", "EOF"}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}

	toks, _ = lex(t, "0..=10\n")
	want = []string{"INT", "DOTDOTEQ", "INT", "NEWLINE", "EOF"}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestStringLiterals(t *testing.T) {
	toks, bag := lex(t, "\"a\\n'b'\" 'c\"d\"'\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{"STRING", "STRING", "NEWLINE", "EOF"}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
	if toks[0].Text != "\"a\\n'b'\"" {
		t.Fatalf("string text keeps quotes and raw escapes, got %q", toks[0].Text)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, bag := lex(t, "let s = \"oops\nlet t = 1\n")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexUnterminatedString {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1004")
	}
}

func TestBadEscape(t *testing.T) {
	_, bag := lex(t, "\"a\\qb\"\n")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexBadEscape {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1007")
	}
}

func TestFStringFraming(t *testing.T) {
	toks, bag := lex(t, "f\"Hi {name}, you are {age + 1}!\"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"FSTRING_START",
		"FSTRING_TEXT",
		"FSTRING_EXPR_START", "IDENT", "FSTRING_EXPR_END",
		"FSTRING_TEXT",
		"FSTRING_EXPR_START", "IDENT", "PLUS", "INT", "FSTRING_EXPR_END",
		"FSTRING_TEXT",
		"FSTRING_END",
		"NEWLINE", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
	if toks[1].Text != "Hi " {
		t.Fatalf("first text chunk = %q, want %q", toks[1].Text, "Hi ")
	}
}

func TestFStringEscapedBraces(t *testing.T) {
	toks, bag := lex(t, "f\"{{literal}} {x}\"\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"FSTRING_START", "FSTRING_TEXT",
		"FSTRING_EXPR_START", "IDENT", "FSTRING_EXPR_END",
		"FSTRING_END", "NEWLINE", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
	if toks[1].Text != "{{literal}} " {
		t.Fatalf("text chunk keeps raw doubled braces, got %q", toks[1].Text)
	}
}

func TestFStringUnterminatedPlaceholder(t *testing.T) {
	_, bag := lex(t, "f\"value: {x\n")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexUnterminatedFString {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1005")
	}
}

func TestUnknownCharacter(t *testing.T) {
	toks, bag := lex(t, "let x = 1 @ 2\n")
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.LexUnknownChar {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LEX1001")
	}
	// The stream keeps going past the bad byte.
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatal("stream must still end with EOF")
	}
}

func TestOperatorTokens(t *testing.T) {
	toks, bag := lex(t, "a += b -> c <= d != e\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		"IDENT", "PLUS_ASSIGN", "IDENT", "ARROW", "IDENT",
		"LTEQ", "IDENT", "BANGEQ", "IDENT", "NEWLINE", "EOF",
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestSpansCoverSource(t *testing.T) {
	src := "fn main():\n    pass\n"
	toks, _ := lex(t, src)
	for _, tok := range toks {
		if tok.Span.End < tok.Span.Start {
			t.Fatalf("inverted span on %v", tok.Kind)
		}
		if int(tok.Span.End) > len(src) {
			t.Fatalf("span of %v exceeds file", tok.Kind)
		}
		if !tok.IsLayout() && tok.Kind != token.EOF && tok.Text != src[tok.Span.Start:tok.Span.End] {
			t.Fatalf("%v text %q does not match span slice %q", tok.Kind, tok.Text, src[tok.Span.Start:tok.Span.End])
		}
	}
}
