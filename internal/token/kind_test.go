package token_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/token"
)

func TestKeywordLookup(t *testing.T) {
	cases := []struct {
		ident string
		kind  token.Kind
		ok    bool
	}{
		{"fn", token.KwFn, true},
		{"match", token.KwMatch, true},
		{"None", token.KwNone, true},
		{"none", token.Invalid, false}, // keywords are case-sensitive
		{"spawn", token.KwSpawn, true},
		{"main", token.Invalid, false},
	}
	for _, tc := range cases {
		kind, ok := token.LookupKeyword(tc.ident)
		if ok != tc.ok || (ok && kind != tc.kind) {
			t.Errorf("LookupKeyword(%q) = (%v, %v), want (%v, %v)", tc.ident, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestKindNames(t *testing.T) {
	if token.Indent.String() != "INDENT" || token.Dedent.String() != "DEDENT" {
		t.Fatal("layout token names changed; token dumps depend on them")
	}
	if token.KwFn.String() != "FN" || token.StringLit.String() != "STRING" {
		t.Fatal("token dump names changed")
	}
	if token.Kind(255).String() != "INVALID" {
		t.Fatal("out-of-range kinds must print as INVALID")
	}
}

func TestTokenClassifiers(t *testing.T) {
	if !(token.Token{Kind: token.KwTrue}).IsLiteral() {
		t.Fatal("true is a literal")
	}
	if !(token.Token{Kind: token.KwMatch}).IsKeyword() {
		t.Fatal("match is a keyword")
	}
	if !(token.Token{Kind: token.Newline}).IsLayout() {
		t.Fatal("NEWLINE is layout")
	}
	if (token.Token{Kind: token.Ident}).IsKeyword() {
		t.Fatal("ident is not a keyword")
	}
}
