package source_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/source"
)

func TestInternerRoundTrip(t *testing.T) {
	in := source.NewInterner()

	a := in.Intern("main")
	b := in.Intern("println")
	again := in.Intern("main")

	if a != again {
		t.Fatalf("expected stable ID for repeated intern, got %d and %d", a, again)
	}
	if a == b {
		t.Fatalf("distinct strings share ID %d", a)
	}
	if got := in.MustLookup(a); got != "main" {
		t.Fatalf("MustLookup(%d) = %q, want %q", a, got, "main")
	}
	if s, ok := in.Lookup(source.NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID should resolve to empty string, got %q (ok=%v)", s, ok)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte("fn main():\n    pass\n"))

	cases := []struct {
		name string
		off  uint32
		want source.LineCol
	}{
		{"file start", 0, source.LineCol{Line: 1, Col: 1}},
		{"end of header", 9, source.LineCol{Line: 1, Col: 10}},
		{"newline itself", 10, source.LineCol{Line: 1, Col: 11}},
		{"indented body", 15, source.LineCol{Line: 2, Col: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, _ := fs.Resolve(source.Span{File: id, Start: tc.off, End: tc.off})
			if start != tc.want {
				t.Fatalf("Resolve(%d) = %+v, want %+v", tc.off, start, tc.want)
			}
		})
	}
}

func TestGetLine(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ot", []byte("fn main():\n    pass\n"))
	f := fs.Get(id)

	if got := f.GetLine(1); got != "fn main():" {
		t.Fatalf("GetLine(1) = %q", got)
	}
	if got := f.GetLine(2); got != "    pass" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(99); got != "" {
		t.Fatalf("GetLine(99) = %q, want empty", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := source.Span{File: 1, Start: 4, End: 8}
	b := source.Span{File: 1, Start: 6, End: 12}
	c := a.Cover(b)
	if c.Start != 4 || c.End != 12 {
		t.Fatalf("Cover = %+v", c)
	}

	other := source.Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("Cover across files must be a no-op, got %+v", got)
	}
}
