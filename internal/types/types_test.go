package types_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/types"
)

func TestInternDeduplicates(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()

	if in.List(b.Int) != in.List(b.Int) {
		t.Fatal("list[int] interned twice")
	}
	if in.Dict(b.Str, b.Int) != in.Dict(b.Str, b.Int) {
		t.Fatal("dict[str, int] interned twice")
	}
	if in.Dict(b.Str, b.Int) == in.Dict(b.Int, b.Str) {
		t.Fatal("dict key/value order ignored")
	}
	if in.Fn([]types.TypeID{b.Int, b.Int}, b.Int) != in.Fn([]types.TypeID{b.Int, b.Int}, b.Int) {
		t.Fatal("fn type interned twice")
	}
	if in.Struct(7, []types.TypeID{b.Int}) != in.Struct(7, []types.TypeID{b.Int}) {
		t.Fatal("struct instance interned twice")
	}
	if in.Struct(7, []types.TypeID{b.Int}) == in.Struct(7, []types.TypeID{b.Str}) {
		t.Fatal("struct instances with different args collided")
	}
}

func TestVarsAreUnique(t *testing.T) {
	in := types.NewInterner()
	if in.NewVar() == in.NewVar() {
		t.Fatal("fresh variables must not deduplicate")
	}
}

func TestSubstApply(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	s := types.NewSubst()

	v := in.NewVar()
	listOfV := in.List(v)
	s.Bind(v, b.Int)

	if got := s.Apply(in, listOfV); got != in.List(b.Int) {
		t.Fatalf("apply produced %v, want list[int]", got)
	}
}

func TestSubstWalkChains(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	s := types.NewSubst()

	v1 := in.NewVar()
	v2 := in.NewVar()
	s.Bind(v1, v2)
	s.Bind(v2, b.Str)

	if got := s.Walk(in, v1); got != b.Str {
		t.Fatalf("walk through chain gave %v, want str", got)
	}
}

func TestOccursCheck(t *testing.T) {
	in := types.NewInterner()
	s := types.NewSubst()

	v := in.NewVar()
	if !s.Occurs(in, v, in.List(v)) {
		t.Fatal("v occurs in list[v]")
	}
	if !s.Occurs(in, v, in.Fn([]types.TypeID{v}, in.Builtins().Unit)) {
		t.Fatal("v occurs in fn(v)")
	}
	if s.Occurs(in, v, in.Builtins().Int) {
		t.Fatal("v does not occur in int")
	}
}

func TestHasFreeVars(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	s := types.NewSubst()

	v := in.NewVar()
	if !s.HasFreeVars(in, in.Option(v)) {
		t.Fatal("Option[v] has a free variable")
	}
	s.Bind(v, b.Int)
	if s.HasFreeVars(in, in.Option(v)) {
		t.Fatal("Option[v] is ground once v is bound")
	}
	if s.HasFreeVars(in, in.List(b.Str)) {
		t.Fatal("list[str] has no variables")
	}
}

func TestFormat(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	namer := func(decl uint32) string { return "Point" }

	cases := []struct {
		id   types.TypeID
		want string
	}{
		{b.Int, "int"},
		{in.List(b.Int), "list[int]"},
		{in.Dict(b.Str, b.Float), "dict[str, float]"},
		{in.Option(b.Int), "Option[int]"},
		{in.Fn([]types.TypeID{b.Int, b.Int}, b.Int), "fn(int, int) -> int"},
		{in.Fn(nil, b.Unit), "fn()"},
		{in.Struct(1, nil), "Point"},
		{in.Struct(1, []types.TypeID{b.Str}), "Point[str]"},
	}
	for _, tc := range cases {
		if got := in.Format(tc.id, namer); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
