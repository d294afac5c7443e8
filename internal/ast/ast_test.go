package ast_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/ast"
	"github.com/Ottrlang/otterlang/internal/source"
)

func TestArenaIDsAreOneBased(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}

	first := b.Exprs.NewIdent(sp, 1)
	second := b.Exprs.NewIdent(sp, 2)
	if first != 1 || second != 2 {
		t.Fatalf("expected IDs 1, 2; got %d, %d", first, second)
	}
	if b.Exprs.Get(ast.NoExprID) != nil {
		t.Fatal("ID 0 must resolve to nil")
	}
}

func TestPayloadAccessorsCheckKind(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}

	id := b.Exprs.NewBinary(sp, ast.BinAdd, b.Exprs.NewIdent(sp, 1), b.Exprs.NewIdent(sp, 2))
	if _, ok := b.Exprs.Binary(id); !ok {
		t.Fatal("Binary accessor must succeed on a binary expr")
	}
	if _, ok := b.Exprs.Call(id); ok {
		t.Fatal("Call accessor must fail on a binary expr")
	}

	bin, _ := b.Exprs.Binary(id)
	if bin.Op != ast.BinAdd {
		t.Fatalf("op = %v, want BinAdd", bin.Op)
	}
}

func TestConstructorsCopySlices(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}

	elems := []ast.ExprID{b.Exprs.NewIdent(sp, 1)}
	id := b.Exprs.NewList(sp, elems)
	elems[0] = ast.NoExprID

	list, _ := b.Exprs.List(id)
	if list.Elems[0] == ast.NoExprID {
		t.Fatal("list payload must own a copy of the element slice")
	}
}

func TestFileItemOrder(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{})
	sp := source.Span{}

	file := b.NewFile(sp, 0)
	a := b.Items.NewUse(sp, ast.ItemUseData{Path: []source.StringID{1}})
	c := b.Items.NewFn(sp, ast.ItemFnData{Name: 2})
	b.PushItem(file, a)
	b.PushItem(file, c)

	items := b.Files.Get(file).Items
	if len(items) != 2 || items[0] != a || items[1] != c {
		t.Fatalf("items out of order: %v", items)
	}
}
