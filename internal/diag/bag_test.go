package diag_test

import (
	"testing"

	"github.com/Ottrlang/otterlang/internal/diag"
	"github.com/Ottrlang/otterlang/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 0, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	bag := diag.NewBag(2)

	if !bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 1), "one")) {
		t.Fatal("first Add should succeed")
	}
	if !bag.Add(diag.NewError(diag.SynUnexpectedToken, span(1, 2), "two")) {
		t.Fatal("second Add should succeed")
	}
	if bag.Add(diag.NewError(diag.SynUnexpectedToken, span(2, 3), "three")) {
		t.Fatal("Add past the limit should fail")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.TypeMismatch, span(5, 6), "later"))
	bag.Add(diag.NewError(diag.LexUnknownChar, span(0, 1), "earlier"))
	bag.Add(diag.New(diag.SevWarning, diag.TypeMismatch, span(0, 1), "same offset, lower severity"))

	bag.Sort()
	items := bag.Items()
	if items[0].Code != diag.LexUnknownChar {
		t.Fatalf("items[0].Code = %v", items[0].Code)
	}
	if items[1].Severity != diag.SevWarning || items[1].Primary.Start != 0 {
		t.Fatalf("items[1] = %+v", items[1])
	}
	if items[2].Primary.Start != 5 {
		t.Fatalf("items[2] = %+v", items[2])
	}
}

func TestBagDedup(t *testing.T) {
	bag := diag.NewBag(10)
	d := diag.NewError(diag.NameUndefined, span(3, 7), "undefined symbol `x`")
	bag.Add(d)
	bag.Add(d)
	bag.Dedup()
	if bag.Len() != 1 {
		t.Fatalf("Len after Dedup = %d, want 1", bag.Len())
	}
}

func TestHasErrorsAndInternal(t *testing.T) {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.LexInfo, span(0, 0), "info"))
	if bag.HasErrors() {
		t.Fatal("info-only bag reports errors")
	}
	bag.Add(diag.New(diag.SevInternal, diag.IceUnresolvedTypeVar, span(0, 0), "ice"))
	if !bag.HasErrors() || !bag.HasInternal() {
		t.Fatal("internal diagnostic must count as error and internal")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[diag.Code]string{
		diag.LexTabIndent:           "LEX1002",
		diag.SynDefaultParamOrder:   "SYN2010",
		diag.NameCircularImport:     "NAM3005",
		diag.TypeNonexhaustiveMatch: "TYP4007",
		diag.IceUnresolvedTypeVar:   "ICE9001",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if !diag.IceDecisionTree.IsInternal() || diag.TypeMismatch.IsInternal() {
		t.Fatal("IsInternal misclassifies codes")
	}
}
