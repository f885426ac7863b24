package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDraft_EditShadowsCommitted(t *testing.T) {
	d := NewDraft(map[string]int{"a": 1})

	d.Set("a", 5)
	if v, _ := d.Get("a"); v != 5 {
		t.Errorf("Expected edited value 5, got %d", v)
	}
	if !d.Dirty() {
		t.Error("Expected draft to be dirty")
	}

	d.Discard()
	if v, _ := d.Get("a"); v != 1 {
		t.Errorf("Expected committed value 1 after discard, got %d", v)
	}
	if d.Dirty() {
		t.Error("Expected draft to be clean after discard")
	}
}

func TestDraft_Commit(t *testing.T) {
	d := NewDraft(map[string]int{"a": 1})
	d.Set("b", 2)

	applied := d.Commit()
	if len(applied) != 1 || applied["b"] != 2 {
		t.Errorf("Expected commit to return the single edit, got %v", applied)
	}
	if _, ok := d.Edit("b"); ok {
		t.Error("Expected no outstanding edit after commit")
	}
	if v, ok := d.Get("b"); !ok || v != 2 {
		t.Errorf("Expected committed value 2, got %d (%v)", v, ok)
	}
}

func TestDraft_DoesNotAliasInput(t *testing.T) {
	src := map[string]int{"a": 1}
	d := NewDraft(src)
	d.Set("a", 9)
	d.Commit()
	if src["a"] != 1 {
		t.Errorf("Expected source map untouched, got %d", src["a"])
	}
}

func TestNewPriceDraft_SeedsStoredActualPrices(t *testing.T) {
	tender := &Tender{
		ID: "T1",
		Items: []TenderLineItem{
			{ItemMasterID: "A", ActualUnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(1200))},
			{ItemMasterID: "B"},
		},
	}
	d := NewPriceDraft(tender)

	if v, ok := d.Get("A"); !ok || !v.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected stored price 1200 for A, got %s (%v)", v, ok)
	}
	if _, ok := d.Get("B"); ok {
		t.Error("Expected no committed price for B")
	}
	if _, ok := d.Edit("A"); ok {
		t.Error("Expected stored prices not to count as edits")
	}
}

func TestDraft_RevertSingleKey(t *testing.T) {
	d := NewDraft(map[string]int{"a": 1, "b": 2})
	d.Set("a", 10)
	d.Set("b", 20)

	d.Revert("a")

	if v, _ := d.Get("a"); v != 1 {
		t.Errorf("Expected committed value 1 after revert, got %d", v)
	}
	if v, _ := d.Get("b"); v != 20 {
		t.Errorf("Expected edit on b to survive, got %d", v)
	}
	if edits := d.Edits(); len(edits) != 1 {
		t.Errorf("Expected one outstanding edit, got %v", edits)
	}

	d.Revert("missing")
	if !d.Dirty() {
		t.Error("Expected reverting an unknown key to leave other edits alone")
	}
}
