package entities

import "github.com/shopspring/decimal"

// Draft layers uncommitted edits over a committed snapshot. Reads see the
// edit when one exists and the committed value otherwise.
type Draft[K comparable, V any] struct {
	committed map[K]V
	edits     map[K]V
}

// NewDraft creates a Draft over a copy of the committed values
func NewDraft[K comparable, V any](committed map[K]V) *Draft[K, V] {
	c := make(map[K]V, len(committed))
	for k, v := range committed {
		c[k] = v
	}
	return &Draft[K, V]{
		committed: c,
		edits:     make(map[K]V),
	}
}

// Set records an uncommitted edit
func (d *Draft[K, V]) Set(key K, value V) {
	d.edits[key] = value
}

// Get returns the edited value if present, else the committed one
func (d *Draft[K, V]) Get(key K) (V, bool) {
	if v, ok := d.edits[key]; ok {
		return v, true
	}
	v, ok := d.committed[key]
	return v, ok
}

// Edit returns only the uncommitted value for key. A nil Draft has no edits.
func (d *Draft[K, V]) Edit(key K) (V, bool) {
	if d == nil {
		var zero V
		return zero, false
	}
	v, ok := d.edits[key]
	return v, ok
}

// Revert drops the uncommitted edit for a single key
func (d *Draft[K, V]) Revert(key K) {
	delete(d.edits, key)
}

// Dirty reports whether any edit is outstanding
func (d *Draft[K, V]) Dirty() bool {
	return len(d.edits) > 0
}

// Edits returns a copy of the outstanding edits
func (d *Draft[K, V]) Edits() map[K]V {
	out := make(map[K]V, len(d.edits))
	for k, v := range d.edits {
		out[k] = v
	}
	return out
}

// Commit folds the edits into the committed snapshot, clears them and
// returns what was applied.
func (d *Draft[K, V]) Commit() map[K]V {
	applied := d.Edits()
	for k, v := range d.edits {
		d.committed[k] = v
	}
	d.edits = make(map[K]V)
	return applied
}

// Discard drops every uncommitted edit
func (d *Draft[K, V]) Discard() {
	d.edits = make(map[K]V)
}

// PriceDraft holds in-progress unit price overrides keyed by item master id
type PriceDraft = Draft[ItemMasterID, decimal.Decimal]

// NewPriceDraft seeds a PriceDraft from the stored actual prices of a tender
func NewPriceDraft(t *Tender) *PriceDraft {
	committed := make(map[ItemMasterID]decimal.Decimal, len(t.Items))
	for _, item := range t.Items {
		if item.ActualUnitPrice.Valid {
			committed[item.ItemMasterID] = item.ActualUnitPrice.Decimal
		}
	}
	return NewDraft(committed)
}
