package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricingStatus reports whether actual prices have been confirmed for a tender
type PricingStatus int

const (
	PricingPending PricingStatus = iota
	PricingConfirmed
)

// String method for PricingStatus enum
func (s PricingStatus) String() string {
	switch s {
	case PricingPending:
		return "Pending"
	case PricingConfirmed:
		return "Confirmed"
	default:
		return "Unknown"
	}
}

// TenderLineItem is a single ordered product within a tender
type TenderLineItem struct {
	ID                 string
	ItemMasterID       ItemMasterID
	Nomenclature       string
	OrderedQuantity    Quantity
	EstimatedUnitPrice decimal.Decimal
	// ActualUnitPrice is invalid until pricing is confirmed.
	ActualUnitPrice decimal.NullDecimal
}

// NewTenderLineItem creates a validated TenderLineItem
func NewTenderLineItem(
	id string,
	itemMasterID ItemMasterID,
	nomenclature string,
	orderedQty Quantity,
	estimatedUnitPrice decimal.Decimal,
	actualUnitPrice decimal.NullDecimal,
) (*TenderLineItem, error) {
	if string(itemMasterID) == "" {
		return nil, fmt.Errorf("item master id cannot be empty")
	}
	if orderedQty < 0 {
		return nil, fmt.Errorf("ordered quantity cannot be negative, got %d", orderedQty)
	}
	if estimatedUnitPrice.IsNegative() {
		return nil, fmt.Errorf("estimated unit price cannot be negative, got %s", estimatedUnitPrice)
	}
	if actualUnitPrice.Valid && actualUnitPrice.Decimal.IsNegative() {
		return nil, fmt.Errorf("actual unit price cannot be negative, got %s", actualUnitPrice.Decimal)
	}

	return &TenderLineItem{
		ID:                 id,
		ItemMasterID:       itemMasterID,
		Nomenclature:       nomenclature,
		OrderedQuantity:    orderedQty,
		EstimatedUnitPrice: estimatedUnitPrice,
		ActualUnitPrice:    actualUnitPrice,
	}, nil
}

// Tender is a procurement contract whose line items are fulfilled by deliveries
type Tender struct {
	ID                 string
	ReferenceNumber    string
	Title              string
	Items              []TenderLineItem
	PricingConfirmed   bool
	PricingConfirmedAt *time.Time
}

// NewTender creates a validated Tender. Item master ids must be unique.
func NewTender(id, referenceNumber, title string, items []TenderLineItem) (*Tender, error) {
	if id == "" {
		return nil, fmt.Errorf("tender id cannot be empty")
	}
	seen := make(map[ItemMasterID]bool, len(items))
	for _, item := range items {
		if seen[item.ItemMasterID] {
			return nil, fmt.Errorf("duplicate line item for item master %s", item.ItemMasterID)
		}
		seen[item.ItemMasterID] = true
	}

	return &Tender{
		ID:              id,
		ReferenceNumber: referenceNumber,
		Title:           title,
		Items:           items,
	}, nil
}

// PricingStatus derives the pricing badge for the tender
func (t *Tender) PricingStatus() PricingStatus {
	if t.PricingConfirmed {
		return PricingConfirmed
	}
	return PricingPending
}

// FindItem returns the line item for an item master id
func (t *Tender) FindItem(id ItemMasterID) (*TenderLineItem, bool) {
	for i := range t.Items {
		if t.Items[i].ItemMasterID == id {
			return &t.Items[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the tender.
func (t *Tender) Clone() *Tender {
	c := *t
	c.Items = append([]TenderLineItem(nil), t.Items...)
	if t.PricingConfirmedAt != nil {
		at := *t.PricingConfirmedAt
		c.PricingConfirmedAt = &at
	}
	return &c
}

// ConfirmPricing sets actual unit prices for the given items and marks the
// tender's pricing confirmed. Items not named keep their current actual price.
func (t *Tender) ConfirmPricing(prices map[ItemMasterID]decimal.Decimal, at time.Time) error {
	for id, price := range prices {
		if price.IsNegative() {
			return fmt.Errorf("actual unit price cannot be negative, got %s for item %s", price, id)
		}
		if _, ok := t.FindItem(id); !ok {
			return fmt.Errorf("item %s not found in tender %s", id, t.ID)
		}
	}
	for id, price := range prices {
		item, _ := t.FindItem(id)
		item.ActualUnitPrice = decimal.NewNullDecimal(price)
	}
	t.PricingConfirmed = true
	t.PricingConfirmedAt = &at
	return nil
}
