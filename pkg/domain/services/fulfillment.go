package services

import (
	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// ClassifyFulfillment maps received against ordered quantity. Equality is
// checked first, so an item ordered at zero with nothing received is complete.
func ClassifyFulfillment(received, ordered entities.Quantity) entities.FulfillmentStatus {
	switch {
	case received == ordered:
		return entities.FulfillmentComplete
	case received > ordered:
		return entities.FulfillmentExcess
	case received == 0:
		return entities.FulfillmentPending
	default:
		return entities.FulfillmentPartial
	}
}

// ItemFulfillment classifies a tender line item against the ledger
func ItemFulfillment(item *entities.TenderLineItem, ledger *Ledger) entities.FulfillmentStatus {
	return ClassifyFulfillment(ledger.Received(item.ItemMasterID), item.OrderedQuantity)
}

// TenderSatisfied reports whether every line item has received at least
// its ordered quantity
func TenderSatisfied(items []entities.TenderLineItem, ledger *Ledger) bool {
	for i := range items {
		if ledger.Received(items[i].ItemMasterID) < items[i].OrderedQuantity {
			return false
		}
	}
	return true
}

// ClassifyDelivery derives the delivery badge. Completeness is judged
// tender-wide, not from this delivery's own lines.
func ClassifyDelivery(delivery *entities.Delivery, items []entities.TenderLineItem, ledger *Ledger) entities.DeliveryStatus {
	if delivery.IsFinalized {
		return entities.DeliveryFinalized
	}
	if TenderSatisfied(items, ledger) {
		return entities.DeliveryComplete
	}
	return entities.DeliveryPending
}

// ProgressPercent is received/ordered*100, uncapped. Zero ordered counts as done.
func ProgressPercent(received, ordered entities.Quantity) decimal.Decimal {
	if ordered <= 0 {
		return hundred
	}
	return decimal.NewFromInt(int64(received)).Mul(hundred).Div(decimal.NewFromInt(int64(ordered)))
}

// OverallProgressPercent is the share of the total ordered quantity already
// received, counting each item at most up to its ordered quantity
func OverallProgressPercent(items []entities.TenderLineItem, ledger *Ledger) decimal.Decimal {
	var ordered, received entities.Quantity
	for i := range items {
		item := &items[i]
		ordered += item.OrderedQuantity
		got := ledger.Received(item.ItemMasterID)
		if got > item.OrderedQuantity {
			got = item.OrderedQuantity
		}
		received += got
	}
	return ProgressPercent(received, ordered)
}
