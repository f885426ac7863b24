package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// ValuationMode selects which quantity weights the actual line total
type ValuationMode int

const (
	// ReceivedWeighted values only what has physically arrived
	ReceivedWeighted ValuationMode = iota
	// OrderedWeighted values the full order regardless of delivery progress
	OrderedWeighted
)

// String method for ValuationMode enum
func (m ValuationMode) String() string {
	switch m {
	case ReceivedWeighted:
		return "received"
	case OrderedWeighted:
		return "ordered"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode as its string form
func (m ValuationMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseValuationMode converts "received" or "ordered" into a ValuationMode
func ParseValuationMode(s string) (ValuationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "received", "received-weighted":
		return ReceivedWeighted, nil
	case "ordered", "ordered-weighted":
		return OrderedWeighted, nil
	default:
		return ReceivedWeighted, fmt.Errorf("invalid valuation mode: %s (expected: received or ordered)", s)
	}
}

// PriceOverrides supplies uncommitted unit price edits. *entities.PriceDraft
// satisfies it.
type PriceOverrides interface {
	Edit(id entities.ItemMasterID) (decimal.Decimal, bool)
}

// Variance is actual minus estimated. Positive means over budget.
type Variance struct {
	Absolute decimal.Decimal
	Percent  decimal.Decimal
}

// EffectiveUnitPrice resolves an uncommitted edit, then the stored actual
// price, then the estimate
func EffectiveUnitPrice(item *entities.TenderLineItem, overrides PriceOverrides) decimal.Decimal {
	if overrides != nil {
		if price, ok := overrides.Edit(item.ItemMasterID); ok {
			return price
		}
	}
	if item.ActualUnitPrice.Valid {
		return item.ActualUnitPrice.Decimal
	}
	return item.EstimatedUnitPrice
}

// EstimatedLineTotal is estimated unit price times ordered quantity
func EstimatedLineTotal(item *entities.TenderLineItem) decimal.Decimal {
	return item.EstimatedUnitPrice.Mul(quantity(item.OrderedQuantity))
}

// ActualLineTotal prices a line at its effective unit price, weighted by
// received or ordered quantity depending on mode
func ActualLineTotal(item *entities.TenderLineItem, ledger *Ledger, mode ValuationMode, overrides PriceOverrides) decimal.Decimal {
	price := EffectiveUnitPrice(item, overrides)
	switch mode {
	case OrderedWeighted:
		return price.Mul(quantity(item.OrderedQuantity))
	default:
		return price.Mul(quantity(ledger.Received(item.ItemMasterID)))
	}
}

// TenderEstimatedValue sums estimated line totals
func TenderEstimatedValue(items []entities.TenderLineItem) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(EstimatedLineTotal(&items[i]))
	}
	return total
}

// TenderActualValue sums actual line totals in the selected mode. Delivery
// lines with no matching tender item contribute nothing.
func TenderActualValue(items []entities.TenderLineItem, ledger *Ledger, mode ValuationMode, overrides PriceOverrides) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(ActualLineTotal(&items[i], ledger, mode, overrides))
	}
	return total
}

// ComputeVariance returns actual-estimated and its share of the estimate.
// The percent is zero when the estimate is not positive.
func ComputeVariance(estimated, actual decimal.Decimal) Variance {
	absolute := actual.Sub(estimated)
	percent := decimal.Zero
	if estimated.IsPositive() {
		percent = absolute.Mul(hundred).Div(estimated)
	}
	return Variance{Absolute: absolute, Percent: percent}
}

// PendingValue prices the outstanding quantity of every item at its
// effective unit price
func PendingValue(items []entities.TenderLineItem, ledger *Ledger, overrides PriceOverrides) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		item := &items[i]
		total = total.Add(EffectiveUnitPrice(item, overrides).Mul(quantity(ledger.Outstanding(item))))
	}
	return total
}

func quantity(q entities.Quantity) decimal.Decimal {
	return decimal.NewFromInt(int64(q))
}
