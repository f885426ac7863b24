package services

import (
	"fmt"
	"strings"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// ReceiptPolicy decides which deliveries count toward received quantities
type ReceiptPolicy int

const (
	// CountAllDeliveries sums finalized and pending deliveries alike
	CountAllDeliveries ReceiptPolicy = iota
	// CountFinalizedOnly sums only deliveries confirmed into inventory
	CountFinalizedOnly
)

// String method for ReceiptPolicy enum
func (p ReceiptPolicy) String() string {
	switch p {
	case CountAllDeliveries:
		return "all"
	case CountFinalizedOnly:
		return "finalized"
	default:
		return "unknown"
	}
}

// MarshalText renders the policy as its string form
func (p ReceiptPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseReceiptPolicy converts "all" or "finalized" into a ReceiptPolicy
func ParseReceiptPolicy(s string) (ReceiptPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CountAllDeliveries, nil
	case "finalized":
		return CountFinalizedOnly, nil
	default:
		return CountAllDeliveries, fmt.Errorf("invalid receipt policy: %s (expected: all or finalized)", s)
	}
}

// Ledger holds received quantities per item master id for one snapshot of
// deliveries. It is read-only after construction.
type Ledger struct {
	policy   ReceiptPolicy
	received map[entities.ItemMasterID]entities.Quantity
}

// NewLedger aggregates delivered quantities across every delivery the
// policy admits
func NewLedger(deliveries []*entities.Delivery, policy ReceiptPolicy) *Ledger {
	l := &Ledger{
		policy:   policy,
		received: make(map[entities.ItemMasterID]entities.Quantity),
	}
	for _, d := range deliveries {
		if d == nil {
			continue
		}
		if policy == CountFinalizedOnly && !d.IsFinalized {
			continue
		}
		for _, item := range d.Items {
			l.received[item.ItemMasterID] += item.DeliveryQuantity
		}
	}
	return l
}

// Policy returns the receipt policy the ledger was built with
func (l *Ledger) Policy() ReceiptPolicy {
	return l.policy
}

// Received returns the total delivered quantity for an item master id
func (l *Ledger) Received(id entities.ItemMasterID) entities.Quantity {
	return l.received[id]
}

// Outstanding returns what is still owed for a line item, clamped at zero
func (l *Ledger) Outstanding(item *entities.TenderLineItem) entities.Quantity {
	remaining := item.OrderedQuantity - l.Received(item.ItemMasterID)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ReceivedQuantity sums deliveryQuantity for an item across all deliveries,
// finalized or not
func ReceivedQuantity(id entities.ItemMasterID, deliveries []*entities.Delivery) entities.Quantity {
	return NewLedger(deliveries, CountAllDeliveries).Received(id)
}

// OutstandingQuantity is max(0, ordered - received) across all deliveries
func OutstandingQuantity(item *entities.TenderLineItem, deliveries []*entities.Delivery) entities.Quantity {
	return NewLedger(deliveries, CountAllDeliveries).Outstanding(item)
}
