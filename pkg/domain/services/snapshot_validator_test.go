package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

func TestSnapshotValidator_CleanSnapshot(t *testing.T) {
	tender := &entities.Tender{ID: "T1", Items: []entities.TenderLineItem{lineItem("A", 5, 10)}}
	deliveries := []*entities.Delivery{delivery(1, false, received("A", 5))}

	result := NewSnapshotValidator().ValidateSnapshot(tender, deliveries)
	assert.False(t, result.HasErrors())
	assert.Empty(t, result.Warnings)
}

func TestSnapshotValidator_Errors(t *testing.T) {
	tender := &entities.Tender{ID: "T1", Items: []entities.TenderLineItem{
		lineItem("A", 5, 10),
		lineItem("A", 3, 10),
	}}
	foreign := delivery(2, false, received("A", 1))
	foreign.TenderID = "T2"
	deliveries := []*entities.Delivery{
		delivery(1, false, received("A", -2)),
		delivery(1, false, received("A", 1)),
		foreign,
	}

	result := NewSnapshotValidator().ValidateSnapshot(tender, deliveries)
	require.True(t, result.HasErrors())
	assert.Equal(t, []entities.ItemMasterID{"A"}, result.DuplicateItems)
	assert.Equal(t, []string{"DEL-2026-000001"}, result.DuplicateDeliveryNumbers)
	assert.Contains(t, result.Errors, "delivery DEL-2026-000002 belongs to tender T2, not T1")
	assert.Contains(t, result.Errors, "delivery DEL-2026-000001 has negative quantity -2 for item A")
}

func TestSnapshotValidator_OrphanedItemsAreWarnings(t *testing.T) {
	tender := &entities.Tender{ID: "T1", Items: []entities.TenderLineItem{lineItem("A", 5, 10)}}
	deliveries := []*entities.Delivery{delivery(1, false, received("A", 2), received("GHOST", 7))}

	result := NewSnapshotValidator().ValidateSnapshot(tender, deliveries)
	assert.False(t, result.HasErrors())
	require.Len(t, result.OrphanedItems, 1)
	assert.Equal(t, OrphanedDeliveryItem{DeliveryNumber: "DEL-2026-000001", ItemMasterID: "GHOST", Quantity: 7}, result.OrphanedItems[0])
	assert.Equal(t,
		"delivery DEL-2026-000001 references item GHOST which is not on the tender (qty 7 excluded from valuation)",
		result.Warnings[0])
}
