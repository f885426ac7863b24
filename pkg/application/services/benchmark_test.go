package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
)

// setupLargeTender builds a tender with itemCount lines and deliveryCount
// deliveries, each delivering one unit of every item
func setupLargeTender(b *testing.B, itemCount, deliveryCount int) (*entities.Tender, []*entities.Delivery) {
	b.Helper()
	items := make([]entities.TenderLineItem, itemCount)
	for i := range items {
		items[i] = entities.TenderLineItem{
			ID:                 fmt.Sprintf("L%d", i),
			ItemMasterID:       entities.ItemMasterID(fmt.Sprintf("ITEM_%04d", i)),
			OrderedQuantity:    entities.Quantity(deliveryCount),
			EstimatedUnitPrice: decimal.NewFromInt(int64(100 + i)),
		}
	}
	tender, err := entities.NewTender("BENCH", "", "", items)
	if err != nil {
		b.Fatalf("NewTender failed: %v", err)
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	deliveries := make([]*entities.Delivery, deliveryCount)
	for d := range deliveries {
		delivery, err := entities.NewDelivery(fmt.Sprintf("d%d", d), "BENCH", fmt.Sprintf("DEL-2026-%06d", d+1), start.AddDate(0, 0, d))
		if err != nil {
			b.Fatalf("NewDelivery failed: %v", err)
		}
		for _, item := range items {
			if err := delivery.AddItem(entities.DeliveryLineItem{ItemMasterID: item.ItemMasterID, DeliveryQuantity: 1}); err != nil {
				b.Fatalf("AddItem failed: %v", err)
			}
		}
		deliveries[d] = delivery
	}
	return tender, deliveries
}

func BenchmarkBuildResult_Small(b *testing.B) {
	tender, deliveries := setupLargeTender(b, 10, 5)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildResult(tender, deliveries, Options{}, now)
	}
}

func BenchmarkBuildResult_Large(b *testing.B) {
	tender, deliveries := setupLargeTender(b, 500, 50)
	now := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildResult(tender, deliveries, Options{Mode: engine.OrderedWeighted}, now)
	}
}

func BenchmarkValidateSnapshot_Large(b *testing.B) {
	tender, deliveries := setupLargeTender(b, 500, 50)
	validator := engine.NewSnapshotValidator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validator.ValidateSnapshot(tender, deliveries)
	}
}
