package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/application/dto"
	"github.com/invmis/tenderledger/pkg/application/services"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
	testinghelpers "github.com/invmis/tenderledger/pkg/infrastructure/testing"
)

func main() {
	ctx := context.Background()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()

	tenders, deliveries := testinghelpers.BuildOfficeSuppliesTestData()
	store := events.NewInMemoryEventStore(logger)
	reg := metrics.NewRegistry()

	reconciler := services.NewReconciliationService(tenders, deliveries, store, reg, logger)
	deliverySvc := services.NewDeliveryService(tenders, deliveries, store, reg, logger)
	pricing := services.NewPricingService(tenders, store, reg, logger)

	tenderID := testinghelpers.OfficeSuppliesTenderID

	fmt.Println("🚀 Reconciling office supplies tender...")
	for _, opts := range []services.Options{
		{Mode: engine.ReceivedWeighted},
		{Mode: engine.OrderedWeighted},
		{Mode: engine.ReceivedWeighted, Policy: engine.CountFinalizedOnly},
	} {
		result, err := reconciler.Reconcile(ctx, tenderID, opts)
		if err != nil {
			fmt.Printf("❌ Reconciliation failed: %v\n", err)
			return
		}
		printSummary(result)
	}

	// Price edits are previewed through a draft before they are committed
	draft, err := pricing.OpenDraft(ctx, tenderID)
	if err != nil {
		fmt.Printf("❌ Could not open price draft: %v\n", err)
		return
	}
	draft.Set("MONITOR", decimal.NewFromInt(240))
	draft.Set("CHAIR", decimal.NewFromInt(125))

	preview, err := reconciler.Reconcile(ctx, tenderID, services.Options{Overrides: draft})
	if err != nil {
		fmt.Printf("❌ Preview failed: %v\n", err)
		return
	}
	fmt.Println("📝 Preview with MONITOR at 240 and CHAIR at 125:")
	printSummary(preview)

	// Keep the stored chair price; only the monitor edit is confirmed
	draft.Revert("CHAIR")

	if err := pricing.ConfirmPricing(ctx, tenderID, draft); err != nil {
		fmt.Printf("❌ Pricing confirmation failed: %v\n", err)
		return
	}

	// Record a third delivery and finalize it
	delivery, err := deliverySvc.CreateDelivery(ctx, tenderID, time.Now(), "front-desk")
	if err != nil {
		fmt.Printf("❌ Could not create delivery: %v\n", err)
		return
	}
	if _, err := deliverySvc.AddItem(ctx, delivery.ID, "LAPTOP", 1); err != nil {
		fmt.Printf("❌ Could not add item: %v\n", err)
		return
	}
	if _, err := deliverySvc.Finalize(ctx, delivery.ID, "store-keeper"); err != nil {
		fmt.Printf("❌ Could not finalize delivery: %v\n", err)
		return
	}
	fmt.Printf("🚚 Recorded delivery %s\n\n", delivery.DeliveryNumber)

	final, err := reconciler.Reconcile(ctx, tenderID, services.Options{})
	if err != nil {
		fmt.Printf("❌ Reconciliation failed: %v\n", err)
		return
	}
	printSummary(final)

	all, _ := store.ReadAllEvents(0)
	fmt.Printf("📜 %d domain events recorded\n", len(all))
	for _, e := range all {
		fmt.Printf("  %-26s %s\n", e.Type(), e.StreamID())
	}
}

func printSummary(result *dto.ReconciliationResult) {
	fmt.Printf("📊 %s-weighted, %s deliveries, pricing %s\n", result.Mode, result.Policy, result.PricingStatus)
	for _, item := range result.Items {
		fmt.Printf("  %-8s %3d/%-3d %-9s %10s\n",
			item.ItemMasterID, item.ReceivedQuantity, item.OrderedQuantity, item.Status, item.ActualLineTotal.StringFixed(2))
	}
	v := result.Valuation
	fmt.Printf("  Estimated %s, actual %s, variance %s (%s%%), pending %s\n",
		v.EstimatedValue.StringFixed(2), v.ActualValue.StringFixed(2),
		v.VarianceAbsolute.StringFixed(2), v.VariancePercent.StringFixed(1), v.PendingValue.StringFixed(2))
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	fmt.Println()
}
