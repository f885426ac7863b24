package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
	testinghelpers "github.com/invmis/tenderledger/pkg/infrastructure/testing"
)

func TestPricingService_ConfirmPricing(t *testing.T) {
	ctx := context.Background()
	tenderRepo, deliveryRepo := testinghelpers.BuildOfficeSuppliesTestData()
	store := events.NewInMemoryEventStore(zerolog.Nop())
	reg := metrics.NewRegistry()
	svc := NewPricingService(tenderRepo, store, reg, zerolog.Nop())

	draft, err := svc.OpenDraft(ctx, testinghelpers.OfficeSuppliesTenderID)
	require.NoError(t, err)
	price, ok := draft.Get("LAPTOP")
	require.True(t, ok, "draft is seeded with stored actual prices")
	assert.True(t, price.Equal(dec(950)))

	draft.Set("MONITOR", dec(240))
	require.NoError(t, svc.ConfirmPricing(ctx, testinghelpers.OfficeSuppliesTenderID, draft))
	assert.False(t, draft.Dirty(), "confirmed edits are committed")

	tender, err := tenderRepo.GetTender(ctx, testinghelpers.OfficeSuppliesTenderID)
	require.NoError(t, err)
	assert.Equal(t, entities.PricingConfirmed, tender.PricingStatus())
	monitor, _ := tender.FindItem("MONITOR")
	assert.True(t, monitor.ActualUnitPrice.Decimal.Equal(dec(240)))

	// The stored price now drives reconciliation without any override
	recon := NewReconciliationService(tenderRepo, deliveryRepo, nil, nil, zerolog.Nop())
	result, err := recon.Reconcile(ctx, testinghelpers.OfficeSuppliesTenderID, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Confirmed", result.PricingStatus)
	assert.True(t, result.Valuation.ActualValue.Equal(dec(15210)))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.PricingConfirmations))
	stream, _ := store.ReadEvents(testinghelpers.OfficeSuppliesTenderID, 0)
	require.Len(t, stream, 1)
	assert.Equal(t, events.PricingConfirmedEvent, stream[0].Type())
}

func TestPricingService_FailedConfirmationKeepsEdits(t *testing.T) {
	ctx := context.Background()
	tenderRepo, _ := testinghelpers.BuildOfficeSuppliesTestData()
	svc := NewPricingService(tenderRepo, nil, nil, zerolog.Nop())

	draft, err := svc.OpenDraft(ctx, testinghelpers.OfficeSuppliesTenderID)
	require.NoError(t, err)
	draft.Set("PRINTER", dec(10))

	err = svc.ConfirmPricing(ctx, testinghelpers.OfficeSuppliesTenderID, draft)
	require.Error(t, err)
	assert.True(t, draft.Dirty())

	_, err = svc.OpenDraft(ctx, "missing")
	assert.True(t, errors.Is(err, entities.ErrTenderNotFound))
}

func TestPricingService_RevertedEditIsNotConfirmed(t *testing.T) {
	ctx := context.Background()
	tenderRepo, _ := testinghelpers.BuildOfficeSuppliesTestData()
	svc := NewPricingService(tenderRepo, nil, nil, zerolog.Nop())

	draft, err := svc.OpenDraft(ctx, testinghelpers.OfficeSuppliesTenderID)
	require.NoError(t, err)
	draft.Set("MONITOR", dec(240))
	draft.Set("CHAIR", dec(125))
	draft.Revert("CHAIR")

	require.NoError(t, svc.ConfirmPricing(ctx, testinghelpers.OfficeSuppliesTenderID, draft))

	tender, err := tenderRepo.GetTender(ctx, testinghelpers.OfficeSuppliesTenderID)
	require.NoError(t, err)
	chair, _ := tender.FindItem("CHAIR")
	assert.True(t, chair.ActualUnitPrice.Decimal.Equal(dec(130)), "reverted edit keeps the stored price")
	monitor, _ := tender.FindItem("MONITOR")
	assert.True(t, monitor.ActualUnitPrice.Decimal.Equal(dec(240)))
}
