package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/application/dto"
	"github.com/invmis/tenderledger/pkg/domain/entities"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
	testinghelpers "github.com/invmis/tenderledger/pkg/infrastructure/testing"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func itemByID(t *testing.T, result *dto.ReconciliationResult, id entities.ItemMasterID) dto.ItemReconciliation {
	t.Helper()
	for _, item := range result.Items {
		if item.ItemMasterID == id {
			return item
		}
	}
	t.Fatalf("item %s not in result", id)
	return dto.ItemReconciliation{}
}

func newReconciliationService(t *testing.T) (*ReconciliationService, *events.InMemoryEventStore, *metrics.Registry) {
	t.Helper()
	tenderRepo, deliveryRepo := testinghelpers.BuildOfficeSuppliesTestData()
	store := events.NewInMemoryEventStore(zerolog.Nop())
	reg := metrics.NewRegistry()
	return NewReconciliationService(tenderRepo, deliveryRepo, store, reg, zerolog.Nop()), store, reg
}

func TestReconciliationService_AllDeliveriesReceivedWeighted(t *testing.T) {
	svc, store, reg := newReconciliationService(t)

	result, err := svc.Reconcile(context.Background(), testinghelpers.OfficeSuppliesTenderID, Options{})
	require.NoError(t, err)

	laptop := itemByID(t, result, "LAPTOP")
	assert.Equal(t, entities.Quantity(10), laptop.ReceivedQuantity)
	assert.Equal(t, entities.FulfillmentComplete, laptop.Status)
	assert.True(t, laptop.EffectiveUnitPrice.Equal(dec(950)))
	assert.True(t, laptop.ActualLineTotal.Equal(dec(9500)))

	chair := itemByID(t, result, "CHAIR")
	assert.Equal(t, entities.FulfillmentExcess, chair.Status)
	assert.Equal(t, entities.Quantity(0), chair.OutstandingQuantity)
	assert.True(t, chair.ProgressPercent.Equal(dec(140)))
	assert.True(t, chair.ActualLineTotal.Equal(dec(910)), "excess is valued in received mode")

	monitor := itemByID(t, result, "MONITOR")
	assert.True(t, monitor.EffectiveUnitPrice.Equal(dec(250)), "no actual price falls back to estimate")

	v := result.Valuation
	assert.True(t, v.EstimatedValue.Equal(dec(15600)))
	assert.True(t, v.ActualValue.Equal(dec(15410)))
	assert.True(t, v.VarianceAbsolute.Equal(dec(-190)))
	assert.True(t, v.VariancePercent.IsNegative())
	assert.True(t, v.PendingValue.IsZero())
	assert.True(t, result.OverallProgressPercent.Equal(dec(100)))

	require.Len(t, result.Deliveries, 2)
	assert.Equal(t, entities.DeliveryFinalized, result.Deliveries[0].Status)
	assert.Equal(t, entities.DeliveryComplete, result.Deliveries[1].Status)
	assert.Equal(t, entities.Quantity(26), result.Deliveries[0].TotalQuantity)
	assert.Equal(t, 2, result.Deliveries[1].ItemCount)

	assert.Equal(t, "Pending", result.PricingStatus)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Reconciliations.WithLabelValues("received", "all")))

	stream, err := store.ReadEvents(testinghelpers.OfficeSuppliesTenderID, 0)
	require.NoError(t, err)
	require.Len(t, stream, 1)
	assert.Equal(t, events.TenderReconciledEvent, stream[0].Type())
}

func TestReconciliationService_FinalizedOnlyOrderedWeighted(t *testing.T) {
	svc, _, _ := newReconciliationService(t)

	result, err := svc.Reconcile(context.Background(), testinghelpers.OfficeSuppliesTenderID, Options{
		Mode:   engine.OrderedWeighted,
		Policy: engine.CountFinalizedOnly,
	})
	require.NoError(t, err)

	laptop := itemByID(t, result, "LAPTOP")
	assert.Equal(t, entities.Quantity(6), laptop.ReceivedQuantity)
	assert.Equal(t, entities.FulfillmentPartial, laptop.Status)
	assert.True(t, laptop.ActualLineTotal.Equal(dec(9500)), "ordered mode ignores receipts")

	chair := itemByID(t, result, "CHAIR")
	assert.Equal(t, entities.FulfillmentPending, chair.Status)
	assert.Equal(t, entities.Quantity(5), chair.OutstandingQuantity)

	assert.True(t, result.Valuation.ActualValue.Equal(dec(15150)))
	assert.True(t, result.Valuation.PendingValue.Equal(dec(4450)), "4 laptops at 950 plus 5 chairs at 130")
	assert.Equal(t, entities.DeliveryPending, result.Deliveries[1].Status)
}

func TestReconciliationService_OverridesShadowStoredPrices(t *testing.T) {
	svc, _, _ := newReconciliationService(t)
	draft := entities.NewPriceDraft(testinghelpers.BuildOfficeSuppliesTender())
	draft.Set("MONITOR", dec(200))

	result, err := svc.Reconcile(context.Background(), testinghelpers.OfficeSuppliesTenderID, Options{Overrides: draft})
	require.NoError(t, err)

	monitor := itemByID(t, result, "MONITOR")
	assert.True(t, monitor.EffectiveUnitPrice.Equal(dec(200)))
	assert.True(t, monitor.EstimatedLineTotal.Equal(dec(5000)), "estimate is unaffected by edits")
	assert.True(t, result.Valuation.ActualValue.Equal(dec(14410)))
}

func TestReconciliationService_UnknownTender(t *testing.T) {
	svc, _, reg := newReconciliationService(t)

	_, err := svc.Reconcile(context.Background(), "nope", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrTenderNotFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.ReconcileFailures))
}

func TestReconciliationService_SnapshotWarningsAndErrors(t *testing.T) {
	svc, _, reg := newReconciliationService(t)
	tender := testinghelpers.BuildOfficeSuppliesTender()
	deliveries := testinghelpers.BuildOfficeSuppliesDeliveries()

	orphan, err := entities.NewDelivery("dlv-x", tender.ID, "DEL-2026-000003", time.Now())
	require.NoError(t, err)
	require.NoError(t, orphan.AddItem(entities.DeliveryLineItem{ItemMasterID: "PRINTER", DeliveryQuantity: 2}))

	result, err := svc.ReconcileSnapshot(context.Background(), tender, append(deliveries, orphan, nil), Options{})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "PRINTER")
	assert.True(t, result.Valuation.ActualValue.Equal(dec(15410)), "orphaned quantity is excluded from valuation")
	assert.Len(t, result.Deliveries, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OrphanedDeliveryItems))

	duplicate, err := entities.NewDelivery("dlv-y", tender.ID, "DEL-2026-000001", time.Now())
	require.NoError(t, err)
	_, err = svc.ReconcileSnapshot(context.Background(), tender, append(deliveries, duplicate), Options{})
	assert.True(t, errors.Is(err, ErrInvalidSnapshot))

	_, err = svc.ReconcileSnapshot(context.Background(), nil, nil, Options{})
	assert.True(t, errors.Is(err, ErrInvalidSnapshot))
}

func TestBuildResult_EmptyTender(t *testing.T) {
	tender := &entities.Tender{ID: "T0"}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	result := BuildResult(tender, nil, Options{}, at)
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Deliveries)
	assert.True(t, result.Valuation.EstimatedValue.IsZero())
	assert.True(t, result.Valuation.VariancePercent.IsZero(), "no estimate means no variance percent")
	assert.True(t, result.OverallProgressPercent.Equal(dec(100)))
	assert.Equal(t, at, result.ComputedAt)
}
