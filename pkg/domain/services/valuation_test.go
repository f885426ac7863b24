package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

func TestEffectiveUnitPrice(t *testing.T) {
	estimatedOnly := lineItem("A", 1, 1000)
	withStored := withActual(lineItem("A", 1, 1000), 1200)

	draft := entities.NewPriceDraft(&entities.Tender{Items: []entities.TenderLineItem{withStored}})

	assert.True(t, EffectiveUnitPrice(&estimatedOnly, nil).Equal(dec(1000)), "falls back to estimate")
	assert.True(t, EffectiveUnitPrice(&withStored, nil).Equal(dec(1200)), "stored actual wins over estimate")
	assert.True(t, EffectiveUnitPrice(&withStored, draft).Equal(dec(1200)), "clean draft changes nothing")

	draft.Set("A", dec(1500))
	assert.True(t, EffectiveUnitPrice(&withStored, draft).Equal(dec(1500)), "edit shadows stored value")

	draft.Discard()
	assert.True(t, EffectiveUnitPrice(&withStored, draft).Equal(dec(1200)), "discard restores stored value")

	var nilDraft *entities.PriceDraft
	assert.True(t, EffectiveUnitPrice(&withStored, nilDraft).Equal(dec(1200)), "nil draft is ignored")
}

func TestActualLineTotal_Modes(t *testing.T) {
	item := withActual(lineItem("A", 10, 1000), 1200)
	ledger := NewLedger([]*entities.Delivery{delivery(1, false, received("A", 4))}, CountAllDeliveries)
	empty := NewLedger(nil, CountAllDeliveries)

	assert.True(t, ActualLineTotal(&item, ledger, ReceivedWeighted, nil).Equal(dec(4800)))
	assert.True(t, ActualLineTotal(&item, ledger, OrderedWeighted, nil).Equal(dec(12000)))
	assert.True(t, ActualLineTotal(&item, empty, ReceivedWeighted, nil).IsZero())
	assert.True(t, ActualLineTotal(&item, empty, OrderedWeighted, nil).Equal(dec(12000)))
}

func TestTenderValuation_OverBudgetScenario(t *testing.T) {
	items := []entities.TenderLineItem{withActual(lineItem("A", 10, 1000), 1200)}
	ledger := NewLedger([]*entities.Delivery{delivery(1, true, received("A", 10))}, CountAllDeliveries)

	estimated := TenderEstimatedValue(items)
	actual := TenderActualValue(items, ledger, OrderedWeighted, nil)
	variance := ComputeVariance(estimated, actual)

	assert.True(t, estimated.Equal(dec(10000)))
	assert.True(t, actual.Equal(dec(12000)))
	assert.True(t, variance.Absolute.Equal(dec(2000)))
	assert.True(t, variance.Percent.Equal(dec(20)))
	assert.True(t, PendingValue(items, ledger, nil).IsZero())
}

func TestComputeVariance(t *testing.T) {
	under := ComputeVariance(dec(1000), dec(900))
	assert.True(t, under.Absolute.Equal(dec(-100)))
	assert.True(t, under.Percent.Equal(dec(-10)))

	zero := ComputeVariance(decimal.Zero, dec(500))
	assert.True(t, zero.Absolute.Equal(dec(500)))
	assert.True(t, zero.Percent.IsZero(), "percent is defined as zero when estimate is zero")
}

func TestPendingValue_UsesEffectivePrice(t *testing.T) {
	items := []entities.TenderLineItem{
		withActual(lineItem("A", 10, 100), 150),
		lineItem("B", 4, 50),
	}
	ledger := NewLedger([]*entities.Delivery{
		delivery(1, false, received("A", 6), received("B", 10)),
	}, CountAllDeliveries)

	// A: 4 outstanding * 150; B: excess, nothing outstanding.
	assert.True(t, PendingValue(items, ledger, nil).Equal(dec(600)))
}

func TestTenderActualValue_OrphanedDeliveryItemsExcluded(t *testing.T) {
	items := []entities.TenderLineItem{lineItem("A", 2, 100)}
	ledger := NewLedger([]*entities.Delivery{
		delivery(1, false, received("A", 2), received("GHOST", 50)),
	}, CountAllDeliveries)

	assert.True(t, TenderActualValue(items, ledger, ReceivedWeighted, nil).Equal(dec(200)))
}

func TestParseValuationMode(t *testing.T) {
	m, err := ParseValuationMode("ordered")
	require.NoError(t, err)
	assert.Equal(t, OrderedWeighted, m)

	m, err = ParseValuationMode("RECEIVED")
	require.NoError(t, err)
	assert.Equal(t, ReceivedWeighted, m)

	_, err = ParseValuationMode("weighted")
	assert.Error(t, err)
}
