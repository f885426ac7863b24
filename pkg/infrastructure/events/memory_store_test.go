package events

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

type recordingHandler struct {
	types []string
	seen  chan Event
	err   error
}

func (h *recordingHandler) Handle(event Event) error {
	h.seen <- event
	return h.err
}

func (h *recordingHandler) CanHandle(eventType string) bool {
	for _, t := range h.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func testDelivery(t *testing.T) *entities.Delivery {
	t.Helper()
	d, err := entities.NewDelivery("d-1", "T1", "DEL-2026-000001", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return d
}

func TestInMemoryEventStore_StreamVersions(t *testing.T) {
	store := NewInMemoryEventStore(zerolog.Nop())
	d := testDelivery(t)

	require.NoError(t, store.AppendEvent(d.TenderID, NewDeliveryCreatedEvent(d)))
	require.NoError(t, store.AppendEvent(d.TenderID, NewDeliveryItemAddedEvent(d, entities.DeliveryLineItem{ItemMasterID: "A", DeliveryQuantity: 2})))
	require.NoError(t, store.AppendEvent("T2", NewPricingConfirmedEvent("T2", nil)))

	stream, err := store.ReadEvents("T1", 0)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.Equal(t, DeliveryCreatedEvent, stream[0].Type())
	assert.Equal(t, 1, stream[0].Version())
	assert.Equal(t, 2, stream[1].Version())
	assert.NotEmpty(t, stream[0].ID())

	added, ok := stream[1].Data().(DeliveryItemAdded)
	require.True(t, ok)
	assert.Equal(t, entities.ItemMasterID("A"), added.Item.ItemMasterID)

	tail, err := store.ReadEvents("T1", 2)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	none, err := store.ReadEvents("T1", 5)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := store.ReadAllEvents(1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, PricingConfirmedEvent, all[1].Type())
}

func TestInMemoryEventStore_Subscribers(t *testing.T) {
	store := NewInMemoryEventStore(zerolog.Nop())
	handler := &recordingHandler{
		types: []string{DeliveryFinalizedEvent},
		seen:  make(chan Event, 1),
		err:   errors.New("handler failure is logged, not returned"),
	}
	require.NoError(t, store.Subscribe([]string{DeliveryFinalizedEvent}, handler))

	d := testDelivery(t)
	require.NoError(t, d.Finalize("clerk", time.Now()))
	require.NoError(t, store.AppendEvent(d.TenderID, NewDeliveryFinalizedEvent(d)))

	select {
	case e := <-handler.seen:
		finalized := e.Data().(DeliveryFinalized)
		assert.Equal(t, "clerk", finalized.FinalizedBy)
		assert.Equal(t, "DEL-2026-000001", finalized.DeliveryNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("Expected subscriber to be notified")
	}

	require.NoError(t, store.Unsubscribe(handler))
	require.NoError(t, store.AppendEvent(d.TenderID, NewDeliveryFinalizedEvent(d)))
	select {
	case <-handler.seen:
		t.Fatal("Expected no notification after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}
