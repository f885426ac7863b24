package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
)

// DeliveryService records receipt events against a tender. Every mutation
// is persisted and published as a domain event on the tender's stream.
type DeliveryService struct {
	tenders    repositories.TenderRepository
	deliveries repositories.DeliveryRepository
	eventStore events.EventStore
	metrics    *metrics.Registry
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
}

func NewDeliveryService(
	tenders repositories.TenderRepository,
	deliveries repositories.DeliveryRepository,
	eventStore events.EventStore,
	reg *metrics.Registry,
	logger zerolog.Logger,
) *DeliveryService {
	return &DeliveryService{
		tenders:    tenders,
		deliveries: deliveries,
		eventStore: eventStore,
		metrics:    reg,
		logger:     logger.With().Str("component", "deliveries").Logger(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// CreateDelivery opens a new delivery with the next DEL-<year>-<seq> number
// for the current year
func (s *DeliveryService) CreateDelivery(ctx context.Context, tenderID string, deliveryDate time.Time, personnel string) (*entities.Delivery, error) {
	if _, err := s.tenders.GetTender(ctx, tenderID); err != nil {
		return nil, fmt.Errorf("failed to load tender %s: %w", tenderID, err)
	}

	existing, err := s.deliveries.GetDeliveriesByTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries for tender %s: %w", tenderID, err)
	}
	numbers := make([]string, 0, len(existing))
	for _, d := range existing {
		numbers = append(numbers, d.DeliveryNumber)
	}

	delivery, err := entities.NewDelivery(s.newID(), tenderID, engine.NextDeliveryNumber(numbers, s.now().Year()), deliveryDate)
	if err != nil {
		return nil, err
	}
	delivery.Personnel = personnel

	if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to save delivery: %w", err)
	}

	s.publish(delivery.TenderID, events.NewDeliveryCreatedEvent(delivery))
	if s.metrics != nil {
		s.metrics.DeliveriesCreated.Inc()
	}
	s.logger.Info().
		Str("tender_id", tenderID).
		Str("delivery_number", delivery.DeliveryNumber).
		Msg("delivery created")

	return delivery, nil
}

// AddItem records a received quantity. The item must be on the tender; a
// repeated item is merged into its existing line.
func (s *DeliveryService) AddItem(ctx context.Context, deliveryID string, itemMasterID entities.ItemMasterID, qty entities.Quantity) (*entities.Delivery, error) {
	delivery, err := s.load(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	tender, err := s.tenders.GetTender(ctx, delivery.TenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tender %s: %w", delivery.TenderID, err)
	}
	tenderItem, ok := tender.FindItem(itemMasterID)
	if !ok {
		return nil, fmt.Errorf("item %s is not on tender %s", itemMasterID, tender.ID)
	}

	line, err := entities.NewDeliveryLineItem(itemMasterID, tenderItem.Nomenclature, qty)
	if err != nil {
		return nil, err
	}
	if err := delivery.AddItem(*line); err != nil {
		return nil, err
	}
	if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to save delivery %s: %w", delivery.DeliveryNumber, err)
	}

	s.publish(delivery.TenderID, events.NewDeliveryItemAddedEvent(delivery, *line))
	s.logger.Debug().
		Str("delivery_number", delivery.DeliveryNumber).
		Str("item_master_id", string(itemMasterID)).
		Int64("quantity", int64(qty)).
		Msg("delivery item added")

	return delivery, nil
}

func (s *DeliveryService) RemoveItem(ctx context.Context, deliveryID string, itemMasterID entities.ItemMasterID) (*entities.Delivery, error) {
	delivery, err := s.load(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.RemoveItem(itemMasterID); err != nil {
		return nil, err
	}
	if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to save delivery %s: %w", delivery.DeliveryNumber, err)
	}

	s.publish(delivery.TenderID, events.NewDeliveryItemRemovedEvent(delivery, itemMasterID))
	return delivery, nil
}

func (s *DeliveryService) AddSerialNumber(ctx context.Context, deliveryID string, itemMasterID entities.ItemMasterID, serial entities.SerialNumber) (*entities.Delivery, error) {
	delivery, err := s.load(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.AddSerialNumber(itemMasterID, serial); err != nil {
		return nil, err
	}
	if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to save delivery %s: %w", delivery.DeliveryNumber, err)
	}

	s.publish(delivery.TenderID, events.NewDeliverySerialAddedEvent(delivery, itemMasterID, serial.Value))
	return delivery, nil
}

// Finalize confirms the delivery into inventory. A second call fails with
// entities.ErrDeliveryFinalized.
func (s *DeliveryService) Finalize(ctx context.Context, deliveryID, finalizedBy string) (*entities.Delivery, error) {
	delivery, err := s.load(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.Finalize(finalizedBy, s.now()); err != nil {
		return nil, err
	}
	if err := s.deliveries.SaveDelivery(ctx, delivery); err != nil {
		return nil, fmt.Errorf("failed to save delivery %s: %w", delivery.DeliveryNumber, err)
	}

	s.publish(delivery.TenderID, events.NewDeliveryFinalizedEvent(delivery))
	if s.metrics != nil {
		s.metrics.DeliveriesFinalized.Inc()
	}
	s.logger.Info().
		Str("tender_id", delivery.TenderID).
		Str("delivery_number", delivery.DeliveryNumber).
		Str("finalized_by", finalizedBy).
		Int64("total_quantity", int64(delivery.TotalQuantity())).
		Msg("delivery finalized")

	return delivery, nil
}

func (s *DeliveryService) DeleteDelivery(ctx context.Context, deliveryID string) error {
	delivery, err := s.load(ctx, deliveryID)
	if err != nil {
		return err
	}
	if err := s.deliveries.DeleteDelivery(ctx, deliveryID); err != nil {
		return fmt.Errorf("failed to delete delivery %s: %w", delivery.DeliveryNumber, err)
	}
	s.publish(delivery.TenderID, events.NewDeliveryDeletedEvent(delivery))
	return nil
}

func (s *DeliveryService) load(ctx context.Context, deliveryID string) (*entities.Delivery, error) {
	delivery, err := s.deliveries.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery %s: %w", deliveryID, err)
	}
	return delivery, nil
}

func (s *DeliveryService) publish(streamID string, event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(streamID, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", event.Type()).Msg("failed to publish event")
	}
}
