package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
)

// DeliveryRepository provides in-memory delivery storage with a per-tender index
type DeliveryRepository struct {
	mu         sync.RWMutex
	deliveries map[string]*entities.Delivery
	byTender   map[string][]string
}

// NewDeliveryRepository creates a new in-memory delivery repository
func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{
		deliveries: make(map[string]*entities.Delivery),
		byTender:   make(map[string][]string),
	}
}

// Verify interface compliance
var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// LoadDeliveries bulk-loads deliveries
func (r *DeliveryRepository) LoadDeliveries(deliveries []*entities.Delivery) error {
	for _, d := range deliveries {
		if err := r.SaveDelivery(context.Background(), d); err != nil {
			return err
		}
	}
	return nil
}

func (r *DeliveryRepository) GetDelivery(ctx context.Context, deliveryID string) (*entities.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deliveries[deliveryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrDeliveryNotFound, deliveryID)
	}
	return d.Clone(), nil
}

// GetDeliveriesByTender returns a tender's deliveries ordered by date, then number
func (r *DeliveryRepository) GetDeliveriesByTender(ctx context.Context, tenderID string) ([]*entities.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byTender[tenderID]
	deliveries := make([]*entities.Delivery, 0, len(ids))
	for _, id := range ids {
		deliveries = append(deliveries, r.deliveries[id].Clone())
	}
	sort.SliceStable(deliveries, func(i, j int) bool {
		if !deliveries[i].DeliveryDate.Equal(deliveries[j].DeliveryDate) {
			return deliveries[i].DeliveryDate.Before(deliveries[j].DeliveryDate)
		}
		return deliveries[i].DeliveryNumber < deliveries[j].DeliveryNumber
	})
	return deliveries, nil
}

func (r *DeliveryRepository) SaveDelivery(ctx context.Context, delivery *entities.Delivery) error {
	if delivery == nil || delivery.ID == "" {
		return fmt.Errorf("delivery id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.deliveries[delivery.ID]
	if exists && existing.IsFinalized {
		return fmt.Errorf("%w: %s", entities.ErrDeliveryFinalized, existing.DeliveryNumber)
	}
	if exists && existing.TenderID != delivery.TenderID {
		return fmt.Errorf("delivery %s cannot move from tender %s to %s", delivery.ID, existing.TenderID, delivery.TenderID)
	}
	for _, id := range r.byTender[delivery.TenderID] {
		if id != delivery.ID && r.deliveries[id].DeliveryNumber == delivery.DeliveryNumber {
			return fmt.Errorf("%w: %s", entities.ErrDuplicateDeliveryNumber, delivery.DeliveryNumber)
		}
	}

	if !exists {
		r.byTender[delivery.TenderID] = append(r.byTender[delivery.TenderID], delivery.ID)
	}
	r.deliveries[delivery.ID] = delivery.Clone()
	return nil
}

func (r *DeliveryRepository) DeleteDelivery(ctx context.Context, deliveryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[deliveryID]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrDeliveryNotFound, deliveryID)
	}
	if d.IsFinalized {
		return fmt.Errorf("%w: %s cannot be deleted", entities.ErrDeliveryFinalized, d.DeliveryNumber)
	}

	ids := r.byTender[d.TenderID]
	for i, id := range ids {
		if id == deliveryID {
			r.byTender[d.TenderID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	delete(r.deliveries, deliveryID)
	return nil
}
