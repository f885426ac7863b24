package repositories

import (
	"context"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// DeliveryRepository provides access to deliveries recorded against tenders.
// Implementations reject changes to a delivery that is already finalized.
type DeliveryRepository interface {
	GetDelivery(ctx context.Context, deliveryID string) (*entities.Delivery, error)
	GetDeliveriesByTender(ctx context.Context, tenderID string) ([]*entities.Delivery, error)
	SaveDelivery(ctx context.Context, delivery *entities.Delivery) error
	DeleteDelivery(ctx context.Context, deliveryID string) error
}
