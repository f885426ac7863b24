package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
)

// DeliveryRepository stores deliveries, their lines and serial numbers through GORM
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

func preloadDeliveryItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", orderByID).Preload("Items.Serials", orderByID)
}

func (r *DeliveryRepository) GetDelivery(ctx context.Context, deliveryID string) (*entities.Delivery, error) {
	m, err := findDelivery(r.db.WithContext(ctx), deliveryID)
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

func (r *DeliveryRepository) GetDeliveriesByTender(ctx context.Context, tenderID string) ([]*entities.Delivery, error) {
	var models []DeliveryModel
	err := preloadDeliveryItems(r.db.WithContext(ctx)).
		Where("tender_id = ?", tenderID).
		Order("delivery_date, delivery_number").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries for tender %s: %w", tenderID, err)
	}

	deliveries := make([]*entities.Delivery, 0, len(models))
	for i := range models {
		deliveries = append(deliveries, models[i].toEntity())
	}
	return deliveries, nil
}

// SaveDelivery replaces a delivery and its lines. A stored delivery that is
// already finalized is never overwritten.
func (r *DeliveryRepository) SaveDelivery(ctx context.Context, delivery *entities.Delivery) error {
	if delivery == nil || delivery.ID == "" {
		return fmt.Errorf("delivery id cannot be empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findDelivery(tx, delivery.ID)
		switch {
		case errors.Is(err, entities.ErrDeliveryNotFound):
		case err != nil:
			return err
		case existing.IsFinalized:
			return fmt.Errorf("%w: %s", entities.ErrDeliveryFinalized, existing.DeliveryNumber)
		case existing.TenderID != delivery.TenderID:
			return fmt.Errorf("delivery %s cannot move from tender %s to %s", delivery.ID, existing.TenderID, delivery.TenderID)
		}

		var clashes int64
		err = tx.Model(&DeliveryModel{}).
			Where("tender_id = ? AND delivery_number = ? AND id <> ?", delivery.TenderID, delivery.DeliveryNumber, delivery.ID).
			Count(&clashes).Error
		if err != nil {
			return fmt.Errorf("failed to check delivery number: %w", err)
		}
		if clashes > 0 {
			return fmt.Errorf("%w: %s", entities.ErrDuplicateDeliveryNumber, delivery.DeliveryNumber)
		}

		if err := deleteDeliveryRows(tx, delivery.ID); err != nil {
			return err
		}
		m := deliveryFromEntity(delivery)
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to save delivery %s: %w", delivery.DeliveryNumber, err)
		}
		return nil
	})
}

func (r *DeliveryRepository) DeleteDelivery(ctx context.Context, deliveryID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findDelivery(tx, deliveryID)
		if err != nil {
			return err
		}
		if existing.IsFinalized {
			return fmt.Errorf("%w: %s cannot be deleted", entities.ErrDeliveryFinalized, existing.DeliveryNumber)
		}
		return deleteDeliveryRows(tx, deliveryID)
	})
}

func findDelivery(db *gorm.DB, deliveryID string) (*DeliveryModel, error) {
	var m DeliveryModel
	err := preloadDeliveryItems(db).First(&m, "id = ?", deliveryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", entities.ErrDeliveryNotFound, deliveryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery %s: %w", deliveryID, err)
	}
	return &m, nil
}

func deleteDeliveryRows(tx *gorm.DB, deliveryID string) error {
	itemIDs := tx.Model(&DeliveryItemModel{}).Select("id").Where("delivery_id = ?", deliveryID)
	if err := tx.Where("delivery_item_id IN (?)", itemIDs).Delete(&SerialNumberModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear serial numbers of delivery %s: %w", deliveryID, err)
	}
	if err := tx.Where("delivery_id = ?", deliveryID).Delete(&DeliveryItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear items of delivery %s: %w", deliveryID, err)
	}
	if err := tx.Where("id = ?", deliveryID).Delete(&DeliveryModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete delivery %s: %w", deliveryID, err)
	}
	return nil
}
