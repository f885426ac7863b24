package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
)

// TenderRepository stores tenders and their line items through GORM
type TenderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTenderRepository(db *gorm.DB) *TenderRepository {
	return &TenderRepository{db: db, now: time.Now}
}

var _ repositories.TenderRepository = (*TenderRepository)(nil)

func (r *TenderRepository) GetTender(ctx context.Context, tenderID string) (*entities.Tender, error) {
	return getTender(r.db.WithContext(ctx), tenderID)
}

func (r *TenderRepository) GetAllTenders(ctx context.Context) ([]*entities.Tender, error) {
	var models []TenderModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderByID).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenders: %w", err)
	}

	tenders := make([]*entities.Tender, 0, len(models))
	for i := range models {
		tenders = append(tenders, models[i].toEntity())
	}
	return tenders, nil
}

// SaveTender replaces the tender row and all of its line items
func (r *TenderRepository) SaveTender(ctx context.Context, tender *entities.Tender) error {
	if tender == nil || tender.ID == "" {
		return fmt.Errorf("tender id cannot be empty")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveTender(tx, tender)
	})
}

func (r *TenderRepository) ConfirmPricing(ctx context.Context, tenderID string, prices map[entities.ItemMasterID]decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tender, err := getTender(tx, tenderID)
		if err != nil {
			return err
		}
		if err := tender.ConfirmPricing(prices, r.now()); err != nil {
			return err
		}
		return saveTender(tx, tender)
	})
}

func getTender(db *gorm.DB, tenderID string) (*entities.Tender, error) {
	var m TenderModel
	err := db.Preload("Items", orderByID).First(&m, "id = ?", tenderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", entities.ErrTenderNotFound, tenderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tender %s: %w", tenderID, err)
	}
	return m.toEntity(), nil
}

func saveTender(tx *gorm.DB, tender *entities.Tender) error {
	if err := tx.Where("tender_id = ?", tender.ID).Delete(&TenderItemModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear items of tender %s: %w", tender.ID, err)
	}
	if err := tx.Where("id = ?", tender.ID).Delete(&TenderModel{}).Error; err != nil {
		return fmt.Errorf("failed to replace tender %s: %w", tender.ID, err)
	}
	m := tenderFromEntity(tender)
	if err := tx.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save tender %s: %w", tender.ID, err)
	}
	return nil
}
