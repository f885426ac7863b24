package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// TenderRepository provides access to tenders and their ordered line items
type TenderRepository interface {
	GetTender(ctx context.Context, tenderID string) (*entities.Tender, error)
	GetAllTenders(ctx context.Context) ([]*entities.Tender, error)
	SaveTender(ctx context.Context, tender *entities.Tender) error

	// ConfirmPricing stores actual unit prices and marks the tender's pricing confirmed.
	ConfirmPricing(ctx context.Context, tenderID string, prices map[entities.ItemMasterID]decimal.Decimal) error
}
