package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
)

// TenderRepository provides in-memory tender storage
type TenderRepository struct {
	mu      sync.RWMutex
	tenders map[string]*entities.Tender
	now     func() time.Time
}

// NewTenderRepository creates a new in-memory tender repository
func NewTenderRepository() *TenderRepository {
	return &TenderRepository{
		tenders: make(map[string]*entities.Tender),
		now:     time.Now,
	}
}

// Verify interface compliance
var _ repositories.TenderRepository = (*TenderRepository)(nil)

// LoadTenders bulk-loads tenders, replacing any with the same id
func (r *TenderRepository) LoadTenders(tenders []*entities.Tender) error {
	for _, t := range tenders {
		if err := r.SaveTender(context.Background(), t); err != nil {
			return err
		}
	}
	return nil
}

func (r *TenderRepository) GetTender(ctx context.Context, tenderID string) (*entities.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenders[tenderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrTenderNotFound, tenderID)
	}
	return t.Clone(), nil
}

// GetAllTenders returns all tenders ordered by id
func (r *TenderRepository) GetAllTenders(ctx context.Context) ([]*entities.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenders := make([]*entities.Tender, 0, len(r.tenders))
	for _, t := range r.tenders {
		tenders = append(tenders, t.Clone())
	}
	sort.Slice(tenders, func(i, j int) bool { return tenders[i].ID < tenders[j].ID })
	return tenders, nil
}

func (r *TenderRepository) SaveTender(ctx context.Context, tender *entities.Tender) error {
	if tender == nil || tender.ID == "" {
		return fmt.Errorf("tender id cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenders[tender.ID] = tender.Clone()
	return nil
}

func (r *TenderRepository) ConfirmPricing(ctx context.Context, tenderID string, prices map[entities.ItemMasterID]decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenders[tenderID]
	if !ok {
		return fmt.Errorf("%w: %s", entities.ErrTenderNotFound, tenderID)
	}
	updated := t.Clone()
	if err := updated.ConfirmPricing(prices, r.now()); err != nil {
		return err
	}
	r.tenders[tenderID] = updated
	return nil
}
