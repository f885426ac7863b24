package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
)

// PricingService turns in-progress price edits into confirmed actual prices
type PricingService struct {
	tenders    repositories.TenderRepository
	eventStore events.EventStore
	metrics    *metrics.Registry
	logger     zerolog.Logger
}

func NewPricingService(tenders repositories.TenderRepository, eventStore events.EventStore, reg *metrics.Registry, logger zerolog.Logger) *PricingService {
	return &PricingService{
		tenders:    tenders,
		eventStore: eventStore,
		metrics:    reg,
		logger:     logger.With().Str("component", "pricing").Logger(),
	}
}

// OpenDraft returns a price draft seeded with the tender's stored actual prices
func (s *PricingService) OpenDraft(ctx context.Context, tenderID string) (*entities.PriceDraft, error) {
	tender, err := s.tenders.GetTender(ctx, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tender %s: %w", tenderID, err)
	}
	return entities.NewPriceDraft(tender), nil
}

// ConfirmPricing persists the draft's edits as actual unit prices and marks
// the tender's pricing confirmed. The draft is committed only once the
// repository accepts the prices; on failure its edits stay outstanding.
func (s *PricingService) ConfirmPricing(ctx context.Context, tenderID string, draft *entities.PriceDraft) error {
	prices := draft.Edits()
	if err := s.tenders.ConfirmPricing(ctx, tenderID, prices); err != nil {
		return fmt.Errorf("failed to confirm pricing for tender %s: %w", tenderID, err)
	}
	draft.Commit()

	if s.eventStore != nil {
		if err := s.eventStore.AppendEvent(tenderID, events.NewPricingConfirmedEvent(tenderID, prices)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish pricing confirmed event")
		}
	}
	if s.metrics != nil {
		s.metrics.PricingConfirmations.Inc()
	}
	s.logger.Info().Str("tender_id", tenderID).Int("prices", len(prices)).Msg("pricing confirmed")
	return nil
}
