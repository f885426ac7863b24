package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/invmis/tenderledger/pkg/application/dto"
	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/repositories"
	engine "github.com/invmis/tenderledger/pkg/domain/services"
	"github.com/invmis/tenderledger/pkg/infrastructure/events"
	"github.com/invmis/tenderledger/pkg/infrastructure/metrics"
)

// ErrInvalidSnapshot is returned when a tender snapshot fails validation
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Options selects the valuation semantics for one reconciliation run
type Options struct {
	Mode   engine.ValuationMode
	Policy engine.ReceiptPolicy
	// Overrides, when set, layers uncommitted unit prices over stored ones.
	Overrides engine.PriceOverrides
}

// ReconciliationService loads a tender snapshot and runs the quantity,
// fulfillment and valuation engine over it
type ReconciliationService struct {
	tenders    repositories.TenderRepository
	deliveries repositories.DeliveryRepository
	validator  *engine.SnapshotValidator
	eventStore events.EventStore
	metrics    *metrics.Registry
	logger     zerolog.Logger
	now        func() time.Time
}

// NewReconciliationService creates a reconciliation service. eventStore and
// reg may be nil.
func NewReconciliationService(
	tenders repositories.TenderRepository,
	deliveries repositories.DeliveryRepository,
	eventStore events.EventStore,
	reg *metrics.Registry,
	logger zerolog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		tenders:    tenders,
		deliveries: deliveries,
		validator:  engine.NewSnapshotValidator(),
		eventStore: eventStore,
		metrics:    reg,
		logger:     logger.With().Str("component", "reconciliation").Logger(),
		now:        time.Now,
	}
}

// Reconcile loads the tender and its deliveries and reconciles them
func (s *ReconciliationService) Reconcile(ctx context.Context, tenderID string, opts Options) (*dto.ReconciliationResult, error) {
	tender, err := s.tenders.GetTender(ctx, tenderID)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to load tender %s: %w", tenderID, err)
	}

	deliveries, err := s.deliveries.GetDeliveriesByTender(ctx, tenderID)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to load deliveries for tender %s: %w", tenderID, err)
	}

	return s.ReconcileSnapshot(ctx, tender, deliveries, opts)
}

// ReconcileSnapshot reconciles an already-loaded tender snapshot. The snapshot
// is validated first; integrity warnings are logged and carried in the result.
func (s *ReconciliationService) ReconcileSnapshot(
	ctx context.Context,
	tender *entities.Tender,
	deliveries []*entities.Delivery,
	opts Options,
) (*dto.ReconciliationResult, error) {
	start := time.Now()
	if tender == nil {
		s.recordFailure()
		return nil, fmt.Errorf("%w: tender is required", ErrInvalidSnapshot)
	}

	deliveries = compact(deliveries)
	log := s.logger.With().Str("tender_id", tender.ID).Logger()

	validation := s.validator.ValidateSnapshot(tender, deliveries)
	if validation.HasErrors() {
		s.recordFailure()
		log.Error().Strs("errors", validation.Errors).Msg("snapshot failed validation")
		return nil, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(validation.Errors, "; "))
	}
	for _, orphan := range validation.OrphanedItems {
		log.Warn().
			Str("delivery_number", orphan.DeliveryNumber).
			Str("item_master_id", string(orphan.ItemMasterID)).
			Int64("quantity", int64(orphan.Quantity)).
			Msg("delivery item has no matching tender line item")
	}

	result := BuildResult(tender, deliveries, opts, s.now())
	result.Warnings = append(result.Warnings, validation.Warnings...)
	for _, w := range validation.Warnings[len(validation.OrphanedItems):] {
		log.Warn().Msg(w)
	}

	log.Info().
		Str("mode", opts.Mode.String()).
		Str("policy", opts.Policy.String()).
		Int("deliveries", len(deliveries)).
		Str("estimated_value", result.Valuation.EstimatedValue.String()).
		Str("actual_value", result.Valuation.ActualValue.String()).
		Msg("tender reconciled")

	if s.metrics != nil {
		s.metrics.Reconciliations.WithLabelValues(opts.Mode.String(), opts.Policy.String()).Inc()
		s.metrics.ReconcileDurationSec.Observe(time.Since(start).Seconds())
		s.metrics.OrphanedDeliveryItems.Add(float64(len(validation.OrphanedItems)))
		s.metrics.DataWarnings.Add(float64(len(validation.Warnings)))
	}
	if s.eventStore != nil {
		event := events.NewTenderReconciledEvent(tender.ID, result.Valuation.EstimatedValue, result.Valuation.ActualValue, len(result.Warnings))
		if err := s.eventStore.AppendEvent(tender.ID, event); err != nil {
			log.Warn().Err(err).Msg("failed to publish tender reconciled event")
		}
	}

	return result, nil
}

// BuildResult runs the engine over a validated snapshot. It never fails: every
// input maps to a well-defined result.
func BuildResult(tender *entities.Tender, deliveries []*entities.Delivery, opts Options, computedAt time.Time) *dto.ReconciliationResult {
	ledger := engine.NewLedger(deliveries, opts.Policy)
	items := tender.Items

	result := &dto.ReconciliationResult{
		TenderID:               tender.ID,
		ReferenceNumber:        tender.ReferenceNumber,
		Title:                  tender.Title,
		Mode:                   opts.Mode,
		Policy:                 opts.Policy,
		PricingStatus:          tender.PricingStatus().String(),
		Items:                  make([]dto.ItemReconciliation, 0, len(items)),
		Deliveries:             make([]dto.DeliveryReconciliation, 0, len(deliveries)),
		OverallProgressPercent: engine.OverallProgressPercent(items, ledger),
		Warnings:               []string{},
		ComputedAt:             computedAt,
	}

	for i := range items {
		item := &items[i]
		received := ledger.Received(item.ItemMasterID)
		result.Items = append(result.Items, dto.ItemReconciliation{
			ItemMasterID:        item.ItemMasterID,
			Nomenclature:        item.Nomenclature,
			OrderedQuantity:     item.OrderedQuantity,
			ReceivedQuantity:    received,
			OutstandingQuantity: ledger.Outstanding(item),
			Status:              engine.ItemFulfillment(item, ledger),
			ProgressPercent:     engine.ProgressPercent(received, item.OrderedQuantity),
			EstimatedUnitPrice:  item.EstimatedUnitPrice,
			EffectiveUnitPrice:  engine.EffectiveUnitPrice(item, opts.Overrides),
			EstimatedLineTotal:  engine.EstimatedLineTotal(item),
			ActualLineTotal:     engine.ActualLineTotal(item, ledger, opts.Mode, opts.Overrides),
		})
	}

	for _, d := range deliveries {
		result.Deliveries = append(result.Deliveries, dto.DeliveryReconciliation{
			ID:             d.ID,
			DeliveryNumber: d.DeliveryNumber,
			DeliveryDate:   d.DeliveryDate,
			Status:         engine.ClassifyDelivery(d, items, ledger),
			ItemCount:      len(d.Items),
			TotalQuantity:  d.TotalQuantity(),
		})
	}

	estimated := engine.TenderEstimatedValue(items)
	actual := engine.TenderActualValue(items, ledger, opts.Mode, opts.Overrides)
	variance := engine.ComputeVariance(estimated, actual)
	result.Valuation = dto.TenderValuation{
		EstimatedValue:   estimated,
		ActualValue:      actual,
		VarianceAbsolute: variance.Absolute,
		VariancePercent:  variance.Percent,
		PendingValue:     engine.PendingValue(items, ledger, opts.Overrides),
	}

	return result
}

func (s *ReconciliationService) recordFailure() {
	if s.metrics != nil {
		s.metrics.ReconcileFailures.Inc()
	}
}

func compact(deliveries []*entities.Delivery) []*entities.Delivery {
	out := make([]*entities.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}
