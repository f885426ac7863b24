package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the reconciliation and delivery lifecycle metrics. Each
// instance has its own prometheus registry.
type Registry struct {
	reg                   *prometheus.Registry
	Reconciliations       *prometheus.CounterVec
	ReconcileFailures     prometheus.Counter
	ReconcileDurationSec  prometheus.Histogram
	OrphanedDeliveryItems prometheus.Counter
	DataWarnings          prometheus.Counter

	// delivery and pricing lifecycle
	DeliveriesCreated    prometheus.Counter
	DeliveriesFinalized  prometheus.Counter
	PricingConfirmations prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tenderledger_reconciliations_total",
		Help: "Tender snapshots reconciled, by valuation mode and receipt policy.",
	}, []string{"mode", "policy"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_reconcile_failures_total", Help: "Reconciliations rejected by load or snapshot validation errors."})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tenderledger_reconcile_duration_seconds",
		Help:    "Time spent validating and reconciling one snapshot.",
		Buckets: prometheus.DefBuckets,
	})
	orphans := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_orphaned_delivery_items_total", Help: "Delivery lines excluded from valuation because their item is not on the tender."})
	warnings := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_data_warnings_total", Help: "Data integrity warnings raised while reconciling."})

	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_deliveries_created_total", Help: "Deliveries opened."})
	finalized := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_deliveries_finalized_total", Help: "Deliveries finalized into inventory."})
	confirmations := prometheus.NewCounter(prometheus.CounterOpts{Name: "tenderledger_pricing_confirmations_total", Help: "Tender pricing confirmations committed."})

	r.MustRegister(reconciliations, failures, duration, orphans, warnings, created, finalized, confirmations)
	return &Registry{
		reg:                   r,
		Reconciliations:       reconciliations,
		ReconcileFailures:     failures,
		ReconcileDurationSec:  duration,
		OrphanedDeliveryItems: orphans,
		DataWarnings:          warnings,
		DeliveriesCreated:     created,
		DeliveriesFinalized:   finalized,
		PricingConfirmations:  confirmations,
	}
}

// Gatherer exposes the underlying registry, mainly for tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
