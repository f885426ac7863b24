package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/domain/services"
)

// ReconciliationResult contains the complete output of reconciling one tender snapshot
type ReconciliationResult struct {
	TenderID               string                   `json:"tender_id"`
	ReferenceNumber        string                   `json:"reference_number,omitempty"`
	Title                  string                   `json:"title,omitempty"`
	Mode                   services.ValuationMode   `json:"mode"`
	Policy                 services.ReceiptPolicy   `json:"policy"`
	PricingStatus          string                   `json:"pricing_status"`
	Items                  []ItemReconciliation     `json:"items"`
	Deliveries             []DeliveryReconciliation `json:"deliveries"`
	Valuation              TenderValuation          `json:"valuation"`
	OverallProgressPercent decimal.Decimal          `json:"overall_progress_percent"`
	Warnings               []string                 `json:"warnings"`
	ComputedAt             time.Time                `json:"computed_at"`
}

// ItemReconciliation is the per-item view: ledger state, status and pricing
type ItemReconciliation struct {
	ItemMasterID        entities.ItemMasterID      `json:"item_master_id"`
	Nomenclature        string                     `json:"nomenclature"`
	OrderedQuantity     entities.Quantity          `json:"ordered_quantity"`
	ReceivedQuantity    entities.Quantity          `json:"received_quantity"`
	OutstandingQuantity entities.Quantity          `json:"outstanding_quantity"`
	Status              entities.FulfillmentStatus `json:"status"`
	ProgressPercent     decimal.Decimal            `json:"progress_percent"`
	EstimatedUnitPrice  decimal.Decimal            `json:"estimated_unit_price"`
	EffectiveUnitPrice  decimal.Decimal            `json:"effective_unit_price"`
	EstimatedLineTotal  decimal.Decimal            `json:"estimated_line_total"`
	ActualLineTotal     decimal.Decimal            `json:"actual_line_total"`
}

// DeliveryReconciliation is the per-delivery view
type DeliveryReconciliation struct {
	ID             string                  `json:"id"`
	DeliveryNumber string                  `json:"delivery_number"`
	DeliveryDate   time.Time               `json:"delivery_date"`
	Status         entities.DeliveryStatus `json:"status"`
	ItemCount      int                     `json:"item_count"`
	TotalQuantity  entities.Quantity       `json:"total_quantity"`
}

// TenderValuation is the tender-level monetary summary
type TenderValuation struct {
	EstimatedValue   decimal.Decimal `json:"estimated_value"`
	ActualValue      decimal.Decimal `json:"actual_value"`
	VarianceAbsolute decimal.Decimal `json:"variance_absolute"`
	VariancePercent  decimal.Decimal `json:"variance_percent"`
	PendingValue     decimal.Decimal `json:"pending_value"`
}
