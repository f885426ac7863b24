package services

import (
	"fmt"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// SnapshotValidator checks the integrity of a tender + deliveries snapshot
// before it reaches the engine
type SnapshotValidator struct {
	serials *SerialTracker
}

// NewSnapshotValidator creates a new snapshot validator
func NewSnapshotValidator() *SnapshotValidator {
	return &SnapshotValidator{serials: NewSerialTracker()}
}

// OrphanedDeliveryItem is a delivery line whose item is not on the tender
type OrphanedDeliveryItem struct {
	DeliveryNumber string
	ItemMasterID   entities.ItemMasterID
	Quantity       entities.Quantity
}

// ValidationResult contains the results of snapshot validation. Errors make
// the snapshot unusable; warnings are data-integrity notes.
type ValidationResult struct {
	DuplicateItems           []entities.ItemMasterID
	DuplicateDeliveryNumbers []string
	OrphanedItems            []OrphanedDeliveryItem
	Errors                   []string
	Warnings                 []string
}

// HasErrors reports whether the snapshot failed validation
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ValidateSnapshot performs every integrity check on a snapshot
func (v *SnapshotValidator) ValidateSnapshot(tender *entities.Tender, deliveries []*entities.Delivery) *ValidationResult {
	result := &ValidationResult{
		DuplicateItems:           make([]entities.ItemMasterID, 0),
		DuplicateDeliveryNumbers: make([]string, 0),
		OrphanedItems:            make([]OrphanedDeliveryItem, 0),
		Errors:                   make([]string, 0),
		Warnings:                 make([]string, 0),
	}

	result.DuplicateItems = v.detectDuplicateItems(tender.Items)
	if len(result.DuplicateItems) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate tender line items: %v", result.DuplicateItems))
	}

	result.DuplicateDeliveryNumbers = v.detectDuplicateDeliveryNumbers(deliveries)
	if len(result.DuplicateDeliveryNumbers) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate delivery numbers: %v", result.DuplicateDeliveryNumbers))
	}

	for _, d := range deliveries {
		if d.TenderID != "" && d.TenderID != tender.ID {
			result.Errors = append(result.Errors,
				fmt.Sprintf("delivery %s belongs to tender %s, not %s", d.DeliveryNumber, d.TenderID, tender.ID))
		}
		for _, line := range d.Items {
			if line.DeliveryQuantity < 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("delivery %s has negative quantity %d for item %s", d.DeliveryNumber, line.DeliveryQuantity, line.ItemMasterID))
			}
		}
	}

	result.OrphanedItems = v.detectOrphanedItems(tender, deliveries)
	for _, orphan := range result.OrphanedItems {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("delivery %s references item %s which is not on the tender (qty %d excluded from valuation)",
				orphan.DeliveryNumber, orphan.ItemMasterID, orphan.Quantity))
	}

	result.Warnings = append(result.Warnings, v.serials.CheckSerials(deliveries)...)

	return result
}

// detectDuplicateItems finds item master ids that appear on more than one tender line
func (v *SnapshotValidator) detectDuplicateItems(items []entities.TenderLineItem) []entities.ItemMasterID {
	seen := make(map[entities.ItemMasterID]bool)
	duplicates := make([]entities.ItemMasterID, 0)

	for _, item := range items {
		if seen[item.ItemMasterID] {
			duplicates = append(duplicates, item.ItemMasterID)
		} else {
			seen[item.ItemMasterID] = true
		}
	}

	return duplicates
}

// detectDuplicateDeliveryNumbers enforces delivery number uniqueness per tender
func (v *SnapshotValidator) detectDuplicateDeliveryNumbers(deliveries []*entities.Delivery) []string {
	seen := make(map[string]bool)
	duplicates := make([]string, 0)

	for _, d := range deliveries {
		if seen[d.DeliveryNumber] {
			duplicates = append(duplicates, d.DeliveryNumber)
		} else {
			seen[d.DeliveryNumber] = true
		}
	}

	return duplicates
}

// detectOrphanedItems lists delivery lines with no matching tender line item
func (v *SnapshotValidator) detectOrphanedItems(tender *entities.Tender, deliveries []*entities.Delivery) []OrphanedDeliveryItem {
	known := make(map[entities.ItemMasterID]bool, len(tender.Items))
	for _, item := range tender.Items {
		known[item.ItemMasterID] = true
	}

	orphans := make([]OrphanedDeliveryItem, 0)
	for _, d := range deliveries {
		for _, line := range d.Items {
			if !known[line.ItemMasterID] {
				orphans = append(orphans, OrphanedDeliveryItem{
					DeliveryNumber: d.DeliveryNumber,
					ItemMasterID:   line.ItemMasterID,
					Quantity:       line.DeliveryQuantity,
				})
			}
		}
	}

	return orphans
}
