package services

import (
	"testing"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

func TestSerialTracker_CompareSerials(t *testing.T) {
	st := NewSerialTracker()

	tests := []struct {
		name     string
		serial1  string
		serial2  string
		expected int
	}{
		{"equal_serials", "SN001", "SN001", 0},
		{"first_less_than_second", "SN001", "SN002", -1},
		{"first_greater_than_second", "SN002", "SN001", 1},
		{"numeric_ordering", "SN9", "SN10", -1},
		{"hyphenated_prefix", "LAP-0042", "LAP-0100", -1},
		{"different_prefixes", "SN001", "TN001", -1},
		{"invalid_format_fallback", "INVALID", "SN001", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := st.CompareSerials(tt.serial1, tt.serial2)
			if result != tt.expected {
				t.Errorf("CompareSerials(%s, %s) = %d, want %d",
					tt.serial1, tt.serial2, result, tt.expected)
			}
		})
	}
}

func TestSerialTracker_CheckSerials(t *testing.T) {
	first := delivery(1, false, entities.DeliveryLineItem{
		ItemMasterID:     "A",
		DeliveryQuantity: 2,
		SerialNumbers:    []entities.SerialNumber{{Value: "SN1"}, {Value: "SN2"}},
	})
	second := delivery(2, false, entities.DeliveryLineItem{
		ItemMasterID:     "A",
		DeliveryQuantity: 3,
		SerialNumbers:    []entities.SerialNumber{{Value: "SN2"}},
	})
	untracked := delivery(3, false, received("B", 9))

	warnings := NewSerialTracker().CheckSerials([]*entities.Delivery{first, second, untracked})

	expected := []string{
		"delivery DEL-2026-000002 item A has 1 serial numbers for quantity 3",
		"duplicate serial number SN2 for item A in deliveries DEL-2026-000001 and DEL-2026-000002",
	}
	if len(warnings) != len(expected) {
		t.Fatalf("Expected %d warnings, got %d: %v", len(expected), len(warnings), warnings)
	}
	for i := range expected {
		if warnings[i] != expected[i] {
			t.Errorf("Expected warning '%s', got '%s'", expected[i], warnings[i])
		}
	}
}

func TestSerialTracker_CheckSerialsAcrossItems(t *testing.T) {
	laptops := delivery(1, false, entities.DeliveryLineItem{
		ItemMasterID:     "LAPTOP",
		DeliveryQuantity: 1,
		SerialNumbers:    []entities.SerialNumber{{Value: "SN7"}},
	})
	monitors := delivery(2, false, entities.DeliveryLineItem{
		ItemMasterID:     "MONITOR",
		DeliveryQuantity: 1,
		SerialNumbers:    []entities.SerialNumber{{Value: "SN7"}},
	})

	warnings := NewSerialTracker().CheckSerials([]*entities.Delivery{laptops, monitors})

	expected := "duplicate serial number SN7 on items LAPTOP and MONITOR in deliveries DEL-2026-000001 and DEL-2026-000002"
	if len(warnings) != 1 || warnings[0] != expected {
		t.Fatalf("Expected [%s], got %v", expected, warnings)
	}
}
