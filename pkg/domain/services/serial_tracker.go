package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

// SerialTracker checks serial numbers recorded against delivery lines.
// Serials are tracking-only and never affect valuation.
type SerialTracker struct {
	serialPattern *regexp.Regexp
}

// NewSerialTracker creates a new serial tracker with the default pattern
func NewSerialTracker() *SerialTracker {
	// Pattern matches serials like SN001, LAP-0042, etc.
	pattern := regexp.MustCompile(`^([A-Za-z]+-?)(\d+)$`)
	return &SerialTracker{
		serialPattern: pattern,
	}
}

// CompareSerials compares two serial numbers with numeric sorting
// Returns: -1 if serial1 < serial2, 0 if equal, 1 if serial1 > serial2
func (st *SerialTracker) CompareSerials(serial1, serial2 string) int {
	if serial1 == serial2 {
		return 0
	}

	prefix1, num1, err1 := st.parseSerial(serial1)
	prefix2, num2, err2 := st.parseSerial(serial2)

	// If either parsing fails, fall back to string comparison
	if err1 != nil || err2 != nil {
		return strings.Compare(serial1, serial2)
	}

	if prefix1 != prefix2 {
		return strings.Compare(prefix1, prefix2)
	}

	if num1 < num2 {
		return -1
	} else if num1 > num2 {
		return 1
	}
	return 0
}

// CheckSerials returns warnings for lines whose serial count differs from
// the delivered quantity and for serials recorded more than once within the
// snapshot, on the same item or across items
func (st *SerialTracker) CheckSerials(deliveries []*entities.Delivery) []string {
	type sighting struct {
		item, delivery string
	}
	type duplicate struct {
		serial string
		first  sighting
		second sighting
	}
	warnings := make([]string, 0)
	seen := make(map[string]sighting)
	duplicates := make([]duplicate, 0)

	for _, d := range deliveries {
		for _, line := range d.Items {
			if n := len(line.SerialNumbers); n > 0 && entities.Quantity(n) != line.DeliveryQuantity {
				warnings = append(warnings, fmt.Sprintf(
					"delivery %s item %s has %d serial numbers for quantity %d",
					d.DeliveryNumber, line.ItemMasterID, n, line.DeliveryQuantity))
			}
			for _, sn := range line.SerialNumbers {
				current := sighting{item: string(line.ItemMasterID), delivery: d.DeliveryNumber}
				if first, ok := seen[sn.Value]; ok {
					duplicates = append(duplicates, duplicate{sn.Value, first, current})
					continue
				}
				seen[sn.Value] = current
			}
		}
	}

	sort.SliceStable(duplicates, func(i, j int) bool {
		return st.CompareSerials(duplicates[i].serial, duplicates[j].serial) < 0
	})
	for _, dup := range duplicates {
		if dup.first.item == dup.second.item {
			warnings = append(warnings, fmt.Sprintf("duplicate serial number %s for item %s in deliveries %s and %s",
				dup.serial, dup.first.item, dup.first.delivery, dup.second.delivery))
			continue
		}
		warnings = append(warnings, fmt.Sprintf("duplicate serial number %s on items %s and %s in deliveries %s and %s",
			dup.serial, dup.first.item, dup.second.item, dup.first.delivery, dup.second.delivery))
	}
	return warnings
}

// parseSerial extracts the prefix and numeric portion from a serial number
func (st *SerialTracker) parseSerial(serial string) (string, int, error) {
	matches := st.serialPattern.FindStringSubmatch(serial)
	if len(matches) != 3 {
		return "", 0, fmt.Errorf("invalid serial format: %s", serial)
	}

	num, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid numeric portion in serial %s: %v", serial, err)
	}

	return matches[1], num, nil
}
