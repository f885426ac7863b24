package services

import (
	"fmt"
	"regexp"
	"strconv"
)

var deliveryNumberPattern = regexp.MustCompile(`^DEL-(\d{4})-(\d{6,})$`)

// ParseDeliveryNumber splits DEL-YYYY-NNNNNN into year and sequence. The
// sequence is zero-padded to six digits and may grow past them.
func ParseDeliveryNumber(number string) (year, seq int, ok bool) {
	m := deliveryNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}

// NextDeliveryNumber returns the number following the highest sequence
// already issued in year. Numbers in other formats or years are ignored.
func NextDeliveryNumber(existing []string, year int) string {
	maxSeq := 0
	for _, n := range existing {
		y, seq, ok := ParseDeliveryNumber(n)
		if !ok || y != year {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("DEL-%04d-%06d", year, maxSeq+1)
}
