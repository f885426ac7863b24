package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// The backend serialises SQL decimals, bits and identity columns
// inconsistently: numbers may arrive quoted, booleans as 0/1, ids as either
// numbers or strings. These field types absorb that at decode time.

var null = []byte("null")

type flexString struct {
	value string
	valid bool
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = cleanText(s)
		f.value, f.valid = s, s != ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	f.value, f.valid = n.String(), true
	return nil
}

type flexDecimal struct {
	value decimal.Decimal
	valid bool
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) || bytes.Equal(data, []byte(`""`)) {
		return nil
	}
	if err := f.value.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid decimal %s: %w", data, err)
	}
	f.valid = true
	return nil
}

func (f flexDecimal) or(fallback decimal.Decimal) decimal.Decimal {
	if f.valid {
		return f.value
	}
	return fallback
}

func (f flexDecimal) nullable() decimal.NullDecimal {
	if !f.valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(f.value)
}

var (
	maxInteger = decimal.NewFromInt(math.MaxInt64)
	minInteger = decimal.NewFromInt(math.MinInt64)
)

// integer reports the value as a whole number. Fractional and out of range
// quantities are rejected.
func (f flexDecimal) integer(field string) (int64, error) {
	if !f.valid {
		return 0, nil
	}
	if !f.value.Equal(f.value.Truncate(0)) {
		return 0, fmt.Errorf("%s must be a whole number, got %s", field, f.value)
	}
	if f.value.GreaterThan(maxInteger) || f.value.LessThan(minInteger) {
		return 0, fmt.Errorf("%s is out of range, got %s", field, f.value)
	}
	return f.value.IntPart(), nil
}

type flexBool struct {
	value bool
	valid bool
}

func (f *flexBool) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	switch strings.ToLower(raw) {
	case "null", "":
		return nil
	case "true", "1":
		f.value, f.valid = true, true
	case "false", "0":
		f.value, f.valid = false, true
	default:
		return fmt.Errorf("invalid boolean %s", data)
	}
	return nil
}

type flexTime struct {
	value time.Time
	valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), null) {
		return nil
	}
	s, err := strconv.Unquote(string(bytes.TrimSpace(data)))
	if err != nil {
		return fmt.Errorf("expected date string, got %s", data)
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.value, f.valid = t, true
			return nil
		}
	}
	return fmt.Errorf("unrecognised date %q", s)
}

// cleanText trims and NFC-normalises free text so visually identical ids
// and names compare equal.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
