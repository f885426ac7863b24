package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

const (
	TenderItemsFile   = "tender_items.csv"
	DeliveriesFile    = "deliveries.csv"
	DeliveryItemsFile = "delivery_items.csv"
)

var (
	tenderItemsHeader   = []string{"tender_id", "line_id", "item_master_id", "nomenclature", "ordered_quantity", "estimated_unit_price", "actual_unit_price"}
	deliveriesHeader    = []string{"delivery_id", "tender_id", "delivery_number", "delivery_date", "is_finalized", "finalized_by"}
	deliveryItemsHeader = []string{"delivery_id", "item_master_id", "item_name", "delivery_quantity", "serial_numbers"}
)

// Scenario is every tender and delivery found in a scenario directory
type Scenario struct {
	Tenders    []*entities.Tender
	Deliveries []*entities.Delivery
}

// Loader handles loading tender snapshots from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario loads tender_items.csv, deliveries.csv and delivery_items.csv from dir
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	tenders, err := l.LoadTenders(filepath.Join(dir, TenderItemsFile))
	if err != nil {
		return nil, err
	}
	deliveries, err := l.LoadDeliveries(filepath.Join(dir, DeliveriesFile), filepath.Join(dir, DeliveryItemsFile))
	if err != nil {
		return nil, err
	}
	return &Scenario{Tenders: tenders, Deliveries: deliveries}, nil
}

// LoadTenders groups tender item rows by tender_id. A tender whose every line
// carries an actual price is treated as pricing-confirmed.
func (l *Loader) LoadTenders(filename string) ([]*entities.Tender, error) {
	records, err := readRecords(filename, "tender items", tenderItemsHeader, false)
	if err != nil {
		return nil, err
	}

	var tenders []*entities.Tender
	byID := make(map[string]*entities.Tender)
	for i, record := range records {
		tenderID := strings.TrimSpace(record[0])
		if tenderID == "" {
			return nil, fmt.Errorf("tender items CSV row %d: tender_id cannot be empty", i+2)
		}
		item, err := parseTenderItem(record)
		if err != nil {
			return nil, fmt.Errorf("tender items CSV row %d: %w", i+2, err)
		}

		tender, ok := byID[tenderID]
		if !ok {
			tender = &entities.Tender{ID: tenderID}
			byID[tenderID] = tender
			tenders = append(tenders, tender)
		}
		tender.Items = append(tender.Items, *item)
	}

	for _, t := range tenders {
		t.PricingConfirmed = allPriced(t.Items)
	}
	return tenders, nil
}

// LoadDeliveries loads delivery headers and attaches their item rows
func (l *Loader) LoadDeliveries(deliveriesFile, itemsFile string) ([]*entities.Delivery, error) {
	headers, err := readRecords(deliveriesFile, "deliveries", deliveriesHeader, true)
	if err != nil {
		return nil, err
	}

	var deliveries []*entities.Delivery
	byID := make(map[string]*entities.Delivery)
	for i, record := range headers {
		d, err := parseDelivery(record)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: %w", i+2, err)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("deliveries CSV row %d: duplicate delivery_id %s", i+2, d.ID)
		}
		byID[d.ID] = d
		deliveries = append(deliveries, d)
	}

	items, err := readRecords(itemsFile, "delivery items", deliveryItemsHeader, true)
	if err != nil {
		return nil, err
	}
	for i, record := range items {
		d, ok := byID[strings.TrimSpace(record[0])]
		if !ok {
			return nil, fmt.Errorf("delivery items CSV row %d: unknown delivery_id %s", i+2, record[0])
		}
		line, err := parseDeliveryItem(record)
		if err != nil {
			return nil, fmt.Errorf("delivery items CSV row %d: %w", i+2, err)
		}
		// Rows are taken as recorded; negative quantities surface in snapshot validation.
		d.Items = append(d.Items, line)
	}

	return deliveries, nil
}

func readRecords(filename, kind string, expectedHeader []string, allowEmpty bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) == 0 || (!allowEmpty && len(records) < 2) {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseTenderItem(record []string) (*entities.TenderLineItem, error) {
	ordered, err := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ordered_quantity: %s", record[4])
	}

	estimated, err := decimal.NewFromString(strings.TrimSpace(record[5]))
	if err != nil {
		return nil, fmt.Errorf("invalid estimated_unit_price: %s", record[5])
	}

	var actual decimal.NullDecimal
	if raw := strings.TrimSpace(record[6]); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid actual_unit_price: %s", record[6])
		}
		actual = decimal.NewNullDecimal(price)
	}

	return entities.NewTenderLineItem(
		strings.TrimSpace(record[1]),
		entities.ItemMasterID(strings.TrimSpace(record[2])),
		record[3],
		entities.Quantity(ordered),
		estimated,
		actual,
	)
}

func parseDelivery(record []string) (*entities.Delivery, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid delivery_date format: %s (expected YYYY-MM-DD)", record[3])
	}

	d, err := entities.NewDelivery(strings.TrimSpace(record[0]), strings.TrimSpace(record[1]), strings.TrimSpace(record[2]), date)
	if err != nil {
		return nil, err
	}

	finalized, err := parseBool(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid is_finalized: %s (expected: true or false)", record[4])
	}
	if finalized {
		if err := d.Finalize(strings.TrimSpace(record[5]), date); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func parseDeliveryItem(record []string) (entities.DeliveryLineItem, error) {
	itemMasterID := strings.TrimSpace(record[1])
	if itemMasterID == "" {
		return entities.DeliveryLineItem{}, fmt.Errorf("item_master_id cannot be empty")
	}

	qty, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
	if err != nil {
		return entities.DeliveryLineItem{}, fmt.Errorf("invalid delivery_quantity: %s", record[3])
	}

	line := entities.DeliveryLineItem{
		ItemMasterID:     entities.ItemMasterID(itemMasterID),
		ItemName:         record[2],
		DeliveryQuantity: entities.Quantity(qty),
	}
	for _, sn := range strings.Split(record[4], ";") {
		if sn = strings.TrimSpace(sn); sn != "" {
			line.SerialNumbers = append(line.SerialNumbers, entities.SerialNumber{Value: sn})
		}
	}
	return line, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "no":
		return false, nil
	case "true", "1", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s", s)
	}
}

func allPriced(items []entities.TenderLineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !item.ActualUnitPrice.Valid {
			return false
		}
	}
	return true
}
