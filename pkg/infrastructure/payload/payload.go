// Package payload maps backend REST responses onto validated entities. It is
// the only place that deals with absent, null or loosely typed fields; the
// engine only ever sees the typed result.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

type tenderPayload struct {
	ID               flexString        `json:"id"`
	TenderID         flexString        `json:"tender_id"`
	ReferenceNumber  flexString        `json:"reference_number"`
	Title            flexString        `json:"title"`
	TenderTitle      flexString        `json:"tender_title"`
	PricingConfirmed flexBool          `json:"pricing_confirmed"`
	Items            []tenderItemEntry `json:"items"`
}

type tenderItemEntry struct {
	ID                 flexString  `json:"id"`
	ItemMasterID       flexString  `json:"item_master_id"`
	Nomenclature       flexString  `json:"nomenclature"`
	Quantity           flexDecimal `json:"quantity"`
	EstimatedUnitPrice flexDecimal `json:"estimated_unit_price"`
	ActualUnitPrice    flexDecimal `json:"actual_unit_price"`
	TotalAmount        flexDecimal `json:"total_amount"`
	PricingConfirmed   flexBool    `json:"pricing_confirmed"`
}

type deliveryPayload struct {
	ID             flexString          `json:"id"`
	TenderID       flexString          `json:"tender_id"`
	DeliveryNumber flexString          `json:"delivery_number"`
	DeliveryDate   flexTime            `json:"delivery_date"`
	Personnel      flexString          `json:"delivery_personnel"`
	IsFinalized    flexBool            `json:"is_finalized"`
	FinalizedAt    flexTime            `json:"finalized_at"`
	FinalizedBy    flexString          `json:"finalized_by"`
	Items          []deliveryItemEntry `json:"items"`
}

type deliveryItemEntry struct {
	ItemMasterID  flexString   `json:"item_master_id"`
	ItemName      flexString   `json:"item_name"`
	DeliveryQty   flexDecimal  `json:"delivery_qty"`
	Quantity      flexDecimal  `json:"quantity"`
	SerialNumbers serialValues `json:"serial_numbers"`
}

// serialValues accepts a list of strings, a list of {serial_number, notes,
// status} objects, or a single comma separated string.
type serialValues []entities.SerialNumber

func (s *serialValues) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) || len(data) == 0 {
		return nil
	}

	if data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		for _, part := range strings.Split(joined, ",") {
			if v := cleanText(part); v != "" {
				*s = append(*s, entities.SerialNumber{Value: v})
			}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("serial_numbers: %w", err)
	}
	for _, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) > 0 && entry[0] == '{' {
			var obj struct {
				SerialNumber flexString `json:"serial_number"`
				Notes        flexString `json:"notes"`
				Status       flexString `json:"status"`
			}
			if err := json.Unmarshal(entry, &obj); err != nil {
				return fmt.Errorf("serial_numbers: %w", err)
			}
			if obj.SerialNumber.valid {
				*s = append(*s, entities.SerialNumber{Value: obj.SerialNumber.value, Notes: obj.Notes.value, Status: obj.Status.value})
			}
			continue
		}
		var v flexString
		if err := json.Unmarshal(entry, &v); err != nil {
			return fmt.Errorf("serial_numbers: %w", err)
		}
		if v.valid {
			*s = append(*s, entities.SerialNumber{Value: v.value})
		}
	}
	return nil
}

// DecodeTender reads a tender fetch response. A missing estimated unit price
// is derived from total_amount when a positive quantity allows it. Pricing is
// confirmed when the tender says so or every line carries pricing_confirmed.
func DecodeTender(r io.Reader) (*entities.Tender, error) {
	var p tenderPayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode tender payload: %w", err)
	}

	id := p.ID
	if !id.valid {
		id = p.TenderID
	}
	title := p.Title
	if !title.valid {
		title = p.TenderTitle
	}

	items := make([]entities.TenderLineItem, 0, len(p.Items))
	allConfirmed := len(p.Items) > 0
	for i, entry := range p.Items {
		item, err := entry.toEntity()
		if err != nil {
			return nil, fmt.Errorf("tender item %d: %w", i, err)
		}
		items = append(items, *item)
		allConfirmed = allConfirmed && entry.PricingConfirmed.value
	}

	tender, err := entities.NewTender(id.value, p.ReferenceNumber.value, title.value, items)
	if err != nil {
		return nil, err
	}
	tender.PricingConfirmed = p.PricingConfirmed.value || allConfirmed
	return tender, nil
}

func (e tenderItemEntry) toEntity() (*entities.TenderLineItem, error) {
	qty, err := e.Quantity.integer("quantity")
	if err != nil {
		return nil, err
	}

	estimated := e.EstimatedUnitPrice.or(decimal.Zero)
	if !e.EstimatedUnitPrice.valid && e.TotalAmount.valid && qty > 0 {
		estimated = e.TotalAmount.value.Div(decimal.NewFromInt(qty))
	}

	return entities.NewTenderLineItem(
		e.ID.value,
		entities.ItemMasterID(e.ItemMasterID.value),
		e.Nomenclature.value,
		entities.Quantity(qty),
		estimated,
		e.ActualUnitPrice.nullable(),
	)
}

// DecodeDeliveries reads a deliveries fetch response: an array, a single
// object, or null. Deliveries without their own tender_id are attributed to
// tenderID. Quantities are taken as sent; negative ones are left for
// snapshot validation to reject.
func DecodeDeliveries(r io.Reader, tenderID string) ([]*entities.Delivery, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read deliveries payload: %w", err)
	}
	data = bytes.TrimSpace(data)

	var payloads []deliveryPayload
	switch {
	case len(data) == 0 || bytes.Equal(data, null):
		return []*entities.Delivery{}, nil
	case data[0] == '{':
		var single deliveryPayload
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to decode delivery payload: %w", err)
		}
		payloads = []deliveryPayload{single}
	default:
		if err := json.Unmarshal(data, &payloads); err != nil {
			return nil, fmt.Errorf("failed to decode deliveries payload: %w", err)
		}
	}

	deliveries := make([]*entities.Delivery, 0, len(payloads))
	for i, p := range payloads {
		d, err := p.toEntity(tenderID)
		if err != nil {
			return nil, fmt.Errorf("delivery %d: %w", i, err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func (p deliveryPayload) toEntity(tenderID string) (*entities.Delivery, error) {
	if p.TenderID.valid {
		tenderID = p.TenderID.value
	}
	number := p.DeliveryNumber
	if !number.valid {
		number = p.ID
	}

	d, err := entities.NewDelivery(p.ID.value, tenderID, number.value, p.DeliveryDate.value)
	if err != nil {
		return nil, err
	}
	d.Personnel = p.Personnel.value

	for i, entry := range p.Items {
		if !entry.ItemMasterID.valid {
			return nil, fmt.Errorf("item %d: item master id cannot be empty", i)
		}
		qtyField, name := entry.DeliveryQty, "delivery_qty"
		if !qtyField.valid {
			qtyField, name = entry.Quantity, "quantity"
		}
		qty, err := qtyField.integer(name)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		d.Items = append(d.Items, entities.DeliveryLineItem{
			ItemMasterID:     entities.ItemMasterID(entry.ItemMasterID.value),
			ItemName:         entry.ItemName.value,
			DeliveryQuantity: entities.Quantity(qty),
			SerialNumbers:    []entities.SerialNumber(entry.SerialNumbers),
		})
	}

	if p.IsFinalized.value {
		d.IsFinalized = true
		d.FinalizedBy = p.FinalizedBy.value
		if p.FinalizedAt.valid {
			at := p.FinalizedAt.value
			d.FinalizedAt = &at
		}
	}
	return d, nil
}
