package entities

import (
	"fmt"
	"time"
)

// SerialNumber tracks an individual unit received in a delivery
type SerialNumber struct {
	Value  string
	Notes  string
	Status string
}

// DeliveryLineItem is the quantity of one tender item physically received
// in a single delivery event
type DeliveryLineItem struct {
	ItemMasterID     ItemMasterID
	ItemName         string
	DeliveryQuantity Quantity
	SerialNumbers    []SerialNumber
}

// NewDeliveryLineItem creates a validated DeliveryLineItem
func NewDeliveryLineItem(itemMasterID ItemMasterID, itemName string, qty Quantity) (*DeliveryLineItem, error) {
	if string(itemMasterID) == "" {
		return nil, fmt.Errorf("item master id cannot be empty")
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: delivery quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}

	return &DeliveryLineItem{
		ItemMasterID:     itemMasterID,
		ItemName:         itemName,
		DeliveryQuantity: qty,
	}, nil
}

// Delivery is a discrete receipt event against a tender
type Delivery struct {
	ID             string
	TenderID       string
	DeliveryNumber string
	DeliveryDate   time.Time
	Personnel      string
	IsFinalized    bool
	FinalizedAt    *time.Time
	FinalizedBy    string
	Items          []DeliveryLineItem
}

// NewDelivery creates a validated, unfinalized Delivery
func NewDelivery(id, tenderID, deliveryNumber string, deliveryDate time.Time) (*Delivery, error) {
	if id == "" {
		return nil, fmt.Errorf("delivery id cannot be empty")
	}
	if tenderID == "" {
		return nil, fmt.Errorf("tender id cannot be empty")
	}
	if deliveryNumber == "" {
		return nil, fmt.Errorf("delivery number cannot be empty")
	}

	return &Delivery{
		ID:             id,
		TenderID:       tenderID,
		DeliveryNumber: deliveryNumber,
		DeliveryDate:   deliveryDate,
		Items:          []DeliveryLineItem{},
	}, nil
}

// AddItem attaches a line to the delivery. A second line for the same item
// master id is merged into the first.
func (d *Delivery) AddItem(line DeliveryLineItem) error {
	if d.IsFinalized {
		return fmt.Errorf("%w: cannot add items to %s", ErrDeliveryFinalized, d.DeliveryNumber)
	}
	if line.DeliveryQuantity <= 0 {
		return fmt.Errorf("%w: delivery quantity must be positive, got %d", ErrInvalidQuantity, line.DeliveryQuantity)
	}
	for i := range d.Items {
		if d.Items[i].ItemMasterID == line.ItemMasterID {
			d.Items[i].DeliveryQuantity += line.DeliveryQuantity
			d.Items[i].SerialNumbers = append(d.Items[i].SerialNumbers, line.SerialNumbers...)
			return nil
		}
	}
	d.Items = append(d.Items, line)
	return nil
}

// RemoveItem drops the line for an item master id
func (d *Delivery) RemoveItem(id ItemMasterID) error {
	if d.IsFinalized {
		return fmt.Errorf("%w: cannot remove items from %s", ErrDeliveryFinalized, d.DeliveryNumber)
	}
	for i := range d.Items {
		if d.Items[i].ItemMasterID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("item %s not found in delivery %s", id, d.DeliveryNumber)
}

// AddSerialNumber records a serial against an existing line
func (d *Delivery) AddSerialNumber(id ItemMasterID, serial SerialNumber) error {
	if d.IsFinalized {
		return fmt.Errorf("%w: cannot add serial numbers to %s", ErrDeliveryFinalized, d.DeliveryNumber)
	}
	if serial.Value == "" {
		return fmt.Errorf("serial number cannot be empty")
	}
	for i := range d.Items {
		if d.Items[i].ItemMasterID == id {
			d.Items[i].SerialNumbers = append(d.Items[i].SerialNumbers, serial)
			return nil
		}
	}
	return fmt.Errorf("item %s not found in delivery %s", id, d.DeliveryNumber)
}

// Finalize marks the delivery as confirmed into inventory. It can happen once.
func (d *Delivery) Finalize(by string, at time.Time) error {
	if d.IsFinalized {
		return fmt.Errorf("%w: %s cannot be finalized twice", ErrDeliveryFinalized, d.DeliveryNumber)
	}
	d.IsFinalized = true
	d.FinalizedAt = &at
	d.FinalizedBy = by
	return nil
}

// TotalQuantity sums all line quantities in this delivery
func (d *Delivery) TotalQuantity() Quantity {
	var total Quantity
	for _, item := range d.Items {
		total += item.DeliveryQuantity
	}
	return total
}

// Clone returns a deep copy of the delivery, serial numbers included.
func (d *Delivery) Clone() *Delivery {
	c := *d
	c.Items = make([]DeliveryLineItem, len(d.Items))
	for i, line := range d.Items {
		line.SerialNumbers = append([]SerialNumber(nil), line.SerialNumbers...)
		c.Items[i] = line
	}
	if d.FinalizedAt != nil {
		at := *d.FinalizedAt
		c.FinalizedAt = &at
	}
	return &c
}
