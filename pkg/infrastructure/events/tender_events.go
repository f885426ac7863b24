package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

const (
	DeliveryCreatedEvent     = "delivery.created"
	DeliveryItemAddedEvent   = "delivery.item.added"
	DeliveryItemRemovedEvent = "delivery.item.removed"
	DeliverySerialAddedEvent = "delivery.serial.added"
	DeliveryFinalizedEvent   = "delivery.finalized"
	DeliveryDeletedEvent     = "delivery.deleted"
	PricingConfirmedEvent    = "tender.pricing.confirmed"
	TenderReconciledEvent    = "tender.reconciled"
)

type DeliveryCreated struct {
	DeliveryID     string    `json:"delivery_id"`
	DeliveryNumber string    `json:"delivery_number"`
	DeliveryDate   time.Time `json:"delivery_date"`
}

type DeliveryItemAdded struct {
	DeliveryID string                    `json:"delivery_id"`
	Item       entities.DeliveryLineItem `json:"item"`
}

type DeliveryItemRemoved struct {
	DeliveryID   string                `json:"delivery_id"`
	ItemMasterID entities.ItemMasterID `json:"item_master_id"`
}

type DeliverySerialAdded struct {
	DeliveryID   string                `json:"delivery_id"`
	ItemMasterID entities.ItemMasterID `json:"item_master_id"`
	Serial       string                `json:"serial"`
}

type DeliveryFinalized struct {
	DeliveryID     string    `json:"delivery_id"`
	DeliveryNumber string    `json:"delivery_number"`
	FinalizedBy    string    `json:"finalized_by"`
	FinalizedAt    time.Time `json:"finalized_at"`
}

type DeliveryDeleted struct {
	DeliveryID     string `json:"delivery_id"`
	DeliveryNumber string `json:"delivery_number"`
}

type PricingConfirmed struct {
	Prices map[entities.ItemMasterID]decimal.Decimal `json:"prices"`
}

type TenderReconciled struct {
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	ActualValue    decimal.Decimal `json:"actual_value"`
	Warnings       int             `json:"warnings"`
}

// Deliveries and pricing are streamed per tender so one tender's history
// reads back in order.

func NewDeliveryCreatedEvent(d *entities.Delivery) Event {
	return NewEvent(DeliveryCreatedEvent, d.TenderID, DeliveryCreated{
		DeliveryID:     d.ID,
		DeliveryNumber: d.DeliveryNumber,
		DeliveryDate:   d.DeliveryDate,
	})
}

func NewDeliveryItemAddedEvent(d *entities.Delivery, item entities.DeliveryLineItem) Event {
	return NewEvent(DeliveryItemAddedEvent, d.TenderID, DeliveryItemAdded{DeliveryID: d.ID, Item: item})
}

func NewDeliveryItemRemovedEvent(d *entities.Delivery, id entities.ItemMasterID) Event {
	return NewEvent(DeliveryItemRemovedEvent, d.TenderID, DeliveryItemRemoved{DeliveryID: d.ID, ItemMasterID: id})
}

func NewDeliverySerialAddedEvent(d *entities.Delivery, id entities.ItemMasterID, serial string) Event {
	return NewEvent(DeliverySerialAddedEvent, d.TenderID, DeliverySerialAdded{DeliveryID: d.ID, ItemMasterID: id, Serial: serial})
}

func NewDeliveryFinalizedEvent(d *entities.Delivery) Event {
	finalized := DeliveryFinalized{
		DeliveryID:     d.ID,
		DeliveryNumber: d.DeliveryNumber,
		FinalizedBy:    d.FinalizedBy,
	}
	if d.FinalizedAt != nil {
		finalized.FinalizedAt = *d.FinalizedAt
	}
	return NewEvent(DeliveryFinalizedEvent, d.TenderID, finalized)
}

func NewDeliveryDeletedEvent(d *entities.Delivery) Event {
	return NewEvent(DeliveryDeletedEvent, d.TenderID, DeliveryDeleted{DeliveryID: d.ID, DeliveryNumber: d.DeliveryNumber})
}

func NewPricingConfirmedEvent(tenderID string, prices map[entities.ItemMasterID]decimal.Decimal) Event {
	return NewEvent(PricingConfirmedEvent, tenderID, PricingConfirmed{Prices: prices})
}

func NewTenderReconciledEvent(tenderID string, estimated, actual decimal.Decimal, warnings int) Event {
	return NewEvent(TenderReconciledEvent, tenderID, TenderReconciled{
		EstimatedValue: estimated,
		ActualValue:    actual,
		Warnings:       warnings,
	})
}
