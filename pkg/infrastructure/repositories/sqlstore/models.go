package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

type TenderModel struct {
	ID                 string `gorm:"primaryKey"`
	ReferenceNumber    string
	Title              string
	PricingConfirmed   bool `gorm:"not null;default:false"`
	PricingConfirmedAt *time.Time
	Items              []TenderItemModel `gorm:"foreignKey:TenderID"`
}

func (TenderModel) TableName() string { return "tenders" }

type TenderItemModel struct {
	ID                 uint   `gorm:"primaryKey"`
	TenderID           string `gorm:"not null;uniqueIndex:idx_tender_item_master"`
	LineID             string
	ItemMasterID       string `gorm:"not null;uniqueIndex:idx_tender_item_master"`
	Nomenclature       string
	Quantity           int64               `gorm:"not null"`
	EstimatedUnitPrice decimal.Decimal     `gorm:"type:text;not null"`
	ActualUnitPrice    decimal.NullDecimal `gorm:"type:text"` // NULL until pricing is confirmed
}

func (TenderItemModel) TableName() string { return "tender_items" }

type DeliveryModel struct {
	ID             string `gorm:"primaryKey"`
	TenderID       string `gorm:"not null;index;uniqueIndex:idx_tender_delivery_number"`
	DeliveryNumber string `gorm:"not null;uniqueIndex:idx_tender_delivery_number"`
	DeliveryDate   time.Time
	Personnel      string
	IsFinalized    bool `gorm:"not null;default:false"`
	FinalizedAt    *time.Time
	FinalizedBy    string
	Items          []DeliveryItemModel `gorm:"foreignKey:DeliveryID"`
}

func (DeliveryModel) TableName() string { return "deliveries" }

type DeliveryItemModel struct {
	ID           uint   `gorm:"primaryKey"`
	DeliveryID   string `gorm:"not null;index"`
	ItemMasterID string `gorm:"not null"`
	ItemName     string
	Quantity     int64               `gorm:"not null"`
	Serials      []SerialNumberModel `gorm:"foreignKey:DeliveryItemID"`
}

func (DeliveryItemModel) TableName() string { return "delivery_items" }

type SerialNumberModel struct {
	ID             uint `gorm:"primaryKey"`
	DeliveryItemID uint `gorm:"not null;index"`
	Value          string
	Notes          string
	Status         string
}

func (SerialNumberModel) TableName() string { return "serial_numbers" }

func tenderFromEntity(t *entities.Tender) TenderModel {
	m := TenderModel{
		ID:                 t.ID,
		ReferenceNumber:    t.ReferenceNumber,
		Title:              t.Title,
		PricingConfirmed:   t.PricingConfirmed,
		PricingConfirmedAt: t.PricingConfirmedAt,
		Items:              make([]TenderItemModel, 0, len(t.Items)),
	}
	for _, item := range t.Items {
		m.Items = append(m.Items, TenderItemModel{
			TenderID:           t.ID,
			LineID:             item.ID,
			ItemMasterID:       string(item.ItemMasterID),
			Nomenclature:       item.Nomenclature,
			Quantity:           int64(item.OrderedQuantity),
			EstimatedUnitPrice: item.EstimatedUnitPrice,
			ActualUnitPrice:    item.ActualUnitPrice,
		})
	}
	return m
}

func (m *TenderModel) toEntity() *entities.Tender {
	t := &entities.Tender{
		ID:                 m.ID,
		ReferenceNumber:    m.ReferenceNumber,
		Title:              m.Title,
		PricingConfirmed:   m.PricingConfirmed,
		PricingConfirmedAt: m.PricingConfirmedAt,
		Items:              make([]entities.TenderLineItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		t.Items = append(t.Items, entities.TenderLineItem{
			ID:                 item.LineID,
			ItemMasterID:       entities.ItemMasterID(item.ItemMasterID),
			Nomenclature:       item.Nomenclature,
			OrderedQuantity:    entities.Quantity(item.Quantity),
			EstimatedUnitPrice: item.EstimatedUnitPrice,
			ActualUnitPrice:    item.ActualUnitPrice,
		})
	}
	return t
}

func deliveryFromEntity(d *entities.Delivery) DeliveryModel {
	m := DeliveryModel{
		ID:             d.ID,
		TenderID:       d.TenderID,
		DeliveryNumber: d.DeliveryNumber,
		DeliveryDate:   d.DeliveryDate,
		Personnel:      d.Personnel,
		IsFinalized:    d.IsFinalized,
		FinalizedAt:    d.FinalizedAt,
		FinalizedBy:    d.FinalizedBy,
		Items:          make([]DeliveryItemModel, 0, len(d.Items)),
	}
	for _, line := range d.Items {
		item := DeliveryItemModel{
			DeliveryID:   d.ID,
			ItemMasterID: string(line.ItemMasterID),
			ItemName:     line.ItemName,
			Quantity:     int64(line.DeliveryQuantity),
		}
		for _, sn := range line.SerialNumbers {
			item.Serials = append(item.Serials, SerialNumberModel{Value: sn.Value, Notes: sn.Notes, Status: sn.Status})
		}
		m.Items = append(m.Items, item)
	}
	return m
}

func (m *DeliveryModel) toEntity() *entities.Delivery {
	d := &entities.Delivery{
		ID:             m.ID,
		TenderID:       m.TenderID,
		DeliveryNumber: m.DeliveryNumber,
		DeliveryDate:   m.DeliveryDate,
		Personnel:      m.Personnel,
		IsFinalized:    m.IsFinalized,
		FinalizedAt:    m.FinalizedAt,
		FinalizedBy:    m.FinalizedBy,
		Items:          make([]entities.DeliveryLineItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		line := entities.DeliveryLineItem{
			ItemMasterID:     entities.ItemMasterID(item.ItemMasterID),
			ItemName:         item.ItemName,
			DeliveryQuantity: entities.Quantity(item.Quantity),
		}
		for _, sn := range item.Serials {
			line.SerialNumbers = append(line.SerialNumbers, entities.SerialNumber{Value: sn.Value, Notes: sn.Notes, Status: sn.Status})
		}
		d.Items = append(d.Items, line)
	}
	return d
}
