package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

func lineItem(id string, ordered int64, estimated int64) entities.TenderLineItem {
	return entities.TenderLineItem{
		ID:                 "line-" + id,
		ItemMasterID:       entities.ItemMasterID(id),
		Nomenclature:       id,
		OrderedQuantity:    entities.Quantity(ordered),
		EstimatedUnitPrice: decimal.NewFromInt(estimated),
	}
}

func withActual(item entities.TenderLineItem, actual int64) entities.TenderLineItem {
	item.ActualUnitPrice = decimal.NewNullDecimal(decimal.NewFromInt(actual))
	return item
}

func delivery(seq int, finalized bool, lines ...entities.DeliveryLineItem) *entities.Delivery {
	return &entities.Delivery{
		ID:             fmt.Sprintf("D%d", seq),
		TenderID:       "T1",
		DeliveryNumber: fmt.Sprintf("DEL-2026-%06d", seq),
		DeliveryDate:   time.Date(2026, 1, seq, 0, 0, 0, 0, time.UTC),
		IsFinalized:    finalized,
		Items:          lines,
	}
}

func received(id string, qty int64) entities.DeliveryLineItem {
	return entities.DeliveryLineItem{
		ItemMasterID:     entities.ItemMasterID(id),
		DeliveryQuantity: entities.Quantity(qty),
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
