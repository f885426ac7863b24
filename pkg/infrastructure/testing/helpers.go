package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invmis/tenderledger/pkg/domain/entities"
	"github.com/invmis/tenderledger/pkg/infrastructure/repositories/memory"
)

const OfficeSuppliesTenderID = "TND-001"

// BuildOfficeSuppliesTender builds a three-item tender: laptops and chairs have
// confirmed actual prices, monitors only an estimate.
func BuildOfficeSuppliesTender() *entities.Tender {
	items := []entities.TenderLineItem{
		{
			ID:                 "L1",
			ItemMasterID:       "LAPTOP",
			Nomenclature:       "Laptop 14in",
			OrderedQuantity:    10,
			EstimatedUnitPrice: decimal.NewFromInt(1000),
			ActualUnitPrice:    decimal.NewNullDecimal(decimal.NewFromInt(950)),
		},
		{
			ID:                 "L2",
			ItemMasterID:       "MONITOR",
			Nomenclature:       "Monitor 27in",
			OrderedQuantity:    20,
			EstimatedUnitPrice: decimal.NewFromInt(250),
		},
		{
			ID:                 "L3",
			ItemMasterID:       "CHAIR",
			Nomenclature:       "Office chair",
			OrderedQuantity:    5,
			EstimatedUnitPrice: decimal.NewFromInt(120),
			ActualUnitPrice:    decimal.NewNullDecimal(decimal.NewFromInt(130)),
		},
	}

	tender, err := entities.NewTender(OfficeSuppliesTenderID, "REF/2026/001", "Office supplies", items)
	if err != nil {
		panic(err)
	}
	return tender
}

// BuildOfficeSuppliesDeliveries returns one finalized and one open delivery.
// Counting every delivery, laptops and monitors are complete and chairs are in
// excess; counting finalized deliveries only, laptops are partial and chairs pending.
func BuildOfficeSuppliesDeliveries() []*entities.Delivery {
	first := mustDelivery("dlv-1", "DEL-2026-000001", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	mustAdd(first, "LAPTOP", "Laptop 14in", 6)
	for _, sn := range []string{"LAP-0001", "LAP-0002", "LAP-0003", "LAP-0004", "LAP-0005", "LAP-0006"} {
		if err := first.AddSerialNumber("LAPTOP", entities.SerialNumber{Value: sn}); err != nil {
			panic(err)
		}
	}
	mustAdd(first, "MONITOR", "Monitor 27in", 20)
	if err := first.Finalize("store-keeper", time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)); err != nil {
		panic(err)
	}

	second := mustDelivery("dlv-2", "DEL-2026-000002", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	mustAdd(second, "LAPTOP", "Laptop 14in", 4)
	mustAdd(second, "CHAIR", "Office chair", 7)

	return []*entities.Delivery{first, second}
}

// BuildOfficeSuppliesTestData loads the office supplies scenario into memory repositories
func BuildOfficeSuppliesTestData() (*memory.TenderRepository, *memory.DeliveryRepository) {
	tenderRepo := memory.NewTenderRepository()
	deliveryRepo := memory.NewDeliveryRepository()

	if err := tenderRepo.SaveTender(context.Background(), BuildOfficeSuppliesTender()); err != nil {
		panic(err)
	}
	if err := deliveryRepo.LoadDeliveries(BuildOfficeSuppliesDeliveries()); err != nil {
		panic(err)
	}
	return tenderRepo, deliveryRepo
}

func mustDelivery(id, number string, date time.Time) *entities.Delivery {
	d, err := entities.NewDelivery(id, OfficeSuppliesTenderID, number, date)
	if err != nil {
		panic(err)
	}
	return d
}

func mustAdd(d *entities.Delivery, id entities.ItemMasterID, name string, qty entities.Quantity) {
	line, err := entities.NewDeliveryLineItem(id, name, qty)
	if err != nil {
		panic(err)
	}
	if err := d.AddItem(*line); err != nil {
		panic(err)
	}
}
