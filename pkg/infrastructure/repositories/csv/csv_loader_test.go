package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invmis/tenderledger/pkg/domain/entities"
)

func writeScenario(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const tenderItemsCSV = `tender_id,line_id,item_master_id,nomenclature,ordered_quantity,estimated_unit_price,actual_unit_price
T1,1,LAPTOP,Laptop 14in,10,1000,950.50
T1,2,MONITOR,"Monitor 27"" IPS",20,250,
T2,1,CHAIR,Office chair,5,120,130
`

func TestLoader_LoadScenario(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		TenderItemsFile: tenderItemsCSV,
		DeliveriesFile: `delivery_id,tender_id,delivery_number,delivery_date,is_finalized,finalized_by
d1,T1,DEL-2026-000001,2026-02-10,true,store-keeper
d2,T1,DEL-2026-000002,2026-03-02,false,
`,
		DeliveryItemsFile: `delivery_id,item_master_id,item_name,delivery_quantity,serial_numbers
d1,LAPTOP,Laptop 14in,2,LAP-1;LAP-2
d2,MONITOR,Monitor,20,
d2,LAPTOP,Laptop 14in,3,
`,
	})

	scenario, err := NewLoader().LoadScenario(dir)
	require.NoError(t, err)

	require.Len(t, scenario.Tenders, 2)
	t1 := scenario.Tenders[0]
	assert.Equal(t, "T1", t1.ID)
	require.Len(t, t1.Items, 2)
	assert.True(t, t1.Items[0].ActualUnitPrice.Decimal.Equal(decimal.RequireFromString("950.50")))
	assert.False(t, t1.Items[1].ActualUnitPrice.Valid)
	assert.Equal(t, `Monitor 27" IPS`, t1.Items[1].Nomenclature)
	assert.Equal(t, entities.PricingPending, t1.PricingStatus())
	assert.Equal(t, entities.PricingConfirmed, scenario.Tenders[1].PricingStatus())

	require.Len(t, scenario.Deliveries, 2)
	d1 := scenario.Deliveries[0]
	assert.True(t, d1.IsFinalized)
	assert.Equal(t, "store-keeper", d1.FinalizedBy)
	require.Len(t, d1.Items, 1)
	assert.Len(t, d1.Items[0].SerialNumbers, 2)
	assert.Equal(t, entities.Quantity(23), scenario.Deliveries[1].TotalQuantity())
}

func TestLoader_HeaderOnlyDeliveries(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		TenderItemsFile:   tenderItemsCSV,
		DeliveriesFile:    "delivery_id,tender_id,delivery_number,delivery_date,is_finalized,finalized_by\n",
		DeliveryItemsFile: "delivery_id,item_master_id,item_name,delivery_quantity,serial_numbers\n",
	})

	scenario, err := NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	assert.Empty(t, scenario.Deliveries)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		contains string
	}{
		{
			name:     "missing_file",
			files:    map[string]string{},
			contains: "failed to open tender items file",
		},
		{
			name:     "bad_header",
			files:    map[string]string{TenderItemsFile: "id,qty\nA,1\n"},
			contains: "tender items CSV header mismatch",
		},
		{
			name: "bad_price",
			files: map[string]string{TenderItemsFile: `tender_id,line_id,item_master_id,nomenclature,ordered_quantity,estimated_unit_price,actual_unit_price
T1,1,A,Thing,1,cheap,
`},
			contains: "tender items CSV row 2: invalid estimated_unit_price: cheap",
		},
		{
			name: "unknown_delivery",
			files: map[string]string{
				TenderItemsFile:   tenderItemsCSV,
				DeliveriesFile:    "delivery_id,tender_id,delivery_number,delivery_date,is_finalized,finalized_by\n",
				DeliveryItemsFile: "delivery_id,item_master_id,item_name,delivery_quantity,serial_numbers\nd9,A,,1,\n",
			},
			contains: "delivery items CSV row 2: unknown delivery_id d9",
		},
		{
			name: "bad_date",
			files: map[string]string{
				TenderItemsFile: tenderItemsCSV,
				DeliveriesFile:  "delivery_id,tender_id,delivery_number,delivery_date,is_finalized,finalized_by\nd1,T1,DEL-1,10/02/2026,false,\n",
			},
			contains: "invalid delivery_date format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadScenario(writeScenario(t, tt.files))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
