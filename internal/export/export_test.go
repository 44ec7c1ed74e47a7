package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/model"
)

func TestWrite(t *testing.T) {
	due, err := model.ParseDate("2025-06-01")
	require.NoError(t, err)

	snap := inventory.Snapshot{
		Lines:    []model.Line{{ID: 1, Name: "Canning Line 1"}, {ID: 2, Name: "Canning Line 2"}},
		Machines: []model.Machine{{ID: 10, LineID: 1, Name: "Filler"}, {ID: 11, LineID: 2, Name: "Filler"}},
		Parts: []model.Part{
			{ID: 1, MachineID: 10, Name: "Bearing", PartNumber: "BRG-6204", StockQuantity: 3, MinStockLevel: 2,
				Cost: decimal.NewNullDecimal(decimal.RequireFromString("4.25")), NextDue: due},
			{ID: 2, MachineID: 11, Name: "Bearing", PartNumber: "BRG-6204", StockQuantity: 5, MinStockLevel: 10},
		},
		Checkweighers: []model.Checkweigher{{ID: 3, LineID: 2, Name: "CW Cluster", NextDue: due}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetParts, SheetAggregated, SheetCheckweighers}, f.GetSheetList())

	parts, err := f.GetRows(SheetParts)
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, partHeaders, parts[0])
	assert.Equal(t, []string{"1", "Canning Line 1", "Filler", "Bearing", "BRG-6204", "", "3", "2", "no", "", "4.25", "", "2025-06-01"}, parts[1])
	assert.Equal(t, "yes", parts[2][8])

	agg, err := f.GetRows(SheetAggregated)
	require.NoError(t, err)
	require.Len(t, agg, 2)
	assert.Equal(t, []string{"BRG-6204", "Bearing", "", "8", "10", "yes", "2", "Filler", "Canning Line 1, Canning Line 2"}, agg[1])

	cws, err := f.GetRows(SheetCheckweighers)
	require.NoError(t, err)
	require.Len(t, cws, 2)
	assert.Equal(t, []string{"3", "Canning Line 2", "CW Cluster", "", "2025-06-01"}, cws[1])
}

func TestWorkbook_Empty(t *testing.T) {
	f, err := Workbook(inventory.Snapshot{})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetParts)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
