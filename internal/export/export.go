// Package export renders the inventory as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sparesmart-backend/internal/inventory"
)

// Sheet names, in workbook order.
const (
	SheetParts         = "Parts"
	SheetAggregated    = "Aggregated"
	SheetCheckweighers = "Checkweighers"
)

var (
	partHeaders = []string{"ID", "Line", "Machine", "Name", "Part Number", "Description", "Stock", "Min Stock", "Low Stock", "Location", "Cost", "Last Checked", "Next Due", "Notes"}
	partWidths  = []float64{6, 18, 18, 24, 16, 30, 8, 10, 10, 16, 10, 12, 12, 30}

	aggregatedHeaders = []string{"Part Number", "Name", "Description", "Total Stock", "Min Stock", "Low Stock", "Records", "Machines", "Lines"}
	aggregatedWidths  = []float64{16, 24, 30, 12, 10, 10, 8, 30, 30}

	checkweigherHeaders = []string{"ID", "Line", "Name", "Last Calibrated", "Next Due"}
	checkweigherWidths  = []float64{6, 18, 24, 16, 12}
)

// Workbook builds the Parts, Aggregated and Checkweighers sheets.
func Workbook(snap inventory.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetParts); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetAggregated, SheetCheckweighers} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	lowStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	machines := snap.MachineIndex()
	lines := snap.LineIndex()

	var partRows [][]interface{}
	var lowRows []int
	for i, p := range snap.Parts {
		m := machines[p.MachineID]
		var cost interface{}
		if p.Cost.Valid {
			cost = p.Cost.Decimal.InexactFloat64()
		}
		partRows = append(partRows, []interface{}{
			p.ID, lines[m.LineID].Name, m.Name, p.Name, p.PartNumber, p.Description,
			p.StockQuantity, p.MinStockLevel, yesNo(p.IsLowStock()), p.Location, cost,
			p.LastChecked.String(), p.NextDue.String(), p.Notes,
		})
		if p.IsLowStock() {
			lowRows = append(lowRows, i+2)
		}
	}

	var aggRows [][]interface{}
	for _, a := range inventory.Aggregate(snap.Parts, snap.Machines, snap.Lines) {
		aggRows = append(aggRows, []interface{}{
			a.PartNumber, a.Name, a.Description, a.TotalQuantity, a.MinStockLevel,
			yesNo(a.LowStock), a.PartCount, strings.Join(a.Machines, ", "), strings.Join(a.Lines, ", "),
		})
	}

	var cwRows [][]interface{}
	for _, c := range snap.Checkweighers {
		cwRows = append(cwRows, []interface{}{
			c.ID, lines[c.LineID].Name, c.Name, c.LastCalibrated.String(), c.NextDue.String(),
		})
	}

	sheets := []struct {
		name    string
		headers []string
		widths  []float64
		rows    [][]interface{}
	}{
		{SheetParts, partHeaders, partWidths, partRows},
		{SheetAggregated, aggregatedHeaders, aggregatedWidths, aggRows},
		{SheetCheckweighers, checkweigherHeaders, checkweigherWidths, cwRows},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.widths, s.rows, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	// Highlight the low-stock cell of each part row.
	for _, row := range lowRows {
		cell := fmt.Sprintf("I%d", row)
		if err := f.SetCellStyle(SheetParts, cell, cell, lowStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, snap inventory.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, rows [][]interface{}, headerStyle int) error {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
