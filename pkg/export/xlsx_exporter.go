package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Datos"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes comments, a bold header row and one row per record.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	row := 1
	for _, comment := range data.Comments {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(xlsxSheet, cell, comment); err != nil {
			return nil, fmt.Errorf("write comment: %w", err)
		}
		row++
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	headerCell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(xlsxSheet, headerCell, &data.Headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCell, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
	if err := f.SetCellStyle(xlsxSheet, headerCell, lastCell, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	row++

	for _, r := range data.Rows {
		record := data.record(r)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(xlsxSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	if err := f.SetColWidth(xlsxSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
