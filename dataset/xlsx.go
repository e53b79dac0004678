package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXMimeType is the content type of exported workbooks.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportXLSX renders the table as a single-sheet workbook, header row first.
func ExportXLSX(t *Table, sheet string) ([]byte, error) {
	if sheet == "" {
		sheet = "Sheet1"
	}
	doc := excelize.NewFile()
	defer doc.Close()
	if sheet != "Sheet1" {
		if err := doc.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}
	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := doc.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := doc.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}
	buf, err := doc.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
