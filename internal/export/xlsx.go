package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "tickets"

// WriteXLSX writes the rows to an XLSX workbook at path, with a styled header
// row and uniform column widths.
func WriteXLSX(path string, headers []string, rows []Row) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	headStyle, err := wb.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    boxBorder(),
	})
	if err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	cellStyle, err := wb.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    boxBorder(),
	})
	if err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := wb.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := wb.SetCellStyle(sheetName, cell, cell, headStyle); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	for i, row := range rows {
		for col, header := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("write xlsx: %w", err)
			}
			if err := wb.SetCellValue(sheetName, cell, row[header]); err != nil {
				return fmt.Errorf("write xlsx: %w", err)
			}
			if err := wb.SetCellStyle(sheetName, cell, cell, cellStyle); err != nil {
				return fmt.Errorf("write xlsx: %w", err)
			}
		}
	}

	if err := wb.SetRowHeight(sheetName, 1, 22); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	if err := wb.SetColWidth(sheetName, "A", lastCol, 28); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func boxBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
}
