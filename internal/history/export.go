package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the file type produced by Export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

const exportSheetName = "History"

var exportColumns = []string{"ID", "Result", "Scanned At"}

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

func (f ExportFormat) Valid() bool {
	return f == FormatCSV || f == FormatXLSX
}

func writeCSV(w io.Writer, records []ScanRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.ID.String(),
			record.ScanResult,
			record.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, records []ScanRecord) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(exportSheetName, cell, col)
		file.SetCellStyle(exportSheetName, cell, cell, headerStyle)
	}

	for i, record := range records {
		row := i + 2
		file.SetCellValue(exportSheetName, fmt.Sprintf("A%d", row), record.ID.String())
		file.SetCellValue(exportSheetName, fmt.Sprintf("B%d", row), record.ScanResult)
		file.SetCellValue(exportSheetName, fmt.Sprintf("C%d", row), record.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	file.SetColWidth(exportSheetName, "A", "A", 38)
	file.SetColWidth(exportSheetName, "B", "C", 22)
	file.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
