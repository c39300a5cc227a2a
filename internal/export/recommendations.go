// Package export renders purchase recommendations as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"stockwise/internal/services"
)

// SheetName is the single worksheet in a recommendations workbook.
const SheetName = "Recommendations"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Material ID", "Material", "Specification", "Unit", "Alert Type",
	"Predicted Stock", "Safe Threshold", "Required Quantity",
	"Supplier", "Contact", "Phone", "Alert Time",
}

var widths = []float64{16, 24, 20, 8, 16, 16, 16, 18, 24, 16, 16, 22}

// Filename names a workbook generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("purchase_recommendations_%s.xlsx", t.UTC().Format("20060102"))
}

// Recommendations builds the workbook and returns its bytes.
func Recommendations(recs []services.PurchaseRecommendation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, widths[i])
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			r.MaterialID, r.MaterialName, r.Specification, r.Unit, string(r.AlertType),
			r.PredictedStock, r.SafeThreshold, r.RequiredQuantity,
			r.SupplierName, r.ContactPerson, r.Phone,
			r.AlertTime.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
