package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary    = "Summary"
	sheetDaily      = "Daily"
	sheetCategories = "Categories"
)

// XLSX renders the report as a workbook with summary, daily, and category
// sheets. Amounts are written as numbers so spreadsheet formulas work on
// them directly.
func (f *Formatter) XLSX(state ReportState) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := wb.NewSheet(sheetDaily); err != nil {
		return nil, fmt.Errorf("create daily sheet: %w", err)
	}
	if _, err := wb.NewSheet(sheetCategories); err != nil {
		return nil, fmt.Errorf("create categories sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Expense Report"},
		{"Period", state.Query.Start.Format(longDateFormat) + " - " + state.Query.End.Format(longDateFormat)},
		{"Generated on", state.GeneratedAt.Format(longDateFormat)},
		{},
		{"Total Amount", centsToFloat(state.Snapshot.TotalAmount.Cents)},
		{"Total Expenses", state.Snapshot.TotalCount},
	}
	if err := writeRows(wb, sheetSummary, summaryRows); err != nil {
		return nil, err
	}

	dailyRows := [][]any{{"Date", "Amount", "Expenses"}}
	for _, daily := range state.Snapshot.DailyTotals {
		dailyRows = append(dailyRows, []any{
			daily.Date.Format(longDateFormat),
			centsToFloat(daily.Amount.Cents),
			daily.Count,
		})
	}
	if err := writeRows(wb, sheetDaily, dailyRows); err != nil {
		return nil, err
	}

	categoryRows := [][]any{{"Category", "Amount", "Expenses", "Share %"}}
	for _, cat := range state.Snapshot.CategoryTotals {
		categoryRows = append(categoryRows, []any{
			cat.Category.DisplayName(),
			centsToFloat(cat.Amount.Cents),
			cat.Count,
			cat.Percentage,
		})
	}
	if err := writeRows(wb, sheetCategories, categoryRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(wb *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+1, err)
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func centsToFloat(cents int64) float64 {
	return float64(cents) / 100
}
