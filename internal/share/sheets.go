// Package share pushes finished reports to external destinations. The only
// destination today is a Google Sheets spreadsheet.
package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"outlay/internal/export"
)

// SheetsSink appends report rows to one sheet of a spreadsheet.
type SheetsSink struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a sink using environment variables and service account
// credentials.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Reports").
func NewFromEnv(ctx context.Context) (*SheetsSink, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Push appends the report to the sheet: one header block, then one row per
// daily total with the day's leading category.
func (s *SheetsSink) Push(ctx context.Context, state export.ReportState) error {
	if s.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", s.sheetName)
	vr := &gsheet.ValueRange{Values: buildRows(state)}

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append report to sheet %s: %w", s.sheetName, err)
	}
	return nil
}

// buildRows flattens a report into spreadsheet rows. Amounts are numbers so
// sheet formulas can sum them.
func buildRows(state export.ReportState) [][]any {
	rows := [][]any{
		{
			"Report",
			state.Query.Start.String(),
			state.Query.End.String(),
			state.GeneratedAt.String(),
			float64(state.Snapshot.TotalAmount.Cents) / 100,
			state.Snapshot.TotalCount,
		},
	}

	for _, daily := range state.Snapshot.DailyTotals {
		rows = append(rows, []any{
			"Day",
			daily.Date.String(),
			float64(daily.Amount.Cents) / 100,
			daily.Count,
		})
	}
	for _, cat := range state.Snapshot.CategoryTotals {
		rows = append(rows, []any{
			"Category",
			cat.Category.DisplayName(),
			float64(cat.Amount.Cents) / 100,
			cat.Count,
			cat.Percentage,
		})
	}
	return rows
}
