// Package sheets implements the persistence layer over the Google Sheets
// values API. Every table is a tab in one of three spreadsheets; rows are
// mapped through internal/sheetgrid against the header constants below.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gsheets "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// NewService creates the Sheets API client shared by all repositories.
// It is built once at process start and reused; the client is a stateless
// wrapper around HTTP calls.
func NewService(ctx context.Context, credentialsFile string) (*gsheets.Service, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: creating service: %w", err)
	}
	return svc, nil
}

// tabReader is the shared read/append plumbing embedded by all repositories.
type tabReader struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// readGrid fetches the full value grid of one tab, header row included.
func (t *tabReader) readGrid(ctx context.Context, sheet string, headerCount int) ([][]interface{}, error) {
	resp, err := t.svc.Spreadsheets.Values.
		Get(t.spreadsheetID, sheetgrid.DataRange(sheet, headerCount)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: reading %s: %w", sheet, err)
	}
	return resp.Values, nil
}

// readRecords fetches one tab as header-keyed records. Headers missing from
// the sheet are returned so the caller can log them; they are never fatal.
func (t *tabReader) readRecords(ctx context.Context, sheet string, headers []string) ([]sheetgrid.Record, []string, error) {
	grid, err := t.readGrid(ctx, sheet, len(headers))
	if err != nil {
		return nil, nil, err
	}
	records, missing := sheetgrid.RowsToRecords(grid, headers)
	return records, missing, nil
}

// readKeyColumn fetches only the first column of a tab, skipping the header
// row. Used for range-restricted existence scans.
func (t *tabReader) readKeyColumn(ctx context.Context, sheet string) ([]string, error) {
	resp, err := t.svc.Spreadsheets.Values.
		Get(t.spreadsheetID, sheetgrid.ColumnRange(sheet, 1)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: reading key column of %s: %w", sheet, err)
	}

	keys := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) > 0 {
			keys = append(keys, sheetgrid.CellString(row[0]))
		}
	}
	return keys, nil
}

// appendRows appends data rows to the end of a tab.
func (t *tabReader) appendRows(ctx context.Context, sheet string, headers []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := t.svc.Spreadsheets.Values.
		Append(t.spreadsheetID, sheetgrid.DataRange(sheet, len(headers)), &gsheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: appending to %s: %w", sheet, err)
	}
	return nil
}

// rewriteTab replaces a tab's full contents (header row plus data rows).
// Used for delete-then-append semantics on child tables.
func (t *tabReader) rewriteTab(ctx context.Context, sheet string, headers []string, grid [][]interface{}) error {
	rng := sheetgrid.DataRange(sheet, len(headers))

	_, err := t.svc.Spreadsheets.Values.
		Clear(t.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: clearing %s: %w", sheet, err)
	}

	_, err = t.svc.Spreadsheets.Values.
		Update(t.spreadsheetID, rng, &gsheets.ValueRange{Values: grid}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: rewriting %s: %w", sheet, err)
	}
	return nil
}

// updateCell writes a single cell addressed by 1-based column and row.
func (t *tabReader) updateCell(ctx context.Context, sheet string, col, row int, value interface{}) error {
	rng := fmt.Sprintf("%s!%s%d", sheet, sheetgrid.ColumnLetter(col), row)
	_, err := t.svc.Spreadsheets.Values.
		Update(t.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{{value}}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: updating %s: %w", rng, err)
	}
	return nil
}

// headerIndex returns the 1-based column position of a header, or 0.
func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i + 1
		}
	}
	return 0
}

// formatAmount renders a monetary value with two decimals using a dot
// separator, the form the sheets store amounts in.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseAmount reads a numeric cell tolerating comma decimal separators.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
