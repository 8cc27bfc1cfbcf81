// Package sheetgrid maps between the raw 2D value grids returned by the
// Sheets values API and header-keyed records, plus A1 range arithmetic.
// Column positions are resolved against the actual header row, so sheet
// column order may diverge from the code's expected order without breaking
// reads.
package sheetgrid

import (
	"fmt"
	"strconv"
)

// Record is one data row keyed by header name.
type Record map[string]string

// RowsToRecords converts a raw grid (header row first) into records keyed by
// expectedHeaders. Each expected header is located in the grid's own header
// row; headers absent from the grid yield empty values and are reported in
// the second return value so the caller can log them. Never fails.
func RowsToRecords(grid [][]interface{}, expectedHeaders []string) ([]Record, []string) {
	if len(grid) == 0 {
		return nil, expectedHeaders
	}

	actual := grid[0]
	colIndex := make(map[string]int, len(actual))
	for i, cell := range actual {
		colIndex[CellString(cell)] = i
	}

	var missing []string
	for _, h := range expectedHeaders {
		if _, ok := colIndex[h]; !ok {
			missing = append(missing, h)
		}
	}

	records := make([]Record, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := make(Record, len(expectedHeaders))
		for _, h := range expectedHeaders {
			idx, ok := colIndex[h]
			if !ok || idx >= len(row) {
				rec[h] = ""
				continue
			}
			rec[h] = CellString(row[idx])
		}
		records = append(records, rec)
	}
	return records, missing
}

// RecordToRow emits one cell per actual header, in actual header order.
// Fields missing from the record default to empty string.
func RecordToRow(rec Record, actualHeaders []string) []interface{} {
	row := make([]interface{}, len(actualHeaders))
	for i, h := range actualHeaders {
		row[i] = rec[h]
	}
	return row
}

// CellString renders a single grid cell as a string. The values API returns
// strings for formatted reads, but unformatted reads may carry numbers.
func CellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
