package sheetgrid

import "fmt"

// ColumnLetter converts a 1-based column index to its A1 letter reference:
// 1 → "A", 26 → "Z", 27 → "AA", 702 → "ZZ", 703 → "AAA".
func ColumnLetter(n int) string {
	if n <= 0 {
		return ""
	}
	letters := ""
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

// DataRange builds an A1 range covering every data column of a sheet, e.g.
// "NotasFiscais!A1:AB". The range is open-ended on rows so appends and full
// reads address exactly headerCount columns.
func DataRange(sheet string, headerCount int) string {
	return fmt.Sprintf("%s!A1:%s", sheet, ColumnLetter(headerCount))
}

// ColumnRange builds an A1 range restricted to a single column (1-based),
// e.g. "NotasFiscais!A2:A" for a key-only read skipping the header row.
func ColumnRange(sheet string, col int) string {
	letter := ColumnLetter(col)
	return fmt.Sprintf("%s!%s2:%s", sheet, letter, letter)
}
