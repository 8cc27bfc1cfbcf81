package sheetgrid

import (
	"reflect"
	"testing"
)

func TestRowsToRecords(t *testing.T) {
	grid := [][]interface{}{
		{"Nome", "CNPJ", "Cidade"},
		{"Fornecedor A", "11222333000144", "Campinas"},
		{"Fornecedor B", "55666777000188"},
	}

	records, missing := RowsToRecords(grid, []string{"Nome", "CNPJ", "Cidade"})
	if len(missing) != 0 {
		t.Fatalf("unexpected missing headers: %v", missing)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["CNPJ"] != "11222333000144" {
		t.Errorf("expected CNPJ of first record, got %q", records[0]["CNPJ"])
	}
	// Short row: column beyond row length yields empty string.
	if records[1]["Cidade"] != "" {
		t.Errorf("expected empty Cidade for short row, got %q", records[1]["Cidade"])
	}
}

func TestRowsToRecords_ColumnOrderIndependent(t *testing.T) {
	// Sheet columns in a different order than the code expects.
	grid := [][]interface{}{
		{"Cidade", "Nome", "CNPJ"},
		{"Campinas", "Fornecedor A", "11222333000144"},
	}

	records, missing := RowsToRecords(grid, []string{"Nome", "CNPJ", "Cidade"})
	if len(missing) != 0 {
		t.Fatalf("unexpected missing headers: %v", missing)
	}
	if records[0]["Nome"] != "Fornecedor A" || records[0]["Cidade"] != "Campinas" {
		t.Errorf("record did not follow actual header positions: %v", records[0])
	}
}

func TestRowsToRecords_MissingHeader(t *testing.T) {
	grid := [][]interface{}{
		{"Nome"},
		{"Fornecedor A"},
	}

	records, missing := RowsToRecords(grid, []string{"Nome", "CNPJ"})
	if !reflect.DeepEqual(missing, []string{"CNPJ"}) {
		t.Fatalf("expected CNPJ reported missing, got %v", missing)
	}
	if records[0]["CNPJ"] != "" {
		t.Errorf("expected empty value for missing header, got %q", records[0]["CNPJ"])
	}
}

func TestRowsToRecords_EmptyGrid(t *testing.T) {
	records, missing := RowsToRecords(nil, []string{"Nome"})
	if records != nil {
		t.Errorf("expected nil records for empty grid, got %v", records)
	}
	if !reflect.DeepEqual(missing, []string{"Nome"}) {
		t.Errorf("expected all headers missing for empty grid, got %v", missing)
	}
}

func TestRecordToRow_RoundTrip(t *testing.T) {
	headers := []string{"Nome", "CNPJ", "Cidade"}
	grid := [][]interface{}{
		{"Nome", "CNPJ", "Cidade"},
		{"Fornecedor A", "11222333000144", "Campinas"},
	}

	records, _ := RowsToRecords(grid, headers)
	row := RecordToRow(records[0], headers)

	if !reflect.DeepEqual(row, grid[1]) {
		t.Errorf("round trip mismatch: got %v, want %v", row, grid[1])
	}
}

func TestRecordToRow_MissingFieldDefaultsEmpty(t *testing.T) {
	row := RecordToRow(Record{"Nome": "X"}, []string{"Nome", "CNPJ"})
	if row[1] != "" {
		t.Errorf("expected empty cell for missing field, got %v", row[1])
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"float whole", float64(150), "150"},
		{"float fraction", 10.5, "10.5"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellString(tt.cell); got != tt.want {
				t.Errorf("CellString(%v) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}
