package sheets

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

func TestRowBuildersMatchHeaderWidth(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		row     []interface{}
	}{
		{"invoice", HeadersInvoices, invoiceRow(&domain.Invoice{})},
		{"item", HeadersInvoiceItems, invoiceItemRow(domain.InvoiceItem{})},
		{"installment", HeadersInstallments, installmentRow(domain.Installment{})},
		{"transport", HeadersTransport, transportRow(domain.Transport{})},
		{"totals", HeadersTaxTotals, taxTotalsRow(domain.TaxTotals{})},
		{"payable", HeadersPayables, payableRow(domain.PayableAccount{})},
		{"supplier", HeadersSuppliers, supplierRow(domain.Supplier{})},
		{"product", HeadersProducts, productRow(domain.Product{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.row) != len(tt.headers) {
				t.Errorf("row has %d cells, headers declare %d", len(tt.row), len(tt.headers))
			}
		})
	}
}

func TestInstallmentRoundTrip(t *testing.T) {
	ins := domain.Installment{
		AccessKey:     "35240111222333000144550010000012341000012349",
		InvoiceNumber: "1234",
		Number:        "001",
		DueDate:       civil.Date{Year: 2024, Month: 2, Day: 15},
		Amount:        150.5,
	}

	row := installmentRow(ins)
	rec := make(sheetgrid.Record, len(HeadersInstallments))
	for i, h := range HeadersInstallments {
		rec[h] = sheetgrid.CellString(row[i])
	}

	got := recordToInstallment(rec)
	if got != ins {
		t.Errorf("round trip = %+v, want %+v", got, ins)
	}
}

func TestRecordToInvoiceReadsPortugueseColumns(t *testing.T) {
	rec := sheetgrid.Record{
		"Chave de Acesso": "35240111222333000144550010000012341000012349",
		"Número":          "1234",
		"Nome Emitente":   "Moinho Paulista LTDA",
		"Número Pedido":   "COT-42",
		"Status":          domain.StatusPendente,
		"Status Rateio":   "",
	}

	inv := recordToInvoice(rec)
	if inv.AccessKey != rec["Chave de Acesso"] {
		t.Errorf("AccessKey = %q", inv.AccessKey)
	}
	if inv.IssuerName != "Moinho Paulista LTDA" {
		t.Errorf("IssuerName = %q", inv.IssuerName)
	}
	if inv.OrderNumber != "COT-42" {
		t.Errorf("OrderNumber = %q", inv.OrderNumber)
	}
	if inv.Status != domain.StatusPendente {
		t.Errorf("Status = %q", inv.Status)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"150.00", 150},
		{"150,75", 150.75},
		{" 12,5 ", 12.5},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := parseAmount(tt.in); got != tt.want {
			t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(civil.Date{Year: 2024, Month: 2, Day: 15}); got != "2024-02-15" {
		t.Errorf("formatDate = %q", got)
	}
	if got := formatDate(civil.Date{}); got != "" {
		t.Errorf("formatDate(zero) = %q, want empty", got)
	}
}

func TestExtendedValue(t *testing.T) {
	if ev := extendedValue(150.5); ev.NumberValue == nil || *ev.NumberValue != 150.5 {
		t.Errorf("float cell = %+v, want NumberValue 150.5", ev)
	}
	if ev := extendedValue("texto"); ev.StringValue == nil || *ev.StringValue != "texto" {
		t.Errorf("string cell = %+v, want StringValue texto", ev)
	}
	if ev := extendedValue(nil); ev.StringValue == nil || *ev.StringValue != "" {
		t.Errorf("nil cell = %+v, want empty StringValue", ev)
	}
}

func TestHeaderIndex(t *testing.T) {
	if got := headerIndex(HeadersInvoices, "Status"); got != 14 {
		t.Errorf("Status column = %d, want 14", got)
	}
	if got := headerIndex(HeadersInvoices, "Inexistente"); got != 0 {
		t.Errorf("missing column = %d, want 0", got)
	}
}
