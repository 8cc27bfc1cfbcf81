package sheets

import (
	"context"
	"fmt"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// InvoiceRepository persists NF-e invoices across the five parallel tabs of
// the invoices spreadsheet.
type InvoiceRepository struct {
	tabReader
	sheetIDs map[string]int64
}

// NewInvoiceRepository builds the repository and resolves the numeric sheet
// IDs once, so inserts can target all five tabs in a single batch call.
func NewInvoiceRepository(ctx context.Context, svc *gsheets.Service, spreadsheetID string) (*InvoiceRepository, error) {
	r := &InvoiceRepository{
		tabReader: tabReader{svc: svc, spreadsheetID: spreadsheetID},
	}

	meta, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets(properties(sheetId,title))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: resolving sheet ids of %s: %w", spreadsheetID, err)
	}

	r.sheetIDs = make(map[string]int64, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			r.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}

	for _, tab := range []string{SheetInvoices, SheetInvoiceItems, SheetInstallments, SheetTransport, SheetTaxTotals} {
		if _, ok := r.sheetIDs[tab]; !ok {
			return nil, fmt.Errorf("sheets: spreadsheet %s has no tab %q", spreadsheetID, tab)
		}
	}
	return r, nil
}

// Exists checks whether an access key is already present, reading only the
// key column. This is the sole duplicate-prevention mechanism; it is not
// atomic with Insert.
func (r *InvoiceRepository) Exists(ctx context.Context, accessKey string) (bool, error) {
	keys, err := r.readKeyColumn(ctx, SheetInvoices)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == accessKey {
			return true, nil
		}
	}
	return false, nil
}

// Insert appends the invoice header, items, installments, transport and tax
// totals in one spreadsheet batchUpdate, shrinking the partial-write window
// to a single API call.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *domain.Invoice) error {
	itemRows := make([][]interface{}, 0, len(inv.Items))
	for _, it := range inv.Items {
		itemRows = append(itemRows, invoiceItemRow(it))
	}
	insRows := make([][]interface{}, 0, len(inv.Installments))
	for _, ins := range inv.Installments {
		insRows = append(insRows, installmentRow(ins))
	}

	requests := []*gsheets.Request{
		r.appendRequest(SheetInvoices, [][]interface{}{invoiceRow(inv)}),
	}
	if req := r.appendRequest(SheetInvoiceItems, itemRows); req != nil {
		requests = append(requests, req)
	}
	if req := r.appendRequest(SheetInstallments, insRows); req != nil {
		requests = append(requests, req)
	}
	requests = append(requests,
		r.appendRequest(SheetTransport, [][]interface{}{transportRow(inv.Transport)}),
		r.appendRequest(SheetTaxTotals, [][]interface{}{taxTotalsRow(inv.Totals)}),
	)

	_, err := r.svc.Spreadsheets.BatchUpdate(r.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: inserting invoice %s: %w", inv.AccessKey, err)
	}
	return nil
}

func (r *InvoiceRepository) appendRequest(sheet string, rows [][]interface{}) *gsheets.Request {
	if len(rows) == 0 {
		return nil
	}
	rowData := make([]*gsheets.RowData, 0, len(rows))
	for _, row := range rows {
		cells := make([]*gsheets.CellData, 0, len(row))
		for _, cell := range row {
			cells = append(cells, &gsheets.CellData{UserEnteredValue: extendedValue(cell)})
		}
		rowData = append(rowData, &gsheets.RowData{Values: cells})
	}
	return &gsheets.Request{
		AppendCells: &gsheets.AppendCellsRequest{
			SheetId: r.sheetIDs[sheet],
			Rows:    rowData,
			Fields:  "userEnteredValue",
		},
	}
}

func extendedValue(cell interface{}) *gsheets.ExtendedValue {
	switch v := cell.(type) {
	case float64:
		f := v
		return &gsheets.ExtendedValue{NumberValue: &f}
	case int:
		f := float64(v)
		return &gsheets.ExtendedValue{NumberValue: &f}
	default:
		s := sheetgrid.CellString(cell)
		return &gsheets.ExtendedValue{StringValue: &s}
	}
}

// ListByStatus returns invoice headers filtered by status; an empty status
// returns everything.
func (r *InvoiceRepository) ListByStatus(ctx context.Context, status string) ([]domain.Invoice, error) {
	records, _, err := r.readRecords(ctx, SheetInvoices, HeadersInvoices)
	if err != nil {
		return nil, err
	}

	var invoices []domain.Invoice
	for _, rec := range records {
		inv := recordToInvoice(rec)
		if inv.AccessKey == "" {
			continue
		}
		if status != "" && inv.Status != status {
			continue
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// Installments returns the installments persisted for one access key.
func (r *InvoiceRepository) Installments(ctx context.Context, accessKey string) ([]domain.Installment, error) {
	records, _, err := r.readRecords(ctx, SheetInstallments, HeadersInstallments)
	if err != nil {
		return nil, err
	}

	var out []domain.Installment
	for _, rec := range records {
		ins := recordToInstallment(rec)
		if ins.AccessKey == accessKey {
			out = append(out, ins)
		}
	}
	return out, nil
}

// ReplaceInstallments drops every installment row of the access key and
// appends the given set, implementing the delete-all-then-append edit
// semantics of the faturas table.
func (r *InvoiceRepository) ReplaceInstallments(ctx context.Context, accessKey string, installments []domain.Installment) error {
	grid, err := r.readGrid(ctx, SheetInstallments, len(HeadersInstallments))
	if err != nil {
		return err
	}

	kept := make([][]interface{}, 0, len(grid)+len(installments))
	if len(grid) > 0 {
		kept = append(kept, grid[0])
		for _, row := range grid[1:] {
			if len(row) > 0 && sheetgrid.CellString(row[0]) == accessKey {
				continue
			}
			kept = append(kept, row)
		}
	} else {
		header := make([]interface{}, len(HeadersInstallments))
		for i, h := range HeadersInstallments {
			header[i] = h
		}
		kept = append(kept, header)
	}
	for _, ins := range installments {
		kept = append(kept, installmentRow(ins))
	}

	return r.rewriteTab(ctx, SheetInstallments, HeadersInstallments, kept)
}

// UpdateStatus rewrites the status cell of the invoice with the given key.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, accessKey, status string) error {
	return r.updateInvoiceColumn(ctx, accessKey, "Status", status)
}

// UpdateAllocationStatus rewrites the allocation status cell.
func (r *InvoiceRepository) UpdateAllocationStatus(ctx context.Context, accessKey, status string) error {
	return r.updateInvoiceColumn(ctx, accessKey, "Status Rateio", status)
}

func (r *InvoiceRepository) updateInvoiceColumn(ctx context.Context, accessKey, column, value string) error {
	keys, err := r.readKeyColumn(ctx, SheetInvoices)
	if err != nil {
		return err
	}

	col := headerIndex(HeadersInvoices, column)
	if col == 0 {
		return fmt.Errorf("sheets: unknown invoice column %q", column)
	}

	for i, k := range keys {
		if k == accessKey {
			// Key column read starts at row 2.
			return r.updateCell(ctx, SheetInvoices, col, i+2, value)
		}
	}
	return fmt.Errorf("sheets: invoice %s not found", accessKey)
}

// Tab exposes one invoice-spreadsheet tab as raw records for the
// reconciliation page aggregation.
func (r *InvoiceRepository) Tab(ctx context.Context, sheet string) ([]sheetgrid.Record, error) {
	headers, err := invoiceTabHeaders(sheet)
	if err != nil {
		return nil, err
	}
	records, _, err := r.readRecords(ctx, sheet, headers)
	return records, err
}

func invoiceTabHeaders(sheet string) ([]string, error) {
	switch sheet {
	case SheetInvoices:
		return HeadersInvoices, nil
	case SheetInvoiceItems:
		return HeadersInvoiceItems, nil
	case SheetInstallments:
		return HeadersInstallments, nil
	case SheetTransport:
		return HeadersTransport, nil
	case SheetTaxTotals:
		return HeadersTaxTotals, nil
	case SheetReconMapping:
		return HeadersReconMapping, nil
	default:
		return nil, fmt.Errorf("sheets: unknown invoice tab %q", sheet)
	}
}
