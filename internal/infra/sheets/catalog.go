package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// ErrNotFound is returned when a catalog row with the requested ID does not
// exist.
var ErrNotFound = errors.New("not found")

// CatalogRepository manages suppliers, products, sub-products and quotations
// in the catalog spreadsheet.
type CatalogRepository struct {
	tabReader
}

func NewCatalogRepository(svc *gsheets.Service, spreadsheetID string) *CatalogRepository {
	return &CatalogRepository{
		tabReader: tabReader{svc: svc, spreadsheetID: spreadsheetID},
	}
}

// --- Suppliers ---

func (r *CatalogRepository) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	records, _, err := r.readRecords(ctx, SheetSuppliers, HeadersSuppliers)
	if err != nil {
		return nil, err
	}
	suppliers := make([]domain.Supplier, 0, len(records))
	for _, rec := range records {
		suppliers = append(suppliers, recordToSupplier(rec))
	}
	return suppliers, nil
}

// CreateSupplier assigns a fresh ID and appends the row.
func (r *CatalogRepository) CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	s.ID = uuid.NewString()
	s.Active = true
	if err := r.appendRows(ctx, SheetSuppliers, HeadersSuppliers, [][]interface{}{supplierRow(s)}); err != nil {
		return domain.Supplier{}, err
	}
	return s, nil
}

// UpdateSupplier rewrites the row in place, keeping its position.
func (r *CatalogRepository) UpdateSupplier(ctx context.Context, s domain.Supplier) error {
	return r.rewriteRowByID(ctx, SheetSuppliers, HeadersSuppliers, s.ID, supplierRow(s))
}

// DeactivateSupplier flips the Ativo flag instead of removing the row, so
// past quotations keep a resolvable supplier.
func (r *CatalogRepository) DeactivateSupplier(ctx context.Context, id string) error {
	suppliers, err := r.ListSuppliers(ctx)
	if err != nil {
		return err
	}
	for _, s := range suppliers {
		if s.ID == id {
			s.Active = false
			return r.UpdateSupplier(ctx, s)
		}
	}
	return fmt.Errorf("sheets: supplier %s: %w", id, ErrNotFound)
}

// --- Products ---

// ListProducts returns every product with its sub-products attached.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	records, _, err := r.readRecords(ctx, SheetProducts, HeadersProducts)
	if err != nil {
		return nil, err
	}
	subRecords, _, err := r.readRecords(ctx, SheetSubProducts, HeadersSubProducts)
	if err != nil {
		return nil, err
	}

	subsByProduct := make(map[string][]domain.SubProduct)
	for _, rec := range subRecords {
		sub := domain.SubProduct{
			ProductID: rec["ID Produto"],
			Name:      rec["Nome"],
			Unit:      rec["Unidade"],
		}
		subsByProduct[sub.ProductID] = append(subsByProduct[sub.ProductID], sub)
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		p := recordToProduct(rec)
		p.SubProducts = subsByProduct[p.ID]
		products = append(products, p)
	}
	return products, nil
}

// CreateProduct assigns a fresh ID and appends the product plus any
// sub-products.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = uuid.NewString()
	if err := r.appendRows(ctx, SheetProducts, HeadersProducts, [][]interface{}{productRow(p)}); err != nil {
		return domain.Product{}, err
	}

	if len(p.SubProducts) > 0 {
		rows := make([][]interface{}, 0, len(p.SubProducts))
		for i := range p.SubProducts {
			p.SubProducts[i].ProductID = p.ID
			sub := p.SubProducts[i]
			rows = append(rows, []interface{}{sub.ProductID, sub.Name, sub.Unit})
		}
		if err := r.appendRows(ctx, SheetSubProducts, HeadersSubProducts, rows); err != nil {
			return domain.Product{}, err
		}
	}
	return p, nil
}

// RenameProduct changes a product's name and propagates the new name to
// every quotation item row that references the old one. Quotation items
// reference products by name, so skipping the propagation would orphan them.
func (r *CatalogRepository) RenameProduct(ctx context.Context, id, newName string) error {
	records, _, err := r.readRecords(ctx, SheetProducts, HeadersProducts)
	if err != nil {
		return err
	}

	oldName := ""
	for _, rec := range records {
		if rec["ID"] == id {
			oldName = rec["Nome"]
			break
		}
	}
	if oldName == "" {
		return fmt.Errorf("sheets: product %s: %w", id, ErrNotFound)
	}
	if oldName == newName {
		return nil
	}

	p := domain.Product{}
	for _, rec := range records {
		if rec["ID"] == id {
			p = recordToProduct(rec)
			break
		}
	}
	p.Name = newName
	if err := r.rewriteRowByID(ctx, SheetProducts, HeadersProducts, id, productRow(p)); err != nil {
		return err
	}

	return r.renameQuotationItemProduct(ctx, oldName, newName)
}

func (r *CatalogRepository) renameQuotationItemProduct(ctx context.Context, oldName, newName string) error {
	grid, err := r.readGrid(ctx, SheetQuotationItems, len(HeadersQuotationItems))
	if err != nil {
		return err
	}
	if len(grid) < 2 {
		return nil
	}

	col := headerIndex(toStrings(grid[0]), "Produto")
	if col == 0 {
		return fmt.Errorf("sheets: %s has no Produto column", SheetQuotationItems)
	}

	changed := false
	for _, row := range grid[1:] {
		if len(row) >= col && sheetgrid.CellString(row[col-1]) == oldName {
			row[col-1] = newName
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.rewriteTab(ctx, SheetQuotationItems, HeadersQuotationItems, grid)
}

// --- Quotations ---

// ListQuotations returns quotations, optionally filtered by status, with
// their line items attached.
func (r *CatalogRepository) ListQuotations(ctx context.Context, status string) ([]domain.Quotation, error) {
	records, _, err := r.readRecords(ctx, SheetQuotations, HeadersQuotations)
	if err != nil {
		return nil, err
	}
	items, err := r.ListQuotationItems(ctx)
	if err != nil {
		return nil, err
	}

	itemsByQuotation := make(map[string][]domain.QuotationItem)
	for _, it := range items {
		itemsByQuotation[it.QuotationID] = append(itemsByQuotation[it.QuotationID], it)
	}

	var quotations []domain.Quotation
	for _, rec := range records {
		q := recordToQuotation(rec)
		if status != "" && q.Status != status {
			continue
		}
		q.Items = itemsByQuotation[q.ID]
		quotations = append(quotations, q)
	}
	return quotations, nil
}

// ListQuotationItems returns every quotation item row.
func (r *CatalogRepository) ListQuotationItems(ctx context.Context) ([]domain.QuotationItem, error) {
	records, _, err := r.readRecords(ctx, SheetQuotationItems, HeadersQuotationItems)
	if err != nil {
		return nil, err
	}
	items := make([]domain.QuotationItem, 0, len(records))
	for _, rec := range records {
		items = append(items, recordToQuotationItem(rec))
	}
	return items, nil
}

// CreateQuotation opens a new quotation with its items.
func (r *CatalogRepository) CreateQuotation(ctx context.Context, q domain.Quotation) (domain.Quotation, error) {
	q.ID = uuid.NewString()
	q.Status = domain.QuotationOpen

	row := []interface{}{q.ID, q.SupplierID, q.Supplier, q.Status, q.CreatedAt}
	if err := r.appendRows(ctx, SheetQuotations, HeadersQuotations, [][]interface{}{row}); err != nil {
		return domain.Quotation{}, err
	}

	if len(q.Items) > 0 {
		rows := make([][]interface{}, 0, len(q.Items))
		for i := range q.Items {
			q.Items[i].QuotationID = q.ID
			it := q.Items[i]
			rows = append(rows, []interface{}{
				it.QuotationID, it.Product, it.SubProduct, it.Unit,
				it.Quantity, it.UnitPrice, it.TotalPrice,
			})
		}
		if err := r.appendRows(ctx, SheetQuotationItems, HeadersQuotationItems, rows); err != nil {
			return domain.Quotation{}, err
		}
	}
	return q, nil
}

// CloseQuotation marks a quotation Fechada.
func (r *CatalogRepository) CloseQuotation(ctx context.Context, id string) error {
	keys, err := r.readKeyColumn(ctx, SheetQuotations)
	if err != nil {
		return err
	}
	col := headerIndex(HeadersQuotations, "Status")
	for i, k := range keys {
		if k == id {
			return r.updateCell(ctx, SheetQuotations, col, i+2, domain.QuotationClosed)
		}
	}
	return fmt.Errorf("sheets: quotation %s: %w", id, ErrNotFound)
}

// rewriteRowByID locates the row whose first column matches id and replaces
// its cells in place.
func (r *CatalogRepository) rewriteRowByID(ctx context.Context, sheet string, headers []string, id string, row []interface{}) error {
	keys, err := r.readKeyColumn(ctx, sheet)
	if err != nil {
		return err
	}
	for i, k := range keys {
		if k != id {
			continue
		}
		rng := fmt.Sprintf("%s!A%d:%s%d", sheet, i+2, sheetgrid.ColumnLetter(len(headers)), i+2)
		_, err := r.svc.Spreadsheets.Values.
			Update(r.spreadsheetID, rng, &gsheets.ValueRange{Values: [][]interface{}{row}}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("sheets: rewriting row %s: %w", rng, err)
		}
		return nil
	}
	return fmt.Errorf("sheets: %s row %s: %w", sheet, id, ErrNotFound)
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = sheetgrid.CellString(cell)
	}
	return out
}
