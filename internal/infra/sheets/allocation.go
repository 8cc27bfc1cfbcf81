package sheets

import (
	"context"
	"fmt"

	gsheets "google.golang.org/api/sheets/v4"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// FinancialRepository reads allocation rules and writes payable accounts in
// the financial spreadsheet.
type FinancialRepository struct {
	tabReader
}

func NewFinancialRepository(svc *gsheets.Service, spreadsheetID string) *FinancialRepository {
	return &FinancialRepository{
		tabReader: tabReader{svc: svc, spreadsheetID: spreadsheetID},
	}
}

// ListAllocationRules returns the cost-center split rules of one quotation
// item reference. A missing reference yields an empty slice, not an error.
func (r *FinancialRepository) ListAllocationRules(ctx context.Context, quotationItemRef string) ([]domain.AllocationRule, error) {
	records, missing, err := r.readRecords(ctx, SheetAllocationRules, HeadersAllocationRules)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("sheets: %s is missing columns %v", SheetAllocationRules, missing)
	}

	var rules []domain.AllocationRule
	for _, rec := range records {
		rule := recordToAllocationRule(rec)
		if rule.QuotationItemRef == quotationItemRef {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// AllAllocationRules returns every rule row, for the page aggregation.
func (r *FinancialRepository) AllAllocationRules(ctx context.Context) ([]domain.AllocationRule, error) {
	records, _, err := r.readRecords(ctx, SheetAllocationRules, HeadersAllocationRules)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.AllocationRule, 0, len(records))
	for _, rec := range records {
		rules = append(rules, recordToAllocationRule(rec))
	}
	return rules, nil
}

// CostCenters returns the distinct cost centers appearing in the rules tab,
// in first-seen order.
func (r *FinancialRepository) CostCenters(ctx context.Context) ([]string, error) {
	rules, err := r.AllAllocationRules(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rules))
	var centers []string
	for _, rule := range rules {
		if rule.CostCenter == "" || seen[rule.CostCenter] {
			continue
		}
		seen[rule.CostCenter] = true
		centers = append(centers, rule.CostCenter)
	}
	return centers, nil
}

// AppendPayables adds the allocated payable rows for one invoice.
func (r *FinancialRepository) AppendPayables(ctx context.Context, payables []domain.PayableAccount) error {
	if len(payables) == 0 {
		return nil
	}
	rows := make([][]interface{}, 0, len(payables))
	for _, p := range payables {
		rows = append(rows, payableRow(p))
	}
	return r.appendRows(ctx, SheetPayables, HeadersPayables, rows)
}

// DeletePayablesByAccessKey removes every payable row of the access key,
// so a re-allocation never duplicates entries.
func (r *FinancialRepository) DeletePayablesByAccessKey(ctx context.Context, accessKey string) error {
	grid, err := r.readGrid(ctx, SheetPayables, len(HeadersPayables))
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return nil
	}

	kept := make([][]interface{}, 0, len(grid))
	kept = append(kept, grid[0])
	removed := false
	for _, row := range grid[1:] {
		if len(row) > 0 && sheetgrid.CellString(row[0]) == accessKey {
			removed = true
			continue
		}
		kept = append(kept, row)
	}
	if !removed {
		return nil
	}
	return r.rewriteTab(ctx, SheetPayables, HeadersPayables, kept)
}
