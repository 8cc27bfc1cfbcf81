// Package rateio distributes invoice installment amounts across cost centers
// according to percentage-based allocation rules.
package rateio

import (
	"fmt"
	"math"

	"github.com/rmaganha/cotacaopro/internal/domain"
)

// percentTolerance bounds the accepted deviation from 100% in strict mode.
const percentTolerance = 0.01

// Engine generates payable-account rows from installments and rules.
type Engine struct {
	// Strict rejects rule sets whose percentages do not sum to 100 within
	// tolerance instead of silently under/over-allocating.
	Strict bool
}

// Allocate emits one payable row per (installment, rule) pair. Installments
// with a zero amount are skipped. With no rules the result is empty and nil
// error; callers are expected to log that condition. Percentages are not
// required to sum to 100 unless Strict is set.
func (e Engine) Allocate(inv *domain.Invoice, rules []domain.AllocationRule) ([]domain.PayableAccount, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	if e.Strict {
		var sum float64
		for _, r := range rules {
			sum += r.Percentage
		}
		if math.Abs(sum-100) > percentTolerance {
			return nil, fmt.Errorf("rateio: rule percentages sum to %.2f, want 100.00", sum)
		}
	}

	summary := inv.ItemSummary()

	var payables []domain.PayableAccount
	for _, ins := range inv.Installments {
		if ins.Amount == 0 {
			continue
		}
		for _, rule := range rules {
			payables = append(payables, domain.PayableAccount{
				AccessKey:         inv.AccessKey,
				InvoiceNumber:     ins.InvoiceNumber,
				InstallmentNumber: ins.Number,
				ItemSummary:       summary,
				DueDate:           ins.DueDate,
				Amount:            ins.Amount,
				CostCenter:        rule.CostCenter,
				AllocatedAmount:   round2(ins.Amount * rule.Percentage / 100),
			})
		}
	}
	return payables, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
