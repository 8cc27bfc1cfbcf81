package rateio

import (
	"testing"

	"cloud.google.com/go/civil"

	"github.com/rmaganha/cotacaopro/internal/domain"
)

func testInvoice(amounts ...float64) *domain.Invoice {
	inv := &domain.Invoice{
		AccessKey: "35240111222333000144550010000012341000012349",
		Number:    "1234",
		Items: []domain.InvoiceItem{
			{Description: "Farinha de Trigo 25kg"},
			{Description: "Fermento 500g"},
		},
	}
	for i, a := range amounts {
		inv.Installments = append(inv.Installments, domain.Installment{
			AccessKey:     inv.AccessKey,
			InvoiceNumber: inv.Number,
			Number:        string(rune('1' + i)),
			DueDate:       civil.Date{Year: 2024, Month: 2, Day: 15},
			Amount:        a,
		})
	}
	return inv
}

func TestAllocate_SplitsProportionally(t *testing.T) {
	rules := []domain.AllocationRule{
		{CostCenter: "Padaria", Percentage: 60},
		{CostCenter: "Confeitaria", Percentage: 40},
	}

	payables, err := Engine{}.Allocate(testInvoice(1000.00), rules)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(payables) != 2 {
		t.Fatalf("expected 2 payables, got %d", len(payables))
	}

	if payables[0].AllocatedAmount != 600.00 {
		t.Errorf("first allocation = %v, want 600.00", payables[0].AllocatedAmount)
	}
	if payables[1].AllocatedAmount != 400.00 {
		t.Errorf("second allocation = %v, want 400.00", payables[1].AllocatedAmount)
	}

	var sum float64
	for _, p := range payables {
		sum += p.AllocatedAmount
	}
	if sum != 1000.00 {
		t.Errorf("allocations sum to %v, want 1000.00", sum)
	}
}

func TestAllocate_RoundsToTwoDecimals(t *testing.T) {
	rules := []domain.AllocationRule{
		{CostCenter: "Padaria", Percentage: 33.33},
	}

	payables, err := Engine{}.Allocate(testInvoice(100.00), rules)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if payables[0].AllocatedAmount != 33.33 {
		t.Errorf("allocation = %v, want 33.33", payables[0].AllocatedAmount)
	}
}

func TestAllocate_NoRules(t *testing.T) {
	payables, err := Engine{}.Allocate(testInvoice(1000.00), nil)
	if err != nil {
		t.Fatalf("Allocate with zero rules must not fail: %v", err)
	}
	if len(payables) != 0 {
		t.Errorf("expected zero payables, got %d", len(payables))
	}
}

func TestAllocate_SkipsZeroInstallments(t *testing.T) {
	rules := []domain.AllocationRule{{CostCenter: "Padaria", Percentage: 100}}

	payables, err := Engine{}.Allocate(testInvoice(0, 500.00), rules)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(payables) != 1 {
		t.Fatalf("expected 1 payable, got %d", len(payables))
	}
	if payables[0].AllocatedAmount != 500.00 {
		t.Errorf("allocation = %v, want 500.00", payables[0].AllocatedAmount)
	}
}

func TestAllocate_CarriesInvoiceContext(t *testing.T) {
	rules := []domain.AllocationRule{{CostCenter: "Compras", Percentage: 100}}

	payables, err := Engine{}.Allocate(testInvoice(150.00), rules)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	p := payables[0]
	if p.CostCenter != "Compras" {
		t.Errorf("cost center = %q, want Compras", p.CostCenter)
	}
	if p.ItemSummary != "Farinha de Trigo 25kg; Fermento 500g" {
		t.Errorf("item summary = %q", p.ItemSummary)
	}
	if p.Amount != 150.00 || p.AllocatedAmount != 150.00 {
		t.Errorf("amounts = %v/%v, want 150.00 each", p.Amount, p.AllocatedAmount)
	}
}

func TestAllocate_StrictRejectsIncompleteRules(t *testing.T) {
	rules := []domain.AllocationRule{
		{CostCenter: "Padaria", Percentage: 60},
		{CostCenter: "Confeitaria", Percentage: 30},
	}

	if _, err := (Engine{Strict: true}).Allocate(testInvoice(1000.00), rules); err == nil {
		t.Fatal("expected strict mode to reject rules summing to 90%")
	}

	// Permissive mode accepts the same rules and under-allocates.
	payables, err := Engine{}.Allocate(testInvoice(1000.00), rules)
	if err != nil {
		t.Fatalf("permissive Allocate failed: %v", err)
	}
	var sum float64
	for _, p := range payables {
		sum += p.AllocatedAmount
	}
	if sum != 900.00 {
		t.Errorf("under-allocation sum = %v, want 900.00", sum)
	}
}

func TestAllocate_StrictAcceptsWithinTolerance(t *testing.T) {
	rules := []domain.AllocationRule{
		{CostCenter: "A", Percentage: 33.33},
		{CostCenter: "B", Percentage: 33.33},
		{CostCenter: "C", Percentage: 33.34},
	}

	if _, err := (Engine{Strict: true}).Allocate(testInvoice(100.00), rules); err != nil {
		t.Fatalf("expected 99.99..100.01 to pass strict check: %v", err)
	}
}
