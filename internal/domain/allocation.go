package domain

import (
	"cloud.google.com/go/civil"
)

// AllocationRule is one manually maintained rateio rule: a percentage of a
// quotation line item's cost assigned to a cost center (setor). Read-only to
// the ingestion pipeline.
type AllocationRule struct {
	QuotationItemRef string
	CostCenter       string
	Percentage       float64
}

// PayableAccount is one derived conta-a-pagar row. Identity is
// (AccessKey, InstallmentNumber, CostCenter); rows are regenerated whenever
// invoices or allocation rules change.
type PayableAccount struct {
	AccessKey         string
	InvoiceNumber     string
	InstallmentNumber string
	ItemSummary       string
	DueDate           civil.Date
	Amount            float64 // full installment amount
	CostCenter        string
	AllocatedAmount   float64 // Amount * rule percentage, two decimals
}
