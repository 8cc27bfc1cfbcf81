package domain

import (
	"cloud.google.com/go/civil"
)

// Invoice status values persisted in the status column.
const (
	StatusPendente   = "Pendente"
	StatusConciliada = "Conciliada"
	StatusErro       = "Erro"
)

// Invoice is the normalized header of one NF-e document. AccessKey is the
// 44-digit chave de acesso and is globally unique across the invoice sheet.
type Invoice struct {
	AccessKey string // 44-digit key from the infNFe Id attribute
	Number    string // nNF
	Series    string // serie
	IssuedAt  string // dhEmi/dEmi normalized to YYYY-MM-DD

	IssuerCNPJ    string
	IssuerName    string
	IssuerAddress string
	IssuerCity    string
	IssuerUF      string

	RecipientCNPJ string
	RecipientName string

	NatureOfOperation string // natOp

	// OrderNumber is extracted from det/prod/xPed when present and used for
	// quotation matching during reconciliation.
	OrderNumber string

	Status           string // Pendente, Conciliada, Erro
	AllocationStatus string // whether payable rows were generated

	Items        []InvoiceItem
	Installments []Installment
	Transport    Transport
	Totals       TaxTotals
}

// InvoiceItem is one det element. Identity is (AccessKey, ItemNumber).
type InvoiceItem struct {
	AccessKey   string
	ItemNumber  int
	ProductCode string
	Description string
	GTIN        string // cEAN
	NCM         string
	CFOP        string
	CST         string
	Unit        string
	Quantity    float64
	UnitValue   float64
	TotalValue  float64

	ICMSBase    float64
	ICMSRate    float64
	ICMSValue   float64
	IPIValue    float64
	PISValue    float64
	COFINSValue float64
}

// Installment is one cobr/dup element (fatura). Identity is
// (AccessKey, Number).
type Installment struct {
	AccessKey     string
	InvoiceNumber string
	Number        string // nDup
	DueDate       civil.Date
	Amount        float64
}

// Transport carries the 1:1 transport block of an invoice.
type Transport struct {
	AccessKey   string
	CarrierCNPJ string
	CarrierName string
	FreightMode string // modFrete
	Volumes     float64
	GrossWeight float64
	NetWeight   float64
}

// TaxTotals carries the 1:1 ICMSTot aggregate block of an invoice.
type TaxTotals struct {
	AccessKey     string
	ICMSBase      float64
	ICMSValue     float64
	IPIValue      float64
	PISValue      float64
	COFINSValue   float64
	FreightValue  float64
	DiscountValue float64
	ProductsValue float64
	GrandTotal    float64 // vNF
}

// ItemSummary renders a short human-readable description of the invoice's
// line items, carried on generated payable rows.
func (inv *Invoice) ItemSummary() string {
	if len(inv.Items) == 0 {
		return ""
	}
	s := inv.Items[0].Description
	for _, it := range inv.Items[1:] {
		s += "; " + it.Description
	}
	return s
}
