package domain

// Supplier is one fornecedor row in the catalog spreadsheet.
type Supplier struct {
	ID      string
	Name    string
	CNPJ    string
	Email   string
	Phone   string
	City    string
	UF      string
	Active  bool
}

// Product is one produto row. Renaming a product propagates the new name to
// quotation rows that reference it.
type Product struct {
	ID          string
	Name        string
	Unit        string
	Category    string
	SubProducts []SubProduct
}

// SubProduct is a named variant of a product quoted separately.
type SubProduct struct {
	ProductID string
	Name      string
	Unit      string
}

// Quotation status values.
const (
	QuotationOpen   = "Aberta"
	QuotationClosed = "Fechada"
)

// Quotation is one cotação row plus its line items.
type Quotation struct {
	ID         string
	SupplierID string
	Supplier   string
	Status     string // Aberta, Fechada
	CreatedAt  string // YYYY-MM-DD
	Items      []QuotationItem
}

// QuotationItem is one quoted line: a product (or sub-product) with the
// supplier's offered price.
type QuotationItem struct {
	QuotationID string
	Product     string
	SubProduct  string
	Unit        string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
}
