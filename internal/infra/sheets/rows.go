package sheets

import (
	"strconv"

	"cloud.google.com/go/civil"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// Row builders emit cells in the canonical header order declared in
// headers.go. Numeric columns carry float64 so the batched append stores
// real numbers instead of text.

func invoiceRow(inv *domain.Invoice) []interface{} {
	return []interface{}{
		inv.AccessKey, inv.Number, inv.Series, inv.IssuedAt,
		inv.IssuerCNPJ, inv.IssuerName, inv.IssuerAddress,
		inv.IssuerCity, inv.IssuerUF,
		inv.RecipientCNPJ, inv.RecipientName,
		inv.NatureOfOperation, inv.OrderNumber, inv.Status, inv.AllocationStatus,
	}
}

func invoiceItemRow(it domain.InvoiceItem) []interface{} {
	return []interface{}{
		it.AccessKey, float64(it.ItemNumber), it.ProductCode, it.Description,
		it.GTIN, it.NCM, it.CFOP, it.CST, it.Unit,
		it.Quantity, it.UnitValue, it.TotalValue,
		it.ICMSBase, it.ICMSRate, it.ICMSValue,
		it.IPIValue, it.PISValue, it.COFINSValue,
	}
}

func installmentRow(ins domain.Installment) []interface{} {
	return []interface{}{
		ins.AccessKey, ins.InvoiceNumber, ins.Number,
		formatDate(ins.DueDate), ins.Amount,
	}
}

func transportRow(tr domain.Transport) []interface{} {
	return []interface{}{
		tr.AccessKey, tr.CarrierCNPJ, tr.CarrierName, tr.FreightMode,
		tr.Volumes, tr.GrossWeight, tr.NetWeight,
	}
}

func taxTotalsRow(tt domain.TaxTotals) []interface{} {
	return []interface{}{
		tt.AccessKey, tt.ICMSBase, tt.ICMSValue, tt.IPIValue,
		tt.PISValue, tt.COFINSValue, tt.FreightValue, tt.DiscountValue,
		tt.ProductsValue, tt.GrandTotal,
	}
}

func payableRow(p domain.PayableAccount) []interface{} {
	return []interface{}{
		p.AccessKey, p.InvoiceNumber, p.InstallmentNumber, p.ItemSummary,
		formatDate(p.DueDate), p.Amount, p.CostCenter, p.AllocatedAmount,
	}
}

func supplierRow(s domain.Supplier) []interface{} {
	return []interface{}{
		s.ID, s.Name, s.CNPJ, s.Email, s.Phone, s.City, s.UF,
		strconv.FormatBool(s.Active),
	}
}

func productRow(p domain.Product) []interface{} {
	return []interface{}{p.ID, p.Name, p.Unit, p.Category}
}

// Record parsers turn header-keyed records back into domain structs.

func recordToInvoice(rec sheetgrid.Record) domain.Invoice {
	return domain.Invoice{
		AccessKey:         rec["Chave de Acesso"],
		Number:            rec["Número"],
		Series:            rec["Série"],
		IssuedAt:          rec["Data Emissão"],
		IssuerCNPJ:        rec["CNPJ Emitente"],
		IssuerName:        rec["Nome Emitente"],
		IssuerAddress:     rec["Endereço Emitente"],
		IssuerCity:        rec["Cidade Emitente"],
		IssuerUF:          rec["UF Emitente"],
		RecipientCNPJ:     rec["CNPJ Destinatário"],
		RecipientName:     rec["Nome Destinatário"],
		NatureOfOperation: rec["Natureza Operação"],
		OrderNumber:       rec["Número Pedido"],
		Status:            rec["Status"],
		AllocationStatus:  rec["Status Rateio"],
	}
}

func recordToInstallment(rec sheetgrid.Record) domain.Installment {
	return domain.Installment{
		AccessKey:     rec["Chave de Acesso"],
		InvoiceNumber: rec["Número NF"],
		Number:        rec["Parcela"],
		DueDate:       parseDate(rec["Vencimento"]),
		Amount:        parseAmount(rec["Valor"]),
	}
}

func recordToAllocationRule(rec sheetgrid.Record) domain.AllocationRule {
	return domain.AllocationRule{
		QuotationItemRef: rec["Item Cotação"],
		CostCenter:       rec["Setor"],
		Percentage:       parseAmount(rec["Percentual"]),
	}
}

func recordToSupplier(rec sheetgrid.Record) domain.Supplier {
	active, _ := strconv.ParseBool(rec["Ativo"])
	return domain.Supplier{
		ID:     rec["ID"],
		Name:   rec["Nome"],
		CNPJ:   rec["CNPJ"],
		Email:  rec["Email"],
		Phone:  rec["Telefone"],
		City:   rec["Cidade"],
		UF:     rec["UF"],
		Active: active,
	}
}

func recordToProduct(rec sheetgrid.Record) domain.Product {
	return domain.Product{
		ID:       rec["ID"],
		Name:     rec["Nome"],
		Unit:     rec["Unidade"],
		Category: rec["Categoria"],
	}
}

func recordToQuotation(rec sheetgrid.Record) domain.Quotation {
	return domain.Quotation{
		ID:         rec["ID"],
		SupplierID: rec["ID Fornecedor"],
		Supplier:   rec["Fornecedor"],
		Status:     rec["Status"],
		CreatedAt:  rec["Data"],
	}
}

func recordToQuotationItem(rec sheetgrid.Record) domain.QuotationItem {
	return domain.QuotationItem{
		QuotationID: rec["ID Cotação"],
		Product:     rec["Produto"],
		SubProduct:  rec["SubProduto"],
		Unit:        rec["Unidade"],
		Quantity:    parseAmount(rec["Quantidade"]),
		UnitPrice:   parseAmount(rec["Preço Unitário"]),
		TotalPrice:  parseAmount(rec["Preço Total"]),
	}
}

func formatDate(d civil.Date) string {
	if !d.IsValid() {
		return ""
	}
	return d.String()
}

func parseDate(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}
	}
	return d
}
