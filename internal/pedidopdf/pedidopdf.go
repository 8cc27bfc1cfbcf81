// Package pedidopdf renders purchase-order PDFs from closed quotations.
package pedidopdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/rmaganha/cotacaopro/internal/domain"
)

const (
	colProduct  = 60.0
	colSub      = 35.0
	colUnit     = 15.0
	colQty      = 20.0
	colUnitVal  = 28.0
	colTotalVal = 32.0
)

// Render produces the purchase-order PDF for one quotation.
func Render(q domain.Quotation) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Pedido de Compra "+q.ID), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Pedido de Compra"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Cotação: "+q.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Fornecedor: "+q.Supplier), "", 1, "L", false, 0, "")
	if q.CreatedAt != "" {
		pdf.CellFormat(0, 6, tr("Data: "+q.CreatedAt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	header := []struct {
		label string
		width float64
		align string
	}{
		{"Produto", colProduct, "L"},
		{"SubProduto", colSub, "L"},
		{"Un.", colUnit, "C"},
		{"Qtde", colQty, "R"},
		{tr("Preço Unit."), colUnitVal, "R"},
		{"Total", colTotalVal, "R"},
	}
	for _, h := range header {
		pdf.CellFormat(h.width, 7, tr(h.label), "1", 0, h.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var total float64
	for _, it := range q.Items {
		pdf.CellFormat(colProduct, 6, tr(it.Product), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colSub, 6, tr(it.SubProduct), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colUnit, 6, tr(it.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colQty, 6, formatQty(it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colUnitVal, 6, formatMoney(it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotalVal, 6, formatMoney(it.TotalPrice), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		total += it.TotalPrice
	}

	pdf.SetFont("Helvetica", "B", 9)
	labelWidth := colProduct + colSub + colUnit + colQty + colUnitVal
	pdf.CellFormat(labelWidth, 7, "Total do Pedido", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotalVal, 7, formatMoney(total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pedidopdf: rendering quotation %s: %w", q.ID, err)
	}
	return buf.Bytes(), nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

func formatQty(v float64) string {
	return fmt.Sprintf("%g", v)
}
