// Package nfe extracts normalized invoice records from NF-e XML documents.
// Both the authorized wrapper (nfeProc) and the bare NFe root are accepted.
package nfe

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/rmaganha/cotacaopro/internal/domain"
)

// ExtractionError indicates a document that could not be turned into an
// invoice record: malformed XML, missing infNFe or missing access key.
// Nothing is persisted for a document that fails extraction.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nfe extraction: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("nfe extraction: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extract parses one NF-e XML document and returns the normalized invoice.
// The access key comes from the infNFe Id attribute with the "NFe" prefix
// stripped, falling back to protNFe/infProt/chNFe; its absence is fatal.
func Extract(data []byte) (*domain.Invoice, error) {
	inf, chaveProt, err := unmarshalDocument(data)
	if err != nil {
		return nil, err
	}

	accessKey := onlyDigits(strings.TrimPrefix(strings.TrimSpace(inf.ID), "NFe"))
	if accessKey == "" {
		accessKey = onlyDigits(chaveProt)
	}
	if accessKey == "" {
		return nil, &ExtractionError{Reason: "missing access key (infNFe Id attribute)"}
	}

	inv := &domain.Invoice{
		AccessKey:         accessKey,
		Number:            strings.TrimSpace(inf.Ide.NNF),
		Series:            strings.TrimSpace(inf.Ide.Serie),
		IssuedAt:          normalizeDate(firstNonEmpty(inf.Ide.DhEmi, inf.Ide.DEmi)),
		NatureOfOperation: strings.TrimSpace(inf.Ide.NatOp),
		IssuerCNPJ:        onlyDigits(inf.Emit.CNPJ),
		IssuerName:        strings.TrimSpace(inf.Emit.XNome),
		Status:            domain.StatusPendente,
	}

	if end := inf.Emit.EnderEmit; end != nil {
		inv.IssuerAddress = joinNonEmpty(", ", strings.TrimSpace(end.XLgr), strings.TrimSpace(end.Nro), strings.TrimSpace(end.XBairro))
		inv.IssuerCity = strings.TrimSpace(end.XMun)
		inv.IssuerUF = strings.TrimSpace(end.UF)
	}

	if inf.Dest != nil {
		inv.RecipientCNPJ = onlyDigits(firstNonEmpty(inf.Dest.CNPJ, inf.Dest.CPF))
		inv.RecipientName = strings.TrimSpace(inf.Dest.XNome)
	}

	for _, d := range inf.Det {
		item := extractItem(accessKey, d)
		if item.ItemNumber == 0 {
			item.ItemNumber = len(inv.Items) + 1
		}
		inv.Items = append(inv.Items, item)
		if inv.OrderNumber == "" && strings.TrimSpace(d.Prod.XPed) != "" {
			inv.OrderNumber = strings.TrimSpace(d.Prod.XPed)
		}
	}

	if inf.Cobr != nil {
		for _, du := range inf.Cobr.Dup {
			inv.Installments = append(inv.Installments, domain.Installment{
				AccessKey:     accessKey,
				InvoiceNumber: inv.Number,
				Number:        strings.TrimSpace(du.NDup),
				DueDate:       parseDueDate(du.DVenc),
				Amount:        parseDecimal(du.VDup),
			})
		}
	}

	inv.Transport = extractTransport(accessKey, inf.Transp)
	inv.Totals = extractTotals(accessKey, inf.Total.ICMSTot)

	return inv, nil
}

// unmarshalDocument tries the nfeProc wrapper first, then the bare NFe root.
func unmarshalDocument(data []byte) (infNFe, string, error) {
	var proc nfeProc
	if err := xml.Unmarshal(data, &proc); err == nil && hasContent(proc.NFe.InfNFe) {
		chave := ""
		if proc.ProtNFe != nil {
			chave = proc.ProtNFe.InfProt.ChNFe
		}
		return proc.NFe.InfNFe, chave, nil
	}

	var root nfeRoot
	err := xml.Unmarshal(data, &root)
	if err != nil {
		return infNFe{}, "", &ExtractionError{Reason: "malformed XML", Err: err}
	}
	if !hasContent(root.InfNFe) {
		return infNFe{}, "", &ExtractionError{Reason: "document has no infNFe element"}
	}
	return root.InfNFe, "", nil
}

func hasContent(inf infNFe) bool {
	return inf.ID != "" || inf.Ide.NNF != "" || len(inf.Det) > 0
}

func extractItem(accessKey string, d det) domain.InvoiceItem {
	item := domain.InvoiceItem{
		AccessKey:   accessKey,
		ItemNumber:  parseInt(d.NItem),
		ProductCode: strings.TrimSpace(d.Prod.CProd),
		Description: strings.TrimSpace(d.Prod.XProd),
		GTIN:        strings.TrimSpace(d.Prod.CEAN),
		NCM:         strings.TrimSpace(d.Prod.NCM),
		CFOP:        strings.TrimSpace(d.Prod.CFOP),
		Unit:        strings.TrimSpace(d.Prod.UCom),
		Quantity:    parseDecimal(d.Prod.QCom),
		UnitValue:   parseDecimal(d.Prod.VUnCom),
		TotalValue:  parseDecimal(d.Prod.VProd),
	}

	item.CST, item.ICMSBase, item.ICMSRate, item.ICMSValue = extractICMS(d.Imposto.ICMS)
	item.IPIValue = extractIPI(d.Imposto.IPI)
	item.PISValue = extractPIS(d.Imposto.PIS)
	item.COFINSValue = extractCOFINS(d.Imposto.COFINS)

	return item
}

// extractICMS resolves the applicable ICMS group. Exactly one group is
// present per item but the document does not say which, so each known
// variant is tried in a fixed priority order and the first match wins.
func extractICMS(g icmsGroup) (cst string, base, rate, value float64) {
	valued := []*icmsVal{
		g.ICMS00, g.ICMS10, g.ICMS20, g.ICMS30, g.ICMS51, g.ICMS70,
		g.ICMS90, g.ICMSPart, g.ICMSSN201, g.ICMSSN202, g.ICMSSN900,
	}
	for _, v := range valued {
		if v != nil {
			return strings.TrimSpace(v.CST), parseDecimal(v.VBC), parseDecimal(v.PICMS), parseDecimal(v.VICMS)
		}
	}

	// Exempt/simples groups carry a classification code but no base or value.
	simple := []*icmsSimple{g.ICMS40, g.ICMS60, g.ICMSSN101, g.ICMSSN102, g.ICMSSN500}
	for _, s := range simple {
		if s != nil {
			return strings.TrimSpace(firstNonEmpty(s.CST, s.CSOSN)), 0, 0, 0
		}
	}
	return "", 0, 0, 0
}

func extractIPI(i *ipi) float64 {
	if i == nil || i.Trib == nil {
		return 0
	}
	return parseDecimal(i.Trib.VIPI)
}

func extractPIS(p *pis) float64 {
	if p == nil {
		return 0
	}
	for _, v := range []*pisVal{p.Aliq, p.Qtde, p.NT, p.Outr} {
		if v != nil && strings.TrimSpace(v.VPIS) != "" {
			return parseDecimal(v.VPIS)
		}
	}
	return 0
}

func extractCOFINS(c *cofins) float64 {
	if c == nil {
		return 0
	}
	for _, v := range []*cofinsVal{c.Aliq, c.Qtde, c.NT, c.Outr} {
		if v != nil && strings.TrimSpace(v.VCOFINS) != "" {
			return parseDecimal(v.VCOFINS)
		}
	}
	return 0
}

func extractTransport(accessKey string, t *transp) domain.Transport {
	out := domain.Transport{AccessKey: accessKey}
	if t == nil {
		return out
	}
	out.FreightMode = strings.TrimSpace(t.ModFrete)
	if t.Transporta != nil {
		out.CarrierCNPJ = onlyDigits(t.Transporta.CNPJ)
		out.CarrierName = strings.TrimSpace(t.Transporta.XNome)
	}
	for _, v := range t.Vol {
		out.Volumes += parseDecimal(v.QVol)
		out.GrossWeight += parseDecimal(v.PesoB)
		out.NetWeight += parseDecimal(v.PesoL)
	}
	return out
}

func extractTotals(accessKey string, tot icmsTot) domain.TaxTotals {
	return domain.TaxTotals{
		AccessKey:     accessKey,
		ICMSBase:      parseDecimal(tot.VBC),
		ICMSValue:     parseDecimal(tot.VICMS),
		IPIValue:      parseDecimal(tot.VIPI),
		PISValue:      parseDecimal(tot.VPIS),
		COFINSValue:   parseDecimal(tot.VCOFINS),
		FreightValue:  parseDecimal(tot.VFrete),
		DiscountValue: parseDecimal(tot.VDesc),
		ProductsValue: parseDecimal(tot.VProd),
		GrandTotal:    parseDecimal(tot.VNF),
	}
}

func parseDecimal(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", ".")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// normalizeDate accepts "2025-11-11T12:34:56-03:00" or "2025-11-11" and
// returns YYYY-MM-DD.
func normalizeDate(d string) string {
	d = strings.TrimSpace(d)
	if d == "" {
		return ""
	}
	if len(d) == 10 && d[4] == '-' && d[7] == '-' {
		return d
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, d); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(d) >= 10 {
		return d[:10]
	}
	return d
}

func parseDueDate(d string) civil.Date {
	cd, err := civil.ParseDate(normalizeDate(d))
	if err != nil {
		return civil.Date{}
	}
	return cd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
