package nfe

import "encoding/xml"

// Wire structs mirroring the NF-e 4.00 layout. Only the elements the
// extractor consumes are mapped; optional and mutually exclusive tax groups
// are pointers so absence is distinguishable from zero.

type nfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfeRoot  `xml:"NFe"`
	ProtNFe *protNFe `xml:"protNFe"`
}

type protNFe struct {
	InfProt struct {
		ChNFe string `xml:"chNFe"`
	} `xml:"infProt"`
}

type nfeRoot struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	ID string `xml:"Id,attr"`

	Ide    ide     `xml:"ide"`
	Emit   emit    `xml:"emit"`
	Dest   *dest   `xml:"dest"`
	Det    []det   `xml:"det"`
	Total  total   `xml:"total"`
	Transp *transp `xml:"transp"`
	Cobr   *cobr   `xml:"cobr"`
}

type ide struct {
	Serie string `xml:"serie"`
	NNF   string `xml:"nNF"`
	DhEmi string `xml:"dhEmi"` // 4.00
	DEmi  string `xml:"dEmi"`  // 3.10 and older
	NatOp string `xml:"natOp"`
}

type endereco struct {
	XLgr    string `xml:"xLgr"`
	Nro     string `xml:"nro"`
	XBairro string `xml:"xBairro"`
	XMun    string `xml:"xMun"`
	UF      string `xml:"UF"`
}

type emit struct {
	CNPJ      string    `xml:"CNPJ"`
	XNome     string    `xml:"xNome"`
	EnderEmit *endereco `xml:"enderEmit"`
}

type dest struct {
	CNPJ  string `xml:"CNPJ"`
	CPF   string `xml:"CPF"`
	XNome string `xml:"xNome"`
}

type det struct {
	NItem   string  `xml:"nItem,attr"`
	Prod    prod    `xml:"prod"`
	Imposto imposto `xml:"imposto"`
}

type prod struct {
	CProd  string `xml:"cProd"`
	CEAN   string `xml:"cEAN"`
	XProd  string `xml:"xProd"`
	NCM    string `xml:"NCM"`
	CFOP   string `xml:"CFOP"`
	UCom   string `xml:"uCom"`
	QCom   string `xml:"qCom"`
	VUnCom string `xml:"vUnCom"`
	VProd  string `xml:"vProd"`
	XPed   string `xml:"xPed"`
}

type imposto struct {
	ICMS   icmsGroup `xml:"ICMS"`
	IPI    *ipi      `xml:"IPI"`
	PIS    *pis      `xml:"PIS"`
	COFINS *cofins   `xml:"COFINS"`
}

// ICMS comes in one of many mutually exclusive groups; exactly one applies
// per item. The extractor tries them in fixed priority order.
type icmsGroup struct {
	ICMS00    *icmsVal    `xml:"ICMS00"`
	ICMS10    *icmsVal    `xml:"ICMS10"`
	ICMS20    *icmsVal    `xml:"ICMS20"`
	ICMS30    *icmsVal    `xml:"ICMS30"`
	ICMS40    *icmsSimple `xml:"ICMS40"`
	ICMS51    *icmsVal    `xml:"ICMS51"`
	ICMS60    *icmsSimple `xml:"ICMS60"`
	ICMS70    *icmsVal    `xml:"ICMS70"`
	ICMS90    *icmsVal    `xml:"ICMS90"`
	ICMSPart  *icmsVal    `xml:"ICMSPart"`
	ICMSSN101 *icmsSimple `xml:"ICMSSN101"`
	ICMSSN102 *icmsSimple `xml:"ICMSSN102"`
	ICMSSN201 *icmsVal    `xml:"ICMSSN201"`
	ICMSSN202 *icmsVal    `xml:"ICMSSN202"`
	ICMSSN500 *icmsSimple `xml:"ICMSSN500"`
	ICMSSN900 *icmsVal    `xml:"ICMSSN900"`
}

type icmsVal struct {
	CST   string `xml:"CST"`
	VBC   string `xml:"vBC"`
	PICMS string `xml:"pICMS"`
	VICMS string `xml:"vICMS"`
}

type icmsSimple struct {
	CST   string `xml:"CST"`
	CSOSN string `xml:"CSOSN"`
}

type ipi struct {
	Trib *ipiTrib  `xml:"IPITrib"`
	NT   *struct{} `xml:"IPINT"`
}

type ipiTrib struct {
	VIPI string `xml:"vIPI"`
}

type pis struct {
	Aliq *pisVal `xml:"PISAliq"`
	Qtde *pisVal `xml:"PISQtde"`
	NT   *pisVal `xml:"PISNT"`
	Outr *pisVal `xml:"PISOutr"`
}

type pisVal struct {
	VPIS string `xml:"vPIS"`
}

type cofins struct {
	Aliq *cofinsVal `xml:"COFINSAliq"`
	Qtde *cofinsVal `xml:"COFINSQtde"`
	NT   *cofinsVal `xml:"COFINSNT"`
	Outr *cofinsVal `xml:"COFINSOutr"`
}

type cofinsVal struct {
	VCOFINS string `xml:"vCOFINS"`
}

type total struct {
	ICMSTot icmsTot `xml:"ICMSTot"`
}

type icmsTot struct {
	VBC     string `xml:"vBC"`
	VICMS   string `xml:"vICMS"`
	VIPI    string `xml:"vIPI"`
	VPIS    string `xml:"vPIS"`
	VCOFINS string `xml:"vCOFINS"`
	VFrete  string `xml:"vFrete"`
	VDesc   string `xml:"vDesc"`
	VProd   string `xml:"vProd"`
	VNF     string `xml:"vNF"`
}

type transp struct {
	ModFrete   string      `xml:"modFrete"`
	Transporta *transporta `xml:"transporta"`
	Vol        []vol       `xml:"vol"`
}

type transporta struct {
	CNPJ  string `xml:"CNPJ"`
	XNome string `xml:"xNome"`
}

type vol struct {
	QVol  string `xml:"qVol"`
	PesoB string `xml:"pesoB"`
	PesoL string `xml:"pesoL"`
}

type cobr struct {
	Dup []dup `xml:"dup"`
}

type dup struct {
	NDup  string `xml:"nDup"`
	DVenc string `xml:"dVenc"`
	VDup  string `xml:"vDup"`
}
