package sheets

// Sheet tab names per spreadsheet. The catalog spreadsheet carries the
// supplier/product/quotation tables, the invoices spreadsheet the five NF-e
// tables plus the reconciliation mapping, and the financial spreadsheet the
// allocation rules and payable accounts.
const (
	SheetSuppliers      = "Fornecedores"
	SheetProducts       = "Produtos"
	SheetSubProducts    = "SubProdutos"
	SheetQuotations     = "Cotacoes"
	SheetQuotationItems = "ItensCotacao"

	SheetInvoices     = "NotasFiscais"
	SheetInvoiceItems = "ItensNF"
	SheetInstallments = "FaturasNF"
	SheetTransport    = "TransporteNF"
	SheetTaxTotals    = "TotaisNF"
	SheetReconMapping = "MapeamentoConciliacao"

	SheetAllocationRules = "RegrasRateio"
	SheetPayables        = "ContasAPagar"
)

// Column order of every tab is defined here and nowhere else. Reads resolve
// columns against the sheet's actual header row, so manual column reordering
// in the spreadsheet does not break the mapping.
var (
	HeadersSuppliers = []string{
		"ID", "Nome", "CNPJ", "Email", "Telefone", "Cidade", "UF", "Ativo",
	}

	HeadersProducts = []string{
		"ID", "Nome", "Unidade", "Categoria",
	}

	HeadersSubProducts = []string{
		"ID Produto", "Nome", "Unidade",
	}

	HeadersQuotations = []string{
		"ID", "ID Fornecedor", "Fornecedor", "Status", "Data",
	}

	HeadersQuotationItems = []string{
		"ID Cotação", "Produto", "SubProduto", "Unidade",
		"Quantidade", "Preço Unitário", "Preço Total",
	}

	HeadersInvoices = []string{
		"Chave de Acesso", "Número", "Série", "Data Emissão",
		"CNPJ Emitente", "Nome Emitente", "Endereço Emitente",
		"Cidade Emitente", "UF Emitente",
		"CNPJ Destinatário", "Nome Destinatário",
		"Natureza Operação", "Número Pedido", "Status", "Status Rateio",
	}

	HeadersInvoiceItems = []string{
		"Chave de Acesso", "Item", "Código Produto", "Descrição", "GTIN",
		"NCM", "CFOP", "CST", "Unidade", "Quantidade",
		"Valor Unitário", "Valor Total",
		"Base ICMS", "Alíquota ICMS", "Valor ICMS",
		"Valor IPI", "Valor PIS", "Valor COFINS",
	}

	HeadersInstallments = []string{
		"Chave de Acesso", "Número NF", "Parcela", "Vencimento", "Valor",
	}

	HeadersTransport = []string{
		"Chave de Acesso", "CNPJ Transportadora", "Nome Transportadora",
		"Modalidade Frete", "Volumes", "Peso Bruto", "Peso Líquido",
	}

	HeadersTaxTotals = []string{
		"Chave de Acesso", "Base ICMS", "Valor ICMS", "Valor IPI",
		"Valor PIS", "Valor COFINS", "Valor Frete", "Valor Desconto",
		"Valor Produtos", "Valor Total NF",
	}

	HeadersReconMapping = []string{
		"Chave de Acesso", "ID Cotação", "Item NF", "Item Cotação",
	}

	HeadersAllocationRules = []string{
		"Item Cotação", "Setor", "Percentual",
	}

	HeadersPayables = []string{
		"Chave de Acesso", "Número NF", "Parcela", "Itens",
		"Vencimento", "Valor", "Setor", "Valor Rateado",
	}
)
