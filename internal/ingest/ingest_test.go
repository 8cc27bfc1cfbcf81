package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/drivefiles"
	"github.com/rmaganha/cotacaopro/internal/rateio"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

const testAccessKey = "35240111222333000144550010000012341000012349"

const testXML = `<?xml version="1.0" encoding="UTF-8"?>
<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe Id="NFe` + testAccessKey + `" versao="4.00">
    <ide>
      <serie>1</serie>
      <nNF>1234</nNF>
      <dhEmi>2024-01-15T10:30:00-03:00</dhEmi>
      <natOp>VENDA</natOp>
    </ide>
    <emit>
      <CNPJ>11222333000144</CNPJ>
      <xNome>Distribuidora Alfa LTDA</xNome>
    </emit>
    <dest>
      <CNPJ>99888777000166</CNPJ>
      <xNome>Comercio Beta</xNome>
    </dest>
    <det nItem="1">
      <prod>
        <cProd>P001</cProd>
        <xProd>Farinha de Trigo 25kg</xProd>
        <uCom>SC</uCom>
        <qCom>10.0000</qCom>
        <vUnCom>15.0000</vUnCom>
        <vProd>150.00</vProd>
        <xPed>COT-42</xPed>
      </prod>
    </det>
    <total>
      <ICMSTot>
        <vProd>150.00</vProd>
        <vNF>150.00</vNF>
      </ICMSTot>
    </total>
    <cobr>
      <dup>
        <nDup>001</nDup>
        <dVenc>2024-02-15</dVenc>
        <vDup>150.00</vDup>
      </dup>
    </cobr>
  </infNFe>
</NFe>`

type fakeInvoiceStore struct {
	existing     map[string]bool
	inserted     []*domain.Invoice
	statuses     map[string]string
	allocation   map[string]string
	installments map[string][]domain.Installment
	existsErr    error
	insertErr    error
	tabs         map[string][]sheetgrid.Record
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		existing:   map[string]bool{},
		statuses:   map[string]string{},
		allocation: map[string]string{},
		tabs:       map[string][]sheetgrid.Record{},
	}
}

func (f *fakeInvoiceStore) Exists(_ context.Context, key string) (bool, error) {
	return f.existing[key], f.existsErr
}

func (f *fakeInvoiceStore) Insert(_ context.Context, inv *domain.Invoice) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, inv)
	f.existing[inv.AccessKey] = true
	return nil
}

func (f *fakeInvoiceStore) UpdateStatus(_ context.Context, key, status string) error {
	f.statuses[key] = status
	return nil
}

func (f *fakeInvoiceStore) UpdateAllocationStatus(_ context.Context, key, status string) error {
	f.allocation[key] = status
	return nil
}

func (f *fakeInvoiceStore) ReplaceInstallments(_ context.Context, key string, ins []domain.Installment) error {
	f.installments = map[string][]domain.Installment{key: ins}
	return nil
}

func (f *fakeInvoiceStore) Tab(_ context.Context, sheet string) ([]sheetgrid.Record, error) {
	return f.tabs[sheet], nil
}

type fakeFinancialStore struct {
	rules    map[string][]domain.AllocationRule
	payables []domain.PayableAccount
	deleted  []string
}

func newFakeFinancialStore() *fakeFinancialStore {
	return &fakeFinancialStore{rules: map[string][]domain.AllocationRule{}}
}

func (f *fakeFinancialStore) ListAllocationRules(_ context.Context, ref string) ([]domain.AllocationRule, error) {
	return f.rules[ref], nil
}

func (f *fakeFinancialStore) AllAllocationRules(_ context.Context) ([]domain.AllocationRule, error) {
	var all []domain.AllocationRule
	for _, rs := range f.rules {
		all = append(all, rs...)
	}
	return all, nil
}

func (f *fakeFinancialStore) CostCenters(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var centers []string
	for _, rs := range f.rules {
		for _, r := range rs {
			if !seen[r.CostCenter] {
				seen[r.CostCenter] = true
				centers = append(centers, r.CostCenter)
			}
		}
	}
	return centers, nil
}

func (f *fakeFinancialStore) AppendPayables(_ context.Context, p []domain.PayableAccount) error {
	f.payables = append(f.payables, p...)
	return nil
}

func (f *fakeFinancialStore) DeletePayablesByAccessKey(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeCatalogStore struct {
	quotations []domain.Quotation
	items      []domain.QuotationItem
}

func (f *fakeCatalogStore) ListQuotations(_ context.Context, status string) ([]domain.Quotation, error) {
	return f.quotations, nil
}

func (f *fakeCatalogStore) ListQuotationItems(_ context.Context) ([]domain.QuotationItem, error) {
	return f.items, nil
}

type fakeFileSource struct {
	files    []drivefiles.File
	contents map[string][]byte
	moved    []string
	fetchErr error
}

func (f *fakeFileSource) ListPendingXML(_ context.Context) ([]drivefiles.File, error) {
	return f.files, nil
}

func (f *fakeFileSource) FetchContent(_ context.Context, id string) ([]byte, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.contents[id], nil
}

func (f *fakeFileSource) MoveToProcessed(_ context.Context, id string) error {
	f.moved = append(f.moved, id)
	return nil
}

func newTestController(inv *fakeInvoiceStore, fin *fakeFinancialStore, files *fakeFileSource) *Controller {
	return NewController(inv, fin, &fakeCatalogStore{}, files, nil, &rateio.Engine{}, zerolog.Nop())
}

func TestProcessFolderIngestsPendingFile(t *testing.T) {
	inv := newFakeInvoiceStore()
	fin := newFakeFinancialStore()
	fin.rules["COT-42"] = []domain.AllocationRule{
		{QuotationItemRef: "COT-42", CostCenter: "Padaria", Percentage: 60},
		{QuotationItemRef: "COT-42", CostCenter: "Confeitaria", Percentage: 40},
	}
	files := &fakeFileSource{
		files:    []drivefiles.File{{ID: "f1", Name: "nota.xml"}},
		contents: map[string][]byte{"f1": []byte(testXML)},
	}

	res, err := newTestController(inv, fin, files).ProcessFolder(context.Background())
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}

	if res.Processed != 1 || res.Duplicates != 0 || res.Errors != 0 {
		t.Fatalf("counters = %d/%d/%d, want 1/0/0", res.Processed, res.Duplicates, res.Errors)
	}
	if len(inv.inserted) != 1 || inv.inserted[0].AccessKey != testAccessKey {
		t.Fatalf("inserted = %+v", inv.inserted)
	}
	if len(files.moved) != 1 || files.moved[0] != "f1" {
		t.Errorf("moved = %v, want [f1]", files.moved)
	}
	if len(fin.payables) != 2 {
		t.Fatalf("payables = %d, want 2", len(fin.payables))
	}
	if got := fin.payables[0].AllocatedAmount + fin.payables[1].AllocatedAmount; got != 150 {
		t.Errorf("allocated total = %v, want 150", got)
	}
	if inv.allocation[testAccessKey] != domain.StatusConciliada {
		t.Errorf("allocation status = %q, want %q", inv.allocation[testAccessKey], domain.StatusConciliada)
	}
}

func TestProcessFolderSkipsDuplicate(t *testing.T) {
	inv := newFakeInvoiceStore()
	inv.existing[testAccessKey] = true
	files := &fakeFileSource{
		files:    []drivefiles.File{{ID: "f1", Name: "nota.xml"}},
		contents: map[string][]byte{"f1": []byte(testXML)},
	}

	res, err := newTestController(inv, newFakeFinancialStore(), files).ProcessFolder(context.Background())
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}

	if res.Duplicates != 1 || res.Processed != 0 {
		t.Fatalf("counters = %d/%d, want duplicates=1 processed=0", res.Processed, res.Duplicates)
	}
	if len(inv.inserted) != 0 {
		t.Errorf("duplicate was inserted: %+v", inv.inserted)
	}
	found := false
	for _, l := range res.Logs {
		if strings.Contains(l, "já processado") {
			found = true
		}
	}
	if !found {
		t.Errorf("logs %v lack a 'já processado' entry", res.Logs)
	}
	// The duplicate file still leaves the inbox.
	if len(files.moved) != 1 {
		t.Errorf("moved = %v, want the duplicate moved", files.moved)
	}
}

func TestProcessFolderCountsErrorsAndKeepsGoing(t *testing.T) {
	inv := newFakeInvoiceStore()
	files := &fakeFileSource{
		files: []drivefiles.File{
			{ID: "bad", Name: "quebrado.xml"},
			{ID: "good", Name: "nota.xml"},
		},
		contents: map[string][]byte{
			"bad":  []byte("<notxml"),
			"good": []byte(testXML),
		},
	}

	res, err := newTestController(inv, newFakeFinancialStore(), files).ProcessFolder(context.Background())
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}

	if res.Errors != 1 || res.Processed != 1 {
		t.Fatalf("counters = processed %d errors %d, want 1/1", res.Processed, res.Errors)
	}
	// The broken file stays in the inbox for the next run.
	if len(files.moved) != 1 || files.moved[0] != "good" {
		t.Errorf("moved = %v, want [good]", files.moved)
	}
}

func TestProcessFolderWithoutSource(t *testing.T) {
	c := NewController(newFakeInvoiceStore(), newFakeFinancialStore(), &fakeCatalogStore{}, nil, nil, &rateio.Engine{}, zerolog.Nop())
	if _, err := c.ProcessFolder(context.Background()); err == nil {
		t.Fatal("expected error when no folder is configured")
	}
}

func TestProcessUploads(t *testing.T) {
	inv := newFakeInvoiceStore()
	res, err := newTestController(inv, newFakeFinancialStore(), nil).ProcessUploads(context.Background(), []UploadFile{
		{Name: "nota.xml", Content: []byte(testXML)},
	})
	if err != nil {
		t.Fatalf("ProcessUploads: %v", err)
	}
	if res.Processed != 1 {
		t.Fatalf("processed = %d, want 1", res.Processed)
	}
	if len(inv.inserted) != 1 {
		t.Fatalf("inserted = %d rows", len(inv.inserted))
	}
}

func TestAllocateWithoutRulesLeavesInvoicePending(t *testing.T) {
	inv := newFakeInvoiceStore()
	fin := newFakeFinancialStore()
	files := &fakeFileSource{
		files:    []drivefiles.File{{ID: "f1", Name: "nota.xml"}},
		contents: map[string][]byte{"f1": []byte(testXML)},
	}

	if _, err := newTestController(inv, fin, files).ProcessFolder(context.Background()); err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if len(fin.payables) != 0 {
		t.Errorf("payables = %d, want none", len(fin.payables))
	}
	if got, ok := inv.allocation[testAccessKey]; ok {
		t.Errorf("allocation status set to %q, want untouched", got)
	}
}

func TestStrictAllocationFailureFlagsInvoice(t *testing.T) {
	inv := newFakeInvoiceStore()
	fin := newFakeFinancialStore()
	fin.rules["COT-42"] = []domain.AllocationRule{
		{QuotationItemRef: "COT-42", CostCenter: "Padaria", Percentage: 90},
	}
	files := &fakeFileSource{
		files:    []drivefiles.File{{ID: "f1", Name: "nota.xml"}},
		contents: map[string][]byte{"f1": []byte(testXML)},
	}

	c := NewController(inv, fin, &fakeCatalogStore{}, files, nil, &rateio.Engine{Strict: true}, zerolog.Nop())
	res, err := c.ProcessFolder(context.Background())
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}

	// The invoice itself is persisted; only the allocation fails.
	if res.Processed != 1 {
		t.Fatalf("processed = %d, want 1", res.Processed)
	}
	if inv.allocation[testAccessKey] != domain.StatusErro {
		t.Errorf("allocation status = %q, want %q", inv.allocation[testAccessKey], domain.StatusErro)
	}
	if len(fin.payables) != 0 {
		t.Errorf("payables = %d, want none", len(fin.payables))
	}
}

func TestLoadPageDataAggregates(t *testing.T) {
	inv := newFakeInvoiceStore()
	inv.tabs["NotasFiscais"] = []sheetgrid.Record{{"Chave de Acesso": testAccessKey}}
	inv.tabs["ItensNF"] = []sheetgrid.Record{{"Descrição": "Farinha de Trigo 25kg"}}
	fin := newFakeFinancialStore()
	fin.rules["COT-42"] = []domain.AllocationRule{
		{QuotationItemRef: "COT-42", CostCenter: "Padaria", Percentage: 100},
	}
	catalog := &fakeCatalogStore{
		quotations: []domain.Quotation{{ID: "q1", Status: domain.QuotationOpen}},
	}

	c := NewController(inv, fin, catalog, nil, nil, &rateio.Engine{}, zerolog.Nop())
	data, err := c.LoadPageData(context.Background())
	if err != nil {
		t.Fatalf("LoadPageData: %v", err)
	}

	if len(data.Quotations) != 1 {
		t.Errorf("quotations = %d, want 1", len(data.Quotations))
	}
	if len(data.Invoices) != 1 || data.Invoices[0]["Chave de Acesso"] != testAccessKey {
		t.Errorf("invoices = %+v", data.Invoices)
	}
	if len(data.CostCenters) != 1 || data.CostCenters[0] != "Padaria" {
		t.Errorf("cost centers = %v, want [Padaria]", data.CostCenters)
	}
	if len(data.Rules) != 1 {
		t.Errorf("rules = %d, want 1", len(data.Rules))
	}
}

func TestResetInvoice(t *testing.T) {
	inv := newFakeInvoiceStore()
	inv.existing[testAccessKey] = true
	fin := newFakeFinancialStore()

	c := newTestController(inv, fin, nil)
	if err := c.ResetInvoice(context.Background(), testAccessKey); err != nil {
		t.Fatalf("ResetInvoice: %v", err)
	}

	if len(fin.deleted) != 1 || fin.deleted[0] != testAccessKey {
		t.Errorf("deleted payables = %v", fin.deleted)
	}
	if inv.statuses[testAccessKey] != domain.StatusPendente {
		t.Errorf("status = %q, want %q", inv.statuses[testAccessKey], domain.StatusPendente)
	}
	if inv.allocation[testAccessKey] != domain.StatusPendente {
		t.Errorf("allocation status = %q, want %q", inv.allocation[testAccessKey], domain.StatusPendente)
	}
}

func TestResetUnknownInvoice(t *testing.T) {
	c := newTestController(newFakeInvoiceStore(), newFakeFinancialStore(), nil)
	if err := c.ResetInvoice(context.Background(), testAccessKey); !errors.Is(err, ErrUnknownInvoice) {
		t.Fatalf("err = %v, want ErrUnknownInvoice", err)
	}
}

func TestReplaceInstallmentsStampsAccessKey(t *testing.T) {
	inv := newFakeInvoiceStore()
	inv.existing[testAccessKey] = true

	c := newTestController(inv, newFakeFinancialStore(), nil)
	err := c.ReplaceInstallments(context.Background(), testAccessKey, []domain.Installment{
		{Number: "001", Amount: 75},
		{Number: "002", Amount: 75},
	})
	if err != nil {
		t.Fatalf("ReplaceInstallments: %v", err)
	}

	got := inv.installments[testAccessKey]
	if len(got) != 2 {
		t.Fatalf("installments = %d, want 2", len(got))
	}
	for _, ins := range got {
		if ins.AccessKey != testAccessKey {
			t.Errorf("installment %s missing access key", ins.Number)
		}
	}
}

func TestProcessFolderFetchFailure(t *testing.T) {
	files := &fakeFileSource{
		files:    []drivefiles.File{{ID: "f1", Name: "nota.xml"}},
		fetchErr: errors.New("network"),
	}
	res, err := newTestController(newFakeInvoiceStore(), newFakeFinancialStore(), files).ProcessFolder(context.Background())
	if err != nil {
		t.Fatalf("ProcessFolder: %v", err)
	}
	if res.Errors != 1 {
		t.Fatalf("errors = %d, want 1", res.Errors)
	}
	if len(files.moved) != 0 {
		t.Errorf("moved = %v, want none", files.moved)
	}
}
