package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/domain"
	"github.com/rmaganha/cotacaopro/internal/drivefiles"
	"github.com/rmaganha/cotacaopro/internal/infra/sheets"
	"github.com/rmaganha/cotacaopro/internal/nfe"
	"github.com/rmaganha/cotacaopro/internal/rateio"
	"github.com/rmaganha/cotacaopro/internal/sheetgrid"
)

// ErrUnknownInvoice is returned by operations targeting an access key that
// was never persisted.
var ErrUnknownInvoice = errors.New("ingest: unknown invoice")

// InvoiceStore is the invoice-spreadsheet surface the controller needs.
type InvoiceStore interface {
	Exists(ctx context.Context, accessKey string) (bool, error)
	Insert(ctx context.Context, inv *domain.Invoice) error
	UpdateStatus(ctx context.Context, accessKey, status string) error
	UpdateAllocationStatus(ctx context.Context, accessKey, status string) error
	ReplaceInstallments(ctx context.Context, accessKey string, installments []domain.Installment) error
	Tab(ctx context.Context, sheet string) ([]sheetgrid.Record, error)
}

// FinancialStore reads allocation rules and writes the resulting payables.
type FinancialStore interface {
	ListAllocationRules(ctx context.Context, quotationItemRef string) ([]domain.AllocationRule, error)
	AllAllocationRules(ctx context.Context) ([]domain.AllocationRule, error)
	CostCenters(ctx context.Context) ([]string, error)
	AppendPayables(ctx context.Context, payables []domain.PayableAccount) error
	DeletePayablesByAccessKey(ctx context.Context, accessKey string) error
}

// CatalogStore supplies the quotation side of the reconciliation page.
type CatalogStore interface {
	ListQuotations(ctx context.Context, status string) ([]domain.Quotation, error)
	ListQuotationItems(ctx context.Context) ([]domain.QuotationItem, error)
}

// FileSource lists and consumes pending XML files.
type FileSource interface {
	ListPendingXML(ctx context.Context) ([]drivefiles.File, error)
	FetchContent(ctx context.Context, fileID string) ([]byte, error)
	MoveToProcessed(ctx context.Context, fileID string) error
}

// Archiver keeps a raw copy of each processed XML. A nil archiver disables
// archiving.
type Archiver interface {
	Store(ctx context.Context, accessKey string, data []byte) error
}

// Result summarizes one processing run.
type Result struct {
	Processed  int      `json:"processadas"`
	Duplicates int      `json:"duplicadas"`
	Errors     int      `json:"erros"`
	Logs       []string `json:"logs"`
}

// Controller runs the NF-e reconciliation pipeline.
type Controller struct {
	invoices  InvoiceStore
	financial FinancialStore
	catalog   CatalogStore
	files     FileSource
	archive   Archiver
	engine    *rateio.Engine
	log       zerolog.Logger
}

func NewController(invoices InvoiceStore, financial FinancialStore, catalog CatalogStore, files FileSource, archive Archiver, engine *rateio.Engine, log zerolog.Logger) *Controller {
	return &Controller{
		invoices:  invoices,
		financial: financial,
		catalog:   catalog,
		files:     files,
		archive:   archive,
		engine:    engine,
		log:       log,
	}
}

// ProcessFolder drains the Drive inbox: every pending XML is ingested and,
// on success, moved to the processed folder. A failing file is left in the
// inbox for the next run and counted as an error; the run keeps going.
func (c *Controller) ProcessFolder(ctx context.Context) (*Result, error) {
	if c.files == nil {
		return nil, errors.New("ingest: no XML folder configured")
	}

	files, err := c.files.ListPendingXML(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest: listing pending files: %w", err)
	}

	res := &Result{Logs: []string{}}
	for _, f := range files {
		data, err := c.files.FetchContent(ctx, f.ID)
		if err != nil {
			c.fail(res, f.Name, fmt.Errorf("baixando arquivo: %w", err))
			continue
		}

		outcome, err := c.ingestOne(ctx, f.Name, data)
		if err != nil {
			c.fail(res, f.Name, err)
			continue
		}

		// Duplicates are also moved so the inbox never wedges on a
		// reprocessed file.
		if err := c.files.MoveToProcessed(ctx, f.ID); err != nil {
			c.fail(res, f.Name, fmt.Errorf("movendo para processados: %w", err))
			continue
		}
		c.record(res, outcome)
	}

	c.log.Info().
		Int("processed", res.Processed).
		Int("duplicates", res.Duplicates).
		Int("errors", res.Errors).
		Msg("folder scan finished")
	return res, nil
}

// UploadFile is one XML submitted directly through the API.
type UploadFile struct {
	Name    string
	Content []byte
}

// ProcessUploads ingests XMLs submitted in the request body, bypassing
// Drive entirely.
func (c *Controller) ProcessUploads(ctx context.Context, uploads []UploadFile) (*Result, error) {
	res := &Result{Logs: []string{}}
	for _, up := range uploads {
		outcome, err := c.ingestOne(ctx, up.Name, up.Content)
		if err != nil {
			c.fail(res, up.Name, err)
			continue
		}
		c.record(res, outcome)
	}
	return res, nil
}

type fileOutcome struct {
	name      string
	accessKey string
	duplicate bool
}

// ingestOne runs extract, duplicate check, persistence, allocation and
// archival for one XML payload.
func (c *Controller) ingestOne(ctx context.Context, name string, data []byte) (fileOutcome, error) {
	inv, err := nfe.Extract(data)
	if err != nil {
		return fileOutcome{}, fmt.Errorf("extraindo dados: %w", err)
	}

	exists, err := c.invoices.Exists(ctx, inv.AccessKey)
	if err != nil {
		return fileOutcome{}, fmt.Errorf("verificando duplicidade: %w", err)
	}
	if exists {
		c.log.Info().Str("file", name).Str("access_key", inv.AccessKey).Msg("arquivo já processado")
		return fileOutcome{name: name, accessKey: inv.AccessKey, duplicate: true}, nil
	}

	if err := c.invoices.Insert(ctx, inv); err != nil {
		return fileOutcome{}, fmt.Errorf("gravando nota: %w", err)
	}

	if err := c.allocate(ctx, inv); err != nil {
		// The invoice is persisted; allocation failure is flagged on the
		// row instead of failing the file.
		c.log.Error().Err(err).Str("access_key", inv.AccessKey).Msg("rateio failed")
		if uerr := c.invoices.UpdateAllocationStatus(ctx, inv.AccessKey, domain.StatusErro); uerr != nil {
			c.log.Error().Err(uerr).Str("access_key", inv.AccessKey).Msg("updating allocation status")
		}
	}

	if c.archive != nil {
		if err := c.archive.Store(ctx, inv.AccessKey, data); err != nil {
			// Archival is best effort.
			c.log.Warn().Err(err).Str("access_key", inv.AccessKey).Msg("archiving xml")
		}
	}

	return fileOutcome{name: name, accessKey: inv.AccessKey}, nil
}

// allocate splits the invoice's installments across cost centers when rules
// exist for its order number. Invoices without an order or without rules are
// left pending.
func (c *Controller) allocate(ctx context.Context, inv *domain.Invoice) error {
	if inv.OrderNumber == "" {
		return nil
	}

	rules, err := c.financial.ListAllocationRules(ctx, inv.OrderNumber)
	if err != nil {
		return fmt.Errorf("lendo regras de rateio: %w", err)
	}
	if len(rules) == 0 {
		c.log.Warn().
			Str("access_key", inv.AccessKey).
			Str("order", inv.OrderNumber).
			Msg("no allocation rules for order")
		return nil
	}

	payables, err := c.engine.Allocate(inv, rules)
	if err != nil {
		return err
	}
	if payables == nil {
		return nil
	}

	if err := c.financial.DeletePayablesByAccessKey(ctx, inv.AccessKey); err != nil {
		return fmt.Errorf("limpando contas anteriores: %w", err)
	}
	if err := c.financial.AppendPayables(ctx, payables); err != nil {
		return fmt.Errorf("gravando contas a pagar: %w", err)
	}
	return c.invoices.UpdateAllocationStatus(ctx, inv.AccessKey, domain.StatusConciliada)
}

func (c *Controller) record(res *Result, out fileOutcome) {
	if out.duplicate {
		res.Duplicates++
		res.Logs = append(res.Logs, fmt.Sprintf("%s: já processado (chave %s)", out.name, out.accessKey))
		return
	}
	res.Processed++
	res.Logs = append(res.Logs, fmt.Sprintf("%s: processado (chave %s)", out.name, out.accessKey))
}

func (c *Controller) fail(res *Result, name string, err error) {
	res.Errors++
	res.Logs = append(res.Logs, fmt.Sprintf("%s: erro: %v", name, err))
	c.log.Error().Err(err).Str("file", name).Msg("file processing failed")
}

// ResetInvoice undoes the reconciliation of one invoice: its payables are
// deleted and both status columns return to "Pendente", making it eligible
// for a fresh reconciliation pass.
func (c *Controller) ResetInvoice(ctx context.Context, accessKey string) error {
	exists, err := c.invoices.Exists(ctx, accessKey)
	if err != nil {
		return fmt.Errorf("ingest: checking invoice %s: %w", accessKey, err)
	}
	if !exists {
		return ErrUnknownInvoice
	}

	if err := c.financial.DeletePayablesByAccessKey(ctx, accessKey); err != nil {
		return fmt.Errorf("ingest: deleting payables of %s: %w", accessKey, err)
	}
	if err := c.invoices.UpdateStatus(ctx, accessKey, domain.StatusPendente); err != nil {
		return err
	}
	if err := c.invoices.UpdateAllocationStatus(ctx, accessKey, domain.StatusPendente); err != nil {
		return err
	}

	c.log.Info().Str("access_key", accessKey).Msg("invoice reset")
	return nil
}

// ReplaceInstallments swaps the full installment set of one invoice. The
// table has no per-row identity, so edits are expressed as
// delete-all-then-append.
func (c *Controller) ReplaceInstallments(ctx context.Context, accessKey string, installments []domain.Installment) error {
	exists, err := c.invoices.Exists(ctx, accessKey)
	if err != nil {
		return fmt.Errorf("ingest: checking invoice %s: %w", accessKey, err)
	}
	if !exists {
		return ErrUnknownInvoice
	}

	for i := range installments {
		installments[i].AccessKey = accessKey
	}
	return c.invoices.ReplaceInstallments(ctx, accessKey, installments)
}

// PageData is the aggregate the reconciliation screen loads in one request.
type PageData struct {
	Quotations     []domain.Quotation      `json:"cotacoes"`
	Invoices       []sheetgrid.Record      `json:"notasFiscais"`
	InvoiceItems   []sheetgrid.Record      `json:"itensNF"`
	QuotationItems []domain.QuotationItem  `json:"itensCotacao"`
	GeneralData    GeneralData             `json:"dadosGeraisNF"`
	ReconMapping   []sheetgrid.Record      `json:"mapeamentoConciliacao"`
	Rules          []domain.AllocationRule `json:"regrasRateio"`
	CostCenters    []string                `json:"setoresUnicos"`
}

// GeneralData groups the secondary NF-e tables.
type GeneralData struct {
	Installments []sheetgrid.Record `json:"faturas"`
	Transport    []sheetgrid.Record `json:"transporte"`
	TaxTotals    []sheetgrid.Record `json:"totais"`
}

// LoadPageData reads the eight datasets concurrently. The first error wins;
// remaining reads still run to completion.
func (c *Controller) LoadPageData(ctx context.Context) (*PageData, error) {
	data := &PageData{}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	run(func() (err error) {
		data.Quotations, err = c.catalog.ListQuotations(ctx, "")
		return
	})
	run(func() (err error) {
		data.QuotationItems, err = c.catalog.ListQuotationItems(ctx)
		return
	})
	run(func() (err error) {
		data.Invoices, err = c.invoices.Tab(ctx, sheets.SheetInvoices)
		return
	})
	run(func() (err error) {
		data.InvoiceItems, err = c.invoices.Tab(ctx, sheets.SheetInvoiceItems)
		return
	})
	run(func() (err error) {
		data.GeneralData.Installments, err = c.invoices.Tab(ctx, sheets.SheetInstallments)
		return
	})
	run(func() (err error) {
		data.GeneralData.Transport, err = c.invoices.Tab(ctx, sheets.SheetTransport)
		return
	})
	run(func() (err error) {
		data.GeneralData.TaxTotals, err = c.invoices.Tab(ctx, sheets.SheetTaxTotals)
		return
	})
	run(func() (err error) {
		data.ReconMapping, err = c.invoices.Tab(ctx, sheets.SheetReconMapping)
		return
	})
	run(func() (err error) {
		data.Rules, err = c.financial.AllAllocationRules(ctx)
		return
	})
	run(func() (err error) {
		data.CostCenters, err = c.financial.CostCenters(ctx)
		return
	})

	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("ingest: loading page data: %w", firstErr)
	}
	if data.CostCenters == nil {
		data.CostCenters = []string{}
	}
	return data, nil
}
