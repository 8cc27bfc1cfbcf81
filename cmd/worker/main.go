package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmaganha/cotacaopro/internal/archive"
	"github.com/rmaganha/cotacaopro/internal/config"
	"github.com/rmaganha/cotacaopro/internal/drivefiles"
	"github.com/rmaganha/cotacaopro/internal/infra/sheets"
	"github.com/rmaganha/cotacaopro/internal/ingest"
	"github.com/rmaganha/cotacaopro/internal/logger"
	"github.com/rmaganha/cotacaopro/internal/rateio"
)

// The worker polls the Drive inbox on a fixed interval, ingesting any XML
// that arrived since the last pass. It shares the ingestion pipeline with
// the API server; running both against the same folder is safe because the
// duplicate check is keyed on the access key.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	if cfg.Drive.XMLFolderID == "" {
		log.Fatal().Msg("ID_PASTA_XML is required for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sheets client")
	}

	invoiceRepo, err := sheets.NewInvoiceRepository(ctx, svc, cfg.Sheets.InvoicesSpreadsheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create invoice repository")
	}
	financialRepo := sheets.NewFinancialRepository(svc, cfg.Sheets.FinancialSpreadsheetID)
	catalogRepo := sheets.NewCatalogRepository(svc, cfg.Sheets.CatalogSpreadsheetID)

	files, err := drivefiles.NewManager(ctx, cfg.Drive.XMLFolderID, cfg.Drive.ProcessedFolderID, cfg.Drive.PageSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create drive client")
	}

	var archiver ingest.Archiver
	if a := archive.New(cfg.Archive.Bucket); a != nil {
		archiver = a
	}

	engine := &rateio.Engine{Strict: cfg.Rateio.Strict}
	controller := ingest.NewController(invoiceRepo, financialRepo, catalogRepo, files, archiver, engine, log)

	log.Info().
		Dur("poll_interval", cfg.Worker.PollInterval).
		Str("folder_id", cfg.Drive.XMLFolderID).
		Msg("Starting XML folder worker")

	ticker := time.NewTicker(cfg.Worker.PollInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	scan := func() {
		res, err := controller.ProcessFolder(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Folder scan failed")
			return
		}
		if res.Processed > 0 || res.Errors > 0 {
			log.Info().
				Int("processed", res.Processed).
				Int("duplicates", res.Duplicates).
				Int("errors", res.Errors).
				Msg("Folder scan completed")
		}
	}

	scan()
	for {
		select {
		case <-ticker.C:
			scan()
		case <-quit:
			log.Info().Msg("Shutting down worker")
			return
		}
	}
}
