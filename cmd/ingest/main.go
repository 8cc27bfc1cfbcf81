package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rmaganha/cotacaopro/internal/archive"
	"github.com/rmaganha/cotacaopro/internal/config"
	"github.com/rmaganha/cotacaopro/internal/infra/sheets"
	"github.com/rmaganha/cotacaopro/internal/ingest"
	"github.com/rmaganha/cotacaopro/internal/logger"
	"github.com/rmaganha/cotacaopro/internal/rateio"
)

// Ingests local NF-e XML files without going through Drive, useful for
// backfills and for testing a spreadsheet setup.
func main() {
	log := logger.New()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s file.xml [file.xml ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal().Msg("Error: at least one XML file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

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

	var archiver ingest.Archiver
	if a := archive.New(cfg.Archive.Bucket); a != nil {
		archiver = a
	}

	engine := &rateio.Engine{Strict: cfg.Rateio.Strict}
	controller := ingest.NewController(invoiceRepo, financialRepo, catalogRepo, nil, archiver, engine, log)

	uploads := make([]ingest.UploadFile, 0, flag.NArg())
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to read file")
		}
		uploads = append(uploads, ingest.UploadFile{Name: filepath.Base(path), Content: data})
	}

	res, err := controller.ProcessUploads(ctx, uploads)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	for _, line := range res.Logs {
		fmt.Println(line)
	}
	fmt.Printf("Processed %d, duplicates %d, errors %d.\n", res.Processed, res.Duplicates, res.Errors)

	if res.Errors > 0 {
		os.Exit(1)
	}
}
