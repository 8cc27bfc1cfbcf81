package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config encapsulates all runtime configuration knobs.
type Config struct {
	HTTP    HTTPSettings
	Log     LogSettings
	Sheets  SheetsSettings
	Drive   DriveSettings
	Archive ArchiveSettings
	Rateio  RateioSettings
	Worker  WorkerSettings
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogSettings struct {
	Level string
}

// SheetsSettings holds the three spreadsheet IDs backing the system:
// catalog (suppliers/products/quotations), invoices (NF-e tables) and
// financial (allocation rules / payable accounts).
type SheetsSettings struct {
	CatalogSpreadsheetID   string
	InvoicesSpreadsheetID  string
	FinancialSpreadsheetID string
	CredentialsFile        string
}

// DriveSettings holds the inbox and processed folder IDs for NF-e XML files.
type DriveSettings struct {
	XMLFolderID       string
	ProcessedFolderID string
	PageSize          int64
}

// ArchiveSettings configures optional raw-XML archival to a GCS bucket.
// An empty bucket disables archival.
type ArchiveSettings struct {
	Bucket string
}

type RateioSettings struct {
	// Strict rejects invoices whose applicable allocation rules do not sum
	// to 100% within tolerance.
	Strict bool
}

type WorkerSettings struct {
	PollInterval time.Duration
	QueueSize    int
}

// Load resolves the application configuration from environment variables.
// It first attempts to load variables from a .env file if it exists.
// Environment variables set in the system take precedence over .env values.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Sheets: SheetsSettings{
			CatalogSpreadsheetID:   strings.TrimSpace(os.Getenv("ID_PLANILHA_PRINCIPAL")),
			InvoicesSpreadsheetID:  strings.TrimSpace(os.Getenv("ID_PLANILHA_NOTAS")),
			FinancialSpreadsheetID: strings.TrimSpace(os.Getenv("ID_PLANILHA_FINANCEIRO")),
			CredentialsFile:        strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		},
		Drive: DriveSettings{
			XMLFolderID:       strings.TrimSpace(os.Getenv("ID_PASTA_XML")),
			ProcessedFolderID: strings.TrimSpace(os.Getenv("ID_PASTA_XML_PROCESSADOS")),
			PageSize:          int64(getEnvAsInt("DRIVE_PAGE_SIZE", 100)),
		},
		Archive: ArchiveSettings{
			Bucket: strings.TrimSpace(os.Getenv("GCS_ARCHIVE_BUCKET")),
		},
		Rateio: RateioSettings{
			Strict: getEnvAsBool("RATEIO_STRICT", false),
		},
		Worker: WorkerSettings{
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", 5*time.Minute),
			QueueSize:    getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
	}

	if cfg.Sheets.InvoicesSpreadsheetID == "" {
		return cfg, errors.New("invalid config: ID_PLANILHA_NOTAS is required")
	}
	if cfg.Drive.XMLFolderID != "" && cfg.Drive.ProcessedFolderID == "" {
		return cfg, errors.New("invalid config: ID_PASTA_XML_PROCESSADOS is required when ID_PASTA_XML is set")
	}
	if cfg.Drive.PageSize <= 0 || cfg.Drive.PageSize > 1000 {
		return cfg, fmt.Errorf("invalid config: DRIVE_PAGE_SIZE must be in (0, 1000], got %d", cfg.Drive.PageSize)
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
