package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rmaganha/cotacaopro/internal/api/handlers"
	"github.com/rmaganha/cotacaopro/internal/api/middleware"
	"github.com/rmaganha/cotacaopro/internal/archive"
	"github.com/rmaganha/cotacaopro/internal/config"
	"github.com/rmaganha/cotacaopro/internal/drivefiles"
	"github.com/rmaganha/cotacaopro/internal/infra/sheets"
	"github.com/rmaganha/cotacaopro/internal/ingest"
	"github.com/rmaganha/cotacaopro/internal/jobs"
	"github.com/rmaganha/cotacaopro/internal/jobs/inmemory"
	"github.com/rmaganha/cotacaopro/internal/logger"
	"github.com/rmaganha/cotacaopro/internal/rateio"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	ctx := context.Background()

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

	var files ingest.FileSource
	if cfg.Drive.XMLFolderID != "" {
		manager, err := drivefiles.NewManager(ctx, cfg.Drive.XMLFolderID, cfg.Drive.ProcessedFolderID, cfg.Drive.PageSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create drive client")
		}
		files = manager
	} else {
		log.Warn().Msg("No XML folder configured - folder processing is disabled")
	}

	var archiver ingest.Archiver
	if a := archive.New(cfg.Archive.Bucket); a != nil {
		archiver = a
	}

	engine := &rateio.Engine{Strict: cfg.Rateio.Strict}
	controller := ingest.NewController(invoiceRepo, financialRepo, catalogRepo, files, archiver, engine, log)

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Worker.QueueSize, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ScanJob) error {
		res, err := controller.ProcessFolder(ctx)
		if err != nil {
			return err
		}
		job.Processed = res.Processed
		job.Duplicates = res.Duplicates
		job.Errors = res.Errors
		return nil
	}

	go func() {
		log.Info().Msg("Starting scan job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	conciliacaoHandler := handlers.NewConciliacaoHandler(controller, log)
	catalogoHandler := handlers.NewCatalogoHandler(catalogRepo, log)
	pedidosHandler := handlers.NewPedidosHandler(catalogRepo, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, jobQueue, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/conciliacaonf/processar", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			conciliacaoHandler.Processar(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/conciliacaonf/upload-xmls", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			conciliacaoHandler.UploadXMLs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/conciliacaonf/dados-pagina", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			conciliacaoHandler.DadosPagina(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/conciliacaonf/reset/", func(w http.ResponseWriter, r *http.Request) {
		accessKey := strings.TrimPrefix(r.URL.Path, "/conciliacaonf/reset/")
		if accessKey == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Chave de acesso é obrigatória")
			return
		}
		if r.Method == http.MethodPost {
			conciliacaoHandler.Reset(w, r, accessKey)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/conciliacaonf/faturas/", func(w http.ResponseWriter, r *http.Request) {
		accessKey := strings.TrimPrefix(r.URL.Path, "/conciliacaonf/faturas/")
		if accessKey == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Chave de acesso é obrigatória")
			return
		}
		if r.Method == http.MethodPut {
			conciliacaoHandler.UpdateFaturas(w, r, accessKey)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/catalogo/fornecedores", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalogoHandler.ListFornecedores(w, r)
		case http.MethodPost:
			catalogoHandler.CreateFornecedor(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/catalogo/fornecedores/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/catalogo/fornecedores/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "ID é obrigatório")
			return
		}
		if r.Method == http.MethodDelete {
			catalogoHandler.DeactivateFornecedor(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/catalogo/produtos", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalogoHandler.ListProdutos(w, r)
		case http.MethodPost:
			catalogoHandler.CreateProduto(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/catalogo/produtos/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/catalogo/produtos/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "ID é obrigatório")
			return
		}
		if r.Method == http.MethodPut {
			catalogoHandler.RenameProduto(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/cotacoes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalogoHandler.ListCotacoes(w, r)
		case http.MethodPost:
			catalogoHandler.CreateCotacao(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/cotacoes/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/cotacoes/")
		if id, ok := strings.CutSuffix(rest, "/fechar"); ok && id != "" {
			if r.Method == http.MethodPost {
				catalogoHandler.FecharCotacao(w, r, id)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		middleware.WriteError(w, http.StatusNotFound, "Rota não encontrada")
	})

	mux.HandleFunc("/pedidos/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/pedidos/")
		if id, ok := strings.CutSuffix(rest, "/pdf"); ok && id != "" {
			if r.Method == http.MethodGet {
				pedidosHandler.PedidoPDF(w, r, id)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		middleware.WriteError(w, http.StatusNotFound, "Rota não encontrada")
	})

	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/jobs/scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			jobsHandler.EnqueueScan(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
