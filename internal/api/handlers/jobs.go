package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rmaganha/cotacaopro/internal/api/middleware"
	"github.com/rmaganha/cotacaopro/internal/jobs"
)

// JobsHandler exposes scan-job status endpoints.
type JobsHandler struct {
	store     jobs.Store
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewJobsHandler(store jobs.Store, publisher jobs.Publisher, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, publisher: publisher, log: log}
}

// EnqueueScan handles POST /jobs/scan. It queues an asynchronous folder
// scan and returns immediately with the job ID.
func (h *JobsHandler) EnqueueScan(w http.ResponseWriter, r *http.Request) {
	job := &jobs.ScanJob{}
	if err := h.publisher.PublishScan(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("enqueueing scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao enfileirar o processamento")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// ListJobs handles GET /jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.Filter{Status: jobs.Status(r.URL.Query().Get("status")), Limit: 50}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("listing jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Falha ao listar jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// GetJob handles GET /jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job não encontrado")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}
