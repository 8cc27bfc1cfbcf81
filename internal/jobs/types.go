package jobs

import (
	"context"
	"time"
)

// Status values a scan job moves through.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRetrying  Status = "retrying"
)

// ScanJob is one asynchronous run of the XML folder scan.
type ScanJob struct {
	JobID     string     `json:"job_id"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
	Error     string     `json:"error,omitempty"`

	// Counters filled in when the scan finishes.
	Processed  int `json:"processadas"`
	Duplicates int `json:"duplicadas"`
	Errors     int `json:"erros"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Publisher enqueues scan jobs. The in-memory queue is the only
// implementation today; the interface leaves room for Cloud Tasks later.
type Publisher interface {
	PublishScan(ctx context.Context, job *ScanJob) error
	Close() error
}

// Consumer drains the queue, calling the handler per job.
type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// Handler runs one scan job. Returning an error triggers a retry until
// MaxRetries is exhausted.
type Handler func(ctx context.Context, job *ScanJob) error

// Store tracks job state so the API can answer status queries.
type Store interface {
	SaveJob(ctx context.Context, job *ScanJob) error
	GetJob(ctx context.Context, jobID string) (*ScanJob, error)
	ListJobs(ctx context.Context, filter Filter) ([]*ScanJob, error)
}

// Filter narrows ListJobs results.
type Filter struct {
	Status Status
	Limit  int
}
