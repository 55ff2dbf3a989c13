package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"facereel/internal/scan"
)

// JobStatus represents the status of an async scan job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ScanJob tracks one library scan running in the background.
type ScanJob struct {
	mu     sync.RWMutex
	cancel context.CancelFunc

	ID          string        `json:"id"`
	Root        string        `json:"root"`
	Force       bool          `json:"force"`
	Status      JobStatus     `json:"status"`
	Current     int           `json:"current"`
	Total       int           `json:"total"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Summary     *scan.Summary `json:"summary,omitempty"`
}

func (j *ScanJob) snapshot() ScanJob {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return ScanJob{
		ID:          j.ID,
		Root:        j.Root,
		Force:       j.Force,
		Status:      j.Status,
		Current:     j.Current,
		Total:       j.Total,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Summary:     j.Summary,
	}
}

// JobManager manages async scan jobs. Only one scan may run at a time; the
// store has a single writer by design.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*ScanJob
}

func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*ScanJob)}
}

func (m *JobManager) create(root string, force bool, cancel context.CancelFunc) *ScanJob {
	job := &ScanJob{
		ID:        uuid.New().String(),
		Root:      root,
		Force:     force,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job
}

func (m *JobManager) get(id string) *ScanJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

func (m *JobManager) running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, job := range m.jobs {
		s := job.snapshot().Status
		if s == JobStatusPending || s == JobStatusRunning {
			return true
		}
	}
	return false
}

// ScanHandler starts and inspects background library scans.
type ScanHandler struct {
	orchestrator *scan.Orchestrator
	jobs         *JobManager
	logger       *slog.Logger
}

func NewScanHandler(orchestrator *scan.Orchestrator, jobs *JobManager, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		orchestrator: orchestrator,
		jobs:         jobs,
		logger:       logger,
	}
}

type startScanRequest struct {
	Root  string `json:"root"`
	Force bool   `json:"force"`
}

// Start handles POST /api/scan.
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Root == "" {
		respondError(w, http.StatusBadRequest, "root is required")
		return
	}
	if info, err := os.Stat(req.Root); err != nil || !info.IsDir() {
		respondError(w, http.StatusBadRequest, "root is not a readable directory")
		return
	}
	if h.jobs.running() {
		respondError(w, http.StatusConflict, "a scan is already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := h.jobs.create(req.Root, req.Force, cancel)

	go h.run(ctx, job)

	respondJSON(w, http.StatusAccepted, job.snapshot())
}

func (h *ScanHandler) run(ctx context.Context, job *ScanJob) {
	defer job.cancel()

	job.mu.Lock()
	job.Status = JobStatusRunning
	job.mu.Unlock()

	summary, err := h.orchestrator.Run(ctx, job.Root, scan.Options{
		Force: job.Force,
		OnProgress: func(current, total int, path string) {
			job.mu.Lock()
			job.Current, job.Total = current, total
			job.mu.Unlock()
		},
	})

	now := time.Now()
	job.mu.Lock()
	defer job.mu.Unlock()
	job.CompletedAt = &now
	if err != nil {
		job.Status = JobStatusFailed
		job.Error = err.Error()
		h.logger.Error("scan job failed", "job", job.ID, "error", err)
		return
	}
	job.Summary = summary
	if summary.Cancelled {
		job.Status = JobStatusCancelled
	} else {
		job.Status = JobStatusCompleted
	}
}

// Get handles GET /api/scan/{id}.
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	job := h.jobs.get(chi.URLParam(r, "id"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.snapshot())
}

// Cancel handles POST /api/scan/{id}/cancel. Videos already decoding finish
// and commit; the rest of the batch is dropped.
func (h *ScanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.jobs.get(chi.URLParam(r, "id"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	job.cancel()
	respondJSON(w, http.StatusOK, job.snapshot())
}
