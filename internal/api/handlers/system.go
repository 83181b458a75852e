package handlers

import (
	"net/http"

	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/internal/scheduler"
	"github.com/wonny/stockmarket/pkg/logger"
)

// JobStatser reports scheduler statistics
type JobStatser interface {
	GetJobStats() map[string]scheduler.JobStats
}

// SystemHandler serves health and operational endpoints
type SystemHandler struct {
	registry *registry.Registry
	jobs     JobStatser
	logger   *logger.Logger
}

// NewSystemHandler creates a new system handler. jobs may be nil when no
// scheduler runs.
func NewSystemHandler(reg *registry.Registry, jobs JobStatser, log *logger.Logger) *SystemHandler {
	return &SystemHandler{
		registry: reg,
		jobs:     jobs,
		logger:   log,
	}
}

// Health returns server health status
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": logger.ServiceName,
		"stocks":  h.registry.Len(),
		"now":     h.registry.Now(),
	})
}

// Jobs returns scheduler statistics
// GET /api/jobs
func (h *SystemHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSON(w, http.StatusOK, map[string]scheduler.JobStats{})
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}
