// file: internal/server/enrichment_handlers.go
// version: 1.0.0
// guid: 3a4b5c6d-7e8f-4a9b-0c1d-2e3f4a5b6c7d

package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/jdfalk/library-enricher/internal/enrich"
	"github.com/jdfalk/library-enricher/internal/models"
)

// StartEnrichmentRequest is the body of POST /api/v1/enrichment. Both
// fields are optional.
type StartEnrichmentRequest struct {
	Overwrite *bool    `json:"overwrite"`
	IDs       []string `json:"ids"`
}

// EnrichmentStatus describes the current or most recent run.
type EnrichmentStatus struct {
	RunID     string               `json:"run_id"`
	Running   bool                 `json:"running"`
	StartedAt time.Time            `json:"started_at"`
	Progress  models.ProgressEvent `json:"progress"`
	Summary   *models.Summary      `json:"summary,omitempty"`
}

func (s *Server) startEnrichment(c *gin.Context) {
	var req StartEnrichmentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondWithBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	overwrite := s.overwrite
	if req.Overwrite != nil {
		overwrite = *req.Overwrite
	}

	runID := ulid.Make().String()
	var announce sync.Once
	// Runs outlive the request; they end on completion, cancel or shutdown.
	job, err := s.svc.Start(context.Background(), req.IDs, enrich.Options{
		Overwrite: overwrite,
		RunID:     runID,
		OnProgress: func(ev models.ProgressEvent) {
			announce.Do(func() { s.hub.SendEnrichmentStarted(runID, ev.Total) })
			s.hub.SendEnrichmentProgress(runID, ev)
		},
	})
	if err != nil {
		RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":    job.ID,
		"total":     job.Progress().Total,
		"overwrite": overwrite,
	})
}

func (s *Server) cancelEnrichment(c *gin.Context) {
	job := s.svc.Current()
	if job == nil || !s.svc.Cancel() {
		RespondWithConflict(c, "no enrichment run in progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":    job.ID,
		"cancelled": true,
	})
}

func (s *Server) getEnrichmentStatus(c *gin.Context) {
	job := s.svc.Current()
	if job == nil {
		RespondWithNotFound(c, "enrichment run", "")
		return
	}
	status := EnrichmentStatus{
		RunID:     job.ID,
		Running:   job.Running(),
		StartedAt: job.StartedAt,
		Progress:  job.Progress(),
	}
	if !status.Running {
		summary := job.Summary()
		status.Summary = &summary
	}
	c.JSON(http.StatusOK, status)
}
