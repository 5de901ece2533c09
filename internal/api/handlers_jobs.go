package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/libgest/internal/config"
	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/naming"
	"github.com/dgallion1/libgest/internal/pipeline"
	"github.com/dgallion1/libgest/internal/report"
)

// handleSubmitJob queues a batch from a YAML or JSON manifest body.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	m, err := config.ParseManifest(body)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(m.Devices)
	job.ManifestHash = library.ContentHashHex(body)
	if m.Name != "" {
		job.Name = naming.SanitizeFileName(m.Name)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.log.Info("job submitted", "job_id", job.ID, "devices", len(m.Devices))
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

func (s *Server) jobFromRequest(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobComponents(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil {
		return
	}
	snap := job.Snapshot()
	components := job.Components()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":     snap.ID,
		"status":     snap.Status,
		"components": components,
	})
}

// handleJobReport renders the batch report as HTML, or markdown with
// ?format=md.
func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	job := s.jobFromRequest(w, r)
	if job == nil {
		return
	}
	md := report.Markdown(job.Snapshot(), job.Components())

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
		return
	}

	html, err := report.HTML(md)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>libgest report</title></head><body>\n%s</body></html>\n", html)
}

func (s *Server) handleFetchStats(w http.ResponseWriter, r *http.Request) {
	loader := s.orchestrator.Loader()
	if loader == nil {
		jsonError(w, "fetch stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fetch":       loader.Stats().Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
