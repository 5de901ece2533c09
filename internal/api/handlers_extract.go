package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/libdoc"
)

// handleExtract normalizes a raw document body. With ?kind= it also merges
// the shape lines into the typed aggregate.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var kind libdoc.Kind
	if v := r.URL.Query().Get("kind"); v != "" {
		k, err := libdoc.ParseKind(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = k
	}

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	ext, err := s.extractor.Extract(body)
	if err != nil {
		var fe *extract.FormatError
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":       err.Error(),
				"diagnostics": fe.Diagnostics,
			})
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"extraction": ext}
	if kind != "" {
		agg, err := s.orchestrator.Merger().Merge(ext.Shape, kind)
		if err != nil {
			jsonError(w, "merge shapes: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		resp["aggregate"] = agg
		resp["counts"] = agg.Counts()
	}
	writeJSON(w, http.StatusOK, resp)
}

// readBody reads at most MaxUploadBytes, answering 413 beyond that.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	if len(data) == 0 {
		jsonError(w, "request body is required", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
