package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/libgest/internal/libdoc"
)

const defaultListLimit = 100

type extractionEntry struct {
	LibraryUUID string    `json:"library_uuid"`
	UUID        string    `json:"uuid"`
	DocType     string    `json:"doc_type"`
	ContentHash string    `json:"content_hash"`
	HeadKeys    []string  `json:"head_keys"`
	Shapes      int       `json:"shapes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// handleListExtractions lists persisted extractions of one kind, newest
// first.
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "no persistent store configured", http.StatusNotFound)
		return
	}
	kind, err := libdoc.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.store.List(r.Context(), kind, limit)
	if err != nil {
		s.log.Error("list extractions failed", "kind", kind, "error", err)
		jsonError(w, "failed to list extractions", http.StatusInternalServerError)
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		s.log.Error("count extractions failed", "error", err)
		jsonError(w, "failed to count extractions", http.StatusInternalServerError)
		return
	}

	items := make([]extractionEntry, 0, len(entries))
	for _, e := range entries {
		items = append(items, extractionEntry{
			LibraryUUID: e.Ref.LibraryUUID,
			UUID:        e.Ref.UUID,
			DocType:     e.DocType,
			ContentHash: e.ContentHash,
			HeadKeys:    e.Extraction.Head.Keys(),
			Shapes:      len(e.Extraction.Shape),
			UpdatedAt:   e.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":  kind,
		"total": total,
		"items": items,
	})
}

// handleDeleteExtraction removes one document from the store and the
// in-memory cache so the next batch refetches it.
func (s *Server) handleDeleteExtraction(w http.ResponseWriter, r *http.Request) {
	kind, err := libdoc.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ref := libdoc.LibraryRef{
		LibraryUUID: chi.URLParam(r, "libraryUUID"),
		UUID:        chi.URLParam(r, "uuid"),
	}

	if s.store != nil {
		if err := s.store.Delete(r.Context(), kind, ref); err != nil {
			s.log.Error("delete extraction failed", "key", ref.Key(), "error", err)
			jsonError(w, "failed to delete extraction", http.StatusInternalServerError)
			return
		}
	}
	cached := false
	if loader := s.orchestrator.Loader(); loader != nil {
		cached = loader.Forget(kind, ref)
	}

	s.log.Info("extraction evicted", "kind", kind, "key", ref.Key(), "was_cached", cached)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeCache(w http.ResponseWriter, r *http.Request) {
	loader := s.orchestrator.Loader()
	if loader == nil {
		jsonError(w, "no document cache", http.StatusServiceUnavailable)
		return
	}
	n := loader.Purge()
	s.log.Info("document cache purged", "entries", n)
	writeJSON(w, http.StatusOK, map[string]any{"purged": n})
}
