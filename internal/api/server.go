package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/libgest/internal/config"
	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/pipeline"
	"github.com/dgallion1/libgest/internal/store"
)

// Server is the HTTP API server for libgest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	extractor    *extract.Extractor
	store        *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. st may be nil when no
// persistent store is configured.
func NewServer(orch *pipeline.Orchestrator, extractor *extract.Extractor, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		extractor:    extractor,
		store:        st,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.LibgestAPIKey, s.log))

		r.Post("/api/extract", s.handleExtract)

		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/components", s.handleJobComponents)
		r.Get("/api/jobs/{jobID}/report", s.handleJobReport)

		r.Get("/api/stats/fetch", s.handleFetchStats)

		r.Get("/api/extractions", s.handleListExtractions)
		r.Delete("/api/extractions/{kind}/{libraryUUID}/{uuid}", s.handleDeleteExtraction)
		r.Post("/api/cache/purge", s.handlePurgeCache)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
