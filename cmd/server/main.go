package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/libgest/internal/api"
	"github.com/dgallion1/libgest/internal/config"
	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/legacy"
	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/merge"
	"github.com/dgallion1/libgest/internal/pipeline"
	"github.com/dgallion1/libgest/internal/source"
	"github.com/dgallion1/libgest/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document source.
	var fetcher source.Fetcher
	var httpSource *source.HTTPClient
	if cfg.SourceDir != "" {
		fetcher = source.DirFetcher{Root: cfg.SourceDir}
	} else {
		httpSource = source.NewHTTPClient(cfg.SourceURL, cfg.SourceAPIKey)
		fetcher = httpSource
	}

	extractor := extract.New(extract.Options{RepairJSON: cfg.RepairJSON})
	opts := library.Options{
		CacheSize: cfg.CacheSize,
		Extractor: extractor,
		Log:       log,
	}

	var db *store.Store
	if cfg.StorePath != "" {
		var err error
		db, err = store.Open(cfg.StorePath)
		if err != nil {
			log.Error("failed to open store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
		opts.Store = db
	}

	loader, err := library.NewLoader(fetcher, opts)
	if err != nil {
		log.Error("failed to create loader", "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, loader, merge.New(legacy.Parser{}), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, extractor, db, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if httpSource != nil {
			httpSource.Close()
		}
		if db != nil {
			db.Close()
		}
	}()

	log.Info("starting libgest", "port", cfg.Port, "source_dir", cfg.SourceDir, "source_url", cfg.SourceURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
