package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/libgest/internal/config"
	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/legacy"
	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/merge"
	"github.com/dgallion1/libgest/internal/naming"
	"github.com/dgallion1/libgest/internal/pipeline"
	"github.com/dgallion1/libgest/internal/report"
	"github.com/dgallion1/libgest/internal/source"
	"github.com/dgallion1/libgest/internal/store"
)

type batchOptions struct {
	sourceDir    string
	sourceURL    string
	sourceAPIKey string
	storePath    string
	format       string
	output       string
	concurrency  int
}

func newBatchCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	opts := batchOptions{
		sourceURL:    os.Getenv("LIBGEST_SOURCE_URL"),
		sourceAPIKey: os.Getenv("LIBGEST_SOURCE_API_KEY"),
		sourceDir:    os.Getenv("LIBGEST_SOURCE_DIR"),
	}
	cmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Resolve a device manifest and print the batch report",
		Long: `Loads every device's symbol and footprint, builds the components and
prints a report. The exit status is non-zero when no device was exported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, logger(cmd), opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.sourceDir, "source-dir", opts.sourceDir, "read documents from <dir>/<kind>/<library>/<uuid>.json")
	f.StringVar(&opts.sourceURL, "source-url", opts.sourceURL, "library service base URL")
	f.StringVar(&opts.sourceAPIKey, "source-api-key", opts.sourceAPIKey, "library service bearer token")
	f.StringVar(&opts.storePath, "store", "", "sqlite file caching extracted documents")
	f.StringVar(&opts.format, "format", "md", "report format: md or html")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.IntVar(&opts.concurrency, "concurrency", 8, "devices loaded in parallel")
	return cmd
}

func runBatch(cmd *cobra.Command, log *slog.Logger, opts batchOptions, manifestPath string) error {
	m, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	var fetcher source.Fetcher
	switch {
	case opts.sourceDir != "" && opts.sourceURL != "":
		return fmt.Errorf("--source-dir and --source-url are mutually exclusive")
	case opts.sourceDir != "":
		fetcher = source.DirFetcher{Root: opts.sourceDir}
	case opts.sourceURL != "":
		client := source.NewHTTPClient(opts.sourceURL, opts.sourceAPIKey)
		defer client.Close()
		fetcher = client
	default:
		return fmt.Errorf("one of --source-dir or --source-url is required")
	}

	loaderOpts := library.Options{
		Extractor: extract.New(extract.Options{RepairJSON: true}),
		Log:       log,
	}
	if opts.storePath != "" {
		db, err := store.Open(opts.storePath)
		if err != nil {
			return err
		}
		defer db.Close()
		loaderOpts.Store = db
	}
	loader, err := library.NewLoader(fetcher, loaderOpts)
	if err != nil {
		return err
	}

	job := pipeline.NewJob(m.Devices)
	if m.Name != "" {
		job.Name = naming.SanitizeFileName(m.Name)
	}
	worker := pipeline.NewWorker(loader, merge.New(legacy.Parser{}), log, opts.concurrency)
	worker.Process(cmd.Context(), job)

	snap := job.Snapshot()
	out := report.Markdown(snap, job.Components())
	if opts.format == "html" {
		if out, err = report.HTML(out); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(w, "wrote %s (%s)\n", opts.output, snap.Status)
	} else {
		fmt.Fprint(w, out)
	}

	if snap.Status == pipeline.StatusFailed {
		return fmt.Errorf("batch failed: no devices exported")
	}
	return nil
}
