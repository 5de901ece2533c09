package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/merge"
)

// DocumentLoader resolves one library document to its extraction.
type DocumentLoader interface {
	Load(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (*libdoc.Extraction, error)
}

// Worker processes a single batch job.
type Worker struct {
	loader DocumentLoader
	merger *merge.Merger
	log    *slog.Logger

	maxConcurrentDevices int
	backoff              func(attempt int, err error) time.Duration
}

func NewWorker(loader DocumentLoader, merger *merge.Merger, log *slog.Logger, maxDevices int) *Worker {
	if maxDevices <= 0 {
		maxDevices = 1
	}
	return &Worker{
		loader:               loader,
		merger:               merger,
		log:                  log,
		maxConcurrentDevices: maxDevices,
		backoff:              Backoff,
	}
}

type documents struct {
	symbol    *libdoc.Extraction
	footprint *libdoc.Extraction
	err       error
}

// Process runs the full batch pipeline for a job. Device failures are
// recorded on the job and never stop the batch.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	// Phase 1: Resolve
	job.SetStatus(StatusResolving, "resolving")
	devices := w.resolve(job)
	if len(devices) == 0 {
		log.Warn("no exportable devices")
		job.SetStatus(StatusFailed, "resolving")
		return
	}
	if job.Snapshot().Name == "" {
		job.SetName(BaseName(devices, job.CreatedAt))
	}

	// Phase 2: Load symbol and footprint documents with bounded concurrency.
	job.SetStatus(StatusLoading, "loading")
	docs := make([]documents, len(devices))
	var g errgroup.Group
	g.SetLimit(w.maxConcurrentDevices)
	for i, d := range devices {
		g.Go(func() error {
			docs[i] = w.loadDevice(ctx, log, d)
			return nil
		})
	}
	g.Wait()

	// Phase 3: Build components in device order so names are stable.
	job.SetStatus(StatusBuilding, "building")
	names := library.NewNames()
	for i, d := range devices {
		c, err := w.build(d, docs[i], names)
		job.IncrDevicesProcessed()
		if err != nil {
			log.Error("device failed", "device", d.DisplayName(), "error", err)
			job.AddError(fmt.Sprintf("%s: %s", d.DisplayName(), compactError(err)))
			continue
		}
		job.AddComponent(c)
	}

	snap := job.Snapshot()
	log.Info("batch complete", "exported", snap.Progress.Exported, "failures", len(snap.Progress.Errors))

	switch {
	case snap.Progress.Exported == 0:
		job.SetStatus(StatusFailed, "building")
	case len(snap.Progress.Errors) > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// resolve de-duplicates devices and records those missing an association.
func (w *Worker) resolve(job *Job) []library.Device {
	var (
		order  []string
		unique = make(map[string]library.Device)
	)
	for _, d := range job.Devices() {
		key := deviceKey(d)
		if _, seen := unique[key]; !seen {
			order = append(order, key)
		}
		unique[key] = d
	}

	var out []library.Device
	for _, key := range order {
		d := unique[key]
		if missing := d.Missing(); missing != "" {
			job.IncrDevicesProcessed()
			job.AddError(fmt.Sprintf("%s: missing %s", d.DisplayName(), missing))
			continue
		}
		out = append(out, d)
	}
	return out
}

func deviceKey(d library.Device) string {
	if d.UUID != "" {
		return d.UUID
	}
	var sym, fp string
	if d.Symbol != nil {
		sym = d.Symbol.Key()
	}
	if d.Footprint != nil {
		fp = d.Footprint.Key()
	}
	return d.Name + "|" + sym + "|" + fp
}

func (w *Worker) loadDevice(ctx context.Context, log *slog.Logger, d library.Device) documents {
	sym, err := w.loadWithRetry(ctx, log, *d.Symbol, libdoc.KindSymbol)
	if err != nil {
		return documents{err: err}
	}
	fp, err := w.loadWithRetry(ctx, log, *d.Footprint, libdoc.KindFootprint)
	if err != nil {
		return documents{err: err}
	}
	return documents{symbol: sym, footprint: fp}
}

func (w *Worker) loadWithRetry(ctx context.Context, log *slog.Logger, ref libdoc.LibraryRef, kind libdoc.Kind) (*libdoc.Extraction, error) {
	var (
		ext     *libdoc.Extraction
		lastErr error
	)
	for attempt := range MaxRetries {
		ext, lastErr = w.loader.Load(ctx, ref, kind)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable fetch error", "kind", kind, "ref", ref.Key(), "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(w.backoff(attempt, lastErr)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return ext, lastErr
}

func (w *Worker) build(d library.Device, docs documents, names *library.Names) (*library.Component, error) {
	if docs.err != nil {
		return nil, docs.err
	}
	return library.BuildComponent(d, docs.symbol, docs.footprint, w.merger, names)
}

// compactError keeps the first line of an error message.
func compactError(err error) string {
	first, _, _ := strings.Cut(err.Error(), "\n")
	if first = strings.TrimSpace(first); first == "" {
		return "unknown error"
	}
	return first
}
