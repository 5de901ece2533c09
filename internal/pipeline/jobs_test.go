package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/library"
)

func TestNewJob(t *testing.T) {
	job := NewJob([]library.Device{{Name: "a"}, {Name: "b"}})
	if job.ID == "" || len(job.ID) != 36 {
		t.Errorf("expected uuid job id, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.Progress.TotalDevices != 2 {
		t.Errorf("expected 2 total devices, got %d", job.Progress.TotalDevices)
	}
	if other := NewJob(nil); other.ID == job.ID {
		t.Error("expected distinct job ids")
	}
}

func TestBaseName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	fp := libdoc.LibraryRef{LibraryUUID: "l", UUID: "f"}

	single := []library.Device{{Name: "NE555 Timer", LCSC: "c46749", Footprint: &fp}}
	if got := BaseName(single, now); got != "NE555_Timer_C46749" {
		t.Errorf("expected NE555_Timer_C46749, got %q", got)
	}

	noLCSC := []library.Device{{Name: "X", UUID: "0000-abcdef12"}}
	if got := BaseName(noLCSC, now); got != "X_cdef12" {
		t.Errorf("expected X_cdef12, got %q", got)
	}

	many := []library.Device{{Name: "a"}, {Name: "b"}}
	if got := BaseName(many, now); got != "LCEDA_Export_20250102_030405" {
		t.Errorf("expected timestamped name, got %q", got)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusResolving, "resolving devices"},
		{StatusLoading, "loading documents"},
		{StatusBuilding, "building components"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("R1: missing symbol")
	job.AddError("R2: missing footprint")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "R1: missing symbol" {
		t.Errorf("expected first error %q, got %q", "R1: missing symbol", snap.Progress.Errors[0])
	}

	snap.Progress.Errors[0] = "mutated"
	if job.Failures()[0] != "R1: missing symbol" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJob_Counters(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.IncrDevicesProcessed()
	job.IncrDevicesProcessed()
	job.AddComponent(&library.Component{Name: "a"})

	snap := job.Snapshot()
	if snap.Progress.DevicesProcessed != 2 {
		t.Errorf("expected 2 devices processed, got %d", snap.Progress.DevicesProcessed)
	}
	if snap.Progress.Exported != 1 {
		t.Errorf("expected 1 exported, got %d", snap.Progress.Exported)
	}
	if cs := job.Components(); len(cs) != 1 || cs[0].Name != "a" {
		t.Errorf("unexpected components: %+v", cs)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Done() {
		t.Error("expected empty job not to be done")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
