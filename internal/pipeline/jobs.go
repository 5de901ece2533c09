package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/naming"
)

// JobStatus represents the state of a batch job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusResolving JobStatus = "resolving"
	StatusLoading   JobStatus = "loading"
	StatusBuilding  JobStatus = "building"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of one batch of devices.
type Job struct {
	mu sync.Mutex

	ID           string `json:"job_id"`
	Name         string `json:"name"`
	ManifestHash string `json:"manifest_hash,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	devices    []library.Device
	components []*library.Component
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDevices     int      `json:"total_devices"`
	DevicesProcessed int      `json:"devices_processed"`
	Exported         int      `json:"exported"`
	Errors           []string `json:"errors"`
}

// NewJob creates a queued job for devices.
func NewJob(devices []library.Device) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		devices:   devices,
		Progress:  Progress{TotalDevices: len(devices)},
	}
}

// BaseName names a batch: a lone device is named after itself and its LCSC
// id (or short UUID); larger batches get a timestamp.
func BaseName(devices []library.Device, now time.Time) string {
	if len(devices) == 1 {
		d := devices[0]
		return naming.SanitizeFileName(d.DisplayName() + "_" + d.IDPart())
	}
	return naming.SanitizeFileName("LCEDA_Export_" + naming.FormatTimestamp(now))
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetName records the batch base name.
func (j *Job) SetName(name string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Name = name
	j.UpdatedAt = time.Now()
}

// AddError records a device failure.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrDevicesProcessed atomically increments devices processed.
func (j *Job) IncrDevicesProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DevicesProcessed++
	j.UpdatedAt = time.Now()
}

// AddComponent records an exported component.
func (j *Job) AddComponent(c *library.Component) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.components = append(j.components, c)
	j.Progress.Exported = len(j.components)
	j.UpdatedAt = time.Now()
}

// Devices returns the submitted devices.
func (j *Job) Devices() []library.Device {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.devices
}

// Components returns the exported components in device order.
func (j *Job) Components() []*library.Component {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*library.Component, len(j.components))
	copy(out, j.components)
	return out
}

// Failures returns the recorded failures in order.
func (j *Job) Failures() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.errors))
	copy(out, j.errors)
	return out
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Name         string    `json:"name"`
	ManifestHash string    `json:"manifest_hash,omitempty"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	Progress     Progress  `json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:           j.ID,
		Name:         j.Name,
		ManifestHash: j.ManifestHash,
		Status:       j.Status,
		Phase:        j.Phase,
		Progress: Progress{
			TotalDevices:     j.Progress.TotalDevices,
			DevicesProcessed: j.Progress.DevicesProcessed,
			Exported:         j.Progress.Exported,
			Errors:           errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// Done reports whether the job reached a terminal status.
func (s JobSnapshot) Done() bool {
	switch s.Status {
	case StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}
