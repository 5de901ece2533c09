package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/libgest/internal/config"
	"github.com/dgallion1/libgest/internal/extract"
	"github.com/dgallion1/libgest/internal/legacy"
	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/library"
	"github.com/dgallion1/libgest/internal/merge"
	"github.com/dgallion1/libgest/internal/pipeline"
	"github.com/dgallion1/libgest/internal/source"
	"github.com/dgallion1/libgest/internal/store"
)

const testKey = "secret"

type mapFetcher map[string]string

func (m mapFetcher) FetchSource(ctx context.Context, ref libdoc.LibraryRef, kind libdoc.Kind) (string, error) {
	if s, ok := m[library.CacheKey(kind, ref)]; ok {
		return s, nil
	}
	return "", source.ErrNotFound
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	symRef := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "s1"}
	fpRef := libdoc.LibraryRef{LibraryUUID: "lib", UUID: "f1"}
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loader, err := library.NewLoader(mapFetcher{
		library.CacheKey(libdoc.KindSymbol, symRef):   `{"head":{"docType":"2"},"shape":["C~0~0~1~#000~1~~none~c1~0"]}`,
		library.CacheKey(libdoc.KindFootprint, fpRef): `{"head":{"docType":"4"},"shape":["HOLE~1~1~0.5~h1~0"]}`,
	}, library.Options{Store: db})
	require.NoError(t, err)

	cfg := config.Config{
		LibgestAPIKey:        testKey,
		WorkerCount:          1,
		MaxQueueSize:         4,
		MaxConcurrentDevices: 2,
		MaxUploadBytes:       1 << 16,
		JobTTL:               time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, loader, merge.New(legacy.Parser{}), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return NewServer(orch, extract.New(extract.Options{RepairJSON: true}), db, log, cfg)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/fetch", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/fetch", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtract_WithMerge(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/extract?kind=symbol",
		`{"result":"{\"head\":{\"docType\":\"2\"},\"shape\":[\"C~0~0~1~#000~1~~none~c1~0\"]}"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	ext := out["extraction"].(map[string]any)
	assert.Equal(t, []any{"C~0~0~1~#000~1~~none~c1~0"}, ext["shape"])
	assert.Equal(t, 1.0, out["counts"].(map[string]any)["circles"])
	assert.Equal(t, "symbol", out["aggregate"].(map[string]any)["kind"])
}

func TestExtract_ExtractionOnly(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/extract", `{"head":{},"shape":["R~1~2"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Contains(t, out, "extraction")
	assert.NotContains(t, out, "aggregate")
}

func TestExtract_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/extract", "  hello\n\tworld ")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	out := decode(t, rec)
	assert.Contains(t, out["diagnostics"], "sourceType=string")

	rec = do(t, s, http.MethodPost, "/api/extract?kind=board", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/extract", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/extract", strings.Repeat("x", 1<<16+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// A symbol line too short for its tag fails the legacy parser.
	rec = do(t, s, http.MethodPost, "/api/extract?kind=symbol", `{"head":{},"shape":["R~1~2"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "merge shapes")
}

func waitForJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec := do(t, s, http.MethodGet, "/api/jobs/"+id+"/status", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		if snap.Done() {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %q", snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJobs_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	manifest := `
name: my batch
devices:
  - name: NE555
    uuid: dev-1
    designator: U1
    lcsc: C46749
    symbol: {libraryUuid: lib, uuid: s1}
    footprint: {libraryUuid: lib, uuid: f1}
  - name: R9
    uuid: dev-2
`
	rec := do(t, s, http.MethodPost, "/api/jobs", manifest)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	out := decode(t, rec)
	id := out["job_id"].(string)
	assert.Equal(t, "/api/jobs/"+id+"/status", out["poll_url"])

	snap := waitForJob(t, s, id)
	assert.Equal(t, pipeline.StatusPartial, snap.Status)
	assert.Equal(t, "my_batch", snap.Name)
	assert.Equal(t, []string{"R9: missing symbol & footprint"}, snap.Progress.Errors)
	assert.Len(t, snap.ManifestHash, 64)

	rec = do(t, s, http.MethodGet, "/api/jobs/"+id+"/components", "")
	require.Equal(t, http.StatusOK, rec.Code)
	components := decode(t, rec)["components"].([]any)
	require.Len(t, components, 1)
	assert.Equal(t, "U", components[0].(map[string]any)["prefix"])

	rec = do(t, s, http.MethodGet, "/api/jobs/"+id+"/report?format=md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Batch my_batch")

	rec = do(t, s, http.MethodGet, "/api/jobs/"+id+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = do(t, s, http.MethodGet, "/api/stats/fetch", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetch := decode(t, rec)["fetch"].(map[string]any)
	assert.Equal(t, 2.0, fetch["fetches"])
}

func TestJobs_BadRequests(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/jobs", `{"devices":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "manifest has no devices", decode(t, rec)["error"])

	for _, path := range []string{"/api/jobs/nope/status", "/api/jobs/nope/components", "/api/jobs/nope/report"} {
		rec = do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestExtractions_ListDeletePurge(t *testing.T) {
	s := newTestServer(t)
	manifest := `{"devices":[{"name":"Q1","symbol":{"libraryUuid":"lib","uuid":"s1"},"footprint":{"libraryUuid":"lib","uuid":"f1"}}]}`
	rec := do(t, s, http.MethodPost, "/api/jobs", manifest)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	snap := waitForJob(t, s, decode(t, rec)["job_id"].(string))
	require.Equal(t, pipeline.StatusCompleted, snap.Status, snap.Progress.Errors)

	rec = do(t, s, http.MethodGet, "/api/extractions?kind=symbol", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, 2.0, out["total"])
	items := out["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "s1", item["uuid"])
	assert.Equal(t, []any{"docType"}, item["head_keys"])
	assert.Equal(t, 1.0, item["shapes"])

	rec = do(t, s, http.MethodDelete, "/api/extractions/symbol/lib/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/extractions?kind=sym&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode(t, rec)
	assert.Equal(t, 1.0, out["total"])
	assert.Empty(t, out["items"])

	rec = do(t, s, http.MethodPost, "/api/cache/purge", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["purged"], "only the footprint is still cached")

	rec = do(t, s, http.MethodGet, "/api/extractions?kind=board", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/api/extractions?kind=symbol&limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodDelete, "/api/extractions/board/lib/s1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractions_NoStore(t *testing.T) {
	s := newTestServer(t)
	s.store = nil
	rec := do(t, s, http.MethodGet, "/api/extractions?kind=symbol", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/extractions/symbol/lib/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
