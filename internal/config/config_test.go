package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "WORKER_COUNT", "JOB_TTL", "REPAIR_JSON", "CACHE_SIZE", "MAX_CONCURRENT_DEVICES"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxConcurrentDevices != 8 || cfg.CacheSize != 1024 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.JobTTL)
	}
	if !cfg.RepairJSON {
		t.Error("expected RepairJSON to default on")
	}
}

func TestLoad_EnvOverridesAndClamps(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("REPAIR_JSON", "false")
	t.Setenv("MAX_CONCURRENT_DEVICES", "notanumber")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected clamped worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("expected 90s TTL, got %v", cfg.JobTTL)
	}
	if cfg.RepairJSON {
		t.Error("expected RepairJSON=false")
	}
	if cfg.MaxConcurrentDevices != 8 {
		t.Errorf("expected fallback 8, got %d", cfg.MaxConcurrentDevices)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Setenv restores the variable afterwards; .env only fills unset keys.
	t.Setenv("LIBGEST_SOURCE_DIR", "")
	os.Unsetenv("LIBGEST_SOURCE_DIR")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LIBGEST_SOURCE_DIR=/srv/mirror\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.SourceDir != "/srv/mirror" {
		t.Errorf("expected source dir from .env, got %q", cfg.SourceDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing key", Config{SourceDir: "x"}, "LIBGEST_API_KEY"},
		{"missing source", Config{LibgestAPIKey: "k"}, "one of"},
		{"both sources", Config{LibgestAPIKey: "k", SourceDir: "x", SourceURL: "http://h"}, "mutually exclusive"},
		{"ok", Config{LibgestAPIKey: "k", SourceURL: "http://h"}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseManifest_YAML(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: power
devices:
  - name: AMS1117-3.3
    lcsc: C6186
    designator: U1
    symbol: {libraryUuid: lib, uuid: s1}
    footprint:
      libraryUuid: lib
      uuid: f1
  - uuid: dev-2
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "power" || len(m.Devices) != 2 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	d := m.Devices[0]
	if d.LCSC != "C6186" || d.Symbol == nil || d.Symbol.UUID != "s1" || d.Footprint.LibraryUUID != "lib" {
		t.Errorf("unexpected device: %+v", d)
	}
	if m.Devices[1].Symbol != nil {
		t.Error("expected missing symbol to stay nil")
	}
}

func TestParseManifest_JSON(t *testing.T) {
	m, err := ParseManifest([]byte(`{"devices":[{"name":"R1","footprintName":"R0603","symbol":{"libraryUuid":"l","uuid":"s"}}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Devices[0].FootprintName != "R0603" || m.Devices[0].Symbol.UUID != "s" {
		t.Errorf("unexpected device: %+v", m.Devices[0])
	}
}

func TestParseManifest_Errors(t *testing.T) {
	tests := map[string]string{
		"devices: []":           "no devices",
		"devices: [{lcsc: C1}]": "name or uuid",
		"devices: [":            "parse manifest",
	}
	for in, want := range tests {
		_, err := ParseManifest([]byte(in))
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("ParseManifest(%q): expected error containing %q, got %v", in, want, err)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yaml")
	if err := os.WriteFile(path, []byte("devices:\n  - name: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Devices[0].Name != "X" {
		t.Errorf("expected device X, got %+v", m.Devices[0])
	}
	if _, err := LoadManifest(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}
