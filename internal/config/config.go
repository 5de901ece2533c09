package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Document source: an export endpoint or a local mirror directory.
	SourceURL    string
	SourceAPIKey string
	SourceDir    string

	// Auth
	LibgestAPIKey string

	// Extraction
	RepairJSON bool

	// Cache and persistence
	CacheSize int
	StorePath string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentDevices int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

// Load reads the environment, after merging any .env file in the working
// directory. Variables already set take precedence over .env entries.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		SourceURL:    os.Getenv("LIBGEST_SOURCE_URL"),
		SourceAPIKey: os.Getenv("LIBGEST_SOURCE_API_KEY"),
		SourceDir:    os.Getenv("LIBGEST_SOURCE_DIR"),

		LibgestAPIKey: os.Getenv("LIBGEST_API_KEY"),

		RepairJSON: envBool("REPAIR_JSON", true),

		CacheSize: envInt("CACHE_SIZE", 1024),
		StorePath: os.Getenv("STORE_PATH"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDevices: envInt("MAX_CONCURRENT_DEVICES", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 16777216), // 16MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentDevices <= 0 {
		cfg.MaxConcurrentDevices = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16777216
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.LibgestAPIKey == "" {
		return fmt.Errorf("LIBGEST_API_KEY is required")
	}
	if c.SourceURL == "" && c.SourceDir == "" {
		return fmt.Errorf("one of LIBGEST_SOURCE_URL or LIBGEST_SOURCE_DIR is required")
	}
	if c.SourceURL != "" && c.SourceDir != "" {
		return fmt.Errorf("LIBGEST_SOURCE_URL and LIBGEST_SOURCE_DIR are mutually exclusive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
