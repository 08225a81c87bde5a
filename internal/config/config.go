// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	StorageDriverS3    = "s3"
	StorageDriverMinio = "minio"
	StorageDriverLocal = "local"
)

// Run store backends.
const (
	RunStoreMemory = "memory"
	RunStoreSQLite = "sqlite"
)

// defaultLocalBucket is used by the local driver when STORAGE_BUCKET is not set.
const defaultLocalBucket = "thumbnails"

// Static errors for configuration validation.
var (
	// ErrUnknownStorageDriver is returned when STORAGE_DRIVER is not s3, minio or local.
	ErrUnknownStorageDriver = errors.New("config: STORAGE_DRIVER must be one of s3, minio, local")
	// ErrBucketRequired is returned when a remote driver is used without STORAGE_BUCKET.
	ErrBucketRequired = errors.New("config: STORAGE_BUCKET is required")
	// ErrS3RegionRequired is returned when the s3 driver is used without S3_REGION.
	ErrS3RegionRequired = errors.New("config: S3_REGION is required for the s3 driver")
	// ErrMinioEndpointRequired is returned when the minio driver is used without MINIO_ENDPOINT.
	ErrMinioEndpointRequired = errors.New("config: MINIO_ENDPOINT is required for the minio driver")
	// ErrUnknownRunStore is returned when RUN_STORE is not memory or sqlite.
	ErrUnknownRunStore = errors.New("config: RUN_STORE must be one of memory, sqlite")
	// ErrInvalidLimits is returned when a width, count or capacity setting is out of range.
	ErrInvalidLimits = errors.New("config: frame widths, MAX_FRAME_COUNT, MAX_CONCURRENT_RUNS and MAX_UPLOAD_MB must be positive, MAX_RUNS must not be negative")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port           int      `env:"PORT, default=8080" json:"port"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=*" json:"allowed_origins"`
	MaxUploadMB    int64    `env:"MAX_UPLOAD_MB, default=512" json:"max_upload_mb"`

	// Staging settings
	TempDir string `env:"TEMP_DIR, default=/tmp/framestrip" json:"temp_dir"`

	// Decoder settings
	FFmpegPath  string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`

	// Pipeline settings
	DefaultFrameWidth int `env:"DEFAULT_FRAME_WIDTH, default=80" json:"default_frame_width"`
	ThumbnailWidth    int `env:"THUMBNAIL_WIDTH, default=256" json:"thumbnail_width"`
	MaxFrameCount     int `env:"MAX_FRAME_COUNT, default=100" json:"max_frame_count"`
	MaxConcurrentRuns int `env:"MAX_CONCURRENT_RUNS, default=4" json:"max_concurrent_runs"`
	// MaxRuns caps the finished runs kept in history. Zero keeps all of them.
	MaxRuns int `env:"MAX_RUNS, default=1000" json:"max_runs"`

	// Object storage settings
	StorageDriver        string `env:"STORAGE_DRIVER, default=s3" json:"storage_driver"`
	StorageBucket        string `env:"STORAGE_BUCKET" json:"storage_bucket,omitempty"`
	StoragePublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" json:"storage_public_base_url,omitempty"`

	// S3 settings
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// MinIO settings
	MinioEndpoint  string `env:"MINIO_ENDPOINT" json:"minio_endpoint,omitempty"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" json:"-"` // Masked in JSON
	MinioSecretKey string `env:"MINIO_SECRET_KEY" json:"-"` // Masked in JSON
	MinioUseSSL    bool   `env:"MINIO_USE_SSL, default=false" json:"minio_use_ssl"`

	// Local object store settings
	LocalStoreDir string `env:"LOCAL_STORE_DIR, default=/tmp/framestrip/objects" json:"local_store_dir"`

	// Run history settings
	RunStore     string `env:"RUN_STORE, default=memory" json:"run_store"`
	RunStorePath string `env:"RUN_STORE_PATH, default=/tmp/framestrip/runs.db" json:"run_store_path"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverS3:
		if c.StorageBucket == "" {
			return ErrBucketRequired
		}
		if c.S3Region == "" {
			return ErrS3RegionRequired
		}
	case StorageDriverMinio:
		if c.StorageBucket == "" {
			return ErrBucketRequired
		}
		if c.MinioEndpoint == "" {
			return ErrMinioEndpointRequired
		}
	case StorageDriverLocal:
	default:
		return ErrUnknownStorageDriver
	}

	switch c.RunStore {
	case RunStoreMemory, RunStoreSQLite:
	default:
		return ErrUnknownRunStore
	}

	if c.DefaultFrameWidth <= 0 || c.ThumbnailWidth <= 0 || c.MaxFrameCount <= 0 ||
		c.MaxConcurrentRuns <= 0 || c.MaxUploadMB <= 0 || c.MaxRuns < 0 {
		return ErrInvalidLimits
	}

	return nil
}

// Bucket returns the bucket uploads are written to.
func (c *Config) Bucket() string {
	if c.StorageBucket == "" && c.StorageDriver == StorageDriverLocal {
		return defaultLocalBucket
	}
	return c.StorageBucket
}

// PublicBaseURL returns the base of every public URL handed to clients.
// An explicit STORAGE_PUBLIC_BASE_URL always wins.
func (c *Config) PublicBaseURL() string {
	if c.StoragePublicBaseURL != "" {
		return strings.TrimRight(c.StoragePublicBaseURL, "/")
	}

	switch c.StorageDriver {
	case StorageDriverMinio:
		scheme := "http"
		if c.MinioUseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s", scheme, c.MinioEndpoint)
	case StorageDriverLocal:
		return fmt.Sprintf("http://localhost:%d/objects", c.Port)
	default:
		if c.S3Endpoint != "" {
			return strings.TrimRight(c.S3Endpoint, "/")
		}
		return fmt.Sprintf("https://s3.%s.amazonaws.com", c.S3Region)
	}
}

// StagingDir returns the root under which per-request staging areas are created.
func (c *Config) StagingDir() string {
	return filepath.Join(c.TempDir, "staging")
}

// SpoolDir returns the directory incoming uploads are written to.
func (c *Config) SpoolDir() string {
	return filepath.Join(c.TempDir, "uploads")
}

// MaxUploadBytes returns the request body limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TempDir: %s, StorageDriver: %s, StorageBucket: %s, PublicBaseURL: %s, MaxFrameCount: %d, MaxConcurrentRuns: %d, MaxRuns: %d, RunStore: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TempDir,
		c.StorageDriver,
		c.Bucket(),
		c.PublicBaseURL(),
		c.MaxFrameCount,
		c.MaxConcurrentRuns,
		c.MaxRuns,
		c.RunStore,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
