// Package config loads and validates mirror run configuration. Values
// are resolved from a YAML file, an optional .env file and
// S3MIRROR_-prefixed environment variables, with the environment
// winning.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/mirrortypes"
)

// maxPageSize is the largest page the listing API allows.
const maxPageSize = 1000

// Config defines everything a mirror run needs.
type Config struct {
	// Region is the AWS region.
	Region string `yaml:"region"`

	// Bucket is the bucket to mirror from.
	Bucket string `yaml:"bucket"`

	// Endpoint is a custom S3 endpoint URL, empty for AWS.
	Endpoint string `yaml:"endpoint"`

	// ForcePathStyle forces path-style bucket addressing.
	ForcePathStyle bool `yaml:"force_path_style"`

	// BasePrefix is the remote prefix mirrored trees are rooted at.
	BasePrefix string `yaml:"base_prefix"`

	// LocalRoot is the local directory objects land in.
	LocalRoot string `yaml:"local_root"`

	// Targets are the scan targets processed in order.
	Targets []string `yaml:"targets"`

	// Subfolders are the child subfolder names mirrored recursively.
	Subfolders []string `yaml:"subfolders"`

	// Filenames are the specific filenames fetched from every subfolder.
	Filenames []string `yaml:"filenames"`

	// Concurrency caps in-flight fetches, 1 means sequential.
	Concurrency int `yaml:"concurrency"`

	// AbortPolicy is "run" or "target".
	AbortPolicy string `yaml:"abort_policy"`

	// CountEmptyTargets counts targets without subfolders as processed.
	CountEmptyTargets bool `yaml:"count_empty_targets"`

	// PageSize caps keys per listing call.
	PageSize int `yaml:"page_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Region:      "us-east-1",
		Concurrency: 1,
		AbortPolicy: "run",
		PageSize:    maxPageSize,
		LogLevel:    "info",
	}
}

// Load resolves the effective configuration. A .env file in the
// working directory is folded into the environment first, then the
// YAML file at path (when non-empty) is read over the defaults, and
// finally S3MIRROR_* environment variables override everything.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables only")
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML configuration file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv overrides fields from S3MIRROR_* environment variables.
// List values are comma separated.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("S3MIRROR_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("S3MIRROR_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("S3MIRROR_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("S3MIRROR_FORCE_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse S3MIRROR_FORCE_PATH_STYLE: %w", err)
		}
		c.ForcePathStyle = b
	}
	if v := os.Getenv("S3MIRROR_BASE_PREFIX"); v != "" {
		c.BasePrefix = v
	}
	if v := os.Getenv("S3MIRROR_LOCAL_ROOT"); v != "" {
		c.LocalRoot = v
	}
	if v := os.Getenv("S3MIRROR_TARGETS"); v != "" {
		c.Targets = splitList(v)
	}
	if v := os.Getenv("S3MIRROR_SUBFOLDERS"); v != "" {
		c.Subfolders = splitList(v)
	}
	if v := os.Getenv("S3MIRROR_FILENAMES"); v != "" {
		c.Filenames = splitList(v)
	}
	if v := os.Getenv("S3MIRROR_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse S3MIRROR_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}
	if v := os.Getenv("S3MIRROR_ABORT_POLICY"); v != "" {
		c.AbortPolicy = v
	}
	if v := os.Getenv("S3MIRROR_COUNT_EMPTY_TARGETS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse S3MIRROR_COUNT_EMPTY_TARGETS: %w", err)
		}
		c.CountEmptyTargets = b
	}
	if v := os.Getenv("S3MIRROR_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse S3MIRROR_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := os.Getenv("S3MIRROR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for a runnable state.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", errors.ErrInvalidConfig)
	}
	if c.LocalRoot == "" {
		return fmt.Errorf("%w: local_root is required", errors.ErrInvalidConfig)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w: at least one target is required", errors.ErrInvalidConfig)
	}
	if len(c.Subfolders) == 0 && len(c.Filenames) == 0 {
		return fmt.Errorf("%w: at least one of subfolders or filenames is required", errors.ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1", errors.ErrInvalidConfig)
	}
	if c.PageSize < 1 || c.PageSize > maxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d", errors.ErrInvalidConfig, maxPageSize)
	}
	switch c.AbortPolicy {
	case "run", "target":
	default:
		return fmt.Errorf("%w: abort_policy must be %q or %q", errors.ErrInvalidConfig, "run", "target")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level must be one of debug, info, warn, error", errors.ErrInvalidConfig)
	}
	return nil
}

// Merge overlays non-zero fields of other onto a copy of c.
func (c Config) Merge(other Config) Config {
	merged := c
	if other.Region != "" {
		merged.Region = other.Region
	}
	if other.Bucket != "" {
		merged.Bucket = other.Bucket
	}
	if other.Endpoint != "" {
		merged.Endpoint = other.Endpoint
	}
	if other.ForcePathStyle {
		merged.ForcePathStyle = true
	}
	if other.BasePrefix != "" {
		merged.BasePrefix = other.BasePrefix
	}
	if other.LocalRoot != "" {
		merged.LocalRoot = other.LocalRoot
	}
	if len(other.Targets) > 0 {
		merged.Targets = other.Targets
	}
	if len(other.Subfolders) > 0 {
		merged.Subfolders = other.Subfolders
	}
	if len(other.Filenames) > 0 {
		merged.Filenames = other.Filenames
	}
	if other.Concurrency > 0 {
		merged.Concurrency = other.Concurrency
	}
	if other.AbortPolicy != "" {
		merged.AbortPolicy = other.AbortPolicy
	}
	if other.CountEmptyTargets {
		merged.CountEmptyTargets = true
	}
	if other.PageSize > 0 {
		merged.PageSize = other.PageSize
	}
	if other.LogLevel != "" {
		merged.LogLevel = other.LogLevel
	}
	return merged
}

// Abort maps the configured abort policy onto its typed value.
// Validate guarantees the mapping succeeds.
func (c Config) Abort() mirrortypes.AbortPolicy {
	if c.AbortPolicy == "target" {
		return mirrortypes.AbortTarget
	}
	return mirrortypes.AbortRun
}

// Level maps the configured log level onto a slog level.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// splitList parses a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
