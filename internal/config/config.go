// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission ids are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// TaxonomyVersion selects the dimension taxonomy used for scoring.
	TaxonomyVersion string `koanf:"taxonomy_version"`

	// TaxonomyDir optionally adds taxonomy versions from *.yaml files.
	TaxonomyDir string `koanf:"taxonomy_dir"`

	// CatalogPath optionally loads question metadata from a YAML file.
	// When empty the catalog is derived from the taxonomy.
	CatalogPath string `koanf:"catalog_path"`

	// DefaultCorrectOption is assumed for single-choice items without a key.
	DefaultCorrectOption string `koanf:"default_correct_option"`

	// CompositeSeparator joins tied dominant labels.
	CompositeSeparator string `koanf:"composite_separator"`

	// IndeterminateLabel is reported when no dominant type exists.
	IndeterminateLabel string `koanf:"indeterminate_label"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		QueueSize:            10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           100_000,
		TaxonomyVersion:      "v1",
		DefaultCorrectOption: "A",
		CompositeSeparator:   "/",
		IndeterminateLabel:   "composite",
		CORSOrigins:          []string{"*"},
	}
}

// Validate checks values that would otherwise fail at startup.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	case strings.TrimSpace(c.TaxonomyVersion) == "":
		return fmt.Errorf("%w: taxonomy_version must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
