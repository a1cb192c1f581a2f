// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics/health listen address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// EventQueueSize bounds the in-memory reaction queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of reaction workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Reaction score weights.
	UpvoteWeight       float64 `koanf:"upvote_weight"`
	DownvoteWeight     float64 `koanf:"downvote_weight"`
	ConfirmationWeight float64 `koanf:"confirmation_weight"`
	DisputeWeight      float64 `koanf:"dispute_weight"`

	// Gravity steepens the hot score's age decay.
	Gravity float64 `koanf:"gravity"`

	// AgePadHours keeps brand-new sightings off an infinite hot score.
	AgePadHours float64 `koanf:"age_pad_hours"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		MetricsAddr:        ":9090",
		EventQueueSize:     100_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         50_000,
		UpvoteWeight:       1.0,
		DownvoteWeight:     -1.0,
		ConfirmationWeight: 2.0,
		DisputeWeight:      -2.0,
		Gravity:            1.8,
		AgePadHours:        2.0,
	}
}
