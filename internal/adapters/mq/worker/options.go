// Package worker defines the pool that drains the reaction queue and
// applies each event through the engine.
package worker

import (
	"github.com/spotline/spotline/pkg/logger"
)

// Option applies a configuration option to the ReactionWorker.
type Option func(*ReactionWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *ReactionWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *ReactionWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
