// Package dispatch filters active signals against sighting events and
// decides which signals fire. The matched id list is the sole output;
// notification delivery belongs to the caller.
package dispatch

import (
	"context"
	"fmt"

	"github.com/spotline/spotline/internal/domain/match"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

// SignalSource lists the signals eligible for evaluation.
type SignalSource interface {
	// ListActive returns all signals with IsActive set.
	ListActive(ctx context.Context) ([]model.Signal, error)
}

// TrustResolver resolves a reporter's current trust tier for condition
// matching.
type TrustResolver interface {
	TrustLevelFor(ctx context.Context, userID model.UserID) (model.TrustLevel, error)
}

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger for the dispatcher.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher evaluates signals against sighting events.
type Dispatcher struct {
	signals SignalSource
	trust   TrustResolver
	logger  logger.Logger
}

// NewDispatcher creates a dispatcher over the given signal source.
func NewDispatcher(signals SignalSource, trust TrustResolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		signals: signals,
		trust:   trust,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.Get().Named("dispatch")
	}

	return d
}

// ShouldTrigger reports whether a signal subscribes to the trigger type.
// Inactive signals never trigger, regardless of their trigger list.
func ShouldTrigger(signal model.Signal, trigger model.TriggerType) bool {
	if !signal.IsActive {
		return false
	}
	for _, t := range signal.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}

// EvaluateAll returns the ids of every active signal that subscribes to
// trigger and whose conditions match the sighting. Reporter trust is
// resolved once per evaluation; a sighting without a reporter matches as
// unverified.
func (d *Dispatcher) EvaluateAll(ctx context.Context, s model.Sighting, trigger model.TriggerType) ([]model.SignalID, error) {
	signals, err := d.signals.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active signals: %w", err)
	}

	trust := model.TrustUnverified
	if s.ReporterID != "" {
		trust, err = d.trust.TrustLevelFor(ctx, s.ReporterID)
		if err != nil {
			return nil, fmt.Errorf("resolve reporter trust: %w", err)
		}
	}

	data := match.FromSighting(s, trust)

	var matched []model.SignalID
	for _, sig := range signals {
		if !ShouldTrigger(sig, trigger) {
			continue
		}
		if match.Matches(sig.Conditions, data) {
			matched = append(matched, sig.ID)
		}
	}

	metrics.RecordSignalEvaluation(string(trigger), len(signals), len(matched))

	if len(matched) > 0 {
		d.logger.Debug(ctx, "signals matched",
			logger.String("sightingID", s.ID.String()),
			logger.String("trigger", string(trigger)),
			logger.Int("matched", len(matched)),
		)
	}

	return matched, nil
}
