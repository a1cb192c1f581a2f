// Package reputation implements the event-sourced per-user reputation
// ledger. Every action appends an immutable event; the current score is
// the clamped running sum and never drops below zero.
package reputation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

// Trust tier score boundaries.
const (
	trustedMinScore = 50
	newMinScore     = 10
)

// amounts is the fixed per-reason reputation delta table.
var amounts = map[model.ReputationReason]int{
	model.ReasonSightingCreated:   1,
	model.ReasonSightingUpvoted:   1,
	model.ReasonSightingConfirmed: 2,
	model.ReasonSightingDisputed:  -1,
	model.ReasonSignalCreated:     5,
	model.ReasonSignalSubscribed:  2,
	model.ReasonSignalVerified:    50,
	model.ReasonReportUpheld:      -10,
}

// Amount returns the fixed delta for a reason and whether the reason is
// known. Unknown reasons contribute nothing.
func Amount(reason model.ReputationReason) (int, bool) {
	amt, ok := amounts[reason]
	return amt, ok
}

// TierFor derives the trust tier from a score. A verified flag overrides
// the score entirely.
func TierFor(score int, verified bool) model.TrustLevel {
	switch {
	case verified:
		return model.TrustVerified
	case score >= trustedMinScore:
		return model.TrustTrusted
	case score >= newMinScore:
		return model.TrustNew
	default:
		return model.TrustUnverified
	}
}

// Store is the persistence contract the ledger needs.
type Store interface {
	// GetByUserID returns the reputation record, or found=false when the
	// user has no record yet.
	GetByUserID(ctx context.Context, userID model.UserID) (model.UserReputation, bool, error)

	// Create persists a fresh reputation record.
	Create(ctx context.Context, rep model.UserReputation) error

	// Update overwrites an existing reputation record.
	Update(ctx context.Context, rep model.UserReputation) error

	// AddEvent appends an immutable ledger event.
	AddEvent(ctx context.Context, ev model.ReputationEvent) error
}

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithLogger sets a custom logger for the ledger.
func WithLogger(l logger.Logger) Option {
	return func(r *Ledger) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Ledger) {
		if now != nil {
			r.now = now
		}
	}
}

// Ledger applies reputation events against a Store.
type Ledger struct {
	store  Store
	now    func() time.Time
	logger logger.Logger
}

// NewLedger creates a reputation ledger backed by store.
func NewLedger(store Store, opts ...Option) *Ledger {
	r := &Ledger{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get().Named("reputation")
	}

	return r
}

// AddEvent appends one event for userID and applies it to the running
// score, clamping at zero. The reputation record is created lazily on the
// first event. Unknown reasons apply a zero delta but are still recorded.
func (r *Ledger) AddEvent(ctx context.Context, userID model.UserID, reason model.ReputationReason, referenceID string) (model.UserReputation, error) {
	rep, found, err := r.store.GetByUserID(ctx, userID)
	if err != nil {
		return model.UserReputation{}, fmt.Errorf("load reputation for %s: %w", userID, err)
	}

	now := r.now()
	if !found {
		rep = model.UserReputation{
			UserID:    userID,
			Score:     0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.store.Create(ctx, rep); err != nil {
			return model.UserReputation{}, fmt.Errorf("create reputation for %s: %w", userID, err)
		}
	}

	amt, known := Amount(reason)
	if !known {
		r.logger.Warn(ctx, "unknown reputation reason, applying zero delta",
			logger.String("reason", string(reason)),
			logger.String("userID", userID.String()),
		)
	}

	ev := model.ReputationEvent{
		ID:          uuid.NewString(),
		UserID:      userID,
		Reason:      reason,
		Amount:      amt,
		ReferenceID: referenceID,
		CreatedAt:   now,
	}
	if err := r.store.AddEvent(ctx, ev); err != nil {
		return model.UserReputation{}, fmt.Errorf("append reputation event: %w", err)
	}

	rep.Score += amt
	if rep.Score < 0 {
		rep.Score = 0
	}
	rep.UpdatedAt = now

	if err := r.store.Update(ctx, rep); err != nil {
		return model.UserReputation{}, fmt.Errorf("update reputation for %s: %w", userID, err)
	}

	metrics.RecordReputationEvent(string(reason))

	return rep, nil
}

// TrustLevelFor resolves the current tier for a user. Users with no record
// are unverified.
func (r *Ledger) TrustLevelFor(ctx context.Context, userID model.UserID) (model.TrustLevel, error) {
	rep, found, err := r.store.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load reputation for %s: %w", userID, err)
	}
	if !found {
		return model.TrustUnverified, nil
	}
	return TierFor(rep.Score, rep.Verified), nil
}
