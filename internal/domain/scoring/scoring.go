// Package scoring derives a sighting's base engagement score from its
// reaction counts and a time-decayed hot score used for ranking.
package scoring

import (
	"math"
	"time"

	"github.com/spotline/spotline/internal/domain/model"
)

// Default scoring configuration constants. The decay follows the gravity
// form base/(age+pad)^g: hot score shrinks toward zero as a sighting ages
// but never flips sign.
const (
	defaultUpvoteWeight       = 1.0
	defaultConfirmationWeight = 2.0
	defaultDownvoteWeight     = -1.0
	defaultDisputeWeight      = -2.0
	defaultGravity            = 1.8
	defaultAgePadHours        = 2.0
)

// Weights holds the per-reaction contribution to the base score. Spam
// reports carry no weight; they only feed flair auto-assignment.
type Weights struct {
	Upvote       float64
	Confirmation float64
	Downvote     float64
	Dispute      float64
}

// DefaultWeights returns the compiled-in reaction weights.
func DefaultWeights() Weights {
	return Weights{
		Upvote:       defaultUpvoteWeight,
		Confirmation: defaultConfirmationWeight,
		Downvote:     defaultDownvoteWeight,
		Dispute:      defaultDisputeWeight,
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWeights overrides the reaction weights.
func WithWeights(w Weights) Option {
	return func(c *Calculator) {
		c.weights = w
	}
}

// WithDecay overrides the gravity exponent and age pad (hours). Values
// must be positive; invalid overrides keep the defaults.
func WithDecay(gravity, agePadHours float64) Option {
	return func(c *Calculator) {
		if gravity > 0 {
			c.gravity = gravity
		}
		if agePadHours > 0 {
			c.agePadHours = agePadHours
		}
	}
}

// Calculator computes base and hot scores. It is stateless and safe for
// concurrent use.
type Calculator struct {
	weights     Weights
	gravity     float64
	agePadHours float64
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		weights:     DefaultWeights(),
		gravity:     defaultGravity,
		agePadHours: defaultAgePadHours,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseScore is the weighted linear combination of the reaction counts.
func (c *Calculator) BaseScore(counts model.ReactionCounts) float64 {
	return float64(counts.Upvotes)*c.weights.Upvote +
		float64(counts.Confirmations)*c.weights.Confirmation +
		float64(counts.Downvotes)*c.weights.Downvote +
		float64(counts.Disputes)*c.weights.Dispute
}

// HotScore attenuates base by the sighting's age. For a fixed base the
// result is non-increasing in age; for a fixed age it is increasing in
// base. Negative ages clamp to zero.
func (c *Calculator) HotScore(base float64, age time.Duration) float64 {
	ageHours := age.Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return base / math.Pow(ageHours+c.agePadHours, c.gravity)
}

// Recompute sets a sighting's counts and derived scores in one step. The
// caller persists the returned value as a unit so no partially-updated
// state is observable.
func (c *Calculator) Recompute(s model.Sighting, counts model.ReactionCounts, now time.Time) model.Sighting {
	s.Counts = counts
	s.Score = c.BaseScore(counts)
	s.HotScore = c.HotScore(s.Score, now.Sub(s.CreatedAt))
	return s
}
