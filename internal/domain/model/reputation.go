package model

import "time"

// ReputationReason enumerates the user actions that move reputation.
type ReputationReason string

// Reputation event reasons.
const (
	ReasonSightingCreated   ReputationReason = "sighting_created"
	ReasonSightingUpvoted   ReputationReason = "sighting_upvoted"
	ReasonSightingConfirmed ReputationReason = "sighting_confirmed"
	ReasonSightingDisputed  ReputationReason = "sighting_disputed"
	ReasonSignalCreated     ReputationReason = "signal_created"
	ReasonSignalSubscribed  ReputationReason = "signal_subscribed"
	ReasonSignalVerified    ReputationReason = "signal_verified"
	ReasonReportUpheld      ReputationReason = "report_upheld"
)

// UserReputation is the current clamped running sum of a user's reputation
// events. Score never drops below zero.
type UserReputation struct {
	UserID    UserID    `json:"user_id"`
	Score     int       `json:"score"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReputationEvent is an immutable append-only ledger entry. Amount comes
// from the fixed per-reason table and is never edited after the fact.
type ReputationEvent struct {
	ID          string           `json:"id"`
	UserID      UserID           `json:"user_id"`
	Reason      ReputationReason `json:"reason"`
	Amount      int              `json:"amount"`
	ReferenceID string           `json:"reference_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TrustLevel is the coarse tier derived from a reputation score.
type TrustLevel string

// Trust tiers, ordered weakest to strongest.
const (
	TrustUnverified TrustLevel = "unverified"
	TrustNew        TrustLevel = "new"
	TrustTrusted    TrustLevel = "trusted"
	TrustVerified   TrustLevel = "verified"
)

// trustRank orders tiers for at-least comparisons.
var trustRank = map[TrustLevel]int{
	TrustUnverified: 0,
	TrustNew:        1,
	TrustTrusted:    2,
	TrustVerified:   3,
}

// AtLeast reports whether t is the same tier as min or stronger.
// Unknown tiers rank below unverified.
func (t TrustLevel) AtLeast(min TrustLevel) bool {
	tr, ok := trustRank[t]
	if !ok {
		tr = -1
	}
	mr, ok := trustRank[min]
	if !ok {
		mr = -1
	}
	return tr >= mr
}
