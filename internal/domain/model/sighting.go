// Package model contains domain models passed between layers.
package model

import "time"

// Importance classifies how severe a sighting is.
type Importance string

// Importance levels, ordered low to critical.
const (
	ImportanceLow      Importance = "low"
	ImportanceNormal   Importance = "normal"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// ReactionCounts aggregates the per-type reaction tallies for a sighting.
// Counts are never negative.
type ReactionCounts struct {
	Upvotes       int `json:"upvotes"`
	Downvotes     int `json:"downvotes"`
	Confirmations int `json:"confirmations"`
	Disputes      int `json:"disputes"`
	SpamReports   int `json:"spam_reports"`
}

// TotalEngagement is the sum of all score-relevant reactions. Spam reports
// are excluded; they feed flair auto-assignment, not engagement.
func (c ReactionCounts) TotalEngagement() int {
	return c.Upvotes + c.Downvotes + c.Confirmations + c.Disputes
}

// Sighting is an observed event report. Score and HotScore are always
// derived from the counts, never written independently.
type Sighting struct {
	ID         SightingID `json:"id"`
	CategoryID CategoryID `json:"category_id"`
	TypeID     TypeID     `json:"type_id"`
	Importance Importance `json:"importance"`
	ReporterID UserID     `json:"reporter_id,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ObservedAt time.Time  `json:"observed_at"`

	Counts   ReactionCounts `json:"counts"`
	Score    float64        `json:"score"`
	HotScore float64        `json:"hot_score"`
}

// TriggerType is an event category a signal can subscribe to.
type TriggerType string

// Trigger types emitted by the engine.
const (
	TriggerSightingCreated   TriggerType = "sighting_created"
	TriggerSightingConfirmed TriggerType = "sighting_confirmed"
	TriggerSightingDisputed  TriggerType = "sighting_disputed"
	TriggerScoreChanged      TriggerType = "score_changed"
)
