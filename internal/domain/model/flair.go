package model

import "time"

// AssignmentMethod records how a flair ended up on a sighting.
type AssignmentMethod string

// Assignment methods.
const (
	AssignManual    AssignmentMethod = "manual"
	AssignModerator AssignmentMethod = "moderator"
	AssignAuto      AssignmentMethod = "auto"
	AssignConsensus AssignmentMethod = "consensus"
)

// SuggestionStatus tracks the lifecycle of a flair suggestion. A suggestion
// moves pending -> applied (or rejected) exactly once and never reverts.
type SuggestionStatus string

// Suggestion statuses.
const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApplied  SuggestionStatus = "applied"
	SuggestionRejected SuggestionStatus = "rejected"
)

// AutoAssignConditions are the numeric bounds a flair can carry for
// rule-based assignment. All fields are optional; ages are hours since the
// sighting's ObservedAt.
type AutoAssignConditions struct {
	MinScore            *float64 `json:"min_score,omitempty"`
	MaxScore            *float64 `json:"max_score,omitempty"`
	MinAgeHours         *float64 `json:"min_age_hours,omitempty"`
	MaxAgeHours         *float64 `json:"max_age_hours,omitempty"`
	MinEngagement       *int     `json:"min_engagement,omitempty"`
	SpamReportThreshold *int     `json:"spam_report_threshold,omitempty"`
}

// Empty reports whether no bound is populated.
func (c AutoAssignConditions) Empty() bool {
	return c.MinScore == nil && c.MaxScore == nil &&
		c.MinAgeHours == nil && c.MaxAgeHours == nil &&
		c.MinEngagement == nil && c.SpamReportThreshold == nil
}

// Flair is a tag taxonomy entry. CategoryID restricts it to sightings of
// that category; empty means category-agnostic. AutoAssign, when non-nil,
// makes the flair eligible for rule-based assignment.
type Flair struct {
	ID         FlairID               `json:"id"`
	Name       string                `json:"name"`
	CategoryID CategoryID            `json:"category_id,omitempty"`
	IsActive   bool                  `json:"is_active"`
	AutoAssign *AutoAssignConditions `json:"auto_assign,omitempty"`
}

// SightingFlair is an assignment of a flair to a sighting.
type SightingFlair struct {
	SightingID SightingID       `json:"sighting_id"`
	FlairID    FlairID          `json:"flair_id"`
	AssignedBy UserID           `json:"assigned_by,omitempty"`
	Method     AssignmentMethod `json:"method"`
	AssignedAt time.Time        `json:"assigned_at"`
}

// FlairSuggestion is a pending community vote to attach a flair.
type FlairSuggestion struct {
	ID          SuggestionID     `json:"id"`
	SightingID  SightingID       `json:"sighting_id"`
	FlairID     FlairID          `json:"flair_id"`
	SuggestedBy UserID           `json:"suggested_by"`
	VoteCount   int              `json:"vote_count"`
	Status      SuggestionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}
