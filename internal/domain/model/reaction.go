package model

import "time"

// ReactionType enumerates the reactions a user can place on a sighting.
type ReactionType string

// Valid reaction types.
const (
	ReactionUpvote    ReactionType = "upvote"
	ReactionDownvote  ReactionType = "downvote"
	ReactionConfirmed ReactionType = "confirmed"
	ReactionDisputed  ReactionType = "disputed"
	ReactionSpam      ReactionType = "spam"
)

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionUpvote, ReactionDownvote, ReactionConfirmed, ReactionDisputed, ReactionSpam:
		return true
	default:
		return false
	}
}

// Reaction records a single (sighting, user, type) reaction. At most one
// reaction per triple exists; reactions are created and deleted, never
// updated in place.
type Reaction struct {
	ID         string       `json:"id"`
	SightingID SightingID   `json:"sighting_id"`
	UserID     UserID       `json:"user_id"`
	Type       ReactionType `json:"type"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ReactionOp distinguishes placing a reaction from retracting it.
type ReactionOp string

// Reaction operations carried on the processing queue.
const (
	ReactionOpAdd    ReactionOp = "add"
	ReactionOpRemove ReactionOp = "remove"
)

// ReactionEvent is the payload flowing through the reaction queue.
// EventID is a client-supplied or generated idempotency key.
type ReactionEvent struct {
	EventID    string       `json:"event_id"`
	SightingID SightingID   `json:"sighting_id"`
	UserID     UserID       `json:"user_id"`
	Type       ReactionType `json:"type"`
	Op         ReactionOp   `json:"op"`
	At         time.Time    `json:"at"`
}
