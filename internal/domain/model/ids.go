package model

// Distinct id types keep sighting, user, signal and flair identifiers from
// being swapped at call sites. They are plain strings on the wire.
type (
	// SightingID identifies a sighting report.
	SightingID string

	// UserID identifies an account.
	UserID string

	// SignalID identifies a saved search rule.
	SignalID string

	// FlairID identifies a tag taxonomy entry.
	FlairID string

	// SuggestionID identifies a pending flair suggestion.
	SuggestionID string

	// CategoryID identifies a sighting category.
	CategoryID string

	// TypeID identifies a sighting type within a category.
	TypeID string
)

func (id SightingID) String() string   { return string(id) }
func (id UserID) String() string       { return string(id) }
func (id SignalID) String() string     { return string(id) }
func (id FlairID) String() string      { return string(id) }
func (id SuggestionID) String() string { return string(id) }
