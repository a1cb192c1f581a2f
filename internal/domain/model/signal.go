package model

import "time"

// TargetKind describes the geographic scope of a signal. The engine carries
// it but never evaluates it; area containment is resolved upstream.
type TargetKind string

// Target kinds.
const (
	TargetGeofence TargetKind = "geofence"
	TargetPolygon  TargetKind = "polygon"
	TargetGlobal   TargetKind = "global"
)

// ConditionOperator combines a signal's populated predicates.
type ConditionOperator string

// Condition combinators. AND is the default when unset.
const (
	OperatorAnd ConditionOperator = "AND"
	OperatorOr  ConditionOperator = "OR"
)

// SignalConditions is the declarative predicate set of a saved search.
// Every field is optional; unset fields do not constrain a match.
type SignalConditions struct {
	CategoryIDs []CategoryID      `json:"category_ids,omitempty"`
	TypeIDs     []TypeID          `json:"type_ids,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Importance  []Importance      `json:"importance,omitempty"`
	MinTrust    TrustLevel        `json:"min_trust_level,omitempty"`
	MinScore    *float64          `json:"min_score,omitempty"`
	MaxScore    *float64          `json:"max_score,omitempty"`
	Operator    ConditionOperator `json:"operator,omitempty"`
}

// Signal is a user-defined saved rule evaluated against sighting events.
type Signal struct {
	ID         SignalID         `json:"id"`
	OwnerID    UserID           `json:"owner_id"`
	Target     TargetKind       `json:"target"`
	Triggers   []TriggerType    `json:"triggers"`
	Conditions SignalConditions `json:"conditions"`
	IsActive   bool             `json:"is_active"`
	Verified   bool             `json:"verified"`
	CreatedAt  time.Time        `json:"created_at"`
}
