// Package match evaluates a signal's declarative condition set against a
// sighting's matchable attributes. Everything here is pure: no I/O, no
// side effects, no error cases.
package match

import "github.com/spotline/spotline/internal/domain/model"

// Data carries the sighting attributes a condition set is evaluated
// against.
type Data struct {
	CategoryID    model.CategoryID
	TypeID        model.TypeID
	Tags          []string
	Importance    model.Importance
	Score         float64
	ReporterTrust model.TrustLevel
}

// FromSighting builds Data from a sighting and its reporter's trust tier.
func FromSighting(s model.Sighting, reporterTrust model.TrustLevel) Data {
	return Data{
		CategoryID:    s.CategoryID,
		TypeID:        s.TypeID,
		Tags:          s.Tags,
		Importance:    s.Importance,
		Score:         s.Score,
		ReporterTrust: reporterTrust,
	}
}

// predicate is one populated condition applied to Data.
type predicate func(Data) bool

// Matches evaluates conds against data. Unset condition fields are
// vacuously satisfied. AND (the default) requires every populated
// predicate to pass; OR requires at least one. A condition set with no
// populated predicates matches everything.
func Matches(conds model.SignalConditions, data Data) bool {
	preds := populated(conds)
	if len(preds) == 0 {
		return true
	}

	if conds.Operator == model.OperatorOr {
		for _, p := range preds {
			if p(data) {
				return true
			}
		}
		return false
	}

	for _, p := range preds {
		if !p(data) {
			return false
		}
	}
	return true
}

// populated collects one predicate per set condition field.
func populated(conds model.SignalConditions) []predicate {
	var preds []predicate

	if len(conds.CategoryIDs) > 0 {
		ids := conds.CategoryIDs
		preds = append(preds, func(d Data) bool {
			return containsCategory(ids, d.CategoryID)
		})
	}

	if len(conds.TypeIDs) > 0 {
		ids := conds.TypeIDs
		preds = append(preds, func(d Data) bool {
			return containsType(ids, d.TypeID)
		})
	}

	if len(conds.Tags) > 0 {
		want := conds.Tags
		preds = append(preds, func(d Data) bool {
			return intersects(want, d.Tags)
		})
	}

	if len(conds.Importance) > 0 {
		levels := conds.Importance
		preds = append(preds, func(d Data) bool {
			for _, lvl := range levels {
				if lvl == d.Importance {
					return true
				}
			}
			return false
		})
	}

	if conds.MinTrust != "" {
		min := conds.MinTrust
		preds = append(preds, func(d Data) bool {
			return d.ReporterTrust.AtLeast(min)
		})
	}

	if conds.MinScore != nil {
		min := *conds.MinScore
		preds = append(preds, func(d Data) bool {
			return d.Score >= min
		})
	}

	if conds.MaxScore != nil {
		max := *conds.MaxScore
		preds = append(preds, func(d Data) bool {
			return d.Score <= max
		})
	}

	return preds
}

func containsCategory(ids []model.CategoryID, id model.CategoryID) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}

func containsType(ids []model.TypeID, id model.TypeID) bool {
	for _, t := range ids {
		if t == id {
			return true
		}
	}
	return false
}

// intersects reports whether the two tag sets share at least one tag.
func intersects(want, have []string) bool {
	if len(want) == 0 || len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
