package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotline/spotline/internal/domain/model"
)

// pairKey identifies a (sighting, flair) pair.
type pairKey struct {
	sightingID model.SightingID
	flairID    model.FlairID
}

// voteKey identifies one user's vote on a suggestion.
type voteKey struct {
	suggestionID model.SuggestionID
	userID       model.UserID
}

// FlairStore keeps the flair taxonomy, sighting assignments, suggestions
// and suggestion votes.
type FlairStore struct {
	mu          sync.RWMutex
	flairs      map[model.FlairID]model.Flair
	assignments map[pairKey]model.SightingFlair
	suggestions map[model.SuggestionID]model.FlairSuggestion
	byPair      map[pairKey]model.SuggestionID
	votes       map[voteKey]struct{}
}

// NewFlairStore creates an empty flair store.
func NewFlairStore() *FlairStore {
	return &FlairStore{
		flairs:      make(map[model.FlairID]model.Flair),
		assignments: make(map[pairKey]model.SightingFlair),
		suggestions: make(map[model.SuggestionID]model.FlairSuggestion),
		byPair:      make(map[pairKey]model.SuggestionID),
		votes:       make(map[voteKey]struct{}),
	}
}

// PutFlair inserts or replaces a taxonomy entry.
func (s *FlairStore) PutFlair(_ context.Context, f model.Flair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flairs[f.ID] = f
	return nil
}

// GetFlair returns a flair by id, or found=false.
func (s *FlairStore) GetFlair(_ context.Context, id model.FlairID) (model.Flair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flairs[id]
	return f, ok, nil
}

// ActiveFlairs returns all flairs with IsActive set.
func (s *FlairStore) ActiveFlairs(_ context.Context) ([]model.Flair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Flair
	for _, f := range s.flairs {
		if f.IsActive {
			out = append(out, f)
		}
	}
	return out, nil
}

// HasFlair reports whether the flair is assigned to the sighting.
func (s *FlairStore) HasFlair(_ context.Context, sightingID model.SightingID, flairID model.FlairID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assignments[pairKey{sightingID, flairID}]
	return ok, nil
}

// Assign persists an assignment record.
func (s *FlairStore) Assign(_ context.Context, sf model.SightingFlair) error {
	key := pairKey{sf.SightingID, sf.FlairID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assignments[key]; exists {
		return fmt.Errorf("assign flair %s to sighting %s: %w", sf.FlairID, sf.SightingID, ErrDuplicate)
	}
	s.assignments[key] = sf
	return nil
}

// Assignment returns the assignment record, or found=false.
func (s *FlairStore) Assignment(_ context.Context, sightingID model.SightingID, flairID model.FlairID) (model.SightingFlair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sf, ok := s.assignments[pairKey{sightingID, flairID}]
	return sf, ok, nil
}

// Unassign removes an assignment record.
func (s *FlairStore) Unassign(_ context.Context, sightingID model.SightingID, flairID model.FlairID) error {
	key := pairKey{sightingID, flairID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assignments[key]; !exists {
		return fmt.Errorf("unassign flair %s from sighting %s: %w", flairID, sightingID, ErrMissingRecord)
	}
	delete(s.assignments, key)
	return nil
}

// SightingFlairs returns the assignments on a sighting.
func (s *FlairStore) SightingFlairs(_ context.Context, sightingID model.SightingID) ([]model.SightingFlair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SightingFlair
	for key, sf := range s.assignments {
		if key.sightingID == sightingID {
			out = append(out, sf)
		}
	}
	return out, nil
}

// CreateSuggestion persists a new suggestion and indexes it by pair.
func (s *FlairStore) CreateSuggestion(_ context.Context, sg model.FlairSuggestion) error {
	key := pairKey{sg.SightingID, sg.FlairID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPair[key]; exists {
		return fmt.Errorf("suggest flair %s for sighting %s: %w", sg.FlairID, sg.SightingID, ErrDuplicate)
	}
	s.suggestions[sg.ID] = sg
	s.byPair[key] = sg.ID
	return nil
}

// Suggestion returns a suggestion by id, or found=false.
func (s *FlairStore) Suggestion(_ context.Context, id model.SuggestionID) (model.FlairSuggestion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sg, ok := s.suggestions[id]
	return sg, ok, nil
}

// SuggestionForPair returns the suggestion for a (sighting, flair) pair
// regardless of status, or found=false.
func (s *FlairStore) SuggestionForPair(_ context.Context, sightingID model.SightingID, flairID model.FlairID) (model.FlairSuggestion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[pairKey{sightingID, flairID}]
	if !ok {
		return model.FlairSuggestion{}, false, nil
	}
	sg, ok := s.suggestions[id]
	return sg, ok, nil
}

// UpdateSuggestionVotes overwrites a suggestion's vote count.
func (s *FlairStore) UpdateSuggestionVotes(_ context.Context, id model.SuggestionID, votes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[id]
	if !ok {
		return fmt.Errorf("update votes on suggestion %s: %w", id, ErrMissingRecord)
	}
	sg.VoteCount = votes
	s.suggestions[id] = sg
	return nil
}

// UpdateSuggestionStatus overwrites a suggestion's status.
func (s *FlairStore) UpdateSuggestionStatus(_ context.Context, id model.SuggestionID, status model.SuggestionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg, ok := s.suggestions[id]
	if !ok {
		return fmt.Errorf("update status on suggestion %s: %w", id, ErrMissingRecord)
	}
	sg.Status = status
	s.suggestions[id] = sg
	return nil
}

// HasVoted reports whether the user already voted on the suggestion.
func (s *FlairStore) HasVoted(_ context.Context, id model.SuggestionID, userID model.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[voteKey{id, userID}]
	return ok, nil
}

// RecordVote marks the user as having voted on the suggestion.
func (s *FlairStore) RecordVote(_ context.Context, id model.SuggestionID, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey{id, userID}] = struct{}{}
	return nil
}
