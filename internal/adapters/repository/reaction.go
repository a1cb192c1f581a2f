package repository

import (
	"context"
	"sync"

	"github.com/spotline/spotline/internal/domain/fault"
	"github.com/spotline/spotline/internal/domain/model"
)

// reactionKey identifies the (sighting, user, type) triple a reaction
// occupies.
type reactionKey struct {
	sightingID model.SightingID
	userID     model.UserID
	reactionT  model.ReactionType
}

// ReactionStore enforces at-most-one reaction per (sighting, user, type)
// and serves aggregate counts per sighting.
type ReactionStore struct {
	mu        sync.RWMutex
	reactions map[reactionKey]model.Reaction
	counts    map[model.SightingID]model.ReactionCounts
}

// NewReactionStore creates an empty reaction store.
func NewReactionStore() *ReactionStore {
	return &ReactionStore{
		reactions: make(map[reactionKey]model.Reaction),
		counts:    make(map[model.SightingID]model.ReactionCounts),
	}
}

// Add records a reaction. A second reaction on the same triple is
// rejected with the already_reacted fault.
func (s *ReactionStore) Add(_ context.Context, r model.Reaction) error {
	key := reactionKey{r.SightingID, r.UserID, r.Type}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reactions[key]; exists {
		return fault.New(fault.CodeAlreadyReacted, "user %s already reacted %s on sighting %s", r.UserID, r.Type, r.SightingID)
	}
	s.reactions[key] = r
	s.counts[r.SightingID] = bump(s.counts[r.SightingID], r.Type, 1)
	return nil
}

// Remove retracts a reaction. Retracting a reaction that does not exist
// is the reaction_not_found fault.
func (s *ReactionStore) Remove(_ context.Context, sightingID model.SightingID, userID model.UserID, t model.ReactionType) error {
	key := reactionKey{sightingID, userID, t}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reactions[key]; !exists {
		return fault.New(fault.CodeReactionNotFound, "no %s reaction by user %s on sighting %s", t, userID, sightingID)
	}
	delete(s.reactions, key)
	s.counts[sightingID] = bump(s.counts[sightingID], t, -1)
	return nil
}

// GetCounts returns the aggregate reaction counts for a sighting. Unknown
// sightings have all-zero counts.
func (s *ReactionStore) GetCounts(_ context.Context, sightingID model.SightingID) (model.ReactionCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[sightingID], nil
}

// GetUserReaction returns the user's reaction of the given type, or
// found=false.
func (s *ReactionStore) GetUserReaction(_ context.Context, sightingID model.SightingID, userID model.UserID, t model.ReactionType) (model.Reaction, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reactions[reactionKey{sightingID, userID, t}]
	return r, ok, nil
}

// bump adjusts one counter by delta, clamping at zero so counts can never
// go negative.
func bump(c model.ReactionCounts, t model.ReactionType, delta int) model.ReactionCounts {
	switch t {
	case model.ReactionUpvote:
		c.Upvotes = clampZero(c.Upvotes + delta)
	case model.ReactionDownvote:
		c.Downvotes = clampZero(c.Downvotes + delta)
	case model.ReactionConfirmed:
		c.Confirmations = clampZero(c.Confirmations + delta)
	case model.ReactionDisputed:
		c.Disputes = clampZero(c.Disputes + delta)
	case model.ReactionSpam:
		c.SpamReports = clampZero(c.SpamReports + delta)
	}
	return c
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
