package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotline/spotline/internal/domain/model"
)

// ReputationStore keeps reputation records and their append-only event
// ledger.
type ReputationStore struct {
	mu      sync.RWMutex
	records map[model.UserID]model.UserReputation
	events  map[model.UserID][]model.ReputationEvent
}

// NewReputationStore creates an empty reputation store.
func NewReputationStore() *ReputationStore {
	return &ReputationStore{
		records: make(map[model.UserID]model.UserReputation),
		events:  make(map[model.UserID][]model.ReputationEvent),
	}
}

// GetByUserID returns the reputation record, or found=false.
func (s *ReputationStore) GetByUserID(_ context.Context, userID model.UserID) (model.UserReputation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.records[userID]
	return rep, ok, nil
}

// Create persists a fresh reputation record.
func (s *ReputationStore) Create(_ context.Context, rep model.UserReputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rep.UserID]; exists {
		return fmt.Errorf("create reputation %s: %w", rep.UserID, ErrDuplicate)
	}
	s.records[rep.UserID] = rep
	return nil
}

// Update overwrites an existing reputation record.
func (s *ReputationStore) Update(_ context.Context, rep model.UserReputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rep.UserID]; !exists {
		return fmt.Errorf("update reputation %s: %w", rep.UserID, ErrMissingRecord)
	}
	s.records[rep.UserID] = rep
	return nil
}

// AddEvent appends an immutable ledger event. Events are never mutated or
// deleted.
func (s *ReputationStore) AddEvent(_ context.Context, ev model.ReputationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.UserID] = append(s.events[ev.UserID], ev)
	return nil
}

// Events returns a copy of a user's ledger in append order.
func (s *ReputationStore) Events(_ context.Context, userID model.UserID) ([]model.ReputationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := s.events[userID]
	out := make([]model.ReputationEvent, len(evs))
	copy(out, evs)
	return out, nil
}

// SetVerified flips a user's verified flag, creating the record when
// absent. Verification is an administrative action, not a ledger event.
func (s *ReputationStore) SetVerified(_ context.Context, userID model.UserID, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.records[userID]
	if !ok {
		rep = model.UserReputation{UserID: userID}
	}
	rep.Verified = verified
	s.records[userID] = rep
	return nil
}
