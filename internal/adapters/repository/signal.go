package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotline/spotline/internal/domain/model"
)

// SignalStore keeps saved-search signals keyed by id.
type SignalStore struct {
	mu      sync.RWMutex
	signals map[model.SignalID]model.Signal
}

// NewSignalStore creates an empty signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		signals: make(map[model.SignalID]model.Signal),
	}
}

// Put inserts or replaces a signal.
func (s *SignalStore) Put(_ context.Context, sig model.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[sig.ID] = sig
	return nil
}

// GetByID returns a signal by id, or found=false.
func (s *SignalStore) GetByID(_ context.Context, id model.SignalID) (model.Signal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signals[id]
	return sig, ok, nil
}

// ListActive returns all signals with IsActive set, in no particular
// order.
func (s *SignalStore) ListActive(_ context.Context) ([]model.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Signal
	for _, sig := range s.signals {
		if sig.IsActive {
			out = append(out, sig)
		}
	}
	return out, nil
}

// SetActive flips a signal's active flag.
func (s *SignalStore) SetActive(_ context.Context, id model.SignalID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sig, ok := s.signals[id]
	if !ok {
		return fmt.Errorf("set active on signal %s: %w", id, ErrMissingRecord)
	}
	sig.IsActive = active
	s.signals[id] = sig
	return nil
}
