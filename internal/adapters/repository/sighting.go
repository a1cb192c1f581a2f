package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/metrics"
)

// SightingStore keeps sighting records keyed by id.
type SightingStore struct {
	mu        sync.RWMutex
	sightings map[model.SightingID]model.Sighting
}

// NewSightingStore creates an empty sighting store.
func NewSightingStore() *SightingStore {
	return &SightingStore{
		sightings: make(map[model.SightingID]model.Sighting),
	}
}

// Put inserts or replaces a sighting.
func (s *SightingStore) Put(_ context.Context, sighting model.Sighting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sightings[sighting.ID] = sighting
	metrics.UpdateTrackedSightings(len(s.sightings))
	return nil
}

// GetSighting returns a sighting by id, or found=false.
func (s *SightingStore) GetSighting(_ context.Context, id model.SightingID) (model.Sighting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sighting, ok := s.sightings[id]
	return sighting, ok, nil
}

// Update overwrites an existing sighting. The caller passes the full
// updated record so counters and derived scores land together.
func (s *SightingStore) Update(_ context.Context, sighting model.Sighting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sightings[sighting.ID]; !ok {
		return fmt.Errorf("update sighting %s: %w", sighting.ID, ErrMissingRecord)
	}
	s.sightings[sighting.ID] = sighting
	return nil
}

// All returns every tracked sighting, in no particular order.
func (s *SightingStore) All(_ context.Context) ([]model.Sighting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Sighting, 0, len(s.sightings))
	for _, sighting := range s.sightings {
		out = append(out, sighting)
	}
	return out, nil
}

// Count returns the number of tracked sightings.
func (s *SightingStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sightings)
}
