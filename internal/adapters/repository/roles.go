package repository

import (
	"context"
	"sync"

	"github.com/spotline/spotline/internal/domain/model"
)

// RoleStore tracks which users hold the moderator role.
type RoleStore struct {
	mu         sync.RWMutex
	moderators map[model.UserID]struct{}
}

// NewRoleStore creates an empty role store.
func NewRoleStore() *RoleStore {
	return &RoleStore{
		moderators: make(map[model.UserID]struct{}),
	}
}

// GrantModerator marks a user as a moderator.
func (s *RoleStore) GrantModerator(_ context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moderators[userID] = struct{}{}
	return nil
}

// RevokeModerator removes a user's moderator role.
func (s *RoleStore) RevokeModerator(_ context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.moderators, userID)
	return nil
}

// IsModerator reports whether the user holds the moderator role.
func (s *RoleStore) IsModerator(_ context.Context, userID model.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.moderators[userID]
	return ok, nil
}
