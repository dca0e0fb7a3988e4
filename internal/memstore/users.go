// Package memstore provides in-memory implementations of the service stores for tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"
)

// Users is an in-memory user document store
type Users struct {
	mu    sync.Mutex
	users map[string]*models.User
	// AddPhotoErr fails AddPhoto when set
	AddPhotoErr error
}

// NewUsers creates an empty user store
func NewUsers() *Users {
	return &Users{users: make(map[string]*models.User)}
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
	}
	s.users[user.Email] = cloneUser(user)
	return nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *Users) AddSessionKey(_ context.Context, email, key string, at time.Time) error {
	return s.update(email, func(u *models.User) bool {
		if !slices.Contains(u.SessionKeys, key) {
			u.SessionKeys = append(u.SessionKeys, key)
		}
		u.LastAccessed = at
		return true
	})
}

func (s *Users) TouchSession(_ context.Context, email, key string, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || !u.HasSessionKey(key) {
		return nil, fmt.Errorf("session not found: %w", repository.ErrNotFound)
	}
	u.LastAccessed = at
	return cloneUser(u), nil
}

func (s *Users) ClearSessions(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.SessionKeys = nil
	}
	return nil
}

func (s *Users) PurgeInactive(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if len(u.SessionKeys) > 0 && u.LastAccessed.Before(before) {
			u.SessionKeys = nil
			n++
		}
	}
	return n, nil
}

func (s *Users) SetPreferences(_ context.Context, email string, prefs models.Preferences, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	u.Preferences = prefs
	if pushToken != nil {
		token := *pushToken
		u.PushToken = &token
	}
	return nil
}

func (s *Users) AddPhoto(_ context.Context, email, photoID string) error {
	if s.AddPhotoErr != nil {
		return s.AddPhotoErr
	}
	return s.update(email, func(u *models.User) bool {
		if !slices.Contains(u.Photos, photoID) {
			u.Photos = append(u.Photos, photoID)
		}
		return true
	})
}

func (s *Users) RemovePhoto(_ context.Context, email, photoID string) (bool, error) {
	return s.pull(email, func(u *models.User) *[]string { return &u.Photos }, photoID), nil
}

func (s *Users) AddLike(_ context.Context, email, photoID string) (bool, error) {
	return s.add(email, func(u *models.User) *[]string { return &u.Likes }, photoID), nil
}

func (s *Users) RemoveLike(_ context.Context, email, photoID string) (bool, error) {
	return s.pull(email, func(u *models.User) *[]string { return &u.Likes }, photoID), nil
}

func (s *Users) AddPetition(_ context.Context, email, locationID string) (bool, error) {
	return s.add(email, func(u *models.User) *[]string { return &u.PetitionedLocations }, locationID), nil
}

func (s *Users) RemovePetition(_ context.Context, email, locationID string) (bool, error) {
	return s.pull(email, func(u *models.User) *[]string { return &u.PetitionedLocations }, locationID), nil
}

func (s *Users) update(email string, fn func(*models.User) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	fn(u)
	return nil
}

func (s *Users) add(email string, field func(*models.User) *[]string, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return false
	}
	set := field(u)
	if slices.Contains(*set, value) {
		return false
	}
	*set = append(*set, value)
	return true
}

func (s *Users) pull(email string, field func(*models.User) *[]string, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return false
	}
	set := field(u)
	i := slices.Index(*set, value)
	if i < 0 {
		return false
	}
	*set = slices.Delete(*set, i, i+1)
	return true
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.SessionKeys = slices.Clone(u.SessionKeys)
	c.Photos = slices.Clone(u.Photos)
	c.Likes = slices.Clone(u.Likes)
	c.PetitionedLocations = slices.Clone(u.PetitionedLocations)
	return &c
}
