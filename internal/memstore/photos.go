package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"
)

// Photos is an in-memory photo document store
type Photos struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
	// CreateErr fails Create when set
	CreateErr error
}

// NewPhotos creates an empty photo store
func NewPhotos() *Photos {
	return &Photos{photos: make(map[string]*models.Photo)}
}

func (s *Photos) Create(_ context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.photos[photo.ID]; ok {
		return fmt.Errorf("photo %s: %w", photo.ID, repository.ErrDuplicate)
	}
	s.photos[photo.ID] = clonePhoto(photo)
	return nil
}

func (s *Photos) GetByID(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo not found: %w", repository.ErrNotFound)
	}
	return clonePhoto(p), nil
}

func (s *Photos) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.photos[id]
	return ok, nil
}

func (s *Photos) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.photos, id)
	return nil
}

func (s *Photos) IncrementLikes(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo not found: %w", repository.ErrNotFound)
	}
	p.Likes++
	return clonePhoto(p), nil
}

func (s *Photos) DecrementLikes(_ context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo not found: %w", repository.ErrNotFound)
	}
	if p.Likes <= 0 {
		return nil, fmt.Errorf("photo %s: %w", id, repository.ErrZeroLikes)
	}
	p.Likes--
	return clonePhoto(p), nil
}

func (s *Photos) IncrementViews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.photos[id]; ok {
		p.Views++
	}
	return nil
}

func (s *Photos) ListByOwnerAtLocations(_ context.Context, owner string, locationIDs []string) ([]models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Photo
	for _, p := range s.sorted() {
		if p.Owner == owner && slices.Contains(locationIDs, p.LocationID) {
			out = append(out, *clonePhoto(p))
		}
	}
	return out, nil
}

func (s *Photos) LocationIDsByOwner(_ context.Context, owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.sorted() {
		if p.Owner == owner && p.LocationID != "" && !slices.Contains(ids, p.LocationID) {
			ids = append(ids, p.LocationID)
		}
	}
	return ids, nil
}

func (s *Photos) ForEach(_ context.Context, fn func(*models.Photo) error) error {
	s.mu.Lock()
	var photos []*models.Photo
	for _, p := range s.sorted() {
		photos = append(photos, clonePhoto(p))
	}
	s.mu.Unlock()
	for _, p := range photos {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// Put stores a photo as-is, for test setup
func (s *Photos) Put(photo models.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos[photo.ID] = clonePhoto(&photo)
}

func (s *Photos) sorted() []*models.Photo {
	out := make([]*models.Photo, 0, len(s.photos))
	for _, p := range s.photos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clonePhoto(p *models.Photo) *models.Photo {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}
