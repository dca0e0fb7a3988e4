package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"
)

// Offers is an in-memory offer table. Locations is consulted by ListForLocations.
type Offers struct {
	mu        sync.Mutex
	offers    []models.Offer
	Locations *Locations
}

// NewOffers creates an offer table holding offers
func NewOffers(locations *Locations, offers ...models.Offer) *Offers {
	return &Offers{offers: offers, Locations: locations}
}

func (s *Offers) List(_ context.Context) ([]models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.offers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Brand < out[j].Brand })
	return out, nil
}

func (s *Offers) ListForLocations(ctx context.Context, locationIDs []string) ([]models.Offer, error) {
	brands := make(map[string]struct{})
	if s.Locations != nil {
		for _, loc := range s.Locations.all() {
			if loc.Brand != nil && slices.Contains(locationIDs, loc.ID) {
				brands[strings.ToLower(*loc.Brand)] = struct{}{}
			}
		}
	}
	all, _ := s.List(ctx)
	var out []models.Offer
	for _, o := range all {
		if _, ok := brands[strings.ToLower(o.Brand)]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Offers) GetByID(_ context.Context, id int64) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.offers {
		if o.ID == id {
			offer := o
			return &offer, nil
		}
	}
	return nil, fmt.Errorf("offer not found: %w", repository.ErrNotFound)
}

func (s *Offers) Brands(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var brands []string
	for _, o := range s.offers {
		if !slices.Contains(brands, o.Brand) {
			brands = append(brands, o.Brand)
		}
	}
	sort.Strings(brands)
	return brands, nil
}

// Locations is an in-memory location table
type Locations struct {
	mu        sync.Mutex
	locations map[string]models.Location
}

// NewLocations creates a location table holding locations
func NewLocations(locations ...models.Location) *Locations {
	s := &Locations{locations: make(map[string]models.Location)}
	for _, loc := range locations {
		s.locations[loc.ID] = loc
	}
	return s
}

// Get returns a location row, for assertions
func (s *Locations) Get(id string) (models.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[id]
	return loc, ok
}

func (s *Locations) NamedIDs(_ context.Context) ([]string, error) {
	var ids []string
	for _, loc := range s.all() {
		if loc.Name != nil {
			ids = append(ids, loc.ID)
		}
	}
	return ids, nil
}

func (s *Locations) ListByBrands(_ context.Context, brands []string) ([]models.Location, error) {
	var out []models.Location
	for _, loc := range s.all() {
		if loc.Brand == nil {
			continue
		}
		for _, b := range brands {
			if strings.EqualFold(*loc.Brand, b) {
				out = append(out, loc)
				break
			}
		}
	}
	return out, nil
}

func (s *Locations) UpsertNames(_ context.Context, locations []models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loc := range locations {
		cur, ok := s.locations[loc.ID]
		if !ok {
			s.locations[loc.ID] = models.Location{ID: loc.ID, Name: loc.Name}
			continue
		}
		if cur.Name == nil {
			cur.Name = loc.Name
			s.locations[loc.ID] = cur
		}
	}
	return nil
}

func (s *Locations) Unbranded(_ context.Context) ([]models.Location, error) {
	var out []models.Location
	for _, loc := range s.all() {
		if loc.Name != nil && (loc.Brand == nil || *loc.Brand == "") {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (s *Locations) SetBrands(_ context.Context, locations []models.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loc := range locations {
		cur, ok := s.locations[loc.ID]
		if !ok || (cur.Brand != nil && *cur.Brand != "") {
			continue
		}
		cur.Brand = loc.Brand
		s.locations[loc.ID] = cur
	}
	return nil
}

func (s *Locations) all() []models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Redemptions is an in-memory redemption ledger. Redeem is serialized like the relational one.
type Redemptions struct {
	mu   sync.Mutex
	recs []models.Redemption
}

// NewRedemptions creates an empty redemption ledger
func NewRedemptions(recs ...models.Redemption) *Redemptions {
	return &Redemptions{recs: recs}
}

func (s *Redemptions) ListByUser(_ context.Context, email string) ([]models.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Redemption
	for _, r := range s.recs {
		if r.UserEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Redemptions) Redeem(_ context.Context, rec *models.Redemption, grossPoints int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	spent := 0
	for _, r := range s.recs {
		if r.UserEmail == rec.UserEmail && strings.EqualFold(r.Brand, rec.Brand) {
			spent += r.Points
		}
	}
	if grossPoints-spent < rec.Points {
		return fmt.Errorf("balance %d, cost %d: %w", grossPoints-spent, rec.Points, repository.ErrInsufficientBalance)
	}
	s.recs = append(s.recs, *rec)
	return nil
}

// Petitions is an in-memory petition counter
type Petitions struct {
	mu     sync.Mutex
	counts map[string]int
	Err    error
}

// NewPetitions creates an empty petition counter
func NewPetitions() *Petitions {
	return &Petitions{counts: make(map[string]int)}
}

func (s *Petitions) Increment(_ context.Context, locationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	s.counts[locationID]++
	return s.counts[locationID], nil
}

// LikeEvent is one recorded like history row
type LikeEvent struct {
	PhotoID string
	Email   string
	Kind    models.LikeKind
}

// History records login and like history rows
type History struct {
	mu     sync.Mutex
	Logins []string
	Likes  []LikeEvent
	Err    error
}

func (s *History) RecordLogin(_ context.Context, email string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Logins = append(s.Logins, email)
	return nil
}

func (s *History) RecordLike(_ context.Context, photoID, email string, kind models.LikeKind, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Likes = append(s.Likes, LikeEvent{PhotoID: photoID, Email: email, Kind: kind})
	return nil
}
