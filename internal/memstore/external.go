package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"photo-points-backend/internal/search"
	"photo-points-backend/internal/storage"
)

// Blobs is an in-memory blob store
type Blobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewBlobs creates an empty blob store
func NewBlobs() *Blobs {
	return &Blobs{objects: make(map[string][]byte)}
}

func (s *Blobs) Put(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; ok {
		return fmt.Errorf("object %s: %w", key, storage.ErrObjectExists)
	}
	s.objects[key] = slices.Clone(data)
	return nil
}

func (s *Blobs) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Blobs) URL(key string) string {
	return "https://blobs.test/" + key
}

// Has reports whether key is stored
func (s *Blobs) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Labels returns fixed labels or a fixed error
type Labels struct {
	Names []string
	Err   error
}

func (l *Labels) DetectLabels(_ context.Context, _ string) ([]string, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Names, nil
}

// Index is an in-memory search index. SearchPhotos returns every document in id order.
type Index struct {
	mu       sync.Mutex
	docs     map[string]search.Document
	Requests []search.Request
	Err      error
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{docs: make(map[string]search.Document)}
}

// Doc returns an indexed document, for assertions
func (x *Index) Doc(id string) (search.Document, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	d, ok := x.docs[id]
	return d, ok
}

// Len returns the number of indexed documents
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.docs)
}

func (x *Index) SearchPhotos(_ context.Context, req search.Request) ([]search.Hit, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.Requests = append(x.Requests, req)
	if x.Err != nil {
		return nil, x.Err
	}
	var hits []search.Hit
	for _, id := range x.ids() {
		hits = append(hits, search.Hit{ID: id, Fields: map[string][]string{"photo_id": {id}}})
	}
	if req.Start >= len(hits) {
		return nil, nil
	}
	hits = hits[req.Start:]
	if req.Size < len(hits) {
		hits = hits[:req.Size]
	}
	return hits, nil
}

func (x *Index) Upload(_ context.Context, docs []search.Document) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return x.Err
	}
	for _, d := range docs {
		if d.Type == "delete" {
			delete(x.docs, d.ID)
			continue
		}
		x.docs[d.ID] = d
	}
	return nil
}

func (x *Index) LocationIDs(_ context.Context, exclude []string) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return nil, x.Err
	}
	var ids []string
	for _, id := range x.ids() {
		loc, _ := x.docs[id].Fields["google_location_id"].(string)
		if loc == "" || slices.Contains(exclude, loc) || slices.Contains(ids, loc) {
			continue
		}
		ids = append(ids, loc)
	}
	return ids, nil
}

func (x *Index) AllIDs(_ context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.Err != nil {
		return nil, x.Err
	}
	return x.ids(), nil
}

func (x *Index) ids() []string {
	ids := make([]string, 0, len(x.docs))
	for id := range x.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Views records dispatched photo views synchronously
type Views struct {
	mu  sync.Mutex
	IDs []string
}

func (v *Views) Dispatch(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.IDs = append(v.IDs, ids...)
}

// Dispatched returns a copy of every dispatched id
func (v *Views) Dispatched() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.IDs)
}

// Places answers place lookups from a map of results
type Places struct {
	mu      sync.Mutex
	Names   map[string]string
	Errs    map[string][]error
	Lookups map[string]int
}

func (p *Places) PlaceName(_ context.Context, placeID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Lookups == nil {
		p.Lookups = make(map[string]int)
	}
	p.Lookups[placeID]++
	if errs := p.Errs[placeID]; len(errs) > 0 {
		err := errs[0]
		p.Errs[placeID] = errs[1:]
		return "", err
	}
	name, ok := p.Names[placeID]
	if !ok {
		return "", fmt.Errorf("unknown place %s", placeID)
	}
	return name, nil
}
