package services

import (
	"context"
	"errors"
	"testing"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T, f *fixture, ids ...string) {
	t.Helper()
	var docs []search.Document
	for _, id := range ids {
		doc, err := search.AddPhoto(&models.Photo{ID: id, Owner: alice, TakenAt: 20240102030405, LatLon: "40.7, -74"})
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	require.NoError(t, f.index.Upload(context.Background(), docs))
}

func TestSearch(t *testing.T) {
	f := newFixture()
	seedIndex(t, f, "p1", "p2", "p3")
	svc := NewSearchService(f.index, f.views, 100)

	hits, err := svc.Search(context.Background(), search.GeoQuery{
		Center:        search.Point{Lat: 40.7, Lon: -74},
		RadiusMinutes: 5,
		Terms:         []string{"coffee"},
		Size:          2,
		Start:         1,
	})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p2", hits[0].ID)
	assert.NotEmpty(t, hits[0].Fields)
	assert.Equal(t, []string{"p2", "p3"}, f.views.Dispatched())

	require.Len(t, f.index.Requests, 1)
	req := f.index.Requests[0]
	assert.Equal(t, "(or 'coffee')", req.Query)
	assert.False(t, req.IDsOnly)
}

func TestSearchLightweight(t *testing.T) {
	f := newFixture()
	seedIndex(t, f, "p1")
	svc := NewSearchService(f.index, f.views, 100)

	hits, err := svc.Search(context.Background(), search.GeoQuery{Size: 10, Lightweight: true})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Nil(t, hits[0].Fields)
	assert.True(t, f.index.Requests[0].IDsOnly)
}

func TestSearchEmptyPageDispatchesNothing(t *testing.T) {
	f := newFixture()
	svc := NewSearchService(f.index, f.views, 100)

	hits, err := svc.Search(context.Background(), search.GeoQuery{Size: 10})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
	assert.Empty(t, f.views.Dispatched())
}

func TestSearchValidation(t *testing.T) {
	svc := NewSearchService(newFixture().index, nil, 100)

	cases := []search.GeoQuery{
		{Size: 0},
		{Size: 10, Start: -1},
		{Size: 101},
		{Size: 10, RadiusMinutes: -1},
	}
	for _, q := range cases {
		_, err := svc.Search(context.Background(), q)
		assertAppError(t, err, apperr.KindValidation, "")
	}
}

func TestSearchIndexFailure(t *testing.T) {
	f := newFixture()
	f.index.Err = errors.New("index unavailable")

	_, err := NewSearchService(f.index, f.views, 100).Search(context.Background(), search.GeoQuery{Size: 10})
	assertAppError(t, err, apperr.KindUpstream, "")
}
