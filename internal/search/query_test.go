package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundingBox(t *testing.T) {
	box := NewBoundingBox(Point{Lat: 51.5, Lon: -0.12}, 10)

	offset := 3.0 / 69 / 60 * 10 * math.Sqrt2
	assert.InDelta(t, 0.010248, offset, 1e-6)
	assert.InDelta(t, 51.5+offset, box.TopLeft.Lat, 1e-12)
	assert.InDelta(t, -0.12-offset, box.TopLeft.Lon, 1e-12)
	assert.InDelta(t, 51.5-offset, box.BottomRight.Lat, 1e-12)
	assert.InDelta(t, -0.12+offset, box.BottomRight.Lon, 1e-12)
}

func TestNewBoundingBoxZeroRadius(t *testing.T) {
	box := NewBoundingBox(Point{Lat: 40, Lon: -73}, 0)
	assert.Equal(t, Point{Lat: 40, Lon: -73}, box.TopLeft)
	assert.Equal(t, Point{Lat: 40, Lon: -73}, box.BottomRight)
	assert.Equal(t, "latlon:['40, -73', '40, -73']", box.FilterQuery(LatLonField))
}

func TestTextQuery(t *testing.T) {
	cases := []struct {
		name  string
		terms []string
		want  string
	}{
		{"no terms", nil, "matchall"},
		{"blank terms", []string{"", "  "}, "matchall"},
		{"one term", []string{"coffee"}, "(or 'coffee')"},
		{"many terms", []string{"coffee", "shoes"}, "(or 'coffee' 'shoes')"},
		{"quote escaped", []string{"o'neill"}, `(or 'o\'neill')`},
		{"backslash escaped", []string{`a\b`}, `(or 'a\\b')`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TextQuery(tc.terms))
		})
	}
}

func TestGeoQueryBuild(t *testing.T) {
	req := GeoQuery{
		Center:        Point{Lat: 1, Lon: 2},
		RadiusMinutes: 0,
		Terms:         []string{"pizza"},
		Size:          20,
		Start:         40,
		Lightweight:   true,
	}.Build()

	require.Equal(t, "(or 'pizza')", req.Query)
	assert.Equal(t, "latlon:['1, 2', '1, 2']", req.FilterQuery)
	assert.Equal(t, 20, req.Size)
	assert.Equal(t, 40, req.Start)
	assert.True(t, req.IDsOnly)
}
