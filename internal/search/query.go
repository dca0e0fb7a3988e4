package search

import (
	"math"
	"strconv"
	"strings"
)

const (
	walkingSpeedMPH = 3.0
	milesPerDegree  = 69.0

	// DegreesPerMinute is the distance in degrees covered by one minute of walking
	DegreesPerMinute = walkingSpeedMPH / milesPerDegree / 60

	// LatLonField is the indexed "lat, lon" field
	LatLonField = "latlon"

	matchAll = "matchall"
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) String() string {
	return formatFloat(p.Lat) + ", " + formatFloat(p.Lon)
}

// BoundingBox is the square search area around a point.
// Longitude is not compressed by latitude, matching the stored index data.
type BoundingBox struct {
	TopLeft     Point
	BottomRight Point
}

// NewBoundingBox returns the box whose corners lie radius*sqrt(2) degrees from center along each axis
func NewBoundingBox(center Point, radiusMinutes float64) BoundingBox {
	offset := DegreesPerMinute * radiusMinutes * math.Sqrt2
	return BoundingBox{
		TopLeft:     Point{Lat: center.Lat + offset, Lon: center.Lon - offset},
		BottomRight: Point{Lat: center.Lat - offset, Lon: center.Lon + offset},
	}
}

// FilterQuery renders the box as a structured filter on field
func (b BoundingBox) FilterQuery(field string) string {
	return field + ":['" + b.TopLeft.String() + "', '" + b.BottomRight.String() + "']"
}

// TextQuery builds a structured query matching any of terms, or everything when there are none
func TextQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		quoted = append(quoted, quote(term))
	}
	if len(quoted) == 0 {
		return matchAll
	}
	return "(or " + strings.Join(quoted, " ") + ")"
}

// GeoQuery is a nearby-photo search around a point
type GeoQuery struct {
	Center        Point
	RadiusMinutes float64
	Terms         []string
	Size          int
	Start         int
	Lightweight   bool
}

// Request is a backend-neutral structured search request
type Request struct {
	Query       string
	FilterQuery string
	Size        int
	Start       int
	IDsOnly     bool
}

// Build renders the query into a structured search request
func (q GeoQuery) Build() Request {
	return Request{
		Query:       TextQuery(q.Terms),
		FilterQuery: NewBoundingBox(q.Center, q.RadiusMinutes).FilterQuery(LatLonField),
		Size:        q.Size,
		Start:       q.Start,
		IDsOnly:     q.Lightweight,
	}
}

// quote renders s as a single-quoted structured query string
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
