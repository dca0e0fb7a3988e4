package places

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

const (
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"

	mapsErrorPrefix = "maps: "
)

// ErrNoName is returned when a place resolves without a name
var ErrNoName = errors.New("place has no name")

// StatusError is a non-OK answer from the place details API
type StatusError struct {
	Status     string
	HTTPStatus int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("place lookup failed: %s (http %d): %s", e.Status, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("place lookup failed: %s (http %d)", e.Status, e.HTTPStatus)
}

// Temporary reports whether the same request may succeed later
func (e *StatusError) Temporary() bool {
	if e.HTTPStatus == http.StatusTooManyRequests || e.HTTPStatus >= 500 {
		return true
	}
	return e.Status == statusOverQueryLimit || e.Status == statusUnknownError
}

// IsTransient reports whether err is worth retrying
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrNoName) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	// transport failures
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

// Client resolves place ids to display names
type Client struct {
	maps *maps.Client
}

// NewClient creates a place details client paced at requestsPerSecond.
// baseURL replaces the Google Maps host when set.
func NewClient(baseURL, apiKey string, requestsPerSecond float64) (*Client, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{
			Timeout:   10 * time.Second,
			Transport: statusTransport{base: http.DefaultTransport},
		}),
		maps.WithRateLimit(max(int(math.Ceil(requestsPerSecond)), 1)),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Client{maps: client}, nil
}

// PlaceName looks up the display name of placeID
func (c *Client) PlaceName(ctx context.Context, placeID string) (string, error) {
	result, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID: placeID,
		Fields:  []maps.PlaceDetailsFieldMask{maps.PlaceDetailsFieldMaskName},
	})
	if err != nil {
		if statusErr := parseStatusError(err); statusErr != nil {
			return "", statusErr
		}
		return "", fmt.Errorf("place lookup failed: %w", err)
	}
	if result.Name == "" {
		return "", fmt.Errorf("place %s: %w", placeID, ErrNoName)
	}
	return result.Name, nil
}

// parseStatusError recovers the API status from a "maps: STATUS - message" error
func parseStatusError(err error) *StatusError {
	rest, ok := strings.CutPrefix(err.Error(), mapsErrorPrefix)
	if !ok {
		return nil
	}
	status, message, ok := strings.Cut(rest, " - ")
	if !ok || !isStatusCode(status) {
		return nil
	}
	return &StatusError{Status: status, HTTPStatus: http.StatusOK, Message: message}
}

func isStatusCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}

// statusTransport turns non-200 responses into a StatusError.
// The maps client decodes any body as JSON and would otherwise lose the HTTP status.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Status: resp.Status, HTTPStatus: resp.StatusCode}
	}
	return resp, nil
}
