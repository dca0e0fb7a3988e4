package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "test-key", 1000)
	require.NoError(t, err)
	return c
}

func TestPlaceName(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/details/json", r.URL.Path)
		assert.Equal(t, "place-1", r.URL.Query().Get("placeid"))
		assert.Equal(t, "name", r.URL.Query().Get("fields"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"status":"OK","result":{"name":"Starbucks Soho"}}`)
	})

	name, err := c.PlaceName(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Equal(t, "Starbucks Soho", name)
}

func TestPlaceNameErrors(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		transient bool
	}{
		{"over query limit", http.StatusOK, `{"status":"OVER_QUERY_LIMIT"}`, true},
		{"not found", http.StatusOK, `{"status":"NOT_FOUND"}`, false},
		{"invalid request", http.StatusOK, `{"status":"INVALID_REQUEST","error_message":"bad id"}`, false},
		{"server error", http.StatusBadGateway, ``, true},
		{"throttled", http.StatusTooManyRequests, ``, true},
		{"missing name", http.StatusOK, `{"status":"OK","result":{}}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			_, err := c.PlaceName(context.Background(), "place-1")
			require.Error(t, err)
			assert.Equal(t, tc.transient, IsTransient(err))
			if tc.status != http.StatusOK {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tc.status, statusErr.HTTPStatus)
			}
		})
	}
}

func TestIsTransientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewClient(srv.URL, "k", 1000)
	require.NoError(t, err)

	_, err = c.PlaceName(context.Background(), "place-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("boom")))
}

func TestParseStatusError(t *testing.T) {
	statusErr := parseStatusError(errors.New("maps: INVALID_REQUEST - bad id"))
	require.NotNil(t, statusErr)
	assert.Equal(t, "INVALID_REQUEST", statusErr.Status)
	assert.Equal(t, "bad id", statusErr.Message)
	assert.False(t, statusErr.Temporary())

	assert.Nil(t, parseStatusError(errors.New("maps: PlaceID missing")))
	assert.Nil(t, parseStatusError(errors.New("unexpected EOF")))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "", 5)
	assert.Error(t, err)
}
