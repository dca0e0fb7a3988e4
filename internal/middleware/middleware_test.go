package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	err error
}

func (a stubAuth) Authenticate(_ context.Context, email, key string) (*models.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	if key != "good-key" {
		return nil, apperr.Unauthenticated()
	}
	return &models.User{Email: email}, nil
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/test", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestPipeline(t *testing.T) {
	var seen *models.User
	var payload Payload
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
		payload = PayloadFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := chain(final, DecodePayload, RequireFields(FieldUserEmail, FieldSessionKey, "photo_id"), SessionAuth(stubAuth{}))

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"invalid json", `{"user_email":`, http.StatusBadRequest, "Invalid request body"},
		{"not an object", `[1,2]`, http.StatusBadRequest, "Invalid request body"},
		{"missing field", `{"user_email":"a@b.c","session_key":"good-key"}`, http.StatusBadRequest, "Bad required parameter: photo_id"},
		{"empty field", `{"user_email":"a@b.c","session_key":"good-key","photo_id":""}`, http.StatusBadRequest, "Bad required parameter: photo_id"},
		{"bad session", `{"user_email":"a@b.c","session_key":"stale","photo_id":"p1"}`, http.StatusUnauthorized, "Couldn't authenticate session"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := post(t, h, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, resp["message"])
		})
	}

	rec, _ := post(t, h, `{"user_email":"a@b.c","session_key":"good-key","photo_id":"p1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "a@b.c", seen.Email)
	assert.Equal(t, "p1", payload.String("photo_id"))
}

func TestSessionAuthHidesUpstreamErrors(t *testing.T) {
	h := chain(http.NotFoundHandler(), DecodePayload, SessionAuth(stubAuth{err: apperr.Upstream("mongo down", assert.AnError)}))

	rec, resp := post(t, h, `{"user_email":"a@b.c","session_key":"good-key"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperr.ServerErrorMessage, resp["message"])
}

func TestPayloadAccessors(t *testing.T) {
	var p Payload
	dec := json.NewDecoder(strings.NewReader(`{
		"lat": 51.5,
		"lat_str": "51.5",
		"nan": "NaN",
		"inf": "Inf",
		"neg_inf": "-infinity",
		"size": 20,
		"size_str": "20",
		"offer": 9007199254740993,
		"terms": ["coffee", "cake"],
		"empty_terms": [],
		"bad_terms": ["x", 1],
		"flag_bool": true,
		"flag_str": "True",
		"flag_off": "False",
		"nothing": null
	}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&p))

	lat, err := p.Float("lat")
	require.NoError(t, err)
	assert.Equal(t, 51.5, lat)
	lat, err = p.Float("lat_str")
	require.NoError(t, err)
	assert.Equal(t, 51.5, lat)

	size, err := p.Int("size")
	require.NoError(t, err)
	assert.Equal(t, 20, size)
	size, err = p.Int("size_str")
	require.NoError(t, err)
	assert.Equal(t, 20, size)
	_, err = p.Int("lat")
	assert.Error(t, err)
	for _, key := range []string{"nan", "inf", "neg_inf"} {
		_, err = p.Float(key)
		assert.Error(t, err, key)
	}

	offer, err := p.Int64("offer")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), offer)

	terms, err := p.Strings("terms")
	require.NoError(t, err)
	assert.Equal(t, []string{"coffee", "cake"}, terms)
	terms, err = p.Strings("empty_terms")
	require.NoError(t, err)
	assert.Empty(t, terms)
	_, err = p.Strings("bad_terms")
	assert.Error(t, err)
	_, err = p.Strings("lat")
	assert.Error(t, err)

	assert.True(t, p.Bool("flag_bool"))
	assert.True(t, p.Bool("flag_str"))
	assert.False(t, p.Bool("flag_off"))
	assert.False(t, p.Bool("missing"))

	assert.True(t, p.Has("empty_terms"))
	assert.False(t, p.Has("nothing"))
	assert.Nil(t, p.OptionalString("nothing"))
	assert.Nil(t, p.OptionalString("missing"))
	assert.Equal(t, "20", *p.OptionalString("size"))
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(4)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:5678"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1234"))

	now = now.Add(15 * time.Second)
	assert.Equal(t, http.StatusOK, request("10.0.0.1:1234"))
}

func TestIPRateLimiterDropsIdleClients(t *testing.T) {
	l := NewIPRateLimiter(60)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	assert.Len(t, l.limiters, 2)

	now = now.Add(time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 3)

	now = now.Add(limiterIdle + time.Second)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "10.0.0.3")
}
