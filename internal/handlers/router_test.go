package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photo-points-backend/internal/config"
	"photo-points-backend/internal/memstore"
	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	server    *httptest.Server
	users     *memstore.Users
	locations *memstore.Locations
	offers    *memstore.Offers
	hub       *services.WSHub
}

func newTestAPI(t *testing.T, offers ...models.Offer) *testAPI {
	t.Helper()
	users := memstore.NewUsers()
	photos := memstore.NewPhotos()
	locations := memstore.NewLocations()
	offerStore := memstore.NewOffers(locations, offers...)
	redemptions := memstore.NewRedemptions()
	history := &memstore.History{}
	index := memstore.NewIndex()
	hub := services.NewWSHub()

	userService := services.NewUserService(users, history, config.SessionConfig{
		Secret:     "test-secret",
		Timeout:    10 * time.Minute,
		WSTokenTTL: time.Hour,
	})
	ledger := services.NewLedgerCalculator(offerStore, locations, photos, redemptions)

	router := NewRouter(Dependencies{
		Users: userService,
		Photos: services.NewPhotoService(photos, users, history, memstore.NewBlobs(),
			&memstore.Labels{Names: []string{"Coffee"}}, index, services.NewNotifier(hub, nil, users)),
		Search:      services.NewSearchService(index, &memstore.Views{}, 100),
		Ledger:      ledger,
		Redemptions: services.NewRedemptionService(offerStore, photos, redemptions, ledger),
		Petitions:   services.NewPetitionService(users, memstore.NewPetitions()),
		Hub:         hub,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &testAPI{server: srv, users: users, locations: locations, offers: offerStore, hub: hub}
}

func (a *testAPI) call(t *testing.T, name string, payload map[string]any) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(a.server.URL+"/api/v1/"+name, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Contains(t, out, "message")
	return resp.StatusCode, out
}

type client struct {
	email      string
	sessionKey string
	wsToken    string
}

func (c client) with(fields map[string]any) map[string]any {
	out := map[string]any{"user_email": c.email, "session_key": c.sessionKey}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (a *testAPI) signUp(t *testing.T, email string) client {
	t.Helper()
	status, resp := a.call(t, "create_new_user", map[string]any{"user_email": email, "user_password": "hunter2"})
	require.Equal(t, http.StatusCreated, status)
	return client{email: email, sessionKey: resp["session_key"].(string), wsToken: resp["ws_token"].(string)}
}

func (a *testAPI) upload(t *testing.T, c client, captureTime, placeID string) string {
	t.Helper()
	status, resp := a.call(t, "user_upload_photo", c.with(map[string]any{
		"photo_capture_datetime": captureTime,
		"photo_data":             base64.StdEncoding.EncodeToString([]byte("jpeg")),
		"photo_lat":              "51.5072",
		"photo_lon":              -0.1276,
		"google_place_id":        placeID,
		"photo_comments":         "flat white",
	}))
	require.Equal(t, http.StatusCreated, status, resp["message"])
	return resp["photo_id"].(string)
}

func TestAccountLifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp(t, "alice@example.com")

	status, resp := api.call(t, "create_new_user", map[string]any{"user_email": "alice@example.com", "user_password": "x"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, services.MsgUserExists, resp["message"])

	status, resp = api.call(t, "user_session_login", map[string]any{"user_email": "alice@example.com", "user_password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Couldn't authenticate session", resp["message"])

	status, resp = api.call(t, "user_session_login", map[string]any{"user_email": "alice@example.com", "user_password": "hunter2"})
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, alice.sessionKey, resp["session_key"])

	status, resp = api.call(t, "set_user_preferences", alice.with(map[string]any{
		"user_age": 31, "user_gender": "F", "user_size": "M", "user_name": "Alice",
	}))
	require.Equal(t, http.StatusOK, status)
	info := resp["user_info"].(map[string]any)
	assert.Equal(t, "Alice", info["user_name"])
	assert.Equal(t, "31", info["user_age"])

	status, resp = api.call(t, "get_user_preferences", alice.with(nil))
	require.Equal(t, http.StatusOK, status)
	info = resp["user_info"].(map[string]any)
	assert.Equal(t, "Alice", info["user_name"])
	assert.NotContains(t, info, "user_email")
	assert.NotContains(t, info, "user_password")
	assert.NotContains(t, info, "user_session_keys")

	status, resp = api.call(t, "get_user_photos", alice.with(nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User has no uploaded photos", resp["message"])
	assert.Equal(t, []any{}, resp["user_photos"])

	status, _ = api.call(t, "user_session_leave", alice.with(nil))
	require.Equal(t, http.StatusOK, status)

	status, _ = api.call(t, "get_user_likes", alice.with(nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRequiredFields(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp(t, "alice@example.com")

	status, resp := api.call(t, "user_like_photo", alice.with(map[string]any{"photo_id": ""}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bad required parameter: photo_id", resp["message"])

	status, resp = api.call(t, "user_like_photo", map[string]any{"photo_id": "p1", "user_email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bad required parameter: session_key", resp["message"])

	status, resp = api.call(t, "search_photos", alice.with(map[string]any{
		"user_lat": "north", "user_lon": 0, "user_radius": 5, "filter_terms": []string{}, "search_size": 10, "search_start": 0,
	}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bad required parameter: user_lat", resp["message"])
}

func TestPhotoLikesAndPoints(t *testing.T) {
	api := newTestAPI(t, models.Offer{ID: 7, Brand: "Starbucks", PointsRequired: 2, Code: "LATTE50"})
	alice := api.signUp(t, "alice@example.com")
	bob := api.signUp(t, "bob@example.com")
	carol := api.signUp(t, "carol@example.com")

	name, brand := "Starbucks Soho", "Starbucks"
	require.NoError(t, api.locations.UpsertNames(context.Background(), []models.Location{{ID: "place-1", Name: &name}}))
	require.NoError(t, api.locations.SetBrands(context.Background(), []models.Location{{ID: "place-1", Brand: &brand}}))

	status, resp := api.call(t, "get_user_points", alice.with(nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.MsgNoQualifyingPhotos, resp["message"])

	photoID := api.upload(t, alice, "20240102030405", "place-1")
	assert.True(t, strings.HasSuffix(photoID, "_20240102030405.jpg"))

	status, resp = api.call(t, "user_upload_photo", alice.with(map[string]any{
		"photo_capture_datetime": "20240102030405",
		"photo_data":             base64.StdEncoding.EncodeToString([]byte("jpeg")),
		"photo_lat":              1, "photo_lon": 1, "google_place_id": "place-1",
	}))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, services.MsgDuplicatePhoto, resp["message"])

	status, resp = api.call(t, "user_like_photo", alice.with(map[string]any{"photo_id": photoID}))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, services.MsgCannotLikeOwn, resp["message"])

	for _, c := range []client{bob, carol} {
		status, resp = api.call(t, "user_like_photo", c.with(map[string]any{"photo_id": photoID}))
		require.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, float64(2), resp[photoID])

	status, _ = api.call(t, "user_like_photo", bob.with(map[string]any{"photo_id": photoID}))
	assert.Equal(t, http.StatusConflict, status)

	status, resp = api.call(t, "get_photo_info", bob.with(map[string]any{"photo_id": photoID}))
	require.Equal(t, http.StatusOK, status)
	info := resp["photo_info"].(map[string]any)
	assert.Equal(t, float64(2), info["photo_likes"])
	assert.Equal(t, []any{"coffee"}, info["photo_tags"])
	assert.Equal(t, "51.5072, -0.1276", info["latlon"])
	assert.Equal(t, "https://blobs.test/"+photoID, info["photo_url"])

	status, resp = api.call(t, "get_user_points", alice.with(nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"starbucks": float64(2)}, resp["user_points"])

	status, resp = api.call(t, "get_current_offers", alice.with(map[string]any{"user_offers_only": "True"}))
	require.Equal(t, http.StatusOK, status)
	offers := resp["current_offers"].([]any)
	require.Len(t, offers, 1)
	assert.NotContains(t, offers[0].(map[string]any), "discount_code")

	status, resp = api.call(t, "redeem_offer", alice.with(map[string]any{"redeem_offer_id": "7"}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LATTE50", resp["discount_code"])
	assert.Equal(t, float64(7), resp["offer_id"])

	status, resp = api.call(t, "redeem_offer", alice.with(map[string]any{"redeem_offer_id": 7}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.MsgInsufficientPoints, resp["message"])

	status, resp = api.call(t, "redeem_offer", alice.with(map[string]any{"redeem_offer_id": 99}))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.MsgOfferNotFound, resp["message"])

	status, resp = api.call(t, "user_unlike_photo", bob.with(map[string]any{"photo_id": photoID}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), resp[photoID])

	status, _ = api.call(t, "user_delete_photo", bob.with(map[string]any{"photo_id": photoID}))
	assert.Equal(t, http.StatusForbidden, status)

	status, resp = api.call(t, "user_delete_photo", alice.with(map[string]any{"photo_id": photoID}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Photo deleted", resp["message"])

	status, resp = api.call(t, "get_photo_info", bob.with(map[string]any{"photo_id": photoID}))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.MsgPhotoNotFound, resp["message"])
}

func TestSearchAndPetition(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp(t, "alice@example.com")
	photoID := api.upload(t, alice, "20240102030405", "place-1")

	search := func(extra map[string]any) []any {
		payload := alice.with(map[string]any{
			"user_lat": 51.5, "user_lon": -0.12, "user_radius": 10,
			"filter_terms": []string{}, "search_size": 10, "search_start": 0,
		})
		for k, v := range extra {
			payload[k] = v
		}
		status, resp := api.call(t, "search_photos", payload)
		require.Equal(t, http.StatusOK, status, resp["message"])
		return resp["photos"].([]any)
	}

	photos := search(nil)
	require.Len(t, photos, 1)
	assert.Equal(t, photoID, photos[0].(map[string]any)["id"])
	assert.Contains(t, photos[0].(map[string]any), "fields")

	photos = search(map[string]any{"lightweight_return": "True"})
	require.Len(t, photos, 1)
	assert.Equal(t, map[string]any{"id": photoID}, photos[0])

	for field, value := range map[string]any{"user_lat": "NaN", "user_lon": "Inf", "user_radius": "-Inf"} {
		payload := alice.with(map[string]any{
			"user_lat": 51.5, "user_lon": -0.12, "user_radius": 10,
			"filter_terms": []string{}, "search_size": 10, "search_start": 0,
		})
		payload[field] = value
		status, resp := api.call(t, "search_photos", payload)
		assert.Equal(t, http.StatusBadRequest, status, field)
		assert.Equal(t, middleware.BadParameter(field), resp["message"])
	}

	status, resp := api.call(t, "user_submit_petition", alice.with(map[string]any{"google_place_id": "place-9"}))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", resp["place-9"])

	status, resp = api.call(t, "user_submit_petition", alice.with(map[string]any{"google_place_id": "place-9"}))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, services.MsgPetitionedAlready, resp["message"])
}

func TestWebSocketLikeNotification(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp(t, "alice@example.com")
	bob := api.signUp(t, "bob@example.com")
	photoID := api.upload(t, alice, "20240102030405", "place-1")

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws?token=" + alice.wsToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() services.WSMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg services.WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, services.WSTypeConnected, read().Type)

	require.NoError(t, conn.WriteJSON(services.WSMessage{Type: "ping"}))
	assert.Equal(t, services.WSTypePong, read().Type)

	status, _ := api.call(t, "user_like_photo", bob.with(map[string]any{"photo_id": photoID}))
	require.Equal(t, http.StatusOK, status)

	msg := read()
	assert.Equal(t, services.WSTypePhotoLiked, msg.Type)
	assert.Equal(t, photoID, msg.PhotoID)
	require.NotNil(t, msg.Likes)
	assert.Equal(t, 1, *msg.Likes)
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.server.URL + "/ws?token=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	resp, err := http.Get(api.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
