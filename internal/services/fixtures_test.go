package services

import (
	"context"
	"testing"
	"time"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/config"
	"photo-points-backend/internal/memstore"
	"photo-points-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
)

type fixture struct {
	users       *memstore.Users
	photos      *memstore.Photos
	offers      *memstore.Offers
	locations   *memstore.Locations
	redemptions *memstore.Redemptions
	petitions   *memstore.Petitions
	history     *memstore.History
	blobs       *memstore.Blobs
	labels      *memstore.Labels
	index       *memstore.Index
	views       *memstore.Views
}

func newFixture() *fixture {
	locations := memstore.NewLocations()
	return &fixture{
		users:       memstore.NewUsers(),
		photos:      memstore.NewPhotos(),
		offers:      memstore.NewOffers(locations),
		locations:   locations,
		redemptions: memstore.NewRedemptions(),
		petitions:   memstore.NewPetitions(),
		history:     &memstore.History{},
		blobs:       memstore.NewBlobs(),
		labels:      &memstore.Labels{},
		index:       memstore.NewIndex(),
		views:       &memstore.Views{},
	}
}

func (f *fixture) withOffers(offers ...models.Offer) {
	f.offers = memstore.NewOffers(f.locations, offers...)
}

func (f *fixture) withRedemptions(recs ...models.Redemption) {
	f.redemptions = memstore.NewRedemptions(recs...)
}

func (f *fixture) userService() *UserService {
	return NewUserService(f.users, f.history, config.SessionConfig{
		Secret:     "test-secret",
		Timeout:    10 * time.Minute,
		WSTokenTTL: time.Hour,
	})
}

func (f *fixture) photoService(notifier LikeNotifier) *PhotoService {
	return NewPhotoService(f.photos, f.users, f.history, f.blobs, f.labels, f.index, notifier)
}

func (f *fixture) ledger() *LedgerCalculator {
	return NewLedgerCalculator(f.offers, f.locations, f.photos, f.redemptions)
}

func (f *fixture) redemptionService() *RedemptionService {
	return NewRedemptionService(f.offers, f.photos, f.redemptions, f.ledger())
}

func (f *fixture) addUser(t *testing.T, email, userID string) *models.User {
	t.Helper()
	user := &models.User{Email: email, UserID: userID, AccountType: models.AccountTypeEmail}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) addPhoto(t *testing.T, id, owner, locationID string, likes int) {
	t.Helper()
	f.photos.Put(models.Photo{
		ID:         id,
		Owner:      owner,
		Likes:      likes,
		TakenAt:    20240102030405,
		LatLon:     "40.7, -74",
		LocationID: locationID,
	})
	require.NoError(t, f.users.AddPhoto(context.Background(), owner, id))
}

func strPtr(s string) *string {
	return &s
}

func assertAppError(t *testing.T, err error, kind apperr.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}
