package services

import (
	"context"
	"testing"

	"photo-points-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrossPoints(t *testing.T) {
	locationBrand := map[string]string{"loc-1": "starbucks", "loc-2": "starbucks", "loc-3": "nike"}
	photos := []models.Photo{
		{ID: "a", LocationID: "loc-1", Likes: 3},
		{ID: "b", LocationID: "loc-2", Likes: 4},
		{ID: "c", LocationID: "loc-3", Likes: 0},
		{ID: "d", LocationID: "elsewhere", Likes: 10},
	}

	points := grossPoints(locationBrand, photos)
	assert.Equal(t, map[string]int{"starbucks": 7, "nike": 0}, points)
}

func TestApplyRedemptions(t *testing.T) {
	gross := map[string]int{"starbucks": 7, "nike": 2}
	recs := []models.Redemption{
		{Brand: "Starbucks", Points: 5},
		{Brand: "Adidas", Points: 3},
	}

	net := applyRedemptions(gross, recs)
	assert.Equal(t, map[string]int{"starbucks": 2, "nike": 2}, net)
	assert.Equal(t, 7, gross["starbucks"], "gross must not be modified")
}

func TestLowerUnique(t *testing.T) {
	assert.Equal(t, []string{"starbucks", "nike"}, lowerUnique([]string{"Starbucks", "", "NIKE", "starbucks"}))
}

func TestLedgerBalance(t *testing.T) {
	var nilLedger *Ledger
	assert.Zero(t, nilLedger.Balance("starbucks"))

	l := &Ledger{Status: LedgerPoints, Points: map[string]int{"starbucks": 4}}
	assert.Equal(t, 4, l.Balance("StarBucks"))
	assert.Zero(t, l.Balance("nike"))
}

func seedBrandedPhotos(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.locations.UpsertNames(context.Background(), []models.Location{
		{ID: "loc-1", Name: strPtr("Starbucks Soho")},
		{ID: "loc-2", Name: strPtr("STARBUCKS Midtown")},
		{ID: "loc-3", Name: strPtr("Corner Deli")},
	}))
	require.NoError(t, f.locations.SetBrands(context.Background(), []models.Location{
		{ID: "loc-1", Brand: strPtr("Starbucks")},
		{ID: "loc-2", Brand: strPtr("starbucks")},
	}))

	f.addUser(t, alice, "user_alice")
	f.addPhoto(t, "p1", alice, "loc-1", 3)
	f.addPhoto(t, "p2", alice, "loc-2", 4)
	f.addPhoto(t, "p3", alice, "loc-3", 10)
}

func TestCalculate(t *testing.T) {
	t.Run("no offers", func(t *testing.T) {
		f := newFixture()
		seedBrandedPhotos(t, f)

		ledger, err := f.ledger().Calculate(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, LedgerNoOffers, ledger.Status)
	})

	t.Run("no qualifying photos", func(t *testing.T) {
		f := newFixture()
		seedBrandedPhotos(t, f)
		f.withOffers(models.Offer{ID: 1, Brand: "Nike", PointsRequired: 1})

		ledger, err := f.ledger().Calculate(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, LedgerNoQualifyingPhotos, ledger.Status)
	})

	t.Run("points net of redemptions", func(t *testing.T) {
		f := newFixture()
		seedBrandedPhotos(t, f)
		f.withOffers(models.Offer{ID: 1, Brand: "Starbucks", PointsRequired: 5})
		f.withRedemptions(models.Redemption{UserEmail: alice, Brand: "STARBUCKS", Points: 5})

		ledger, err := f.ledger().Calculate(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, LedgerPoints, ledger.Status)
		assert.Equal(t, map[string]int{"starbucks": 2}, ledger.Points)

		gross, err := f.ledger().Gross(context.Background(), alice)
		require.NoError(t, err)
		assert.Equal(t, 7, gross.Balance("Starbucks"))
	})

	t.Run("other users photos do not count", func(t *testing.T) {
		f := newFixture()
		seedBrandedPhotos(t, f)
		f.withOffers(models.Offer{ID: 1, Brand: "Starbucks", PointsRequired: 5})
		f.addUser(t, bob, "user_bob")

		ledger, err := f.ledger().Calculate(context.Background(), bob)
		require.NoError(t, err)
		assert.Equal(t, LedgerNoQualifyingPhotos, ledger.Status)
	})
}
