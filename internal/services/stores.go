package services

import (
	"context"
	"time"

	"photo-points-backend/internal/models"
	"photo-points-backend/internal/search"
)

// UserStore is the document store of user accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddSessionKey(ctx context.Context, email, key string, at time.Time) error
	TouchSession(ctx context.Context, email, key string, at time.Time) (*models.User, error)
	ClearSessions(ctx context.Context, email string) error
	PurgeInactive(ctx context.Context, before time.Time) (int64, error)
	SetPreferences(ctx context.Context, email string, prefs models.Preferences, pushToken *string) error
	AddPhoto(ctx context.Context, email, photoID string) error
	RemovePhoto(ctx context.Context, email, photoID string) (bool, error)
	AddLike(ctx context.Context, email, photoID string) (bool, error)
	RemoveLike(ctx context.Context, email, photoID string) (bool, error)
	AddPetition(ctx context.Context, email, locationID string) (bool, error)
	RemovePetition(ctx context.Context, email, locationID string) (bool, error)
}

// PhotoStore is the document store of photo records
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) (*models.Photo, error)
	DecrementLikes(ctx context.Context, id string) (*models.Photo, error)
	IncrementViews(ctx context.Context, id string) error
	ListByOwnerAtLocations(ctx context.Context, owner string, locationIDs []string) ([]models.Photo, error)
	LocationIDsByOwner(ctx context.Context, owner string) ([]string, error)
	ForEach(ctx context.Context, fn func(*models.Photo) error) error
}

// OfferStore reads brand offers
type OfferStore interface {
	List(ctx context.Context) ([]models.Offer, error)
	ListForLocations(ctx context.Context, locationIDs []string) ([]models.Offer, error)
	GetByID(ctx context.Context, id int64) (*models.Offer, error)
	Brands(ctx context.Context) ([]string, error)
}

// RedemptionStore is the append-only redemption ledger
type RedemptionStore interface {
	ListByUser(ctx context.Context, email string) ([]models.Redemption, error)
	Redeem(ctx context.Context, rec *models.Redemption, grossPoints int) error
}

// LocationStore maps place ids to names and brands
type LocationStore interface {
	NamedIDs(ctx context.Context) ([]string, error)
	ListByBrands(ctx context.Context, brands []string) ([]models.Location, error)
	UpsertNames(ctx context.Context, locations []models.Location) error
	Unbranded(ctx context.Context) ([]models.Location, error)
	SetBrands(ctx context.Context, locations []models.Location) error
}

// PetitionStore counts petitions per location
type PetitionStore interface {
	Increment(ctx context.Context, locationID string) (int, error)
}

// HistoryStore appends login and like history
type HistoryStore interface {
	RecordLogin(ctx context.Context, email string, at time.Time) error
	RecordLike(ctx context.Context, photoID, email string, kind models.LikeKind, at time.Time) error
}

// BlobStore stores photo bytes
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// LabelDetector extracts raw label names from a stored image
type LabelDetector interface {
	DetectLabels(ctx context.Context, key string) ([]string, error)
}

// SearchIndex is the photo search index
type SearchIndex interface {
	SearchPhotos(ctx context.Context, req search.Request) ([]search.Hit, error)
	Upload(ctx context.Context, docs []search.Document) error
	LocationIDs(ctx context.Context, exclude []string) ([]string, error)
	AllIDs(ctx context.Context) ([]string, error)
}

// ViewDispatcher records photo views without blocking the caller
type ViewDispatcher interface {
	Dispatch(photoIDs []string)
}

// PlaceLookup resolves place ids to display names
type PlaceLookup interface {
	PlaceName(ctx context.Context, placeID string) (string, error)
}

// PushSender delivers mobile push notifications
type PushSender interface {
	Send(ctx context.Context, deviceToken, alert string, data map[string]any) error
}
