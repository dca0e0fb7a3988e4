package models

import (
	"strconv"
	"time"
)

// AccountTypeEmail is the only account type issued by sign-up
const AccountTypeEmail = "email"

// TimestampLayout is the layout of capture timestamps (YYYYMMDDhhmmss)
const TimestampLayout = "20060102150405"

// User represents an account in the document store, keyed by email
type User struct {
	Email               string    `bson:"_id" json:"user_email"`
	Password            string    `bson:"user_password" json:"-"`
	CreatedAt           time.Time `bson:"user_create_dt" json:"user_create_dt"`
	AccountType         string    `bson:"account_type" json:"account_type"`
	UserID              string    `bson:"user_id" json:"user_id"`
	LastAccessed        time.Time `bson:"user_last_accessed" json:"user_last_accessed"`
	SessionKeys         []string  `bson:"user_session_keys,omitempty" json:"-"`
	Photos              []string  `bson:"user_photos,omitempty" json:"user_photos,omitempty"`
	Likes               []string  `bson:"user_photo_likes,omitempty" json:"user_photo_likes,omitempty"`
	PetitionedLocations []string  `bson:"user_petitioned_locations,omitempty" json:"user_petitioned_locations,omitempty"`
	Preferences         `bson:",inline"`
	PushToken           *string `bson:"push_token,omitempty" json:"-"`
}

// Preferences holds the optional profile attributes of a user
type Preferences struct {
	Age    string `bson:"user_age,omitempty" json:"user_age,omitempty"`
	Gender string `bson:"user_gender,omitempty" json:"user_gender,omitempty"`
	Size   string `bson:"user_size,omitempty" json:"user_size,omitempty"`
	Name   string `bson:"user_name,omitempty" json:"user_name,omitempty"`
}

// HasSessionKey reports whether key is one of the user's live session keys
func (u *User) HasSessionKey(key string) bool {
	for _, k := range u.SessionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Photo represents an uploaded photo record
type Photo struct {
	ID         string   `bson:"_id" json:"photo_id"`
	Owner      string   `bson:"photo_owner" json:"photo_owner"`
	Likes      int      `bson:"photo_likes" json:"photo_likes"`
	TakenAt    int64    `bson:"photo_taken_dt" json:"photo_taken_dt"`
	LatLon     string   `bson:"latlon" json:"latlon"`
	LocationID string   `bson:"google_location_id" json:"google_location_id"`
	Views      int      `bson:"photo_views" json:"photo_views"`
	Comment    string   `bson:"photo_comments,omitempty" json:"photo_comments,omitempty"`
	Tags       []string `bson:"photo_tags" json:"photo_tags"`
	// URL is resolved from the blob store on read
	URL string `bson:"-" json:"photo_url,omitempty"`
}

// TakenTime parses the capture timestamp
func (p *Photo) TakenTime() (time.Time, error) {
	return time.Parse(TimestampLayout, strconv.FormatInt(p.TakenAt, 10))
}

// Offer represents a brand discount that can be bought with points
type Offer struct {
	ID             int64   `json:"offer_id"`
	Brand          string  `json:"brand"`
	BrandLogoURL   *string `json:"brand_logo_url,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	PointsRequired int     `json:"discount_points_req"`
	Code           string  `json:"discount_code"`
}

// Redemption is an append-only record of points spent on a brand
type Redemption struct {
	ID         string    `json:"redemption_id"`
	UserEmail  string    `json:"user_email"`
	Brand      string    `json:"brand"`
	Points     int       `json:"redeemed_points"`
	RedeemedAt time.Time `json:"redemption_dt"`
}

// Location maps a place id to a display name and an optional brand
type Location struct {
	ID    string  `json:"google_location_id"`
	Name  *string `json:"location_name,omitempty"`
	Brand *string `json:"location_brand,omitempty"`
}

// LikeKind distinguishes like and unlike history rows
type LikeKind string

const (
	LikeKindLike   LikeKind = "like"
	LikeKindUnlike LikeKind = "unlike"
)
