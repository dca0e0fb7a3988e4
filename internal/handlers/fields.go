package handlers

import "photo-points-backend/internal/middleware"

// Request payload fields
const (
	fieldUserEmail      = middleware.FieldUserEmail
	fieldSessionKey     = middleware.FieldSessionKey
	fieldPassword       = "user_password"
	fieldAge            = "user_age"
	fieldGender         = "user_gender"
	fieldSize           = "user_size"
	fieldName           = "user_name"
	fieldPushToken      = "push_token"
	fieldPhotoID        = "photo_id"
	fieldPhotoDate      = "photo_capture_datetime"
	fieldPhotoData      = "photo_data"
	fieldPhotoComment   = "photo_comments"
	fieldPhotoLat       = "photo_lat"
	fieldPhotoLon       = "photo_lon"
	fieldPlaceID        = "google_place_id"
	fieldUserLat        = "user_lat"
	fieldUserLon        = "user_lon"
	fieldRadius         = "user_radius"
	fieldFilterTerms    = "filter_terms"
	fieldSearchSize     = "search_size"
	fieldSearchStart    = "search_start"
	fieldLightweight    = "lightweight_return"
	fieldOfferID        = "redeem_offer_id"
	fieldUserOffersOnly = "user_offers_only"
)
