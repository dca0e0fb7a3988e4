package services

// Client-facing messages. Clients match on these, so they must stay stable.
const (
	MsgUserExists          = "User already exists"
	MsgPhotoNotFound       = "PHOTO_DOESNT_EXIST"
	MsgCannotLikeOwn       = "USER_CANNOT_LIKE_OWN"
	MsgLikedAlready        = "LIKED_PHOTO_ALREADY"
	MsgNotLiked            = "USER_HASNT_LIKED"
	MsgLikeCountZero       = "LIKE_COUNT_0"
	MsgDuplicatePhoto      = "Duplicate photo detected."
	MsgNotPhotoOwner       = "User has not posted this image."
	MsgPetitionedAlready   = "User has already petitioned this location."
	MsgOfferNotFound       = "Discount for this brand doesn't exist"
	MsgInsufficientPoints  = "User doesn't have sufficient points for this offer"
	MsgNoOffers            = "There are no current offers"
	MsgNoQualifyingPhotos  = "No user photos have been posted at locations with offers."
	MsgInvalidPhotoData    = "Bad required parameter: photo_data"
	MsgInvalidCaptureTime  = "Bad required parameter: photo_capture_datetime"
	MsgInvalidSearchWindow = "Bad required parameter: search_size"
	MsgInvalidPassword     = "Bad required parameter: user_password"
)
