package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/labels"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"
	"photo-points-backend/internal/search"
	"photo-points-backend/internal/storage"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

const (
	// FallbackTag is stored when labels cannot be detected
	FallbackTag      = "None"
	photoContentType = "image/jpeg"
)

// PhotoService handles the photo lifecycle: upload, delete, like and unlike
type PhotoService struct {
	photos    PhotoStore
	users     UserStore
	history   HistoryStore
	blobs     BlobStore
	labels    LabelDetector
	index     SearchIndex
	notifier  LikeNotifier
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewPhotoService creates a new photo service
func NewPhotoService(
	photos PhotoStore,
	users UserStore,
	history HistoryStore,
	blobs BlobStore,
	labels LabelDetector,
	index SearchIndex,
	notifier LikeNotifier,
) *PhotoService {
	return &PhotoService{
		photos:    photos,
		users:     users,
		history:   history,
		blobs:     blobs,
		labels:    labels,
		index:     index,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// UploadRequest is a new geotagged photo
type UploadRequest struct {
	CaptureTime string
	Data        string
	Lat         float64
	Lon         float64
	LocationID  string
	Comment     string
}

// PhotoID derives the deterministic photo id from the owner id and capture time
func PhotoID(ownerUserID, captureTime string) string {
	return ownerUserID + "_" + captureTime + ".jpg"
}

// Upload stores a new photo and returns its id
func (s *PhotoService) Upload(ctx context.Context, owner *models.User, req UploadRequest) (string, error) {
	if _, err := time.Parse(models.TimestampLayout, req.CaptureTime); err != nil {
		return "", apperr.Validation(MsgInvalidCaptureTime)
	}
	takenAt, err := strconv.ParseInt(req.CaptureTime, 10, 64)
	if err != nil {
		return "", apperr.Validation(MsgInvalidCaptureTime)
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil || len(data) == 0 {
		return "", apperr.Validation(MsgInvalidPhotoData)
	}

	id := PhotoID(owner.UserID, req.CaptureTime)
	exists, err := s.photos.Exists(ctx, id)
	if err != nil {
		return "", apperr.Upstream("failed to check photo existence", err)
	}
	if exists {
		return "", apperr.Conflict(MsgDuplicatePhoto)
	}

	if err := s.blobs.Put(ctx, id, data, photoContentType); err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return "", apperr.Conflict(MsgDuplicatePhoto)
		}
		return "", apperr.Upstream("failed to store photo", err)
	}

	photo := &models.Photo{
		ID:         id,
		Owner:      owner.Email,
		Likes:      0,
		TakenAt:    takenAt,
		LatLon:     formatLatLon(req.Lat, req.Lon),
		LocationID: req.LocationID,
		Views:      0,
		Comment:    strings.TrimSpace(s.sanitizer.Sanitize(req.Comment)),
		Tags:       s.detectTags(ctx, id),
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", apperr.Conflict(MsgDuplicatePhoto)
		}
		s.undoUpload(ctx, id, false)
		return "", apperr.Upstream("failed to create photo", err)
	}
	if err := s.users.AddPhoto(ctx, owner.Email, id); err != nil {
		s.undoUpload(ctx, id, true)
		return "", apperr.Upstream("failed to add photo to user", err)
	}

	s.indexPhoto(ctx, photo)

	log.Info().
		Str("user_email", owner.Email).
		Str("photo_id", id).
		Strs("tags", photo.Tags).
		Msg("Photo uploaded")

	return id, nil
}

// undoUpload removes what a failed upload already wrote so the id can be uploaded again
func (s *PhotoService) undoUpload(ctx context.Context, id string, recordCreated bool) {
	ctx = context.WithoutCancel(ctx)
	if recordCreated {
		if err := s.photos.Delete(ctx, id); err != nil {
			log.Error().Err(err).Str("photo_id", id).Msg("Failed to remove photo record of failed upload")
		}
	}
	if err := s.blobs.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("photo_id", id).Msg("Failed to remove blob of failed upload")
	}
}

// detectTags never fails, it falls back to FallbackTag
func (s *PhotoService) detectTags(ctx context.Context, key string) []string {
	if s.labels == nil {
		return []string{FallbackTag}
	}
	names, err := s.labels.DetectLabels(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("photo_id", key).Msg("Label detection failed")
		return []string{FallbackTag}
	}
	tags := labels.Normalize(names)
	if len(tags) == 0 {
		return []string{FallbackTag}
	}
	return tags
}

// Delete removes a photo the user owns. Steps after the ownership change are best effort.
func (s *PhotoService) Delete(ctx context.Context, email, photoID string) error {
	removed, err := s.users.RemovePhoto(ctx, email, photoID)
	if err != nil {
		return apperr.Upstream("failed to remove photo from user", err)
	}
	if !removed {
		return apperr.Forbidden(MsgNotPhotoOwner)
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return apperr.Upstream("failed to delete photo", err)
	}
	if err := s.blobs.Delete(ctx, photoID); err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to delete photo blob")
	}
	if err := s.index.Upload(ctx, []search.Document{search.DeletePhoto(photoID)}); err != nil {
		log.Error().Err(err).Str("photo_id", photoID).Msg("Failed to remove photo from index")
	}

	log.Info().Str("user_email", email).Str("photo_id", photoID).Msg("Photo deleted")
	return nil
}

// Like adds the user's like to a photo and returns the new like count
func (s *PhotoService) Like(ctx context.Context, email, photoID string) (int, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return 0, err
	}
	if photo.Owner == email {
		return 0, apperr.Forbidden(MsgCannotLikeOwn)
	}

	added, err := s.users.AddLike(ctx, email, photoID)
	if err != nil {
		return 0, apperr.Upstream("failed to add like to user", err)
	}
	if !added {
		return 0, apperr.Conflict(MsgLikedAlready)
	}

	updated, err := s.photos.IncrementLikes(ctx, photoID)
	if err != nil {
		if _, undoErr := s.users.RemoveLike(ctx, email, photoID); undoErr != nil {
			log.Error().Err(undoErr).Str("photo_id", photoID).Msg("Failed to undo like")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperr.NotFound(MsgPhotoNotFound)
		}
		return 0, apperr.Upstream("failed to increment likes", err)
	}

	s.afterLikeChange(ctx, updated, email, models.LikeKindLike)
	if s.notifier != nil {
		s.notifier.PhotoLiked(updated.Owner, photoID, updated.Likes)
	}
	return updated.Likes, nil
}

// Unlike removes the user's like from a photo and returns the new like count
func (s *PhotoService) Unlike(ctx context.Context, email, photoID string) (int, error) {
	if _, err := s.getPhoto(ctx, photoID); err != nil {
		return 0, err
	}

	removed, err := s.users.RemoveLike(ctx, email, photoID)
	if err != nil {
		return 0, apperr.Upstream("failed to remove like from user", err)
	}
	if !removed {
		return 0, apperr.Conflict(MsgNotLiked)
	}

	updated, err := s.photos.DecrementLikes(ctx, photoID)
	if err != nil {
		if _, undoErr := s.users.AddLike(ctx, email, photoID); undoErr != nil {
			log.Error().Err(undoErr).Str("photo_id", photoID).Msg("Failed to undo unlike")
		}
		switch {
		case errors.Is(err, repository.ErrZeroLikes):
			return 0, apperr.BusinessRule(MsgLikeCountZero)
		case errors.Is(err, repository.ErrNotFound):
			return 0, apperr.NotFound(MsgPhotoNotFound)
		}
		return 0, apperr.Upstream("failed to decrement likes", err)
	}

	s.afterLikeChange(ctx, updated, email, models.LikeKindUnlike)
	return updated.Likes, nil
}

// Get returns a photo record with its public URL
func (s *PhotoService) Get(ctx context.Context, photoID string) (*models.Photo, error) {
	photo, err := s.getPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	photo.URL = s.blobs.URL(photo.ID)
	return photo, nil
}

func (s *PhotoService) getPhoto(ctx context.Context, photoID string) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(MsgPhotoNotFound)
		}
		return nil, apperr.Upstream("failed to get photo", err)
	}
	return photo, nil
}

// afterLikeChange records history and refreshes the index. Failures are logged only.
func (s *PhotoService) afterLikeChange(ctx context.Context, photo *models.Photo, email string, kind models.LikeKind) {
	if err := s.history.RecordLike(ctx, photo.ID, email, kind, s.now().UTC()); err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID).Str("kind", string(kind)).Msg("Failed to record like history")
	}
	s.indexPhoto(ctx, photo)
}

func (s *PhotoService) indexPhoto(ctx context.Context, photo *models.Photo) {
	doc, err := search.AddPhoto(photo)
	if err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID).Msg("Failed to build index document")
		return
	}
	if err := s.index.Upload(ctx, []search.Document{doc}); err != nil {
		log.Error().Err(err).Str("photo_id", photo.ID).Msg("Failed to update photo index")
	}
}

func formatLatLon(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
}
