package handlers

import (
	"net/http"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/services"
)

// PhotoHandler handles photo upload, deletion, likes and lookups
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// Upload handles user_upload_photo
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := middleware.PayloadFrom(ctx)

	lat, err := p.Float(fieldPhotoLat)
	if err != nil {
		badParameter(w, fieldPhotoLat)
		return
	}
	lon, err := p.Float(fieldPhotoLon)
	if err != nil {
		badParameter(w, fieldPhotoLon)
		return
	}

	id, err := h.photoService.Upload(ctx, middleware.GetUser(ctx), services.UploadRequest{
		CaptureTime: p.String(fieldPhotoDate),
		Data:        p.String(fieldPhotoData),
		Lat:         lat,
		Lon:         lon,
		LocationID:  p.String(fieldPlaceID),
		Comment:     p.String(fieldPhotoComment),
	})
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, msgOK, map[string]any{"photo_id": id})
}

// Delete handles user_delete_photo
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.GetUser(ctx)

	if err := h.photoService.Delete(ctx, user.Email, middleware.PayloadFrom(ctx).String(fieldPhotoID)); err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Photo deleted", nil)
}

// Like handles user_like_photo
func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	photoID := middleware.PayloadFrom(ctx).String(fieldPhotoID)

	likes, err := h.photoService.Like(ctx, middleware.GetUser(ctx).Email, photoID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{photoID: likes})
}

// Unlike handles user_unlike_photo
func (h *PhotoHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	photoID := middleware.PayloadFrom(ctx).String(fieldPhotoID)

	likes, err := h.photoService.Unlike(ctx, middleware.GetUser(ctx).Email, photoID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{photoID: likes})
}

// GetInfo handles get_photo_info
func (h *PhotoHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	photo, err := h.photoService.Get(ctx, middleware.PayloadFrom(ctx).String(fieldPhotoID))
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{"photo_info": photo})
}
