package handlers

import (
	"net/http"
	"time"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/services"
)

// UserHandler handles account, session and profile requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// userInfo is the profile returned to its owner, without credentials
type userInfo struct {
	UserID              string    `json:"user_id"`
	AccountType         string    `json:"account_type"`
	CreatedAt           time.Time `json:"user_create_dt"`
	LastAccessed        time.Time `json:"user_last_accessed"`
	Photos              []string  `json:"user_photos"`
	Likes               []string  `json:"user_photo_likes"`
	PetitionedLocations []string  `json:"user_petitioned_locations"`
	models.Preferences
}

func newUserInfo(u *models.User) userInfo {
	return userInfo{
		UserID:              u.UserID,
		AccountType:         u.AccountType,
		CreatedAt:           u.CreatedAt,
		LastAccessed:        u.LastAccessed,
		Photos:              nonNil(u.Photos),
		Likes:               nonNil(u.Likes),
		PetitionedLocations: nonNil(u.PetitionedLocations),
		Preferences:         u.Preferences,
	}
}

func sessionContent(s *services.Session) map[string]any {
	return map[string]any{"session_key": s.SessionKey, "ws_token": s.WSToken}
}

// CreateUser handles create_new_user
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	p := middleware.PayloadFrom(r.Context())

	session, err := h.userService.SignUp(r.Context(), p.String(fieldUserEmail), p.String(fieldPassword))
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, "User created", sessionContent(session))
}

// Login handles user_session_login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	p := middleware.PayloadFrom(r.Context())

	session, err := h.userService.Login(r.Context(), p.String(fieldUserEmail), p.String(fieldPassword))
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, sessionContent(session))
}

// Logout handles user_session_leave
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.userService.Logout(r.Context(), user.Email); err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "API key destroyed", nil)
}

// SetPreferences handles set_user_preferences
func (h *UserHandler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := middleware.PayloadFrom(ctx)
	user := middleware.GetUser(ctx)

	prefs := models.Preferences{
		Age:    p.String(fieldAge),
		Gender: p.String(fieldGender),
		Size:   p.String(fieldSize),
		Name:   p.String(fieldName),
	}
	if err := h.userService.SetPreferences(ctx, user.Email, prefs, p.OptionalString(fieldPushToken)); err != nil {
		respondAppError(w, r, err)
		return
	}

	updated := *user
	updated.Preferences = prefs
	respond(w, http.StatusOK, "User preferences updated.", map[string]any{"user_info": newUserInfo(&updated)})
}

// GetPreferences handles get_user_preferences
func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	respond(w, http.StatusOK, msgOK, map[string]any{"user_info": newUserInfo(user)})
}

// GetPhotos handles get_user_photos
func (h *UserHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	message := msgOK
	if len(user.Photos) == 0 {
		message = "User has no uploaded photos"
	}
	respond(w, http.StatusOK, message, map[string]any{"user_photos": nonNil(user.Photos)})
}

// GetLikes handles get_user_likes
func (h *UserHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	message := msgOK
	if len(user.Likes) == 0 {
		message = "User has liked no photos"
	}
	respond(w, http.StatusOK, message, map[string]any{"user_likes": nonNil(user.Likes)})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
