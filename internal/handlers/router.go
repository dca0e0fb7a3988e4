package handlers

import (
	"context"
	"net/http"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the services the API is served from
type Dependencies struct {
	Users              *services.UserService
	Photos             *services.PhotoService
	Search             *services.SearchService
	Ledger             *services.LedgerCalculator
	Redemptions        *services.RedemptionService
	Petitions          *services.PetitionService
	Hub                *services.WSHub
	RateLimitPerMinute int
	// Ready reports backing store health for /healthz; nil means always ready
	Ready func(ctx context.Context) error
}

// NewRouter builds the HTTP API
func NewRouter(deps Dependencies) http.Handler {
	userHandler := NewUserHandler(deps.Users)
	photoHandler := NewPhotoHandler(deps.Photos)
	searchHandler := NewSearchHandler(deps.Search)
	offerHandler := NewOfferHandler(deps.Ledger, deps.Redemptions)
	petitionHandler := NewPetitionHandler(deps.Petitions)
	wsHandler := NewWebSocketHandler(deps.Hub, deps.Users)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(r.Context()); err != nil {
				respondError(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		respond(w, http.StatusOK, msgOK, nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimitPerMinute > 0 {
			r.Use(middleware.NewIPRateLimiter(deps.RateLimitPerMinute).Middleware)
		}
		r.Use(middleware.DecodePayload)

		// Public routes
		public := func(name string, h http.HandlerFunc, fields ...string) {
			r.With(middleware.RequireFields(fields...)).Post("/"+name, h)
		}
		public("create_new_user", userHandler.CreateUser, fieldUserEmail, fieldPassword)
		public("user_session_login", userHandler.Login, fieldUserEmail, fieldPassword)

		// Protected routes
		auth := middleware.SessionAuth(deps.Users)
		protected := func(name string, h http.HandlerFunc, fields ...string) {
			required := append([]string{fieldUserEmail, fieldSessionKey}, fields...)
			r.With(middleware.RequireFields(required...), auth).Post("/"+name, h)
		}
		protected("user_session_leave", userHandler.Logout)
		protected("set_user_preferences", userHandler.SetPreferences, fieldAge, fieldGender, fieldSize, fieldName)
		protected("get_user_preferences", userHandler.GetPreferences)
		protected("get_user_photos", userHandler.GetPhotos)
		protected("get_user_likes", userHandler.GetLikes)
		protected("user_like_photo", photoHandler.Like, fieldPhotoID)
		protected("user_unlike_photo", photoHandler.Unlike, fieldPhotoID)
		protected("user_upload_photo", photoHandler.Upload,
			fieldPhotoDate, fieldPhotoData, fieldPhotoLat, fieldPhotoLon, fieldPlaceID)
		protected("user_delete_photo", photoHandler.Delete, fieldPhotoID)
		protected("user_submit_petition", petitionHandler.Submit, fieldPlaceID)
		protected("search_photos", searchHandler.Search,
			fieldUserLat, fieldUserLon, fieldRadius, fieldFilterTerms, fieldSearchSize, fieldSearchStart)
		protected("get_photo_info", photoHandler.GetInfo, fieldPhotoID)
		protected("get_user_points", offerHandler.Points)
		protected("get_current_offers", offerHandler.CurrentOffers)
		protected("redeem_offer", offerHandler.Redeem, fieldOfferID)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
