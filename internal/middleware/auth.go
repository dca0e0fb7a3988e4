package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/models"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userKey contextKey = "user"

// Payload fields read by session authentication
const (
	FieldUserEmail  = "user_email"
	FieldSessionKey = "session_key"
)

// Authenticator checks a session key for a user
type Authenticator interface {
	Authenticate(ctx context.Context, email, sessionKey string) (*models.User, error)
}

// SessionAuth authenticates the payload's user_email and session_key and stores the user on the context
func SessionAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PayloadFrom(r.Context())

			user, err := auth.Authenticate(r.Context(), p.String(FieldUserEmail), p.String(FieldSessionKey))
			if err != nil {
				status := apperr.HTTPStatus(err)
				if status >= http.StatusInternalServerError {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("Session authentication failed")
				}
				respondError(w, apperr.PublicMessage(err), status)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user, nil on public routes
func GetUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
