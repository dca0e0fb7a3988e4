package handlers

import (
	"encoding/json"
	"net/http"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/middleware"

	"github.com/rs/zerolog/log"
)

const msgOK = "OKAY"

// respond sends content with the message field set
func respond(w http.ResponseWriter, statusCode int, message string, content map[string]any) {
	body := make(map[string]any, len(content)+1)
	for k, v := range content {
		body[k] = v
	}
	body["message"] = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respond(w, statusCode, message, nil)
}

// respondAppError maps err to its status and client message, logging server errors
func respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("user_email", middleware.PayloadFrom(r.Context()).String(middleware.FieldUserEmail)).
			Msg("Request failed")
	}
	respondError(w, apperr.PublicMessage(err), status)
}

// badParameter responds 400 for a field that is present but malformed
func badParameter(w http.ResponseWriter, field string) {
	respondError(w, middleware.BadParameter(field), http.StatusBadRequest)
}
