package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const payloadKey contextKey = "payload"

const maxPayloadBytes = 20 << 20

// Payload is the flat JSON object every API call carries
type Payload map[string]any

// DecodePayload decodes the request body into a Payload stored on the context
func DecodePayload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
		dec.UseNumber()

		var p Payload
		if err := dec.Decode(&p); err != nil || p == nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), payloadKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFields rejects payloads where any field is missing or an empty string
func RequireFields(fields ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PayloadFrom(r.Context())
			for _, field := range fields {
				if !p.Has(field) {
					respondError(w, BadParameter(field), http.StatusBadRequest)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PayloadFrom returns the decoded payload, empty if none was decoded
func PayloadFrom(ctx context.Context) Payload {
	p, ok := ctx.Value(payloadKey).(Payload)
	if !ok {
		return Payload{}
	}
	return p
}

// BadParameter is the validation message for a missing or malformed field
func BadParameter(field string) string {
	return "Bad required parameter: " + field
}

// Has reports whether key is present and not null or an empty string
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

// String returns the value of key rendered as a string
func (p Payload) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float parses key as a float, accepting numbers and numeric strings
func (p Payload) Float(key string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(p.String(key)), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is not a finite number", key)
	}
	return f, nil
}

// Int parses key as an integer, accepting numbers and numeric strings
func (p Payload) Int(key string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(p.String(key)))
}

// Int64 parses key as a 64-bit integer
func (p Payload) Int64(key string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(p.String(key)), 10, 64)
}

// Strings returns key as a list of strings
func (p Payload) Strings(key string) ([]string, error) {
	raw, ok := p[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must only contain strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// Bool reads an optional flag; clients send true or "True"
func (p Payload) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// OptionalString returns a pointer to key's value, nil when absent
func (p Payload) OptionalString(key string) *string {
	if _, ok := p[key]; !ok || p[key] == nil {
		return nil
	}
	s := p.String(key)
	return &s
}
