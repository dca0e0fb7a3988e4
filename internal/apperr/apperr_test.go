package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("Bad required parameter: user_email"), http.StatusBadRequest},
		{BusinessRule("INSUFFICIENT_POINTS"), http.StatusBadRequest},
		{Unauthenticated(), http.StatusUnauthorized},
		{Forbidden("USER_CANNOT_LIKE_OWN"), http.StatusForbidden},
		{NotFound("PHOTO_DOESNT_EXIST"), http.StatusNotFound},
		{Conflict("LIKED_PHOTO_ALREADY"), http.StatusConflict},
		{Upstream("failed to get photo", errors.New("timeout")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("like failed: %w", Conflict("LIKED_PHOTO_ALREADY"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "LIKED_PHOTO_ALREADY", PublicMessage(err))
}

func TestPublicMessageHidesUpstreamDetail(t *testing.T) {
	err := Upstream("failed to insert redemption", errors.New("connection reset by peer"))
	assert.Equal(t, ServerErrorMessage, PublicMessage(err))
	assert.ErrorContains(t, err, "connection reset by peer")
	assert.Equal(t, ServerErrorMessage, PublicMessage(errors.New("boom")))
}
