package errors

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesCode(t *testing.T) {
	err := NotFound("Conversation", nil)

	assert.True(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(err, "FORBIDDEN"))
	assert.False(t, Is(fmt.Errorf("plain"), "NOT_FOUND"))
	assert.False(t, Is(nil, "NOT_FOUND"))
}

func TestIsSeesThroughWrapping(t *testing.T) {
	cause := Conflict("row exists", nil)
	wrapped := fmt.Errorf("insert failed: %w", cause)

	assert.True(t, Is(wrapped, "CONFLICT"))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{Unauthorized("no token", nil), http.StatusUnauthorized},
		{Forbidden("no", nil), http.StatusForbidden},
		{NotFound("Room", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Conflict("dup", nil), http.StatusConflict},
		{Internal("boom", nil), http.StatusInternalServerError},
		{TooManyRequests("slow down", time.Second), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.Status, tt.err.Code)
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("firestore: unavailable")
	err := Internal("Failed to get conversation", cause)

	assert.ErrorIs(t, err, cause)
}
