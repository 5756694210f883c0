package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_TableTest(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", E(ErrValidation, "missing field"), http.StatusBadRequest},
		{"authentication", E(ErrAuthentication, "bad credentials"), http.StatusUnauthorized},
		{"ownership", E(ErrOwnership, "not yours"), http.StatusNotFound},
		{"not found", E(ErrNotFound, "no such book"), http.StatusNotFound},
		{"conflict", E(ErrConflict, "duplicate"), http.StatusConflict},
		{"unknown is infrastructure", errors.New("query failed"), http.StatusInternalServerError},
		{"wrapped deeper", errors.Join(errors.New("outer"), E(ErrConflict, "dup")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	// The kind prefix added by E never reaches the response envelope
	assert.Equal(t, "Rating must be 1 to 5", Message(E(ErrValidation, "Rating must be 1 to 5")))
	assert.Equal(t, "Invalid username or password", Message(E(ErrAuthentication, "Invalid username or password")))

	// Infrastructure errors surface verbatim
	assert.Equal(t, "query failed", Message(errors.New("query failed")))
}

func TestStatus_KindMatchingUsesErrorsIs(t *testing.T) {
	wrapped := E(ErrValidation, "bad input")
	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.False(t, errors.Is(wrapped, ErrConflict))
}
