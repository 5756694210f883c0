package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signWithExpiry builds a token whose validity window can be placed anywhere
// relative to now, to exercise the expiry boundary.
func signWithExpiry(t *testing.T, secret string, issuedAt, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID:   42,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestGenerateJWT_Roundtrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT(42, "alice", secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	// Validity window is 24 hours from issuance
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, TokenValidity, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT(1, "alice", "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseJWT_Failures(t *testing.T) {
	secret := "test-secret"
	valid, err := GenerateJWT(1, "alice", secret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other-secret"},
		{"malformed token", "not.a.jwt", secret},
		{"empty token", "", secret},
		{"empty secret", valid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

func TestParseJWT_ExpiryBoundary(t *testing.T) {
	secret := "test-secret"
	now := time.Now()

	// Issued 23h59m ago: still inside the 24h window
	fresh := signWithExpiry(t, secret, now.Add(-23*time.Hour-59*time.Minute), now.Add(time.Minute))
	claims, err := ParseJWT(fresh, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	// Issued 24h01m ago: past expiry, rejected
	stale := signWithExpiry(t, secret, now.Add(-24*time.Hour-time.Minute), now.Add(-time.Minute))
	_, err = ParseJWT(stale, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
