package utils

import (
	"errors" // Sentinel errors
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// TokenValidity is how long an issued token stays valid
const TokenValidity = 24 * time.Hour

// ErrMissingSecret is returned when no signing secret is configured
var ErrMissingSecret = errors.New("jwt signing secret is empty")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"`  // Custom claim for user ID
	Username             string `json:"username"` // Custom claim for username
	jwt.RegisteredClaims        // Standard JWT claims
}

// GenerateJWT creates a JWT token for a given user ID and username
func GenerateJWT(userID uint, username, secret string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret // Refuse to sign with an empty secret
	}
	// Set token claims
	claims := Claims{
		UserID:   userID,   // Custom claim for user ID
		Username: username, // Custom claim for username
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenValidity)), // Token expires in 24 hours
			IssuedAt:  jwt.NewNumericDate(time.Now()),                    // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret // Refuse to verify with an empty secret
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors (covers bad signature, malformed token, expiry)
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
