package api

import (
	"book_review/internal/apperr" // Typed error kinds
	"book_review/internal/domain" // Importing domain models
	"book_review/internal/utils"  // Utility functions
	"errors"                      // Error inspection

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for signup
type SignupRequest struct {
	Username string `json:"username"` // Desired username
	Email    string `json:"email"`    // Email address
	Password string `json:"password"` // Plain-text password, hashed before storage
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username"` // Username
	Password string `json:"password"` // Plain-text password
}

// Signup registers a new user with a bcrypt-hashed password.
// Username and email must both be unique.
func Signup(tx *gorm.DB, c *gin.Context) (any, error) {
	var req SignupRequest // Bind JSON request to struct
	if err := c.ShouldBindJSON(&req); err != nil {
		// If binding fails, reject as validation error
		return nil, apperr.E(apperr.ErrValidation, "Invalid request body")
	}
	// Validate required fields are provided
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.E(apperr.ErrValidation, "Please provide username, email and password")
	}
	// Check for existing user with same username or email
	var existing domain.User
	err := tx.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		// Duplicate account found
		return nil, apperr.E(apperr.ErrConflict, "User already exists with this username or email")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err // Query failure
	}
	// Hash the password, never store it in plain text
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err // Hashing failure
	}
	// Create the user record
	user := domain.User{Username: req.Username, Email: req.Email, Password: string(hash)}
	if err := tx.Create(&user).Error; err != nil {
		// The unique columns are the authoritative duplicate signal; the
		// pre-check above is only a fast path and can race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.E(apperr.ErrConflict, "User already exists with this username or email")
		}
		return nil, err // Insert failure
	}
	// Return the created user's ID
	return gin.H{"message": "User created successfully", "userId": user.ID}, nil
}

// Login authenticates a user and returns a signed JWT token. Unknown
// username and wrong password produce the identical error so responses
// carry no user-enumeration signal.
func Login(jwtSecret string) TxHandler {
	return func(tx *gorm.DB, c *gin.Context) (any, error) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, reject as validation error
			return nil, apperr.E(apperr.ErrValidation, "Invalid request body")
		}
		// Validate required login credentials
		if req.Username == "" || req.Password == "" {
			return nil, apperr.E(apperr.ErrValidation, "Please provide username and password")
		}
		var user domain.User // Fetch user from database
		if err := tx.Where("username = ?", req.Username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Generic message, same as the wrong-password case
				return nil, apperr.E(apperr.ErrAuthentication, "Invalid username or password")
			}
			return nil, err // Query failure
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			return nil, apperr.E(apperr.ErrAuthentication, "Invalid username or password")
		}
		// Generate JWT token carrying user ID and username
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret)
		if err != nil {
			return nil, err // Token generation failure
		}
		// Return the token in the response
		return gin.H{"token": token}, nil
	}
}
