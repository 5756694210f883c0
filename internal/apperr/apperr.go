package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Handlers wrap one of these sentinels into every error they
// return; the transactional wrapper selects the HTTP status by kind.
var (
	ErrValidation     = errors.New("validation error")     // Missing or invalid input fields
	ErrAuthentication = errors.New("authentication error") // Bad credentials or invalid token
	ErrOwnership      = errors.New("ownership error")      // Acting on another user's resource
	ErrNotFound       = errors.New("not found")            // Referenced entity absent
	ErrConflict       = errors.New("conflict")             // Duplicate user or review
)

// Status maps of error kinds to HTTP status codes
var statusMap = map[error]int{
	ErrValidation:     http.StatusBadRequest,
	ErrAuthentication: http.StatusUnauthorized,
	ErrOwnership:      http.StatusNotFound,
	ErrNotFound:       http.StatusNotFound,
	ErrConflict:       http.StatusConflict,
}

// E wraps a sentinel kind with a human-readable message. The message is what
// surfaces in the response envelope; the kind only drives the status code.
func E(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Message strips the kind prefix added by E, returning the bare message
func Message(err error) string {
	for kind := range statusMap {
		if errors.Is(err, kind) {
			// Trim "<kind>: " prefix if present
			prefix := kind.Error() + ": "
			if len(err.Error()) > len(prefix) && err.Error()[:len(prefix)] == prefix {
				return err.Error()[len(prefix):]
			}
		}
	}
	return err.Error() // Infrastructure errors surface as-is
}

// Status returns the HTTP status for an error; anything outside the known
// kinds is an infrastructure failure and maps to 500.
func Status(err error) int {
	for kind, status := range statusMap {
		if errors.Is(err, kind) {
			return status
		}
	}
	return http.StatusInternalServerError
}
