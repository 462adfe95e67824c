package accountsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// APIError is a failed request. The server writes it with WriteError and
// the client parses it back from the response.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// Message is human readable and stable enough for clients to match
	// on substrings.
	Message string `json:"message"`

	// Fields holds per-field validation failures, if any.
	Fields map[string]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("accounts: %d %s", e.StatusCode, e.Message)
}

// WriteError writes e as a JSON failure body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: e.Message,
		Errors:  e.Fields,
	})
}

// WithFields returns a copy of e carrying field errors.
func (e *APIError) WithFields(fields map[string]string) *APIError {
	cp := *e
	cp.Fields = maps.Clone(fields)
	return &cp
}

// NewAPIError builds an APIError with a custom message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ============================================================================
// Predefined errors
// ============================================================================

var (
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request body",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Email already in use",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Invalid email or password",
	}

	// ErrNoToken is returned when the Authorization header is missing or
	// not a bearer token.
	ErrNoToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Not authorized, no token",
	}

	// ErrTokenFailed is returned for a bad signature, malformed token or
	// expired token.
	ErrTokenFailed = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Not authorized, token failed",
	}

	// ErrPrincipalNotFound is returned when a valid token names an account
	// that no longer exists.
	ErrPrincipalNotFound = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "User not found",
	}

	ErrAccountDeactivated = &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "Your account has been deactivated",
	}

	ErrNotAdmin = &APIError{
		StatusCode: http.StatusForbidden,
		Message:    "Not authorized as admin",
	}

	ErrUserNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Message:    "User not found",
	}

	ErrCurrentPasswordIncorrect = &APIError{
		StatusCode: http.StatusUnauthorized,
		Message:    "Current password is incorrect",
	}

	ErrAlreadyActive = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "User is already active",
	}

	ErrAlreadyInactive = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "User is already inactive",
	}

	ErrSelfDeactivation = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "You cannot deactivate your own account",
	}

	ErrRouteNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Message:    "Route not found",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
			Fields:     errResp.Errors,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
