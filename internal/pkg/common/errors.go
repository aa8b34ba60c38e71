package common

import (
	"net/http"
)

// ErrorResponse is the JSON error body returned by every edge endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CustomError carries an error code and HTTP status alongside the message.
type CustomError struct {
	Code    string
	Message string
	Err     error
	Status  int
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewError creates a new CustomError.
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError marks a request-validation failure.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError creates a new validation error.
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// Error codes shared between client and edge responses.
const (
	// Client errors (4xx)
	ErrCodeInvalidRequest    = "INVALID_REQUEST"     // 400
	ErrCodeUnauthorized      = "UNAUTHORIZED"        // 401
	ErrCodeForbidden         = "FORBIDDEN"           // 403
	ErrCodeNotFound          = "NOT_FOUND"           // 404
	ErrCodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"   // 413
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"     // 408
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED" // 429

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeGenerationFailed   = "GENERATION_FAILED"   // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// Predefined errors.
var (
	ErrPayloadTooLarge   = NewError(ErrCodePayloadTooLarge, "Payload too large", http.StatusRequestEntityTooLarge, nil)
	ErrRateLimitExceeded = NewError(ErrCodeRateLimitExceeded, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests, nil)

	ErrInternalError    = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrGenerationFailed = NewError(ErrCodeGenerationFailed, "Generation failed. Please try again.", http.StatusInternalServerError, nil)

	ErrCacheFull     = NewError("CACHE_FULL", "Cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled = NewError("CACHE_DISABLED", "Cache is disabled", http.StatusServiceUnavailable, nil)
)
