package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeStartup   ErrorType = "startup"
	ErrorTypeSigning   ErrorType = "signing"
	ErrorTypeTransient ErrorType = "transient"
	ErrorTypeEndpoint  ErrorType = "endpoint"
	ErrorTypeHardBlock ErrorType = "hard_block"
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeContext   ErrorType = "context"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error represents an acquisition error with type information. Code carries
// the endpoint-reported status code (or HTTP status) when one was seen.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransient, ErrorTypeEndpoint, ErrorTypeTransport, ErrorTypeContext:
		return true
	case ErrorTypeStartup, ErrorTypeSigning, ErrorTypeHardBlock:
		return false
	default:
		return false
	}
}

// TypeOf returns the ErrorType carried by err, unwrapping as needed
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// CodeOf returns the status code carried by err, or 0 when none is present
func CodeOf(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsRetryableStatusCode checks if an HTTP status code from the in-page fetch
// indicates a retryable failure
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // fetch rejected inside the page
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504:
		return true
	case 401, 403, 404: // won't change on retry
		return false
	default:
		return statusCode >= 500
	}
}
