// Package apperrors는 서비스 공통 에러 타입과 에러 코드를 제공합니다.
package apperrors

import "net/http"

// Standard error codes for HTTP responses
const (
	// ErrCodeNotFound indicates the requested resource was not found
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeAlreadyExists indicates the resource already exists
	ErrCodeAlreadyExists = "ALREADY_EXISTS"

	// ErrCodeValidation indicates a validation error in the request
	ErrCodeValidation = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an internal server error
	ErrCodeInternal = "INTERNAL_ERROR"

	// ErrCodeUnauthorized indicates the request lacks valid authentication
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// ErrCodeForbidden indicates the user doesn't have permission
	ErrCodeForbidden = "FORBIDDEN"

	// ErrCodeBadRequest indicates a malformed or invalid request
	ErrCodeBadRequest = "BAD_REQUEST"

	// ErrCodeConflict indicates a conflict with the current state
	ErrCodeConflict = "CONFLICT"

	// ErrCodeRateLimited indicates the caller exceeded the request budget
	ErrCodeRateLimited = "RATE_LIMITED"

	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeAlreadyExists:      http.StatusConflict,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for the given error code.
// Returns 500 if the code is not recognized.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
