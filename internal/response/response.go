package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops-service/internal/apperrors"
	"fieldops-service/internal/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Response is the standard API response envelope.
// RequestID is only filled on failures so clients can quote it in bug reports.
type Response struct {
	Success   bool        `json:"success"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// PaginatedResponse is the envelope of list endpoints
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// NormalizePage applies the list defaults: page 1, limit 20, limit at most 100
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// Success sends a success response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage sends a success response with a message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// NoContent sends a no content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends one page of a list. page and limit should already be normalized.
func Paginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Success:    true,
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

func fail(c *gin.Context, status int, code, message string, data interface{}) {
	c.JSON(status, Response{
		Success:   false,
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(logger.FieldRequestID),
	})
}

// BadRequest sends a bad request response
func BadRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, apperrors.ErrCodeBadRequest, message, nil)
}

// Unauthorized sends an unauthorized response
func Unauthorized(c *gin.Context, message string) {
	fail(c, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, message, nil)
}

// Forbidden sends a forbidden response
func Forbidden(c *gin.Context, message string) {
	fail(c, http.StatusForbidden, apperrors.ErrCodeForbidden, message, nil)
}

// NotFound sends a not found response
func NotFound(c *gin.Context, message string) {
	fail(c, http.StatusNotFound, apperrors.ErrCodeNotFound, message, nil)
}

// Conflict sends a conflict response
func Conflict(c *gin.Context, message string) {
	fail(c, http.StatusConflict, apperrors.ErrCodeConflict, message, nil)
}

// TooManyRequests sends 429 with the seconds to wait in data.retryAfter
func TooManyRequests(c *gin.Context, retryAfter int) {
	fail(c, http.StatusTooManyRequests, apperrors.ErrCodeRateLimited,
		"Rate limit exceeded. Please try again later.", gin.H{"retryAfter": retryAfter})
}

// InternalError sends an internal server error response
func InternalError(c *gin.Context, message string) {
	fail(c, http.StatusInternalServerError, apperrors.ErrCodeInternal, message, nil)
}
