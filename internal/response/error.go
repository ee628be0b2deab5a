package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"fieldops-service/internal/apperrors"
)

// AppError is an alias for convenience
type AppError = apperrors.AppError

// Sentinel errors for fieldops-service
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrUserInactive        = errors.New("user is deactivated")
	ErrInvalidRole         = errors.New("invalid role")
	ErrSelfModification    = errors.New("cannot modify own account")
	ErrLastAdmin           = errors.New("cannot remove last admin")
	ErrActivityNotFound    = errors.New("activity not found")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTab          = errors.New("invalid tab")
	ErrTabForbidden        = errors.New("tab not permitted")
	ErrActionForbidden     = errors.New("action not permitted")
	ErrAuditLogNotFound    = errors.New("audit log not found")
)

// NewNotFoundError creates a not found error
func NewNotFoundError(message, details string) *AppError {
	return apperrors.NotFound(message, details)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message, details string) *AppError {
	return apperrors.Forbidden(message, details)
}

// NewAlreadyExistsError creates an already exists error
func NewAlreadyExistsError(message, details string) *AppError {
	return apperrors.AlreadyExists(message, details)
}

// NewValidationError creates a validation error
func NewValidationError(message, details string) *AppError {
	return apperrors.Validation(message, details)
}

// NewConflictError creates a conflict error
func NewConflictError(message, details string) *AppError {
	return apperrors.Conflict(message, details)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message, details string) *AppError {
	return apperrors.Unauthorized(message, details)
}

// NewInternalError creates an internal error
func NewInternalError(message, details string) *AppError {
	return apperrors.Internal(message, details)
}

// HandleServiceError handles service layer errors and sends appropriate HTTP responses
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		NotFound(c, "User not found")
	case errors.Is(err, ErrUserAlreadyExists):
		Conflict(c, "User already exists")
	case errors.Is(err, ErrUserInactive):
		Forbidden(c, "User is deactivated")
	case errors.Is(err, ErrInvalidRole):
		BadRequest(c, "Invalid role")
	case errors.Is(err, ErrSelfModification):
		Forbidden(c, "Cannot modify own account")
	case errors.Is(err, ErrLastAdmin):
		Conflict(c, "Cannot remove the last admin")
	case errors.Is(err, ErrActivityNotFound):
		NotFound(c, "Activity not found")
	case errors.Is(err, ErrInvalidActivityType):
		BadRequest(c, "Invalid activity type")
	case errors.Is(err, ErrInvalidStatus):
		BadRequest(c, "Invalid status")
	case errors.Is(err, ErrInvalidTab):
		BadRequest(c, "Invalid tab")
	case errors.Is(err, ErrTabForbidden):
		Forbidden(c, "You do not have permission to view this section")
	case errors.Is(err, ErrActionForbidden):
		Forbidden(c, "You do not have permission to perform this action")
	case errors.Is(err, ErrAuditLogNotFound):
		NotFound(c, "Audit log not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "Resource not found")
	default:
		if appErr := apperrors.AsAppError(err); appErr != nil {
			Error(c, appErr)
			return
		}
		InternalError(c, "An internal error occurred")
	}
}

// Error sends an error response based on AppError type.
// Details are exposed for client errors only; internal causes stay in the logs.
func Error(c *gin.Context, appErr *AppError) {
	status := apperrors.GetHTTPStatus(appErr.Code)
	var data interface{}
	if appErr.Details != "" && status < http.StatusInternalServerError {
		data = gin.H{"details": appErr.Details}
	}
	fail(c, status, appErr.Code, appErr.Message, data)
}
