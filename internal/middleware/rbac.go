package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/response"
)

const staffUserContextKey = "staffUser"

// UserGetter loads the staff user behind an authenticated token
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// RBACMiddleware loads the active staff user into the context and checks the role.
// With no roles every active staff user passes.
func RBACMiddleware(userGetter UserGetter, logger *zap.Logger, requiredRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.Unauthorized(c, "User ID not found in token")
			c.Abort()
			return
		}

		user, err := userGetter.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, response.ErrUserNotFound) {
				logger.Warn("Staff user not found", zap.String("user_id", userID.String()))
				response.Forbidden(c, "Access denied: Not a staff user")
			} else {
				logger.Error("Failed to load staff user", zap.String("user_id", userID.String()), zap.Error(err))
				response.InternalError(c, "Failed to load user")
			}
			c.Abort()
			return
		}

		if !user.IsActive {
			response.Forbidden(c, "Access denied: User is inactive")
			c.Abort()
			return
		}

		if len(requiredRoles) > 0 && !hasAnyRole(user.Role, requiredRoles) {
			response.Forbidden(c, "Access denied: Insufficient permissions")
			c.Abort()
			return
		}

		c.Set(staffUserContextKey, user)
		c.Next()
	}
}

func hasAnyRole(role domain.Role, roles []domain.Role) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// RequireAdmin requires admin role
func RequireAdmin(userGetter UserGetter, logger *zap.Logger) gin.HandlerFunc {
	return RBACMiddleware(userGetter, logger, domain.RoleAdmin)
}

// RequireAdminOrManager requires admin or manager role
func RequireAdminOrManager(userGetter UserGetter, logger *zap.Logger) gin.HandlerFunc {
	return RBACMiddleware(userGetter, logger, domain.RoleAdmin, domain.RoleManager)
}

// RequireStaff requires any active staff user
func RequireStaff(userGetter UserGetter, logger *zap.Logger) gin.HandlerFunc {
	return RBACMiddleware(userGetter, logger)
}

// GetStaffUser gets the staff user loaded by RBACMiddleware
func GetStaffUser(c *gin.Context) *domain.User {
	if value, exists := c.Get(staffUserContextKey); exists {
		if user, ok := value.(*domain.User); ok {
			return user
		}
	}
	return nil
}
