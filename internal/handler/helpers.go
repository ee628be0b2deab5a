package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/middleware"
	"fieldops-service/internal/response"
)

// currentStaff returns the staff user loaded by the RBAC middleware.
// It writes 401 and returns nil when the route was mounted without it.
func currentStaff(c *gin.Context) *domain.User {
	user := middleware.GetStaffUser(c)
	if user == nil {
		response.Unauthorized(c, "User not found in context")
	}
	return user
}

// pathUUID parses a uuid path parameter, writing 400 on failure
func pathUUID(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}
