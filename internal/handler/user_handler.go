package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
	"fieldops-service/internal/service"
)

// UserHandler handles staff user HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe returns the current user's profile
// @Summary Get current user profile
// @Tags users
// @Security BearerAuth
// @Success 200 {object} domain.UserResponse
// @Router /api/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}

	h.userService.TouchLastLogin(c.Request.Context(), user.ID)
	response.Success(c, user.ToResponse())
}

// List returns staff users with filtering and pagination
// @Summary List staff users
// @Tags users
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search by name or email"
// @Success 200 {object} response.PaginatedResponse
// @Router /api/admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = response.NormalizePage(page, limit)

	opts := repository.UserListOptions{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		opts.Role = &r
	}
	if active := c.Query("active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			opts.IsActive = &v
		}
	}

	users, total, err := h.userService.List(c.Request.Context(), opts)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	responses := make([]domain.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}

	response.Paginated(c, responses, page, limit, total)
}

// GetByID returns a staff user by ID
// @Summary Get staff user by ID
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} domain.UserResponse
// @Router /api/admin/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, user.ToResponse())
}

// Create invites a new staff user
// @Summary Create staff user
// @Tags users
// @Security BearerAuth
// @Param body body domain.CreateUserRequest true "Create request"
// @Success 201 {object} domain.UserResponse
// @Router /api/admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor := currentStaff(c)
	if actor == nil {
		return
	}

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Created(c, user.ToResponse())
}

// UpdateRole updates a user's role
// @Summary Update user role
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body domain.UpdateUserRoleRequest true "Update role request"
// @Success 200 {object} domain.UserResponse
// @Router /api/admin/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor := currentStaff(c)
	if actor == nil {
		return
	}
	targetID, ok := pathUUID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	var req domain.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor, targetID, req.Role)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, user.ToResponse())
}

// Deactivate deactivates a user
// @Summary Deactivate user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /api/admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor := currentStaff(c)
	if actor == nil {
		return
	}
	targetID, ok := pathUUID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), actor, targetID); err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "User deactivated", nil)
}

// Reactivate reactivates a user
// @Summary Reactivate user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Router /api/admin/users/{id}/reactivate [post]
func (h *UserHandler) Reactivate(c *gin.Context) {
	actor := currentStaff(c)
	if actor == nil {
		return
	}
	targetID, ok := pathUUID(c, "id", "Invalid user ID")
	if !ok {
		return
	}

	if err := h.userService.Reactivate(c.Request.Context(), actor, targetID); err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "User reactivated", nil)
}
