package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
	"fieldops-service/internal/service"
)

// ActivityHandler handles activity HTTP requests
type ActivityHandler struct {
	activityService *service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Mine returns recent activities the current user may open
// @Summary List my accessible activities
// @Tags activities
// @Security BearerAuth
// @Param limit query int false "Max items" default(20)
// @Success 200 {array} service.AccessibleActivity
// @Router /api/activities/mine [get]
func (h *ActivityHandler) Mine(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.activityService.ListAccessible(c.Request.Context(), user, limit)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, activities)
}

// Detail returns the detail view of an activity.
// Sections the user may not view are omitted and tab.status is no_access when nothing is allowed.
// @Summary Get activity detail
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param tab query string false "Requested tab (overview, survey, dismantling, dispatch)"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id} [get]
func (h *ActivityHandler) Detail(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}
	id, ok := pathUUID(c, "id", "Invalid activity ID")
	if !ok {
		return
	}

	detail, err := h.activityService.GetDetail(c.Request.Context(), user, id, c.Query("tab"))
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, detail)
}

// Permissions returns the current user's permission set on an activity
// @Summary Get activity permissions
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} permission.Set
// @Router /api/activities/{id}/permissions [get]
func (h *ActivityHandler) Permissions(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}
	id, ok := pathUUID(c, "id", "Invalid activity ID")
	if !ok {
		return
	}

	set, err := h.activityService.GetPermissions(c.Request.Context(), user, id)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, set)
}

// Navigate moves the detail view to another tab
// @Summary Navigate activity tab
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.NavigateTabRequest true "Navigate request"
// @Success 200 {object} permission.Navigation
// @Router /api/activities/{id}/navigate [post]
func (h *ActivityHandler) Navigate(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}
	id, ok := pathUUID(c, "id", "Invalid activity ID")
	if !ok {
		return
	}

	var req domain.NavigateTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	nav, err := h.activityService.Navigate(c.Request.Context(), user, id, req)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, nav)
}

// List returns all activities with filtering and pagination
// @Summary List activities
// @Tags activities
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param site_code query string false "Filter by site code"
// @Success 200 {object} response.PaginatedResponse
// @Router /api/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = response.NormalizePage(page, limit)

	opts := repository.ActivityListOptions{
		SiteCode: c.Query("site_code"),
		Page:     page,
		Limit:    limit,
	}
	if activityType := c.Query("type"); activityType != "" {
		t := domain.ActivityType(activityType)
		opts.Type = &t
	}
	if status := c.Query("status"); status != "" {
		s := domain.ActivityStatus(status)
		opts.Status = &s
	}

	activities, total, err := h.activityService.List(c.Request.Context(), user, opts)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	responses := make([]domain.ActivityResponse, len(activities))
	for i := range activities {
		responses[i] = activities[i].ToResponse()
	}

	response.Paginated(c, responses, page, limit, total)
}

// Create creates a new activity
// @Summary Create activity
// @Tags activities
// @Security BearerAuth
// @Param body body domain.CreateActivityRequest true "Create request"
// @Success 201 {object} domain.ActivityResponse
// @Router /api/activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}

	var req domain.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	activity, err := h.activityService.Create(c.Request.Context(), user, req)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Created(c, activity.ToResponse())
}

// Delete soft deletes an activity
// @Summary Delete activity
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 204
// @Router /api/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	user := currentStaff(c)
	if user == nil {
		return
	}
	id, ok := pathUUID(c, "id", "Invalid activity ID")
	if !ok {
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), user, id); err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateAssignment replaces the main assignees
// @Summary Update main assignees
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateAssignmentRequest true "Assignment"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/assignment [put]
func (h *ActivityHandler) UpdateAssignment(c *gin.Context) {
	var req domain.UpdateAssignmentRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateAssignment(c.Request.Context(), user, id, req)
	})
}

// UpdateTasks replaces per-phase assignees
// @Summary Update task assignees
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateTasksRequest true "Tasks"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/tasks [put]
func (h *ActivityHandler) UpdateTasks(c *gin.Context) {
	var req domain.UpdateTasksRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateTasks(c.Request.Context(), user, id, req)
	})
}

// UpdateStatus changes the activity status
// @Summary Update activity status
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateActivityStatusRequest true "Status"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/status [put]
func (h *ActivityHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateActivityStatusRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateStatus(c.Request.Context(), user, id, req)
	})
}

// UpdateSurvey updates the survey section
// @Summary Update survey
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateSurveyRequest true "Survey"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/survey [put]
func (h *ActivityHandler) UpdateSurvey(c *gin.Context) {
	var req domain.UpdateSurveyRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateSurvey(c.Request.Context(), user, id, req)
	})
}

// UpdateDismantling updates the dismantling section
// @Summary Update dismantling
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateDismantlingRequest true "Dismantling"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/dismantling [put]
func (h *ActivityHandler) UpdateDismantling(c *gin.Context) {
	var req domain.UpdateDismantlingRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateDismantling(c.Request.Context(), user, id, req)
	})
}

// UpdateDispatch updates the dispatch section
// @Summary Update dispatch
// @Tags activities
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param body body domain.UpdateDispatchRequest true "Dispatch"
// @Success 200 {object} service.ActivityDetail
// @Router /api/activities/{id}/dispatch [put]
func (h *ActivityHandler) UpdateDispatch(c *gin.Context) {
	var req domain.UpdateDispatchRequest
	h.update(c, &req, func(user *domain.User, id uuid.UUID) (*service.ActivityDetail, error) {
		return h.activityService.UpdateDispatch(c.Request.Context(), user, id, req)
	})
}

// update binds the body into req, then runs apply for the current user and path id
func (h *ActivityHandler) update(c *gin.Context, req interface{}, apply func(*domain.User, uuid.UUID) (*service.ActivityDetail, error)) {
	user := currentStaff(c)
	if user == nil {
		return
	}
	id, ok := pathUUID(c, "id", "Invalid activity ID")
	if !ok {
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := apply(user, id)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, detail)
}
