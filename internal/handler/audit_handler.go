package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
	"fieldops-service/internal/service"
)

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns audit logs with filtering and pagination
// @Summary List audit logs
// @Tags audit
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param user_id query string false "Filter by user ID"
// @Param resource_type query string false "Filter by resource type"
// @Param resource_id query string false "Filter by resource ID"
// @Param action query string false "Filter by action"
// @Param start_time query string false "Filter by start time (RFC3339)"
// @Param end_time query string false "Filter by end time (RFC3339)"
// @Success 200 {object} response.PaginatedResponse
// @Router /api/admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var q auditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	opts, err := q.options()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	logs, total, err := h.auditService.List(c.Request.Context(), opts)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	items := make([]domain.AuditLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, logs[i].ToResponse())
	}
	response.Paginated(c, items, opts.Page, opts.Limit, total)
}

type auditLogQuery struct {
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
	UserID       string `form:"user_id"`
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	Action       string `form:"action"`
	StartTime    string `form:"start_time"`
	EndTime      string `form:"end_time"`
}

// options validates the enum filters. Malformed user ids and times are
// dropped rather than rejected, so a stale bookmark still lists something.
func (q auditLogQuery) options() (repository.AuditLogListOptions, error) {
	opts := repository.AuditLogListOptions{ResourceID: q.ResourceID}
	opts.Page, opts.Limit = response.NormalizePage(q.Page, q.Limit)

	if id, err := uuid.Parse(q.UserID); err == nil {
		opts.UserID = &id
	}
	if q.ResourceType != "" {
		rt := domain.ResourceType(q.ResourceType)
		if !rt.IsValid() {
			return opts, fmt.Errorf("unknown resource_type: %s", q.ResourceType)
		}
		opts.ResourceType = &rt
	}
	if q.Action != "" {
		a := domain.ActionType(q.Action)
		if !a.IsValid() {
			return opts, fmt.Errorf("unknown action: %s", q.Action)
		}
		opts.Action = &a
	}
	opts.StartTime = parseRFC3339(q.StartTime)
	opts.EndTime = parseRFC3339(q.EndTime)
	return opts, nil
}

func parseRFC3339(v string) *time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

// GetByID returns an audit log by ID
// @Summary Get audit log by ID
// @Tags audit
// @Security BearerAuth
// @Param id path string true "Audit log ID"
// @Success 200 {object} domain.AuditLogResponse
// @Router /api/admin/audit-logs/{id} [get]
func (h *AuditHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid audit log ID")
	if !ok {
		return
	}

	log, err := h.auditService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.HandleServiceError(c, err)
		return
	}

	response.Success(c, log.ToResponse())
}
