package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/logger"
	"fieldops-service/internal/metrics"
	"fieldops-service/internal/permission"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
	"fieldops-service/internal/telemetry"
)

const (
	defaultAccessibleLimit = 20
	maxAccessibleLimit     = 100
	// ListAccessible가 권한을 계산해 보는 최근 활동 수
	accessibleScanLimit = 500
)

// ActivityDetail is the detail view of one activity for one staff user.
// Sections the user may not view are removed from Activity; with no allowed
// tab at all Activity is nil and only ActivityID is returned.
type ActivityDetail struct {
	ActivityID  uuid.UUID                `json:"activityId"`
	Activity    *domain.ActivityResponse `json:"activity,omitempty"`
	Permissions permission.Set           `json:"permissions"`
	Tab         permission.Navigation    `json:"tab"`
}

// AccessibleActivity is an activity header with the tabs the caller may open
type AccessibleActivity struct {
	domain.ActivityResponse
	AllowedTabs []permission.Tab `json:"allowedTabs"`
}

// ActivityService handles activity business logic and tab permissions
type ActivityService struct {
	repo     ActivityRepository
	resolver PermissionResolver
	auditSvc *AuditLogService
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(
	repo ActivityRepository,
	resolver PermissionResolver,
	auditSvc *AuditLogService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		repo:     repo,
		resolver: resolver,
		auditSvc: auditSvc,
		metrics:  m,
		logger:   logger,
	}
}

// Create creates a new activity with empty sections
func (s *ActivityService) Create(ctx context.Context, actor *domain.User, req domain.CreateActivityRequest) (*domain.Activity, error) {
	if !actor.Role.CanManageActivities() {
		return nil, response.ErrActionForbidden
	}
	if !req.Type.IsValid() {
		return nil, response.ErrInvalidActivityType
	}

	activity := &domain.Activity{
		Type:        req.Type,
		Title:       strings.TrimSpace(req.Title),
		SiteCode:    strings.TrimSpace(req.SiteCode),
		ProjectName: strings.TrimSpace(req.ProjectName),
		Region:      strings.TrimSpace(req.Region),
		Status:      domain.ActivityStatusPlanned,
		CreatedBy:   actor.ID,
	}

	assignment := domain.Assignment{}
	if refs := cleanRefs(req.AssignedTo); len(refs) > 0 {
		assignment = newAssignment(actor, refs, "")
	}
	activity.Assignment = datatypes.NewJSONType(assignment)
	activity.Tasks = datatypes.NewJSONType(domain.ActivityTasks{})
	activity.Survey = datatypes.NewJSONType(domain.SurveyDetails{Status: domain.SectionStatusPending})
	activity.Dismantling = datatypes.NewJSONType(domain.DismantlingDetails{Status: domain.SectionStatusPending})
	activity.Dispatch = datatypes.NewJSONType(domain.DispatchDetails{Status: domain.SectionStatusPending})

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionCreate, domain.ResourceActivity, activity.ID.String(),
		fmt.Sprintf("Created %s activity at %s", activity.Type, activity.SiteCode))
	s.metrics.IncrementActivityCreated(string(activity.Type))
	s.logger.Info("Activity created",
		append(logger.ActorFields(actor.ID.String(), string(actor.Role), activity.ID.String()),
			zap.String("type", string(activity.Type)),
			zap.String("siteCode", activity.SiteCode),
		)...,
	)

	return activity, nil
}

// Get gets an activity by ID without any permission filtering
func (s *ActivityService) Get(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrActivityNotFound
		}
		return nil, err
	}
	return activity, nil
}

// List lists every activity with filtering and pagination. Admin or manager only.
func (s *ActivityService) List(ctx context.Context, actor *domain.User, opts repository.ActivityListOptions) ([]domain.Activity, int64, error) {
	if !actor.Role.IsAdminOrManager() {
		return nil, 0, response.ErrActionForbidden
	}
	if opts.Type != nil && !opts.Type.IsValid() {
		return nil, 0, response.ErrInvalidActivityType
	}
	if opts.Status != nil && !opts.Status.IsValid() {
		return nil, 0, response.ErrInvalidStatus
	}
	return s.repo.List(ctx, opts)
}

// Delete soft deletes an activity. Admin only.
func (s *ActivityService) Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	if !actor.Role.CanDeleteActivities() {
		return response.ErrActionForbidden
	}

	activity, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.ErrActivityNotFound
		}
		return err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionDelete, domain.ResourceActivity, id.String(),
		fmt.Sprintf("Deleted activity %q", activity.Title))
	s.logger.Info("Activity deleted", logger.ActorFields(actor.ID.String(), string(actor.Role), id.String())...)
	return nil
}

// GetDetail resolves the actor's permissions on the activity, picks the tab to
// show from the hint and strips every section the actor may not view.
func (s *ActivityService) GetDetail(ctx context.Context, actor *domain.User, id uuid.UUID, hint string) (*ActivityDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "activity.detail", attribute.String(logger.FieldActivityID, id.String()))
	defer span.End()

	activity, err := s.Get(ctx, id)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	set := s.resolver.Resolve(ctx, actor, activity)
	tab, _ := permission.ParseTab(hint)
	nav := permission.InitialTab(set, tab)
	span.SetAttributes(
		attribute.String("permission.outcome", set.Outcome()),
		attribute.String(logger.FieldTab, string(nav.ActiveTab)),
	)
	if nav.Status == permission.TabStatusNoAccess {
		s.metrics.RecordTabNavigation("no_access")
	}

	return newActivityDetail(activity, set, nav), nil
}

// GetPermissions returns the actor's permission set on the activity
func (s *ActivityService) GetPermissions(ctx context.Context, actor *domain.User, id uuid.UUID) (permission.Set, error) {
	activity, err := s.Get(ctx, id)
	if err != nil {
		return permission.None(), err
	}
	return s.resolver.Resolve(ctx, actor, activity), nil
}

// Navigate applies a tab change requested by the client.
// Permissions are resolved again, so a stale current tab is corrected and a
// forbidden request keeps the current tab.
func (s *ActivityService) Navigate(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.NavigateTabRequest) (permission.Navigation, error) {
	activity, err := s.Get(ctx, id)
	if err != nil {
		return permission.Navigation{}, err
	}

	set := s.resolver.Resolve(ctx, actor, activity)
	current, _ := permission.ParseTab(req.Current)
	requested, _ := permission.ParseTab(req.Requested)
	nav := permission.Navigate(set, current, requested)

	var result string
	switch {
	case nav.Status == permission.TabStatusNoAccess:
		result = "no_access"
	case nav.ActiveTab != requested:
		result = "ignored"
	case nav.Changed:
		result = "moved"
	default:
		result = "kept"
	}
	s.metrics.RecordTabNavigation(result)

	if result == "ignored" {
		s.logger.Debug("Tab navigation ignored",
			append(logger.ActorFields(actor.ID.String(), string(actor.Role), id.String()),
				zap.String(logger.FieldTab, req.Requested),
			)...,
		)
	}

	return nav, nil
}

// ListAccessible lists recently updated activities where the actor may open at least one tab
func (s *ActivityService) ListAccessible(ctx context.Context, actor *domain.User, limit int) ([]AccessibleActivity, error) {
	if limit <= 0 {
		limit = defaultAccessibleLimit
	}
	if limit > maxAccessibleLimit {
		limit = maxAccessibleLimit
	}

	candidates, err := s.repo.ListRecent(ctx, accessibleScanLimit)
	if err != nil {
		return nil, err
	}

	result := make([]AccessibleActivity, 0, limit)
	for i := range candidates {
		activity := &candidates[i]
		set := s.resolver.Resolve(ctx, actor, activity)
		if set.IsEmpty() {
			continue
		}
		result = append(result, AccessibleActivity{
			ActivityResponse: activity.ToSummary(),
			AllowedTabs:      set.AllowedTabs,
		})
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// UpdateAssignment replaces the main assignees. Admin or manager only.
func (s *ActivityService) UpdateAssignment(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateAssignmentRequest) (*ActivityDetail, error) {
	guard := func(permission.Set) error {
		if !actor.Role.CanManageActivities() {
			return response.ErrActionForbidden
		}
		return nil
	}
	return s.mutate(ctx, actor, id, permission.TabOverview, repository.ColumnAssignment, domain.ActionAssign, guard, func(a *domain.Activity) (string, error) {
		refs := cleanRefs(req.AssignedTo)
		a.Assignment = datatypes.NewJSONType(newAssignment(actor, refs, strings.TrimSpace(req.Notes)))
		return fmt.Sprintf("Assigned %d main assignee(s)", len(refs)), nil
	})
}

// UpdateTasks replaces the per-phase assignee lists present in the request
func (s *ActivityService) UpdateTasks(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateTasksRequest) (*ActivityDetail, error) {
	return s.mutate(ctx, actor, id, permission.TabOverview, repository.ColumnTasks, domain.ActionAssign, requireTab(permission.TabOverview), func(a *domain.Activity) (string, error) {
		tasks := a.Tasks.Data()
		var changed []string
		if req.AssignSurveyTo != nil {
			tasks.AssignSurveyTo = cleanRefs(*req.AssignSurveyTo)
			changed = append(changed, string(domain.TaskSurvey))
		}
		if req.AssignDismantlingTo != nil {
			tasks.AssignDismantlingTo = cleanRefs(*req.AssignDismantlingTo)
			changed = append(changed, string(domain.TaskDismantling))
		}
		if req.AssignStoreTo != nil {
			tasks.AssignStoreTo = cleanRefs(*req.AssignStoreTo)
			changed = append(changed, string(domain.TaskStore))
		}
		a.Tasks = datatypes.NewJSONType(tasks)
		return "Updated task assignees: " + strings.Join(changed, ","), nil
	})
}

// UpdateStatus changes the lifecycle status of the activity
func (s *ActivityService) UpdateStatus(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateActivityStatusRequest) (*ActivityDetail, error) {
	if !req.Status.IsValid() {
		return nil, response.ErrInvalidStatus
	}
	return s.mutate(ctx, actor, id, permission.TabOverview, repository.ColumnStatus, domain.ActionUpdate, requireTab(permission.TabOverview), func(a *domain.Activity) (string, error) {
		old := a.Status
		a.Status = req.Status
		return fmt.Sprintf("Changed status from %s to %s", old, req.Status), nil
	})
}

// UpdateSurvey updates the survey section
func (s *ActivityService) UpdateSurvey(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateSurveyRequest) (*ActivityDetail, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, response.ErrInvalidStatus
	}
	if req.EquipmentCount != nil && *req.EquipmentCount < 0 {
		return nil, response.NewValidationError("equipmentCount must not be negative", "")
	}
	return s.mutate(ctx, actor, id, permission.TabSurvey, repository.ColumnSurvey, domain.ActionUpdate, requireTab(permission.TabSurvey), func(a *domain.Activity) (string, error) {
		survey := a.Survey.Data()
		if req.ConductedBy != nil {
			if owner := strings.TrimSpace(*req.ConductedBy); owner == "" {
				survey.ConductedBy = nil
			} else {
				ref := domain.RefID(owner)
				survey.ConductedBy = &ref
			}
		}
		if req.Status != nil {
			survey.Status = *req.Status
		}
		if req.SurveyDate != nil {
			survey.SurveyDate = utcPtr(*req.SurveyDate)
		}
		if req.Findings != nil {
			survey.Findings = *req.Findings
		}
		if req.EquipmentCount != nil {
			survey.EquipmentCount = *req.EquipmentCount
		}
		a.Survey = datatypes.NewJSONType(survey)
		return "Updated survey (" + string(survey.Status) + ")", nil
	})
}

// UpdateDismantling updates the dismantling section
func (s *ActivityService) UpdateDismantling(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateDismantlingRequest) (*ActivityDetail, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, response.ErrInvalidStatus
	}
	return s.mutate(ctx, actor, id, permission.TabDismantling, repository.ColumnDismantling, domain.ActionUpdate, requireTab(permission.TabDismantling), func(a *domain.Activity) (string, error) {
		dismantling := a.Dismantling.Data()
		if req.TeamMembers != nil {
			dismantling.TeamMembers = cleanRefs(*req.TeamMembers)
		}
		if req.Status != nil {
			dismantling.Status = *req.Status
		}
		if req.StartedAt != nil {
			dismantling.StartedAt = utcPtr(*req.StartedAt)
		}
		if req.CompletedAt != nil {
			dismantling.CompletedAt = utcPtr(*req.CompletedAt)
		}
		if req.Notes != nil {
			dismantling.Notes = *req.Notes
		}
		if dismantling.StartedAt != nil && dismantling.CompletedAt != nil && dismantling.CompletedAt.Before(*dismantling.StartedAt) {
			return "", response.NewValidationError("completedAt must not be before startedAt", "")
		}
		a.Dismantling = datatypes.NewJSONType(dismantling)
		return "Updated dismantling (" + string(dismantling.Status) + ")", nil
	})
}

// UpdateDispatch updates the store/dispatch section
func (s *ActivityService) UpdateDispatch(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.UpdateDispatchRequest) (*ActivityDetail, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, response.ErrInvalidStatus
	}
	if req.ItemCount != nil && *req.ItemCount < 0 {
		return nil, response.NewValidationError("itemCount must not be negative", "")
	}
	return s.mutate(ctx, actor, id, permission.TabDispatch, repository.ColumnDispatch, domain.ActionUpdate, requireTab(permission.TabDispatch), func(a *domain.Activity) (string, error) {
		dispatch := a.Dispatch.Data()
		if req.StoreLocation != nil {
			dispatch.StoreLocation = strings.TrimSpace(*req.StoreLocation)
		}
		if req.Status != nil {
			dispatch.Status = *req.Status
		}
		if req.DispatchedAt != nil {
			dispatch.DispatchedAt = utcPtr(*req.DispatchedAt)
		}
		if req.ItemCount != nil {
			dispatch.ItemCount = *req.ItemCount
		}
		if req.Notes != nil {
			dispatch.Notes = *req.Notes
		}
		a.Dispatch = datatypes.NewJSONType(dispatch)
		return "Updated dispatch (" + string(dispatch.Status) + ")", nil
	})
}

// mutate loads the activity, checks the guard against the actor's current
// permissions, applies the change and saves only the given column. The
// returned detail is built from permissions resolved after the save since
// assignee edits can change them.
func (s *ActivityService) mutate(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	tab permission.Tab,
	column string,
	action domain.ActionType,
	guard func(permission.Set) error,
	apply func(*domain.Activity) (string, error),
) (_ *ActivityDetail, err error) {
	ctx, span := telemetry.StartSpan(ctx, "activity.update",
		attribute.String(logger.FieldActivityID, id.String()),
		attribute.String(logger.FieldTab, string(tab)),
	)
	defer func() {
		telemetry.SetSpanError(ctx, err)
		span.End()
	}()
	log := telemetry.WithTraceContext(ctx, s.logger)

	activity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = guard(s.resolver.Resolve(ctx, actor, activity)); err != nil {
		log.Warn("Activity update rejected",
			append(logger.ActorFields(actor.ID.String(), string(actor.Role), id.String()),
				zap.String(logger.FieldTab, string(tab)),
			)...,
		)
		return nil, err
	}

	details, err := apply(activity)
	if err != nil {
		return nil, err
	}
	if err = s.repo.UpdateSection(ctx, activity, column); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, action, domain.ResourceActivity, id.String(), details)
	log.Info("Activity updated",
		append(logger.ActorFields(actor.ID.String(), string(actor.Role), id.String()),
			zap.String(logger.FieldTab, string(tab)),
			zap.String("details", details),
		)...,
	)

	set := s.resolver.Resolve(ctx, actor, activity)
	return newActivityDetail(activity, set, permission.InitialTab(set, tab)), nil
}

// requireTab rejects actors who may not view the tab the section belongs to
func requireTab(tab permission.Tab) func(permission.Set) error {
	return func(set permission.Set) error {
		if !set.Allows(tab) {
			return response.ErrTabForbidden
		}
		return nil
	}
}

func newActivityDetail(activity *domain.Activity, set permission.Set, nav permission.Navigation) *ActivityDetail {
	detail := &ActivityDetail{
		ActivityID:  activity.ID,
		Permissions: set,
		Tab:         nav,
	}
	if !set.IsEmpty() {
		resp := visibleSections(activity, set)
		detail.Activity = &resp
	}
	return detail
}

// visibleSections keeps only the sections backing an allowed tab.
// The overview tab shows both the main assignment and the task lists.
func visibleSections(activity *domain.Activity, set permission.Set) domain.ActivityResponse {
	resp := activity.ToSummary()
	if set.CanViewOverview {
		assignment := activity.Assignment.Data()
		tasks := activity.Tasks.Data()
		resp.Assignment = &assignment
		resp.AssignActivityTasks = &tasks
	}
	if set.CanViewSurvey {
		survey := activity.Survey.Data()
		resp.Survey = &survey
	}
	if set.CanViewDismantling {
		dismantling := activity.Dismantling.Data()
		resp.Dismantling = &dismantling
	}
	if set.CanViewDispatch {
		dispatch := activity.Dispatch.Data()
		resp.Dispatch = &dispatch
	}
	return resp
}

func newAssignment(actor *domain.User, refs []domain.UserRef, notes string) domain.Assignment {
	by := domain.RefID(actor.ID.String())
	now := time.Now().UTC()
	return domain.Assignment{
		AssignedTo: refs,
		AssignedBy: &by,
		AssignedAt: &now,
		Notes:      notes,
	}
}

// cleanRefs trims ids, drops blanks and duplicates, and stores them as bare references
func cleanRefs(ids []string) []domain.UserRef {
	seen := make(map[string]struct{}, len(ids))
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, id)
	}
	return domain.RefIDs(cleaned...)
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
