package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityType is the kind of field activity
type ActivityType string

const (
	ActivityTypeDismantling ActivityType = "dismantling"
	ActivityTypeRelocation  ActivityType = "relocation"
	ActivityTypeCOW         ActivityType = "cow"
)

// IsValid checks if the activity type is valid
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeDismantling, ActivityTypeRelocation, ActivityTypeCOW:
		return true
	default:
		return false
	}
}

// ActivityStatus is the lifecycle status of an activity
type ActivityStatus string

const (
	ActivityStatusPlanned    ActivityStatus = "planned"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusCompleted  ActivityStatus = "completed"
	ActivityStatusCancelled  ActivityStatus = "cancelled"
)

// IsValid checks if the activity status is valid
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusPlanned, ActivityStatusInProgress, ActivityStatusCompleted, ActivityStatusCancelled:
		return true
	default:
		return false
	}
}

// SectionStatus is the progress of a single work phase (survey, dismantling, dispatch)
type SectionStatus string

const (
	SectionStatusPending    SectionStatus = "pending"
	SectionStatusInProgress SectionStatus = "in_progress"
	SectionStatusCompleted  SectionStatus = "completed"
)

// IsValid checks if the section status is valid
func (s SectionStatus) IsValid() bool {
	switch s {
	case SectionStatusPending, SectionStatusInProgress, SectionStatusCompleted:
		return true
	default:
		return false
	}
}

// TaskCategory is a work phase that can be delegated to specific staff
type TaskCategory string

const (
	TaskSurvey      TaskCategory = "survey"
	TaskDismantling TaskCategory = "dismantling"
	TaskStore       TaskCategory = "store"
)

// Assignment holds the main assignees of an activity
type Assignment struct {
	AssignedTo []UserRef  `json:"assignedTo,omitempty"`
	AssignedBy *UserRef   `json:"assignedBy,omitempty"`
	AssignedAt *time.Time `json:"assignedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// ActivityTasks holds per-phase assignees
type ActivityTasks struct {
	AssignSurveyTo      []UserRef `json:"assignSurveyTo,omitempty"`
	AssignDismantlingTo []UserRef `json:"assignDismantlingTo,omitempty"`
	AssignStoreTo       []UserRef `json:"assignStoreTo,omitempty"`
}

// Assignees returns the assignee list of a task category
func (t ActivityTasks) Assignees(category TaskCategory) []UserRef {
	switch category {
	case TaskSurvey:
		return t.AssignSurveyTo
	case TaskDismantling:
		return t.AssignDismantlingTo
	case TaskStore:
		return t.AssignStoreTo
	default:
		return nil
	}
}

// SurveyDetails is the site survey section
type SurveyDetails struct {
	ConductedBy    *UserRef      `json:"conductedBy,omitempty"`
	Status         SectionStatus `json:"status,omitempty"`
	SurveyDate     *time.Time    `json:"surveyDate,omitempty"`
	Findings       string        `json:"findings,omitempty"`
	EquipmentCount int           `json:"equipmentCount,omitempty"`
}

// DismantlingDetails is the dismantling work section
type DismantlingDetails struct {
	TeamMembers []UserRef     `json:"teamMembers,omitempty"`
	Status      SectionStatus `json:"status,omitempty"`
	StartedAt   *time.Time    `json:"startedAt,omitempty"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// DispatchDetails is the store/dispatch section for removed equipment
type DispatchDetails struct {
	StoreLocation string        `json:"storeLocation,omitempty"`
	Status        SectionStatus `json:"status,omitempty"`
	DispatchedAt  *time.Time    `json:"dispatchedAt,omitempty"`
	ItemCount     int           `json:"itemCount,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// Activity represents a dismantling, relocation or COW activity on a site
type Activity struct {
	BaseModel
	Type        ActivityType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	SiteCode    string         `gorm:"type:varchar(50);not null;index" json:"siteCode"`
	ProjectName string         `gorm:"type:varchar(255)" json:"projectName,omitempty"`
	Region      string         `gorm:"type:varchar(100)" json:"region,omitempty"`
	Status      ActivityStatus `gorm:"type:varchar(20);not null;default:'planned';index" json:"status"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid" json:"createdBy"`

	Assignment  datatypes.JSONType[Assignment]         `gorm:"not null" json:"assignment"`
	Tasks       datatypes.JSONType[ActivityTasks]      `gorm:"column:assign_activity_tasks;not null" json:"assignActivityTasks"`
	Survey      datatypes.JSONType[SurveyDetails]      `gorm:"not null" json:"survey"`
	Dismantling datatypes.JSONType[DismantlingDetails] `gorm:"not null" json:"dismantling"`
	Dispatch    datatypes.JSONType[DispatchDetails]    `gorm:"not null" json:"dispatch"`
}

// TableName returns the table name for GORM
func (Activity) TableName() string {
	return "activities"
}

// ActivityResponse is the response DTO for an activity.
// Sections the caller may not view are left nil.
type ActivityResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Type                ActivityType        `json:"type"`
	Title               string              `json:"title"`
	SiteCode            string              `json:"siteCode"`
	ProjectName         string              `json:"projectName,omitempty"`
	Region              string              `json:"region,omitempty"`
	Status              ActivityStatus      `json:"status"`
	CreatedBy           uuid.UUID           `json:"createdBy"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	Assignment          *Assignment         `json:"assignment,omitempty"`
	AssignActivityTasks *ActivityTasks      `json:"assignActivityTasks,omitempty"`
	Survey              *SurveyDetails      `json:"survey,omitempty"`
	Dismantling         *DismantlingDetails `json:"dismantling,omitempty"`
	Dispatch            *DispatchDetails    `json:"dispatch,omitempty"`
}

// ToSummary converts the activity header without any section
func (a *Activity) ToSummary() ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Type:        a.Type,
		Title:       a.Title,
		SiteCode:    a.SiteCode,
		ProjectName: a.ProjectName,
		Region:      a.Region,
		Status:      a.Status,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToResponse converts the activity including every section
func (a *Activity) ToResponse() ActivityResponse {
	resp := a.ToSummary()
	assignment := a.Assignment.Data()
	tasks := a.Tasks.Data()
	survey := a.Survey.Data()
	dismantling := a.Dismantling.Data()
	dispatch := a.Dispatch.Data()
	resp.Assignment = &assignment
	resp.AssignActivityTasks = &tasks
	resp.Survey = &survey
	resp.Dismantling = &dismantling
	resp.Dispatch = &dispatch
	return resp
}

// CreateActivityRequest is the request DTO for creating an activity
type CreateActivityRequest struct {
	Type        ActivityType `json:"type" binding:"required"`
	Title       string       `json:"title" binding:"required"`
	SiteCode    string       `json:"siteCode" binding:"required"`
	ProjectName string       `json:"projectName"`
	Region      string       `json:"region"`
	AssignedTo  []string     `json:"assignedTo"`
}

// UpdateAssignmentRequest replaces the main assignees
type UpdateAssignmentRequest struct {
	AssignedTo []string `json:"assignedTo" binding:"required"`
	Notes      string   `json:"notes"`
}

// UpdateTasksRequest replaces the per-phase assignee lists that are present
type UpdateTasksRequest struct {
	AssignSurveyTo      *[]string `json:"assignSurveyTo"`
	AssignDismantlingTo *[]string `json:"assignDismantlingTo"`
	AssignStoreTo       *[]string `json:"assignStoreTo"`
}

// UpdateSurveyRequest updates the survey section
type UpdateSurveyRequest struct {
	ConductedBy    *string        `json:"conductedBy"`
	Status         *SectionStatus `json:"status"`
	SurveyDate     *time.Time     `json:"surveyDate"`
	Findings       *string        `json:"findings"`
	EquipmentCount *int           `json:"equipmentCount"`
}

// UpdateDismantlingRequest updates the dismantling section
type UpdateDismantlingRequest struct {
	TeamMembers *[]string      `json:"teamMembers"`
	Status      *SectionStatus `json:"status"`
	StartedAt   *time.Time     `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	Notes       *string        `json:"notes"`
}

// UpdateDispatchRequest updates the dispatch section
type UpdateDispatchRequest struct {
	StoreLocation *string        `json:"storeLocation"`
	Status        *SectionStatus `json:"status"`
	DispatchedAt  *time.Time     `json:"dispatchedAt"`
	ItemCount     *int           `json:"itemCount"`
	Notes         *string        `json:"notes"`
}

// UpdateActivityStatusRequest changes the activity lifecycle status
type UpdateActivityStatusRequest struct {
	Status ActivityStatus `json:"status" binding:"required"`
}

// NavigateTabRequest asks to move the detail view to another tab
type NavigateTabRequest struct {
	Current   string `json:"current"`
	Requested string `json:"requested" binding:"required"`
}
