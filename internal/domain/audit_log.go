package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActionType is the kind of change recorded in the audit trail
type ActionType string

const (
	ActionCreate     ActionType = "create"
	ActionUpdate     ActionType = "update"
	ActionDelete     ActionType = "delete"
	ActionAssign     ActionType = "assign"
	ActionDeactivate ActionType = "deactivate"
	ActionReactivate ActionType = "reactivate"
)

// IsValid checks if the action is one the service records
func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionAssign, ActionDeactivate, ActionReactivate:
		return true
	default:
		return false
	}
}

// ResourceType is the kind of record an audit entry points at
type ResourceType string

const (
	ResourceUser     ResourceType = "staff_user"
	ResourceActivity ResourceType = "activity"
)

// IsValid checks if the resource type is known
func (r ResourceType) IsValid() bool {
	return r == ResourceUser || r == ResourceActivity
}

// AuditLog is one immutable entry of the change history.
// Entries are only appended; the purge job removes them after the retention window.
type AuditLog struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"userId"`
	UserEmail    string       `gorm:"not null" json:"userEmail"`
	Action       ActionType   `gorm:"type:varchar(20);not null" json:"action"`
	ResourceType ResourceType `gorm:"type:varchar(50);not null;index:idx_audit_resource,priority:1" json:"resourceType"`
	ResourceID   string       `gorm:"not null;index:idx_audit_resource,priority:2" json:"resourceId"`
	Details      string       `gorm:"type:text" json:"details,omitempty"`
	CreatedAt    time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate assigns the entry ID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AuditLogResponse is what the admin API returns for an entry
type AuditLogResponse struct {
	ID         uuid.UUID  `json:"id"`
	Actor      AuditActor `json:"actor"`
	Action     ActionType `json:"action"`
	Resource   AuditRef   `json:"resource"`
	Details    string     `json:"details,omitempty"`
	RecordedAt time.Time  `json:"recordedAt"`
}

// AuditActor identifies who made the change
type AuditActor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuditRef identifies the changed record
type AuditRef struct {
	Type ResourceType `json:"type"`
	ID   string       `json:"id"`
}

func (a *AuditLog) ToResponse() AuditLogResponse {
	return AuditLogResponse{
		ID:         a.ID,
		Actor:      AuditActor{ID: a.UserID, Email: a.UserEmail},
		Action:     a.Action,
		Resource:   AuditRef{Type: a.ResourceType, ID: a.ResourceID},
		Details:    a.Details,
		RecordedAt: a.CreatedAt,
	}
}
