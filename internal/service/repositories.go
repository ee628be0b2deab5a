package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/permission"
	"fieldops-service/internal/repository"
)

// UserRepository is the staff user storage used by the services
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	List(ctx context.Context, opts repository.UserListOptions) ([]domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ActivityRepository is the activity storage used by ActivityService
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)
	List(ctx context.Context, opts repository.ActivityListOptions) ([]domain.Activity, int64, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
	UpdateSection(ctx context.Context, activity *domain.Activity, column string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditLogRepository is the audit log storage used by AuditLogService
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditLog, error)
	List(ctx context.Context, opts repository.AuditLogListOptions) ([]domain.AuditLog, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PermissionResolver computes the tab permission set of a user on an activity
type PermissionResolver interface {
	Resolve(ctx context.Context, user *domain.User, activity *domain.Activity) permission.Set
}

// 컴파일 타임 인터페이스 검증
var (
	_ UserRepository     = (*repository.UserRepository)(nil)
	_ ActivityRepository = (*repository.ActivityRepository)(nil)
	_ AuditLogRepository = (*repository.AuditLogRepository)(nil)
	_ PermissionResolver = (*permission.CachedResolver)(nil)
)
