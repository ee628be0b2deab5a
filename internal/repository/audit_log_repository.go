package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
)

// AuditLogRepository handles audit log database operations
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// AuditLogListOptions holds options for listing audit logs
type AuditLogListOptions struct {
	UserID       *uuid.UUID
	ResourceType *domain.ResourceType
	ResourceID   string
	Action       *domain.ActionType
	StartTime    *time.Time
	EndTime      *time.Time
	Page         int
	Limit        int
}

// filters applies every option that is set; zero values mean "any"
func (o AuditLogListOptions) filters(db *gorm.DB) *gorm.DB {
	conds := map[string]interface{}{}
	if o.UserID != nil {
		conds["user_id"] = *o.UserID
	}
	if o.ResourceType != nil {
		conds["resource_type"] = *o.ResourceType
	}
	if o.ResourceID != "" {
		conds["resource_id"] = o.ResourceID
	}
	if o.Action != nil {
		conds["action"] = *o.Action
	}
	if len(conds) > 0 {
		db = db.Where(conds)
	}
	if o.StartTime != nil {
		db = db.Where("created_at >= ?", *o.StartTime)
	}
	if o.EndTime != nil {
		db = db.Where("created_at <= ?", *o.EndTime)
	}
	return db
}

// Create appends an entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetByID returns gorm.ErrRecordNotFound for an unknown id
func (r *AuditLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{}
	if err := r.db.WithContext(ctx).First(entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns one page of matching entries, newest first, plus the match count
func (r *AuditLogRepository) List(ctx context.Context, opts AuditLogListOptions) ([]domain.AuditLog, int64, error) {
	base := opts.filters(r.db.WithContext(ctx).Model(&domain.AuditLog{}))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.AuditLog{}, 0, nil
	}

	_, limit, offset := normalizePage(opts.Page, opts.Limit)
	entries := make([]domain.AuditLog, 0, limit)
	err := base.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteOlderThan permanently removes entries created before cutoff
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.AuditLog{})
	return result.RowsAffected, result.Error
}
