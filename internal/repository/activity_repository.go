package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
)

// ActivityRepository handles activity database operations
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ActivityListOptions holds options for listing activities
type ActivityListOptions struct {
	Type     *domain.ActivityType
	Status   *domain.ActivityStatus
	SiteCode string
	Page     int
	Limit    int
}

// Create creates a new activity
func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// GetByID gets an activity by ID
func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// List lists activities with filtering and pagination
func (r *ActivityRepository) List(ctx context.Context, opts ActivityListOptions) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Activity{})

	if opts.Type != nil {
		query = query.Where("type = ?", *opts.Type)
	}
	if opts.Status != nil {
		query = query.Where("status = ?", *opts.Status)
	}
	if opts.SiteCode != "" {
		query = query.Where("site_code = ?", opts.SiteCode)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := normalizePage(opts.Page, opts.Limit)
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

// ListRecent returns the most recently updated activities
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	if limit < 1 {
		limit = defaultLimit
	}
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// Section columns of the activities table
const (
	ColumnAssignment  = "assignment"
	ColumnTasks       = "assign_activity_tasks"
	ColumnStatus      = "status"
	ColumnSurvey      = "survey"
	ColumnDismantling = "dismantling"
	ColumnDispatch    = "dispatch"
)

// UpdateSection writes column and updated_at only. Edits of different
// sections of the same activity therefore never overwrite each other.
func (r *ActivityRepository) UpdateSection(ctx context.Context, activity *domain.Activity, column string) error {
	result := r.db.WithContext(ctx).Model(activity).Select(column, "updated_at").Updates(activity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes an activity
func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Activity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByType counts non-deleted activities grouped by type
func (r *ActivityRepository) CountByType(ctx context.Context) (map[domain.ActivityType]int64, error) {
	var rows []struct {
		Type  domain.ActivityType
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.Activity{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.ActivityType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
