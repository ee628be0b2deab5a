package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
)

// UserRepository handles staff user database operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new staff user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserListOptions holds options for listing staff users
type UserListOptions struct {
	Role     *domain.Role
	IsActive *bool
	Search   string
	Page     int
	Limit    int
}

// Create creates a new staff user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a staff user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a staff user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll gets all staff users ordered by name
func (r *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List lists staff users with filtering and pagination
func (r *UserRepository) List(ctx context.Context, opts UserListOptions) ([]domain.User, int64, error) {
	var users []domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})

	if opts.Role != nil {
		query = query.Where("role = ?", *opts.Role)
	}
	if opts.IsActive != nil {
		query = query.Where("is_active = ?", *opts.IsActive)
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := normalizePage(opts.Page, opts.Limit)
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update updates a staff user
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// TouchLastLogin sets last_login_at without bumping updated_at
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// CountByRole counts active users by role
func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActive counts active staff users
func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
