package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
)

// UserService handles staff user business logic
type UserService struct {
	userRepo UserRepository
	auditSvc *AuditLogService
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserRepository,
	auditSvc *AuditLogService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		auditSvc: auditSvc,
		logger:   logger,
	}
}

// GetByID gets a staff user by ID (implements middleware.UserGetter)
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetMe returns the caller's own profile. Inactive accounts are rejected.
func (s *UserService) GetMe(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, response.ErrUserInactive
	}
	return user, nil
}

// GetAll gets every staff user
func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.GetAll(ctx)
}

// List lists staff users with filtering and pagination
func (s *UserService) List(ctx context.Context, opts repository.UserListOptions) ([]domain.User, int64, error) {
	if opts.Role != nil && !opts.Role.IsValid() {
		return nil, 0, response.ErrInvalidRole
	}
	return s.userRepo.List(ctx, opts)
}

// Create registers (invites) a new staff user
func (s *UserService) Create(ctx context.Context, actor *domain.User, req domain.CreateUserRequest) (*domain.User, error) {
	if !req.Role.IsValid() {
		return nil, response.ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, response.ErrUserAlreadyExists
	}

	user := &domain.User{
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      req.Role,
		IsActive:  true,
		InvitedBy: &actor.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionCreate, domain.ResourceUser, user.ID.String(), "Invited user: "+email)
	s.logger.Info("Staff user invited",
		zap.String("email", email),
		zap.String("role", string(req.Role)),
		zap.String("invitedBy", actor.Email),
	)

	return user, nil
}

// UpdateRole updates a user's role
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.User, targetUserID uuid.UUID, role domain.Role) (*domain.User, error) {
	if actor.ID == targetUserID {
		return nil, response.ErrSelfModification
	}
	if !role.IsValid() {
		return nil, response.ErrInvalidRole
	}

	user, err := s.GetByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	// 마지막 admin을 강등할 수 없음
	if user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return nil, err
		}
	}

	oldRole := user.Role
	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionUpdate, domain.ResourceUser, user.ID.String(),
		"Changed role from "+string(oldRole)+" to "+string(role))
	s.logger.Info("Staff user role updated",
		zap.String("email", user.Email),
		zap.String("oldRole", string(oldRole)),
		zap.String("newRole", string(role)),
		zap.String("updatedBy", actor.Email),
	)

	return user, nil
}

// Deactivate deactivates a user
func (s *UserService) Deactivate(ctx context.Context, actor *domain.User, targetUserID uuid.UUID) error {
	if actor.ID == targetUserID {
		return response.ErrSelfModification
	}

	user, err := s.GetByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	if user.Role == domain.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}

	user.IsActive = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionDeactivate, domain.ResourceUser, user.ID.String(), "Deactivated user")
	s.logger.Info("Staff user deactivated",
		zap.String("email", user.Email),
		zap.String("deactivatedBy", actor.Email),
	)
	return nil
}

// Reactivate reactivates a user
func (s *UserService) Reactivate(ctx context.Context, actor *domain.User, targetUserID uuid.UUID) error {
	user, err := s.GetByID(ctx, targetUserID)
	if err != nil {
		return err
	}
	if user.IsActive {
		return nil
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, actor, domain.ActionReactivate, domain.ResourceUser, user.ID.String(), "Reactivated user")
	s.logger.Info("Staff user reactivated",
		zap.String("email", user.Email),
		zap.String("reactivatedBy", actor.Email),
	)
	return nil
}

// TouchLastLogin records the login time; failures are only logged
func (s *UserService) TouchLastLogin(ctx context.Context, id uuid.UUID) {
	if err := s.userRepo.TouchLastLogin(ctx, id, time.Now().UTC()); err != nil {
		s.logger.Warn("Failed to update user last login", zap.Error(err), zap.String("user_id", id.String()))
	}
}

func (s *UserService) ensureNotLastAdmin(ctx context.Context) error {
	count, err := s.userRepo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return response.ErrLastAdmin
	}
	return nil
}
