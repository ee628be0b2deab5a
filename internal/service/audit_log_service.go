package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fieldops-service/internal/domain"
	"fieldops-service/internal/metrics"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/response"
)

// AuditLogService handles audit log business logic
type AuditLogService struct {
	repo    AuditLogRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(repo AuditLogRepository, m *metrics.Metrics, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Log creates an audit log entry. Failures are logged and never fail the caller.
func (s *AuditLogService) Log(ctx context.Context, actor *domain.User, action domain.ActionType, resourceType domain.ResourceType, resourceID, details string) {
	if actor == nil {
		return
	}
	entry := &domain.AuditLog{
		UserID:       actor.ID,
		UserEmail:    actor.Email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create audit log",
			zap.Error(err),
			zap.String("action", string(action)),
			zap.String("resourceType", string(resourceType)),
			zap.String("resourceID", resourceID),
		)
	}
}

// List lists audit logs with filtering and pagination
func (s *AuditLogService) List(ctx context.Context, opts repository.AuditLogListOptions) ([]domain.AuditLog, int64, error) {
	return s.repo.List(ctx, opts)
}

// GetByID gets an audit log by ID
func (s *AuditLogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrAuditLogNotFound
		}
		return nil, err
	}
	return entry, nil
}

// PurgeOlderThan removes entries older than the retention window
func (s *AuditLogService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.metrics.AddAuditLogsPurged(deleted)
	s.logger.Info("Audit logs purged",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
	return deleted, nil
}
