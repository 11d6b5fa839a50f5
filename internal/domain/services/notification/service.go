package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

// NotificationRepository interface for notification persistence
type NotificationRepository interface {
	Insert(ctx context.Context, n *entities.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error)
}

// Service records in-app notification rows after settlement and cashout
// transitions commit. Failures are logged and swallowed; a lost notification
// never fails a money-moving operation.
type Service struct {
	repo   NotificationRepository
	cfg    config.NotificationConfig
	logger *logger.Logger
}

// NewService creates a new notification service
func NewService(repo NotificationRepository, cfg config.NotificationConfig, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Notify records one notification for a user
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, notifType entities.NotificationType, refType, refID, message string) {
	if !s.cfg.Enabled {
		return
	}

	err := s.repo.Insert(ctx, &entities.Notification{
		UserID:  userID,
		Type:    notifType,
		RefType: refType,
		RefID:   refID,
		Message: message,
	})
	if err != nil {
		s.logger.Error("Failed to record notification",
			"user_id", userID,
			"type", notifType,
			"error", err)
	}
}

// ListForUser returns a page of the user's notifications, newest first
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
