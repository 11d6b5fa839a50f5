package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// NotificationRepository persists in-app notifications
type NotificationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Insert stores a notification row
func (r *NotificationRepository) Insert(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, ref_type, ref_id, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, string(n.Type), n.RefType, n.RefID, n.Message, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	query := `
		SELECT id, user_id, type, ref_type, ref_id, message, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	notifications := []*entities.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}
