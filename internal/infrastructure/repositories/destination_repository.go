package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// DestinationRepository persists payout destinations. Each user keeps at most
// one destination per currency rail; Upsert replaces it in place.
type DestinationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDestinationRepository creates a new destination repository
func NewDestinationRepository(db *sqlx.DB, logger *zap.Logger) *DestinationRepository {
	return &DestinationRepository{db: db, logger: logger}
}

const destinationColumns = `
	id, user_id, provider, provider_id, account_id, masked_account,
	payout_mode, created_at, updated_at`

// GetByID retrieves a destination by id
func (r *DestinationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PayoutDestination, error) {
	query := `SELECT ` + destinationColumns + ` FROM payout_destinations WHERE id = $1`

	dest := &entities.PayoutDestination{}
	err := r.db.GetContext(ctx, dest, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get payout destination: %w", err)
	}

	return dest, nil
}

// GetByUser retrieves a user's payout destination. Returns
// ErrNoPayoutDestination when the user has none configured.
func (r *DestinationRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.PayoutDestination, error) {
	query := `SELECT ` + destinationColumns + ` FROM payout_destinations WHERE user_id = $1`

	dest := &entities.PayoutDestination{}
	err := r.db.GetContext(ctx, dest, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNoPayoutDestination
		}
		return nil, fmt.Errorf("get payout destination: %w", err)
	}

	return dest, nil
}

// Upsert creates or replaces a user's payout destination
func (r *DestinationRepository) Upsert(ctx context.Context, dest *entities.PayoutDestination) error {
	if err := dest.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	query := `
		INSERT INTO payout_destinations (
			id, user_id, provider, provider_id, account_id, masked_account,
			payout_mode, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			provider = EXCLUDED.provider,
			provider_id = EXCLUDED.provider_id,
			account_id = EXCLUDED.account_id,
			masked_account = EXCLUDED.masked_account,
			payout_mode = EXCLUDED.payout_mode,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	dest.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		dest.ID, dest.UserID, string(dest.Provider), dest.ProviderID,
		dest.AccountID, dest.MaskedAccount, string(dest.PayoutMode), now,
	).Scan(&dest.ID, &dest.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert payout destination",
			zap.String("user_id", dest.UserID.String()),
			zap.Error(err))
		return fmt.Errorf("upsert payout destination: %w", err)
	}

	return nil
}
