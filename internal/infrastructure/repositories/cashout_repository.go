package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// CashoutRepository persists cashout requests
type CashoutRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCashoutRepository creates a new cashout repository
func NewCashoutRepository(db *sqlx.DB, logger *zap.Logger) *CashoutRepository {
	return &CashoutRepository{db: db, logger: logger}
}

const cashoutColumns = `
	id, user_id, wallet_id, currency, amount, status, idempotency_key,
	destination_id, gateway_payout_id, failure_reason, created_at, updated_at`

// Create inserts a new cashout request. Returns ErrConflict when the
// idempotency key is already taken, so callers can fall back to a lookup.
func (r *CashoutRepository) Create(ctx context.Context, cashout *entities.CashoutRequest) error {
	if err := cashout.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	query := `
		INSERT INTO cashout_requests (
			id, user_id, wallet_id, currency, amount, status, idempotency_key,
			destination_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`

	now := time.Now()
	cashout.CreatedAt = now
	cashout.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		cashout.ID, cashout.UserID, cashout.WalletID, cashout.Currency,
		cashout.Amount, string(cashout.Status), cashout.IdempotencyKey,
		cashout.DestinationID, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entities.ErrConflict
		}
		r.logger.Error("Failed to create cashout request",
			zap.String("cashout_id", cashout.ID.String()),
			zap.Error(err))
		return fmt.Errorf("create cashout request: %w", err)
	}

	return nil
}

// GetByID retrieves a cashout request by id
func (r *CashoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.CashoutRequest, error) {
	query := `SELECT ` + cashoutColumns + ` FROM cashout_requests WHERE id = $1`

	cashout := &entities.CashoutRequest{}
	err := r.db.GetContext(ctx, cashout, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get cashout request: %w", err)
	}

	return cashout, nil
}

// GetByIdempotencyKey retrieves an existing cashout for a client key.
// Returns (nil, nil) when none exists.
func (r *CashoutRepository) GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entities.CashoutRequest, error) {
	query := `SELECT ` + cashoutColumns + ` FROM cashout_requests WHERE user_id = $1 AND idempotency_key = $2`

	cashout := &entities.CashoutRequest{}
	err := r.db.GetContext(ctx, cashout, query, userID, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cashout by idempotency key: %w", err)
	}

	return cashout, nil
}

// GetByPayoutID retrieves the cashout that owns a gateway payout
func (r *CashoutRepository) GetByPayoutID(ctx context.Context, payoutID string) (*entities.CashoutRequest, error) {
	query := `SELECT ` + cashoutColumns + ` FROM cashout_requests WHERE gateway_payout_id = $1`

	cashout := &entities.CashoutRequest{}
	err := r.db.GetContext(ctx, cashout, query, payoutID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get cashout by payout id: %w", err)
	}

	return cashout, nil
}

// MarkInitiated records the gateway payout id and moves a pending cashout to
// initiated
func (r *CashoutRepository) MarkInitiated(ctx context.Context, id uuid.UUID, payoutID string) error {
	query := `
		UPDATE cashout_requests
		SET status = $2, gateway_payout_id = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, id,
		string(entities.CashoutStatusInitiated), payoutID, time.Now(),
		string(entities.CashoutStatusPending))
	if err != nil {
		return fmt.Errorf("mark cashout initiated: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("cashout %s is not pending", id)
	}

	return nil
}

// MarkCompleted finalizes an initiated cashout. Returns false when the row
// had already left the initiated state.
func (r *CashoutRepository) MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE cashout_requests
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.ExecContext(ctx, query, id,
		string(entities.CashoutStatusCompleted), time.Now(),
		string(entities.CashoutStatusInitiated))
	if err != nil {
		return false, fmt.Errorf("mark cashout completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark cashout completed: %w", err)
	}
	return rows > 0, nil
}

// MarkFailed records a failure reason on a pending or initiated cashout.
// Returns false when the row had already reached a terminal state.
func (r *CashoutRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE cashout_requests
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1 AND status = ANY($5)
	`

	result, err := r.db.ExecContext(ctx, query, id,
		string(entities.CashoutStatusFailed), reason, time.Now(),
		pq.StringArray{string(entities.CashoutStatusPending), string(entities.CashoutStatusInitiated)})
	if err != nil {
		return false, fmt.Errorf("mark cashout failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark cashout failed: %w", err)
	}
	return rows > 0, nil
}

// ListByUser returns a user's cashout history, newest first
func (r *CashoutRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CashoutRequest, error) {
	query := `SELECT ` + cashoutColumns + `
		FROM cashout_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	cashouts := []*entities.CashoutRequest{}
	err := r.db.SelectContext(ctx, &cashouts, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cashouts: %w", err)
	}

	return cashouts, nil
}
