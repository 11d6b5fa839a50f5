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

// TransactionRepository persists settlement audit records
type TransactionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

// Record inserts the audit record for a settled payment. The insert is
// idempotent on (intent_id, payment_type); a replayed confirmation writes
// nothing and returns false.
func (r *TransactionRepository) Record(ctx context.Context, tx *entities.TransactionRecord) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	query := `
		INSERT INTO transaction_records (
			id, intent_id, intent_kind, payment_type, payer_id, payee_id,
			amount, platform_fee, net_amount, currency, session_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (intent_id, payment_type) DO NOTHING
	`

	now := time.Now()
	tx.CreatedAt = now

	result, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.IntentID, string(tx.IntentKind), string(tx.PaymentType),
		tx.PayerID, tx.PayeeID, tx.Amount, tx.PlatformFee, tx.NetAmount,
		tx.Currency, tx.SessionID, now,
	)
	if err != nil {
		r.logger.Error("Failed to record transaction",
			zap.String("intent_id", tx.IntentID.String()),
			zap.Error(err))
		return false, fmt.Errorf("record transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record transaction: %w", err)
	}
	return rows > 0, nil
}

// ListByIntent returns the audit records for one intent, oldest first
func (r *TransactionRepository) ListByIntent(ctx context.Context, intentID uuid.UUID) ([]*entities.TransactionRecord, error) {
	query := `
		SELECT id, intent_id, intent_kind, payment_type, payer_id, payee_id,
		       amount, platform_fee, net_amount, currency, session_id, created_at
		FROM transaction_records
		WHERE intent_id = $1
		ORDER BY created_at ASC
	`

	records := []*entities.TransactionRecord{}
	err := r.db.SelectContext(ctx, &records, query, intentID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return records, nil
}
