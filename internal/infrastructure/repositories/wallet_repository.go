package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// WalletRepository persists wallets and ledger entries. Balance mutation goes
// exclusively through ApplyMutation, which delegates to the
// apply_wallet_mutation stored procedure so the ledger insert and balance
// update commit as one unit.
type WalletRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *sqlx.DB, logger *zap.Logger) *WalletRepository {
	return &WalletRepository{db: db, logger: logger}
}

// GetOrCreateWallet lazily provisions a zero-balance wallet on first access
func (r *WalletRepository) GetOrCreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (id, user_id, currency, available_balance, pending_balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, $4, $4)
		ON CONFLICT (user_id, currency) DO UPDATE SET updated_at = wallets.updated_at
		RETURNING id, user_id, currency, available_balance, pending_balance, created_at, updated_at
	`

	wallet := &entities.Wallet{}
	err := r.db.QueryRowxContext(ctx, query, uuid.New(), userID, currency, time.Now()).StructScan(wallet)
	if err != nil {
		r.logger.Error("Failed to get or create wallet",
			zap.String("user_id", userID.String()),
			zap.String("currency", currency),
			zap.Error(err))
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}

	return wallet, nil
}

// GetWallet retrieves a wallet by user and currency
func (r *WalletRepository) GetWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	query := `
		SELECT id, user_id, currency, available_balance, pending_balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND currency = $2
	`

	wallet := &entities.Wallet{}
	err := r.db.GetContext(ctx, wallet, query, userID, currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	return wallet, nil
}

// ApplyMutation applies one ledger mutation atomically via the
// apply_wallet_mutation stored procedure. A repeated idempotency key returns
// the original entry id without re-applying.
func (r *WalletRepository) ApplyMutation(ctx context.Context, params *entities.ApplyMutationParams) (uuid.UUID, error) {
	if err := params.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	metadata := []byte("{}")
	if params.Metadata != nil {
		data, err := json.Marshal(params.Metadata)
		if err != nil {
			return uuid.Nil, fmt.Errorf("marshal mutation metadata: %w", err)
		}
		metadata = data
	}

	query := `SELECT apply_wallet_mutation($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var entryID uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		params.UserID,
		params.Currency,
		params.AvailableDelta,
		params.PendingDelta,
		string(params.EntryType),
		params.Amount,
		string(params.SourceType),
		params.SourceID,
		params.IdempotencyKey,
		metadata,
	).Scan(&entryID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if strings.Contains(pqErr.Message, "INSUFFICIENT_FUNDS") {
				return uuid.Nil, entities.ErrInsufficientFunds
			}
			if strings.Contains(pqErr.Message, "WALLET_NOT_FOUND") {
				return uuid.Nil, entities.ErrWalletNotFound
			}
		}
		r.logger.Error("Failed to apply wallet mutation",
			zap.String("user_id", params.UserID.String()),
			zap.String("entry_type", string(params.EntryType)),
			zap.String("idempotency_key", params.IdempotencyKey),
			zap.Error(err))
		return uuid.Nil, fmt.Errorf("apply wallet mutation: %w", err)
	}

	return entryID, nil
}

// GetEntryByIdempotencyKey fetches a ledger entry by its idempotency key
func (r *WalletRepository) GetEntryByIdempotencyKey(ctx context.Context, key string) (*entities.WalletLedgerEntry, error) {
	query := `
		SELECT id, wallet_id, user_id, currency, entry_type, amount,
		       available_delta, pending_delta, source_type, source_id,
		       idempotency_key, metadata, created_at
		FROM wallet_ledger_entries
		WHERE idempotency_key = $1
	`

	entry := &entities.WalletLedgerEntry{}
	err := r.db.GetContext(ctx, entry, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry by idempotency key: %w", err)
	}

	return entry, nil
}

// GetLedgerEntries returns a user's ledger entries for one currency, newest first
func (r *WalletRepository) GetLedgerEntries(ctx context.Context, userID uuid.UUID, currency string, limit, offset int) ([]*entities.WalletLedgerEntry, error) {
	query := `
		SELECT id, wallet_id, user_id, currency, entry_type, amount,
		       available_delta, pending_delta, source_type, source_id,
		       idempotency_key, metadata, created_at
		FROM wallet_ledger_entries
		WHERE user_id = $1 AND currency = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	entries := []*entities.WalletLedgerEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, userID, currency, limit, offset); err != nil {
		return nil, fmt.Errorf("get ledger entries: %w", err)
	}

	return entries, nil
}
