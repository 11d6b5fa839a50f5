package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// IntentRepository persists payment intents (delivery escrows and pitch
// investments). Status updates are compare-and-set against an expected status
// list; the settlement engine relies on that to keep racing confirmation
// triggers from double-transitioning an intent.
type IntentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewIntentRepository creates a new intent repository
func NewIntentRepository(db *sqlx.DB, logger *zap.Logger) *IntentRepository {
	return &IntentRepository{db: db, logger: logger}
}

const intentColumns = `
	id, kind, payer_id, payee_id, gross_amount, payment_amount, platform_fee,
	net_payout_amount, currency, payment_type, status, submission_id, pitch_id,
	checkout_session_id, gateway_payout_id, created_at, updated_at`

// Create inserts a new payment intent
func (r *IntentRepository) Create(ctx context.Context, intent *entities.PaymentIntent) error {
	if err := intent.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	query := `
		INSERT INTO payment_intents (
			id, kind, payer_id, payee_id, gross_amount, payment_amount, platform_fee,
			net_payout_amount, currency, payment_type, status, submission_id, pitch_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`

	now := time.Now()
	intent.CreatedAt = now
	intent.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		intent.ID, string(intent.Kind), intent.PayerID, intent.PayeeID,
		intent.GrossAmount, intent.PaymentAmount, intent.PlatformFee,
		intent.NetPayoutAmount, intent.Currency, string(intent.PaymentType),
		string(intent.Status), intent.SubmissionID, intent.PitchID, now,
	)
	if err != nil {
		r.logger.Error("Failed to create payment intent",
			zap.String("intent_id", intent.ID.String()),
			zap.Error(err))
		return fmt.Errorf("create payment intent: %w", err)
	}

	return nil
}

// GetByID retrieves a payment intent by id
func (r *IntentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`

	intent := &entities.PaymentIntent{}
	err := r.db.GetContext(ctx, intent, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get payment intent: %w", err)
	}

	return intent, nil
}

// GetByCheckoutSession retrieves the intent that owns a gateway session
func (r *IntentRepository) GetByCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE checkout_session_id = $1`

	intent := &entities.PaymentIntent{}
	err := r.db.GetContext(ctx, intent, query, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get payment intent by session: %w", err)
	}

	return intent, nil
}

// HasActiveForSubmission reports whether a submission already has an intent in
// an active state
func (r *IntentRepository) HasActiveForSubmission(ctx context.Context, submissionID uuid.UUID) (bool, error) {
	return r.hasActive(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_intents WHERE submission_id = $1 AND status = ANY($2))`,
		submissionID)
}

// HasActiveForPitchInvestor reports whether a (pitch, investor) pair already
// has an intent in an active state
func (r *IntentRepository) HasActiveForPitchInvestor(ctx context.Context, pitchID, investorID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payment_intents WHERE pitch_id = $1 AND payer_id = $2 AND status = ANY($3))`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, pitchID, investorID, activeStatusArray())
	if err != nil {
		return false, fmt.Errorf("check active intent for pitch: %w", err)
	}
	return exists, nil
}

func (r *IntentRepository) hasActive(ctx context.Context, query string, key uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, key, activeStatusArray())
	if err != nil {
		return false, fmt.Errorf("check active intent: %w", err)
	}
	return exists, nil
}

func activeStatusArray() pq.StringArray {
	statuses := make(pq.StringArray, len(entities.ActiveIntentStatuses))
	for i, s := range entities.ActiveIntentStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// SetCheckoutSession stores the gateway session id, once
func (r *IntentRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `
		UPDATE payment_intents
		SET checkout_session_id = $2, updated_at = $3
		WHERE id = $1 AND checkout_session_id IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, sessionID, time.Now())
	if err != nil {
		return fmt.Errorf("set checkout session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("checkout session already set for intent %s", id)
	}

	return nil
}

// TransitionStatus moves the intent to a new status only if its current
// status is in the expected set. Returns false (no error) when the row had
// already advanced, which callers treat as an idempotent no-op.
func (r *IntentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.IntentStatus, to entities.IntentStatus) (bool, error) {
	expected := make(pq.StringArray, len(from))
	for i, s := range from {
		expected[i] = string(s)
	}

	query := `
		UPDATE payment_intents
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = ANY($2)
	`

	result, err := r.db.ExecContext(ctx, query, id, expected, string(to), time.Now())
	if err != nil {
		return false, fmt.Errorf("transition intent status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition intent status: %w", err)
	}

	return rows > 0, nil
}

// SetPayoutInitiated stores the gateway payout id and moves the intent to
// payout_initiated in one statement. Guarded on the payment-received states
// so a racing confirmation cannot double-initiate; a retried payout after a
// failed one overwrites the stale payout id.
func (r *IntentRepository) SetPayoutInitiated(ctx context.Context, id uuid.UUID, payoutID string) error {
	query := `
		UPDATE payment_intents
		SET status = $3, gateway_payout_id = $2, updated_at = $4
		WHERE id = $1 AND status = ANY($5)
	`

	received := pq.StringArray{
		string(entities.IntentStatusPaymentReceived),
		string(entities.IntentStatusPartialPaymentReceived),
	}

	result, err := r.db.ExecContext(ctx, query, id, payoutID, string(entities.IntentStatusPayoutInitiated), time.Now(), received)
	if err != nil {
		return fmt.Errorf("set payout initiated: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("intent %s is not awaiting payout", id)
	}

	return nil
}

// GetByPayoutID retrieves the intent that owns a gateway payout
func (r *IntentRepository) GetByPayoutID(ctx context.Context, payoutID string) (*entities.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE gateway_payout_id = $1`

	intent := &entities.PaymentIntent{}
	err := r.db.GetContext(ctx, intent, query, payoutID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get payment intent by payout: %w", err)
	}

	return intent, nil
}

// ListUnconfirmedWithSession returns intents still awaiting confirmation that
// have an open checkout session, for the reconciliation sweep. Intents
// younger than minAge are skipped to give the webhook a chance first.
func (r *IntentRepository) ListUnconfirmedWithSession(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*entities.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE status = ANY($1)
		  AND checkout_session_id IS NOT NULL
		  AND created_at < $2
		  AND created_at > $3
		ORDER BY created_at ASC
		LIMIT $4
	`

	pending := pq.StringArray{
		string(entities.IntentStatusAwaitingPayment),
		string(entities.IntentStatusReviewApproved),
		string(entities.IntentStatusRevisionExhaustedAwaitingPayment),
	}

	now := time.Now()
	intents := []*entities.PaymentIntent{}
	err := r.db.SelectContext(ctx, &intents, query, pending, now.Add(-minAge), now.Add(-maxAge), limit)
	if err != nil {
		return nil, fmt.Errorf("list unconfirmed intents: %w", err)
	}

	return intents, nil
}
