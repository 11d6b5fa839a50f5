package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRecord is the immutable audit record written when a payment
// settles. Uniqueness on (intent_id, payment_type) keeps replayed
// confirmations from duplicating the trail.
type TransactionRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	IntentID    uuid.UUID       `json:"intent_id" db:"intent_id"`
	IntentKind  IntentKind      `json:"intent_kind" db:"intent_kind"`
	PaymentType PaymentType     `json:"payment_type" db:"payment_type"`
	PayerID     uuid.UUID       `json:"payer_id" db:"payer_id"`
	PayeeID     uuid.UUID       `json:"payee_id" db:"payee_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PlatformFee decimal.Decimal `json:"platform_fee" db:"platform_fee"`
	NetAmount   decimal.Decimal `json:"net_amount" db:"net_amount"`
	Currency    string          `json:"currency" db:"currency"`
	SessionID   *string         `json:"session_id,omitempty" db:"session_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Validate validates the transaction record
func (t *TransactionRecord) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("transaction ID is required")
	}
	if t.IntentID == uuid.Nil {
		return fmt.Errorf("intent ID is required")
	}
	if err := t.IntentKind.Validate(); err != nil {
		return err
	}
	if err := t.PaymentType.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction amount must be positive")
	}
	return nil
}
