package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashoutStatus represents the lifecycle of a cashout request
type CashoutStatus string

const (
	CashoutStatusPending   CashoutStatus = "pending"
	CashoutStatusInitiated CashoutStatus = "initiated"
	CashoutStatusCompleted CashoutStatus = "completed"
	CashoutStatusFailed    CashoutStatus = "failed"
)

// Validate checks if the cashout status is valid
func (s CashoutStatus) Validate() error {
	switch s {
	case CashoutStatusPending, CashoutStatusInitiated, CashoutStatusCompleted, CashoutStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid cashout status: %s", s)
	}
}

// CashoutRequest is a withdrawal of available wallet balance to an external
// payout destination
type CashoutRequest struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	WalletID        uuid.UUID       `json:"wallet_id" db:"wallet_id"`
	Currency        string          `json:"currency" db:"currency"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Status          CashoutStatus   `json:"status" db:"status"`
	IdempotencyKey  string          `json:"idempotency_key" db:"idempotency_key"`
	DestinationID   uuid.UUID       `json:"destination_id" db:"destination_id"`
	GatewayPayoutID *string         `json:"gateway_payout_id,omitempty" db:"gateway_payout_id"`
	FailureReason   *string         `json:"failure_reason,omitempty" db:"failure_reason"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate validates the cashout request
func (c *CashoutRequest) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("cashout ID is required")
	}
	if c.UserID == uuid.Nil {
		return fmt.Errorf("cashout user is required")
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("cashout amount must be positive")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", c.Currency)
	}
	if c.IdempotencyKey == "" {
		return fmt.Errorf("idempotency key is required")
	}
	return c.Status.Validate()
}
