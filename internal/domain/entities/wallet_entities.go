package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType classifies a wallet ledger mutation
type LedgerEntryType string

const (
	LedgerEntryCredit     LedgerEntryType = "credit"
	LedgerEntryDebit      LedgerEntryType = "debit"
	LedgerEntryHold       LedgerEntryType = "hold"
	LedgerEntryRelease    LedgerEntryType = "release"
	LedgerEntryAdjustment LedgerEntryType = "adjustment"
)

// Validate checks if the ledger entry type is valid
func (t LedgerEntryType) Validate() error {
	switch t {
	case LedgerEntryCredit, LedgerEntryDebit, LedgerEntryHold, LedgerEntryRelease, LedgerEntryAdjustment:
		return nil
	default:
		return fmt.Errorf("invalid ledger entry type: %s", t)
	}
}

// LedgerSourceType names the record that caused a ledger mutation
type LedgerSourceType string

const (
	LedgerSourceDeliveryEscrow  LedgerSourceType = "delivery_escrow"
	LedgerSourcePitchInvestment LedgerSourceType = "pitch_investment"
	LedgerSourceCashout         LedgerSourceType = "cashout"
	LedgerSourceAdjustment      LedgerSourceType = "adjustment"
)

// Validate checks if the ledger source type is valid
func (t LedgerSourceType) Validate() error {
	switch t {
	case LedgerSourceDeliveryEscrow, LedgerSourcePitchInvestment, LedgerSourceCashout, LedgerSourceAdjustment:
		return nil
	default:
		return fmt.Errorf("invalid ledger source type: %s", t)
	}
}

// Wallet holds a user's balances for one currency. Balances are derived from
// ledger entries and mutated only through the apply_wallet_mutation procedure.
type Wallet struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Currency         string          `json:"currency" db:"currency"`
	AvailableBalance decimal.Decimal `json:"available_balance" db:"available_balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance" db:"pending_balance"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate validates the wallet
func (w *Wallet) Validate() error {
	if w.UserID == uuid.Nil {
		return fmt.Errorf("wallet user is required")
	}
	if len(w.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", w.Currency)
	}
	if w.AvailableBalance.IsNegative() || w.PendingBalance.IsNegative() {
		return fmt.Errorf("wallet balances cannot be negative")
	}
	return nil
}

// WalletLedgerEntry is one immutable record of a balance mutation
type WalletLedgerEntry struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	WalletID       uuid.UUID        `json:"wallet_id" db:"wallet_id"`
	UserID         uuid.UUID        `json:"user_id" db:"user_id"`
	Currency       string           `json:"currency" db:"currency"`
	EntryType      LedgerEntryType  `json:"entry_type" db:"entry_type"`
	Amount         decimal.Decimal  `json:"amount" db:"amount"`
	AvailableDelta decimal.Decimal  `json:"available_delta" db:"available_delta"`
	PendingDelta   decimal.Decimal  `json:"pending_delta" db:"pending_delta"`
	SourceType     LedgerSourceType `json:"source_type" db:"source_type"`
	SourceID       string           `json:"source_id" db:"source_id"`
	IdempotencyKey string           `json:"idempotency_key" db:"idempotency_key"`
	Metadata       []byte           `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// ApplyMutationParams carries one wallet mutation request
type ApplyMutationParams struct {
	UserID         uuid.UUID
	Currency       string
	AvailableDelta decimal.Decimal
	PendingDelta   decimal.Decimal
	EntryType      LedgerEntryType
	Amount         decimal.Decimal
	SourceType     LedgerSourceType
	SourceID       string
	IdempotencyKey string
	Metadata       map[string]any
}

// Validate validates the mutation parameters
func (p *ApplyMutationParams) Validate() error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user is required")
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", p.Currency)
	}
	if err := p.EntryType.Validate(); err != nil {
		return err
	}
	if err := p.SourceType.Validate(); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("mutation amount must be positive")
	}
	if p.SourceID == "" {
		return fmt.Errorf("source id is required")
	}
	if p.IdempotencyKey == "" {
		return fmt.Errorf("idempotency key is required")
	}
	return nil
}
