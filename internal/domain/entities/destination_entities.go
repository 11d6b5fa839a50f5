package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PayoutMode controls where settled funds go for a recipient
type PayoutMode string

const (
	// PayoutModeWallet credits the internal wallet; the recipient cashes out later
	PayoutModeWallet PayoutMode = "wallet"
	// PayoutModeDirect pushes a gateway payout straight to the stored destination
	PayoutModeDirect PayoutMode = "direct"
)

// Validate checks if the payout mode is valid
func (m PayoutMode) Validate() error {
	switch m {
	case PayoutModeWallet, PayoutModeDirect:
		return nil
	default:
		return fmt.Errorf("invalid payout mode: %s", m)
	}
}

// DestinationProvider tags the external payout rail
type DestinationProvider string

const (
	DestinationProviderMomo   DestinationProvider = "momo"
	DestinationProviderBank   DestinationProvider = "bank"
	DestinationProviderWallet DestinationProvider = "wallet"
)

// Validate checks if the destination provider is valid
func (p DestinationProvider) Validate() error {
	switch p {
	case DestinationProviderMomo, DestinationProviderBank, DestinationProviderWallet:
		return nil
	default:
		return fmt.Errorf("invalid destination provider: %s", p)
	}
}

// PayoutDestination stores a user's external payout target. ProviderID is the
// gateway-side identifier (momo provider code, bank code, wallet provider);
// AccountID is the phone number, account number, or wallet id.
type PayoutDestination struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	UserID        uuid.UUID           `json:"user_id" db:"user_id"`
	Provider      DestinationProvider `json:"provider" db:"provider"`
	ProviderID    string              `json:"provider_id" db:"provider_id"`
	AccountID     string              `json:"-" db:"account_id"`
	MaskedAccount string              `json:"masked_account" db:"masked_account"`
	PayoutMode    PayoutMode          `json:"payout_mode" db:"payout_mode"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Validate validates the payout destination
func (d *PayoutDestination) Validate() error {
	if d.UserID == uuid.Nil {
		return fmt.Errorf("destination user is required")
	}
	if err := d.Provider.Validate(); err != nil {
		return err
	}
	if err := d.PayoutMode.Validate(); err != nil {
		return err
	}
	if d.PayoutMode == PayoutModeDirect && d.AccountID == "" {
		return fmt.Errorf("direct payout requires an account id")
	}
	return nil
}

// MaskAccount produces the masked form stored alongside the raw account id
func MaskAccount(account string) string {
	if len(account) <= 4 {
		return "****"
	}
	return "****" + account[len(account)-4:]
}
