package paygate

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// envelope is the gateway's standard response wrapper
type envelope struct {
	Success  bool            `json:"success"`
	Messages []string        `json:"messages,omitempty"`
	Result   json.RawMessage `json:"result"`
}

// CreateCheckoutSessionRequest describes a hosted checkout to open.
// Amount is in major units; the client converts to the gateway's minor-unit
// representation on the wire.
type CreateCheckoutSessionRequest struct {
	Name           string
	Description    string
	Amount         decimal.Decimal
	Currency       string
	Reference      string
	Metadata       map[string]string
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// CheckoutSessionResult is the subset of the creation response the caller needs
type CheckoutSessionResult struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirectUrl"`
	OrderNumber string `json:"orderNumber"`
}

// Session is the normalized view of a gateway checkout session, populated by
// the parser from the provider's partially-denormalized shapes
type Session struct {
	ID        string
	Status    string
	Amount    decimal.Decimal
	Currency  string
	Reference string
	Metadata  map[string]string
}

// DestinationKind tags the payout rail
type DestinationKind string

const (
	DestinationMomo   DestinationKind = "momo"
	DestinationBank   DestinationKind = "bank"
	DestinationWallet DestinationKind = "wallet"
)

// PayoutDestination is the tagged union of supported payout targets
type PayoutDestination struct {
	Kind DestinationKind
	// ProviderID is the gateway-side provider code (momo operator, bank code,
	// wallet provider)
	ProviderID string
	// Account is the phone number, account number, or wallet id depending on Kind
	Account string
}

// MarshalJSON emits the provider-specific destination shape
func (d PayoutDestination) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DestinationMomo:
		return json.Marshal(map[string]any{
			"type":        "momo",
			"provider":    d.ProviderID,
			"phoneNumber": d.Account,
		})
	case DestinationBank:
		return json.Marshal(map[string]any{
			"type":          "bank",
			"bankCode":      d.ProviderID,
			"accountNumber": d.Account,
		})
	case DestinationWallet:
		return json.Marshal(map[string]any{
			"type":     "wallet",
			"provider": d.ProviderID,
			"walletId": d.Account,
		})
	default:
		return nil, fmt.Errorf("unknown destination kind: %s", d.Kind)
	}
}

// CreatePayoutRequest describes a disbursement to an external account.
// Amount is in major units.
type CreatePayoutRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Destination    PayoutDestination
	Metadata       map[string]string
	IdempotencyKey string
}

// Payout is the gateway's view of a disbursement
type Payout struct {
	ID       string
	Status   string
	Amount   decimal.Decimal
	Currency string
}

// payoutResult is the wire shape of a payout response
type payoutResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount struct {
		Currency string `json:"currency"`
		Value    int64  `json:"value"`
	} `json:"amount"`
}

func (r *payoutResult) toPayout() *Payout {
	return &Payout{
		ID:       r.ID,
		Status:   r.Status,
		Amount:   decimal.New(r.Amount.Value, -2),
		Currency: r.Amount.Currency,
	}
}
