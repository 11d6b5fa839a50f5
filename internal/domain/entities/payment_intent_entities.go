package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntentKind distinguishes the two payment intent variants
type IntentKind string

const (
	IntentKindDeliveryEscrow  IntentKind = "delivery_escrow"
	IntentKindPitchInvestment IntentKind = "pitch_investment"
)

// Validate checks if the intent kind is valid
func (k IntentKind) Validate() error {
	switch k {
	case IntentKindDeliveryEscrow, IntentKindPitchInvestment:
		return nil
	default:
		return fmt.Errorf("invalid intent kind: %s", k)
	}
}

// IntentStatus represents the settlement state of a payment intent
type IntentStatus string

const (
	// Pre-payment states
	IntentStatusAwaitingPayment IntentStatus = "awaiting_payment"
	// Delivery-only pre-payment states that still accept confirmation
	IntentStatusReviewApproved                   IntentStatus = "review_approved"
	IntentStatusRevisionExhaustedAwaitingPayment IntentStatus = "revision_exhausted_awaiting_payment"

	// Payment confirmed, payout pending
	IntentStatusPaymentReceived        IntentStatus = "payment_received"
	IntentStatusPartialPaymentReceived IntentStatus = "partial_payment_received"

	// Terminal states (from the settlement engine's point of view)
	IntentStatusPayoutInitiated        IntentStatus = "payout_initiated"
	IntentStatusCompleted              IntentStatus = "completed"
	IntentStatusPartialPayoutCompleted IntentStatus = "partial_payout_completed"
)

// Validate checks if the intent status is valid
func (s IntentStatus) Validate() error {
	switch s {
	case IntentStatusAwaitingPayment, IntentStatusReviewApproved,
		IntentStatusRevisionExhaustedAwaitingPayment,
		IntentStatusPaymentReceived, IntentStatusPartialPaymentReceived,
		IntentStatusPayoutInitiated, IntentStatusCompleted, IntentStatusPartialPayoutCompleted:
		return nil
	default:
		return fmt.Errorf("invalid intent status: %s", s)
	}
}

// IsTerminal returns true when the settlement engine no longer tracks the intent
func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusPayoutInitiated ||
		s == IntentStatusCompleted ||
		s == IntentStatusPartialPayoutCompleted
}

// ActiveIntentStatuses are the states that block creation of a new intent
// for the same underlying work item: every state that still accepts a
// confirmation, plus everything confirmed or settled in full. A completed
// partial payout leaves the remainder collectible, so it alone does not
// block.
var ActiveIntentStatuses = []IntentStatus{
	IntentStatusAwaitingPayment,
	IntentStatusReviewApproved,
	IntentStatusRevisionExhaustedAwaitingPayment,
	IntentStatusPaymentReceived,
	IntentStatusPartialPaymentReceived,
	IntentStatusPayoutInitiated,
	IntentStatusCompleted,
}

// AcceptsConfirmation reports whether a confirmation may still transition the
// intent. Delivery escrows accept confirmation from the review/revision states
// as well; investments only from awaiting_payment.
func (s IntentStatus) AcceptsConfirmation(kind IntentKind) bool {
	if s == IntentStatusAwaitingPayment {
		return true
	}
	if kind == IntentKindDeliveryEscrow {
		return s == IntentStatusReviewApproved || s == IntentStatusRevisionExhaustedAwaitingPayment
	}
	return false
}

// PaymentType distinguishes full from partial (upfront) payments
type PaymentType string

const (
	PaymentTypeFull    PaymentType = "full"
	PaymentTypePartial PaymentType = "partial"
)

// Validate checks if the payment type is valid
func (p PaymentType) Validate() error {
	switch p {
	case PaymentTypeFull, PaymentTypePartial:
		return nil
	default:
		return fmt.Errorf("invalid payment type: %s", p)
	}
}

// PaymentIntent is an escrow or investment awaiting settlement.
// GrossAmount is what the payer owes in total; PaymentAmount is what the
// current checkout collects (equal to GrossAmount for full payments, a
// configured percentage for partial ones). NetPayoutAmount + PlatformFee
// always equals GrossAmount.
type PaymentIntent struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Kind            IntentKind      `json:"kind" db:"kind"`
	PayerID         uuid.UUID       `json:"payer_id" db:"payer_id"`
	PayeeID         uuid.UUID       `json:"payee_id" db:"payee_id"`
	GrossAmount     decimal.Decimal `json:"gross_amount" db:"gross_amount"`
	PaymentAmount   decimal.Decimal `json:"payment_amount" db:"payment_amount"`
	PlatformFee     decimal.Decimal `json:"platform_fee" db:"platform_fee"`
	NetPayoutAmount decimal.Decimal `json:"net_payout_amount" db:"net_payout_amount"`
	Currency        string          `json:"currency" db:"currency"`
	PaymentType     PaymentType     `json:"payment_type" db:"payment_type"`
	Status          IntentStatus    `json:"status" db:"status"`

	// Delivery escrow fields
	SubmissionID *uuid.UUID `json:"submission_id,omitempty" db:"submission_id"`

	// Pitch investment fields
	PitchID *uuid.UUID `json:"pitch_id,omitempty" db:"pitch_id"`

	// Gateway references, each set once
	CheckoutSessionID *string `json:"checkout_session_id,omitempty" db:"checkout_session_id"`
	GatewayPayoutID   *string `json:"gateway_payout_id,omitempty" db:"gateway_payout_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate validates the payment intent
func (p *PaymentIntent) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("intent ID is required")
	}
	if err := p.Kind.Validate(); err != nil {
		return err
	}
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if err := p.PaymentType.Validate(); err != nil {
		return err
	}
	if p.PayerID == uuid.Nil || p.PayeeID == uuid.Nil {
		return fmt.Errorf("payer and payee are required")
	}
	if !p.GrossAmount.IsPositive() {
		return fmt.Errorf("gross amount must be positive")
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("invalid currency: %s", p.Currency)
	}
	if !p.NetPayoutAmount.Add(p.PlatformFee).Equal(p.GrossAmount) {
		return fmt.Errorf("fee split does not reconcile: net=%s fee=%s gross=%s",
			p.NetPayoutAmount.String(), p.PlatformFee.String(), p.GrossAmount.String())
	}
	if p.Kind == IntentKindDeliveryEscrow && p.SubmissionID == nil {
		return fmt.Errorf("delivery escrow requires a submission")
	}
	if p.Kind == IntentKindPitchInvestment && p.PitchID == nil {
		return fmt.Errorf("pitch investment requires a pitch")
	}
	return nil
}

// WorkItemKey identifies the underlying work item for the active-intent guard
func (p *PaymentIntent) WorkItemKey() string {
	if p.Kind == IntentKindDeliveryEscrow && p.SubmissionID != nil {
		return fmt.Sprintf("submission:%s", p.SubmissionID)
	}
	if p.PitchID != nil {
		return fmt.Sprintf("pitch:%s:investor:%s", p.PitchID, p.PayerID)
	}
	return ""
}

// EvidenceSource identifies which trigger path produced payment evidence
type EvidenceSource string

const (
	EvidenceSourceWebhook   EvidenceSource = "webhook"
	EvidenceSourceFallback  EvidenceSource = "fallback"
	EvidenceSourceDevBypass EvidenceSource = "dev_bypass"
)

// PaymentEvidence is the verified confirmation each trigger path hands to the
// settlement engine. Webhook and fallback evidence carries the gateway session
// fields it was checked against; dev bypass carries only the source marker.
type PaymentEvidence struct {
	Source    EvidenceSource
	SessionID string
	Status    string
	Amount    decimal.Decimal
	Currency  string
	Reference string
}
