package paygate

import "context"

// Gateway is the boundary the settlement and cashout services depend on
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req *CreateCheckoutSessionRequest) (*CheckoutSessionResult, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
	CreatePayout(ctx context.Context, req *CreatePayoutRequest) (*Payout, error)
	GetPayoutStatus(ctx context.Context, payoutID string) (*Payout, error)
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

var _ Gateway = (*Client)(nil)
