package entities

import "errors"

// Sentinel errors shared across services. Handlers map these to coded HTTP
// responses; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrValidation marks malformed or out-of-range input; never retried
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized marks a caller without the required role or ownership
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound marks a missing record
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate active intent for the same work item
	ErrConflict = errors.New("conflicting active payment intent")

	// ErrInsufficientFunds is raised by the wallet ledger when an available
	// delta would drive the balance negative
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound is raised when a wallet row cannot be lazily created
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrAlreadyProcessed marks an idempotent no-op; callers treat it as success
	ErrAlreadyProcessed = errors.New("already processed")

	// ErrNoPayoutDestination marks a recipient without a configured destination
	ErrNoPayoutDestination = errors.New("no payout destination configured")
)

// ErrorResponse is the standard error payload returned by the API
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
