package cashout

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/pkg/logger"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
)

// CashoutRepository interface for cashout persistence
type CashoutRepository interface {
	Create(ctx context.Context, cashout *entities.CashoutRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.CashoutRequest, error)
	GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*entities.CashoutRequest, error)
	GetByPayoutID(ctx context.Context, payoutID string) (*entities.CashoutRequest, error)
	MarkInitiated(ctx context.Context, id uuid.UUID, payoutID string) error
	MarkCompleted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CashoutRequest, error)
}

// WalletHolder interface for the hold/release/settle ledger mutations
type WalletHolder interface {
	GetBalances(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error)
	PlaceHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error)
	ReleaseHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error)
	SettleHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error)
}

// DestinationStore interface for the caller's payout destination
type DestinationStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.PayoutDestination, error)
}

// Notifier interface for post-commit notification records
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType entities.NotificationType, refType, refID, message string)
}

// ErrFundsRestored wraps a gateway payout failure after the compensating
// release has run; the held funds are back in the available balance.
var ErrFundsRestored = errors.New("cashout failed, your funds were restored")

// Service handles withdrawals of available wallet balance to an external
// payout destination. The ledger hold happens before the gateway call; a
// gateway failure triggers a compensating release, never a partial state.
type Service struct {
	cashouts     CashoutRepository
	wallets      WalletHolder
	destinations DestinationStore
	gateway      paygate.Gateway
	notifier     Notifier
	cfg          config.CashoutConfig
	logger       *logger.Logger
}

// NewService creates a new cashout service
func NewService(
	cashouts CashoutRepository,
	wallets WalletHolder,
	destinations DestinationStore,
	gateway paygate.Gateway,
	notifier Notifier,
	cfg config.CashoutConfig,
	logger *logger.Logger,
) *Service {
	return &Service{
		cashouts:     cashouts,
		wallets:      wallets,
		destinations: destinations,
		gateway:      gateway,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// Request describes a cashout to execute
type Request struct {
	UserID         uuid.UUID
	Role           string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
}

// RequestCashout executes a withdrawal: hold the funds, create the gateway
// payout, then mark initiated. Replaying the same idempotency key returns the
// original request; if the original stalled before the payout id was
// recorded, the replay resumes the initiate sequence instead.
func (s *Service) RequestCashout(ctx context.Context, req *Request) (*entities.CashoutRequest, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", entities.ErrValidation)
	}
	if req.Amount.LessThan(decimal.NewFromFloat(s.cfg.MinAmount)) {
		return nil, fmt.Errorf("%w: minimum cashout is %.2f", entities.ErrValidation, s.cfg.MinAmount)
	}
	if len(req.Currency) != 3 {
		return nil, fmt.Errorf("%w: invalid currency", entities.ErrValidation)
	}
	if req.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", entities.ErrValidation)
	}
	if !slices.Contains(s.cfg.EligibleRoles, req.Role) {
		return nil, fmt.Errorf("%w: role %q cannot cash out", entities.ErrUnauthorized, req.Role)
	}

	existing, err := s.cashouts.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != entities.CashoutStatusPending {
		// The original reached a terminal-or-later state; hand it back as-is
		s.logger.Info("Cashout replayed (idempotent)",
			"cashout_id", existing.ID,
			"idempotency_key", req.IdempotencyKey)
		return existing, nil
	}

	dest, err := s.destinations.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// A pending row means the original request stalled mid-initiate.
		// Resume it: the hold and the gateway payout are both keyed on the
		// cashout id, so re-running those steps cannot double-execute.
		s.logger.Info("Resuming stalled cashout",
			"cashout_id", existing.ID,
			"idempotency_key", req.IdempotencyKey)
		return s.initiate(ctx, existing, dest)
	}

	wallet, err := s.wallets.GetBalances(ctx, req.UserID, req.Currency)
	if err != nil {
		if errors.Is(err, entities.ErrWalletNotFound) {
			return nil, entities.ErrInsufficientFunds
		}
		return nil, err
	}

	cashout := &entities.CashoutRequest{
		ID:             uuid.New(),
		UserID:         req.UserID,
		WalletID:       wallet.ID,
		Currency:       req.Currency,
		Amount:         req.Amount,
		Status:         entities.CashoutStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		DestinationID:  dest.ID,
	}
	if err := s.cashouts.Create(ctx, cashout); err != nil {
		if errors.Is(err, entities.ErrConflict) {
			// Lost a race against a concurrent retry with the same key
			return s.cashouts.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
		}
		return nil, err
	}

	return s.initiate(ctx, cashout, dest)
}

// initiate reserves the funds, creates the gateway payout, and records the
// payout id. Every step is keyed on the cashout id: the hold ledger entry
// and the gateway payout both deduplicate on it, so re-running this for a
// pending row resumes where the earlier attempt stopped.
func (s *Service) initiate(ctx context.Context, cashout *entities.CashoutRequest, dest *entities.PayoutDestination) (*entities.CashoutRequest, error) {
	// Reserve the funds before touching the gateway. The ledger enforces the
	// balance invariant; a short balance fails here, not mid-payout.
	if _, err := s.wallets.PlaceHold(ctx, cashout.UserID, cashout.Currency, cashout.Amount, cashout.ID); err != nil {
		if _, markErr := s.cashouts.MarkFailed(ctx, cashout.ID, err.Error()); markErr != nil {
			s.logger.Error("Failed to mark cashout failed", "cashout_id", cashout.ID, "error", markErr)
		}
		metrics.CashoutsRequested.WithLabelValues("rejected").Inc()
		return nil, err
	}

	payout, err := s.gateway.CreatePayout(ctx, &paygate.CreatePayoutRequest{
		Amount:   cashout.Amount,
		Currency: cashout.Currency,
		Destination: paygate.PayoutDestination{
			Kind:       paygate.DestinationKind(dest.Provider),
			ProviderID: dest.ProviderID,
			Account:    dest.AccountID,
		},
		Metadata:       map[string]string{"cashout_id": cashout.ID.String()},
		IdempotencyKey: fmt.Sprintf("cashout:%s", cashout.ID),
	})
	if err != nil {
		return nil, s.compensate(ctx, cashout, err)
	}

	if err := s.cashouts.MarkInitiated(ctx, cashout.ID, payout.ID); err != nil {
		// The row stays pending and keeps the funds held; the next replay of
		// the same idempotency key re-runs this sequence and lands the same
		// gateway payout id.
		s.logger.Error("Failed to record payout id",
			"cashout_id", cashout.ID,
			"payout_id", payout.ID,
			"error", err)
		return nil, err
	}
	cashout.Status = entities.CashoutStatusInitiated
	cashout.GatewayPayoutID = &payout.ID

	metrics.CashoutsRequested.WithLabelValues("initiated").Inc()
	s.logger.Info("Cashout initiated",
		"cashout_id", cashout.ID,
		"payout_id", payout.ID,
		"amount", cashout.Amount.StringFixed(2),
		"currency", cashout.Currency)
	s.notifier.Notify(ctx, cashout.UserID, entities.NotificationCashoutInitiated,
		"cashout", cashout.ID.String(),
		fmt.Sprintf("Your cashout of %s %s is being processed", cashout.Amount.StringFixed(2), cashout.Currency))

	return cashout, nil
}

// compensate releases the hold after a failed gateway payout and records the
// failure, so the operation nets to zero on the ledger
func (s *Service) compensate(ctx context.Context, cashout *entities.CashoutRequest, cause error) error {
	if _, err := s.wallets.ReleaseHold(ctx, cashout.UserID, cashout.Currency, cashout.Amount, cashout.ID); err != nil {
		// The hold is still on the books; this needs operator attention.
		s.logger.Error("Compensating release failed after gateway error",
			"cashout_id", cashout.ID,
			"gateway_error", cause,
			"release_error", err)
		return fmt.Errorf("cashout failed and funds could not be restored automatically: %w", cause)
	}

	if _, err := s.cashouts.MarkFailed(ctx, cashout.ID, cause.Error()); err != nil {
		s.logger.Error("Failed to mark cashout failed", "cashout_id", cashout.ID, "error", err)
	}

	metrics.CashoutsRequested.WithLabelValues("failed").Inc()
	s.logger.Warn("Cashout compensated after gateway failure",
		"cashout_id", cashout.ID,
		"error", cause)
	s.notifier.Notify(ctx, cashout.UserID, entities.NotificationCashoutFailed,
		"cashout", cashout.ID.String(),
		"Your cashout failed and the funds were restored to your wallet")

	return fmt.Errorf("%w: %v", ErrFundsRestored, cause)
}

// GetCashout retrieves a cashout request, restricted to its owner
func (s *Service) GetCashout(ctx context.Context, id, callerID uuid.UUID) (*entities.CashoutRequest, error) {
	cashout, err := s.cashouts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cashout.UserID != callerID {
		return nil, entities.ErrUnauthorized
	}
	return cashout, nil
}

// ListCashouts returns the caller's cashout history
func (s *Service) ListCashouts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CashoutRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.cashouts.ListByUser(ctx, userID, limit, offset)
}

// HandlePayoutCompleted finalizes an initiated cashout: the held amount is
// settled off the pending balance and the request marked completed. Returns
// ErrNotFound when no cashout owns the payout.
func (s *Service) HandlePayoutCompleted(ctx context.Context, payoutID string) error {
	cashout, err := s.cashouts.GetByPayoutID(ctx, payoutID)
	if err != nil {
		return err
	}

	advanced, err := s.cashouts.MarkCompleted(ctx, cashout.ID)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	if _, err := s.wallets.SettleHold(ctx, cashout.UserID, cashout.Currency, cashout.Amount, cashout.ID); err != nil {
		s.logger.Error("Failed to settle cashout hold",
			"cashout_id", cashout.ID,
			"error", err)
		return err
	}

	metrics.CashoutsRequested.WithLabelValues("completed").Inc()
	s.notifier.Notify(ctx, cashout.UserID, entities.NotificationCashoutCompleted,
		"cashout", cashout.ID.String(),
		fmt.Sprintf("Your cashout of %s %s was delivered", cashout.Amount.StringFixed(2), cashout.Currency))
	return nil
}

// HandlePayoutFailed compensates an initiated cashout the gateway later
// rejected: the hold is released back to available and the request marked
// failed
func (s *Service) HandlePayoutFailed(ctx context.Context, payoutID, reason string) error {
	cashout, err := s.cashouts.GetByPayoutID(ctx, payoutID)
	if err != nil {
		return err
	}

	advanced, err := s.cashouts.MarkFailed(ctx, cashout.ID, reason)
	if err != nil {
		return err
	}
	if !advanced {
		return nil
	}

	if _, err := s.wallets.ReleaseHold(ctx, cashout.UserID, cashout.Currency, cashout.Amount, cashout.ID); err != nil {
		s.logger.Error("Failed to release hold for failed payout",
			"cashout_id", cashout.ID,
			"error", err)
		return err
	}

	metrics.CashoutsRequested.WithLabelValues("failed").Inc()
	s.notifier.Notify(ctx, cashout.UserID, entities.NotificationCashoutFailed,
		"cashout", cashout.ID.String(),
		"Your cashout failed and the funds were restored to your wallet")
	return nil
}

// HandlePayoutDelayed records a delay notice from the gateway; the cashout
// stays initiated
func (s *Service) HandlePayoutDelayed(ctx context.Context, payoutID string) error {
	cashout, err := s.cashouts.GetByPayoutID(ctx, payoutID)
	if err != nil {
		return err
	}

	s.logger.Warn("Cashout payout delayed",
		"cashout_id", cashout.ID,
		"payout_id", payoutID)
	s.notifier.Notify(ctx, cashout.UserID, entities.NotificationCashoutInitiated,
		"cashout", cashout.ID.String(),
		"Your cashout is taking longer than expected")
	return nil
}
