package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/pkg/logger"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
)

// IntentRepository interface for payment intent persistence
type IntentRepository interface {
	Create(ctx context.Context, intent *entities.PaymentIntent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentIntent, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentIntent, error)
	GetByPayoutID(ctx context.Context, payoutID string) (*entities.PaymentIntent, error)
	HasActiveForSubmission(ctx context.Context, submissionID uuid.UUID) (bool, error)
	HasActiveForPitchInvestor(ctx context.Context, pitchID, investorID uuid.UUID) (bool, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.IntentStatus, to entities.IntentStatus) (bool, error)
	SetPayoutInitiated(ctx context.Context, id uuid.UUID, payoutID string) error
	ListUnconfirmedWithSession(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*entities.PaymentIntent, error)
}

// SubmissionStore interface for the delivery-escrow work items
type SubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error)
	MarkApproved(ctx context.Context, id uuid.UUID) error
}

// PitchStore interface for the investment work items
type PitchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Pitch, error)
	IncrementFundedTotal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// TransactionRecorder interface for the settlement audit trail
type TransactionRecorder interface {
	Record(ctx context.Context, tx *entities.TransactionRecord) (bool, error)
}

// DestinationStore interface for recipient payout destinations
type DestinationStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.PayoutDestination, error)
}

// WalletCreditor interface for crediting settled funds
type WalletCreditor interface {
	CreditForSource(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, sourceType entities.LedgerSourceType, sourceID string, metadata map[string]any) (uuid.UUID, error)
}

// Notifier interface for post-commit notification records
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType entities.NotificationType, refType, refID, message string)
}

// Service is the settlement engine: it creates payment intents, opens hosted
// checkouts, and converges the three confirmation triggers (webhook, redirect
// fallback, dev bypass) on one idempotent confirmation step.
type Service struct {
	intents      IntentRepository
	submissions  SubmissionStore
	pitches      PitchStore
	transactions TransactionRecorder
	destinations DestinationStore
	wallets      WalletCreditor
	gateway      paygate.Gateway
	notifier     Notifier
	cfg          config.SettlementConfig
	logger       *logger.Logger
}

// NewService creates a new settlement service
func NewService(
	intents IntentRepository,
	submissions SubmissionStore,
	pitches PitchStore,
	transactions TransactionRecorder,
	destinations DestinationStore,
	wallets WalletCreditor,
	gateway paygate.Gateway,
	notifier Notifier,
	cfg config.SettlementConfig,
	logger *logger.Logger,
) *Service {
	return &Service{
		intents:      intents,
		submissions:  submissions,
		pitches:      pitches,
		transactions: transactions,
		destinations: destinations,
		wallets:      wallets,
		gateway:      gateway,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// CreateEscrowRequest describes a delivery escrow checkout to open
type CreateEscrowRequest struct {
	SubmissionID uuid.UUID
	PayerID      uuid.UUID
	GrossAmount  decimal.Decimal
	Currency     string
	PaymentType  entities.PaymentType
	Title        string
	SuccessURL   string
	CancelURL    string
}

// CreateInvestmentRequest describes a pitch investment checkout to open
type CreateInvestmentRequest struct {
	PitchID     uuid.UUID
	InvestorID  uuid.UUID
	GrossAmount decimal.Decimal
	Currency    string
	Title       string
	SuccessURL  string
	CancelURL   string
}

// CheckoutResult is returned to the buyer after an intent is created
type CheckoutResult struct {
	Intent      *entities.PaymentIntent `json:"intent"`
	RedirectURL string                  `json:"redirect_url"`
}

// CreateEscrow opens a hosted checkout for a delivered submission. At most
// one active intent may exist per submission.
func (s *Service) CreateEscrow(ctx context.Context, req *CreateEscrowRequest) (*CheckoutResult, error) {
	if !req.GrossAmount.IsPositive() {
		return nil, fmt.Errorf("%w: gross amount must be positive", entities.ErrValidation)
	}
	if req.PaymentType == "" {
		req.PaymentType = entities.PaymentTypeFull
	}
	if err := req.PaymentType.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	submission, err := s.submissions.GetByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	if submission.EmployerID != req.PayerID {
		return nil, fmt.Errorf("%w: only the employer may fund this submission", entities.ErrUnauthorized)
	}

	active, err := s.intents.HasActiveForSubmission(ctx, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("check active intent: %w", err)
	}
	if active {
		return nil, entities.ErrConflict
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	fee, net := SplitFee(req.GrossAmount, s.cfg.PlatformFeePercent)
	paymentAmount := req.GrossAmount
	if req.PaymentType == entities.PaymentTypePartial {
		paymentAmount = PartialAmount(req.GrossAmount, s.cfg.PartialPaymentPercent)
	}

	status := entities.IntentStatusAwaitingPayment
	if submission.RevisionCount >= s.cfg.MaxRevisions {
		status = entities.IntentStatusRevisionExhaustedAwaitingPayment
	}

	intent := &entities.PaymentIntent{
		ID:              uuid.New(),
		Kind:            entities.IntentKindDeliveryEscrow,
		PayerID:         req.PayerID,
		PayeeID:         submission.CreativeID,
		GrossAmount:     req.GrossAmount,
		PaymentAmount:   paymentAmount,
		PlatformFee:     fee,
		NetPayoutAmount: net,
		Currency:        currency,
		PaymentType:     req.PaymentType,
		Status:          status,
		SubmissionID:    &req.SubmissionID,
	}

	return s.openCheckout(ctx, intent, req.Title, req.SuccessURL, req.CancelURL)
}

// CreateInvestment opens a hosted checkout for a pitch investment. At most
// one active intent may exist per (pitch, investor) pair. Investments are
// always collected in full.
func (s *Service) CreateInvestment(ctx context.Context, req *CreateInvestmentRequest) (*CheckoutResult, error) {
	if !req.GrossAmount.IsPositive() {
		return nil, fmt.Errorf("%w: gross amount must be positive", entities.ErrValidation)
	}

	pitch, err := s.pitches.GetByID(ctx, req.PitchID)
	if err != nil {
		return nil, fmt.Errorf("load pitch: %w", err)
	}

	active, err := s.intents.HasActiveForPitchInvestor(ctx, req.PitchID, req.InvestorID)
	if err != nil {
		return nil, fmt.Errorf("check active intent: %w", err)
	}
	if active {
		return nil, entities.ErrConflict
	}

	currency := req.Currency
	if currency == "" {
		currency = pitch.Currency
	}
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	fee, net := SplitFee(req.GrossAmount, s.cfg.PlatformFeePercent)

	intent := &entities.PaymentIntent{
		ID:              uuid.New(),
		Kind:            entities.IntentKindPitchInvestment,
		PayerID:         req.InvestorID,
		PayeeID:         pitch.RecipientID,
		GrossAmount:     req.GrossAmount,
		PaymentAmount:   req.GrossAmount,
		PlatformFee:     fee,
		NetPayoutAmount: net,
		Currency:        currency,
		PaymentType:     entities.PaymentTypeFull,
		Status:          entities.IntentStatusAwaitingPayment,
		PitchID:         &req.PitchID,
	}

	return s.openCheckout(ctx, intent, req.Title, req.SuccessURL, req.CancelURL)
}

func (s *Service) openCheckout(ctx context.Context, intent *entities.PaymentIntent, title, successURL, cancelURL string) (*CheckoutResult, error) {
	if err := s.intents.Create(ctx, intent); err != nil {
		return nil, err
	}

	if title == "" {
		title = fmt.Sprintf("CraftLink %s", strings.ReplaceAll(string(intent.Kind), "_", " "))
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &paygate.CreateCheckoutSessionRequest{
		Name:        title,
		Description: fmt.Sprintf("Payment %s", intent.ID),
		Amount:      intent.PaymentAmount,
		Currency:    intent.Currency,
		Reference:   intent.ID.String(),
		Metadata: map[string]string{
			"reference": intent.ID.String(),
			"kind":      string(intent.Kind),
		},
		SuccessURL:     successURL,
		CancelURL:      cancelURL,
		IdempotencyKey: fmt.Sprintf("checkout:%s", intent.ID),
	})
	if err != nil {
		// Nothing was charged; the intent stays without a session and the
		// buyer can retry checkout creation.
		s.logger.Error("Checkout session creation failed",
			"intent_id", intent.ID,
			"error", err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	if err := s.intents.SetCheckoutSession(ctx, intent.ID, session.ID); err != nil {
		return nil, err
	}
	intent.CheckoutSessionID = &session.ID

	s.logger.Info("Payment intent created",
		"intent_id", intent.ID,
		"kind", intent.Kind,
		"payment_type", intent.PaymentType,
		"amount", intent.PaymentAmount.StringFixed(2),
		"currency", intent.Currency,
		"session_id", session.ID)

	return &CheckoutResult{Intent: intent, RedirectURL: session.RedirectURL}, nil
}

// GetIntent retrieves a payment intent, restricted to its payer and payee
func (s *Service) GetIntent(ctx context.Context, intentID, callerID uuid.UUID) (*entities.PaymentIntent, error) {
	intent, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.PayerID != callerID && intent.PayeeID != callerID {
		return nil, entities.ErrUnauthorized
	}
	return intent, nil
}

// ConfirmPayment is the single convergence point for all three confirmation
// triggers. It re-reads the intent's status and silently no-ops when a
// concurrent trigger has already advanced it; otherwise it performs the full
// settlement step: status transition, submission approval or pitch
// funded-total increment, audit record, payout routing, notifications.
func (s *Service) ConfirmPayment(ctx context.Context, intentID uuid.UUID, evidence *entities.PaymentEvidence) (*entities.PaymentIntent, error) {
	intent, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if !intent.Status.AcceptsConfirmation(intent.Kind) {
		metrics.SettlementsSkipped.WithLabelValues(string(intent.Kind)).Inc()
		s.logger.Info("Confirmation skipped, intent already advanced",
			"intent_id", intent.ID,
			"status", intent.Status,
			"trigger", evidence.Source)
		return intent, nil
	}

	target := entities.IntentStatusPaymentReceived
	if intent.PaymentType == entities.PaymentTypePartial {
		target = entities.IntentStatusPartialPaymentReceived
	}

	from := []entities.IntentStatus{entities.IntentStatusAwaitingPayment}
	if intent.Kind == entities.IntentKindDeliveryEscrow {
		from = append(from,
			entities.IntentStatusReviewApproved,
			entities.IntentStatusRevisionExhaustedAwaitingPayment)
	}

	advanced, err := s.intents.TransitionStatus(ctx, intent.ID, from, target)
	if err != nil {
		return nil, err
	}
	if !advanced {
		// A concurrent trigger won the race; this call is a no-op.
		metrics.SettlementsSkipped.WithLabelValues(string(intent.Kind)).Inc()
		return s.intents.GetByID(ctx, intent.ID)
	}
	intent.Status = target

	metrics.SettlementsConfirmed.WithLabelValues(
		string(intent.Kind), string(intent.PaymentType), string(evidence.Source)).Inc()
	s.logger.Info("Payment confirmed",
		"intent_id", intent.ID,
		"kind", intent.Kind,
		"payment_type", intent.PaymentType,
		"trigger", evidence.Source)

	if intent.Kind == entities.IntentKindDeliveryEscrow && intent.SubmissionID != nil {
		// Partial payment does not unlock deliverables
		if intent.PaymentType == entities.PaymentTypeFull {
			if err := s.submissions.MarkApproved(ctx, *intent.SubmissionID); err != nil {
				s.logger.Error("Failed to mark submission approved",
					"submission_id", *intent.SubmissionID,
					"error", err)
			}
		}
	}

	if intent.Kind == entities.IntentKindPitchInvestment && intent.PitchID != nil {
		if err := s.pitches.IncrementFundedTotal(ctx, *intent.PitchID, intent.PaymentAmount); err != nil {
			s.logger.Error("Failed to increment pitch funded total",
				"pitch_id", *intent.PitchID,
				"error", err)
		}
	}

	fee, net := settledShare(intent)
	record := &entities.TransactionRecord{
		ID:          uuid.New(),
		IntentID:    intent.ID,
		IntentKind:  intent.Kind,
		PaymentType: intent.PaymentType,
		PayerID:     intent.PayerID,
		PayeeID:     intent.PayeeID,
		Amount:      intent.PaymentAmount,
		PlatformFee: fee,
		NetAmount:   net,
		Currency:    intent.Currency,
		SessionID:   intent.CheckoutSessionID,
	}
	if _, err := s.transactions.Record(ctx, record); err != nil {
		s.logger.Error("Failed to record settlement transaction",
			"intent_id", intent.ID,
			"error", err)
	}

	s.notifier.Notify(ctx, intent.PayerID, entities.NotificationPaymentConfirmed,
		"payment_intent", intent.ID.String(),
		fmt.Sprintf("Your payment of %s %s was confirmed", intent.PaymentAmount.StringFixed(2), intent.Currency))
	s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPaymentReceived,
		"payment_intent", intent.ID.String(),
		fmt.Sprintf("A payment of %s %s was received for your work", intent.PaymentAmount.StringFixed(2), intent.Currency))

	return s.routePayout(ctx, intent, net)
}

// routePayout moves settled funds to the recipient: wallet credit, gateway
// payout, or neither when no destination is configured. Payout failures never
// roll back the payment confirmation; the intent stays in its received state
// for a later retry.
func (s *Service) routePayout(ctx context.Context, intent *entities.PaymentIntent, net decimal.Decimal) (*entities.PaymentIntent, error) {
	settledStatus := entities.IntentStatusCompleted
	if intent.PaymentType == entities.PaymentTypePartial {
		settledStatus = entities.IntentStatusPartialPayoutCompleted
	}

	dest, err := s.destinations.GetByUser(ctx, intent.PayeeID)
	if err != nil {
		if errors.Is(err, entities.ErrNoPayoutDestination) {
			s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPayoutActionRequired,
				"payment_intent", intent.ID.String(),
				"Add a payout destination to receive your funds")
			return intent, nil
		}
		s.logger.Error("Failed to load payout destination",
			"intent_id", intent.ID,
			"error", err)
		return intent, nil
	}

	sourceType := entities.LedgerSourceDeliveryEscrow
	if intent.Kind == entities.IntentKindPitchInvestment {
		sourceType = entities.LedgerSourcePitchInvestment
	}

	if dest.PayoutMode == entities.PayoutModeWallet {
		_, err := s.wallets.CreditForSource(ctx, intent.PayeeID, intent.Currency, net,
			sourceType, intent.ID.String(), map[string]any{"payment_type": string(intent.PaymentType)})
		if err != nil {
			s.logger.Error("Failed to credit recipient wallet",
				"intent_id", intent.ID,
				"error", err)
			return intent, nil
		}

		if _, err := s.intents.TransitionStatus(ctx, intent.ID,
			[]entities.IntentStatus{intent.Status}, settledStatus); err != nil {
			return intent, err
		}
		intent.Status = settledStatus

		s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationWalletCredited,
			"payment_intent", intent.ID.String(),
			fmt.Sprintf("%s %s was credited to your wallet", net.StringFixed(2), intent.Currency))
		return intent, nil
	}

	payout, err := s.gateway.CreatePayout(ctx, &paygate.CreatePayoutRequest{
		Amount:   net,
		Currency: intent.Currency,
		Destination: paygate.PayoutDestination{
			Kind:       paygate.DestinationKind(dest.Provider),
			ProviderID: dest.ProviderID,
			Account:    dest.AccountID,
		},
		Metadata:       map[string]string{"intent_id": intent.ID.String()},
		IdempotencyKey: fmt.Sprintf("payout:%s", intent.ID),
	})
	if err != nil {
		// The buyer already paid; only the payout leg failed and it is
		// retryable out of band.
		metrics.PayoutFailures.WithLabelValues(string(sourceType)).Inc()
		s.logger.Error("Gateway payout failed, payment confirmation kept",
			"intent_id", intent.ID,
			"error", err)
		s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPayoutActionRequired,
			"payment_intent", intent.ID.String(),
			"Your payout could not be initiated; it will be retried")
		return intent, nil
	}

	if err := s.intents.SetPayoutInitiated(ctx, intent.ID, payout.ID); err != nil {
		return intent, err
	}
	intent.Status = entities.IntentStatusPayoutInitiated
	intent.GatewayPayoutID = &payout.ID

	metrics.PayoutsInitiated.WithLabelValues(string(sourceType)).Inc()
	s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPayoutInitiated,
		"payment_intent", intent.ID.String(),
		fmt.Sprintf("A payout of %s %s is on its way", net.StringFixed(2), intent.Currency))

	return intent, nil
}

// completedVocabulary is the set of gateway statuses accepted as proof of a
// settled checkout, matched case-insensitively
var completedVocabulary = map[string]struct{}{
	"completed":  {},
	"paid":       {},
	"complete":   {},
	"successful": {},
	"captured":   {},
}

// sessionMatchesIntent runs the four independent fallback checks: completed
// status, amount within 0.01, currency, and reference. All four must pass.
func sessionMatchesIntent(session *paygate.Session, intent *entities.PaymentIntent) bool {
	if _, ok := completedVocabulary[strings.ToLower(session.Status)]; !ok {
		return false
	}
	if session.Amount.Sub(intent.PaymentAmount).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		return false
	}
	if !strings.EqualFold(session.Currency, intent.Currency) {
		return false
	}
	if session.Reference != intent.ID.String() {
		return false
	}
	return true
}

// VerifyAndConfirm is the redirect-fallback trigger: it polls the gateway
// session and confirms only when all verification checks pass. A failed
// check is not an error; the intent stays pending for the webhook to settle.
// The returned bool reports whether the intent is confirmed (now or earlier).
func (s *Service) VerifyAndConfirm(ctx context.Context, intentID, callerID uuid.UUID) (*entities.PaymentIntent, bool, error) {
	intent, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		return nil, false, err
	}
	if intent.PayerID != callerID && intent.PayeeID != callerID {
		return nil, false, entities.ErrUnauthorized
	}

	if !intent.Status.AcceptsConfirmation(intent.Kind) {
		// Already settled by another trigger
		return intent, true, nil
	}
	if intent.CheckoutSessionID == nil {
		return intent, false, nil
	}

	session, err := s.gateway.GetCheckoutSession(ctx, *intent.CheckoutSessionID)
	if err != nil {
		s.logger.Warn("Fallback session poll failed",
			"intent_id", intent.ID,
			"error", err)
		return intent, false, nil
	}

	if !sessionMatchesIntent(session, intent) {
		s.logger.Info("Fallback verification did not pass, leaving intent pending",
			"intent_id", intent.ID,
			"session_status", session.Status,
			"session_amount", session.Amount.StringFixed(2),
			"session_currency", session.Currency)
		return intent, false, nil
	}

	confirmed, err := s.ConfirmPayment(ctx, intent.ID, &entities.PaymentEvidence{
		Source:    entities.EvidenceSourceFallback,
		SessionID: session.ID,
		Status:    session.Status,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Reference: session.Reference,
	})
	if err != nil {
		return nil, false, err
	}
	return confirmed, true, nil
}

// DevBypassConfirm confirms an intent without gateway verification. Only
// available when explicitly enabled in a non-production configuration.
func (s *Service) DevBypassConfirm(ctx context.Context, intentID uuid.UUID) (*entities.PaymentIntent, error) {
	if !s.cfg.AllowDevBypass {
		return nil, fmt.Errorf("%w: dev bypass is disabled", entities.ErrUnauthorized)
	}

	s.logger.Warn("Dev bypass confirmation used", "intent_id", intentID)
	return s.ConfirmPayment(ctx, intentID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceDevBypass,
	})
}

// HandleCheckoutCompleted is the webhook trigger for checkout_session.completed
// events. The signature was verified upstream, so the session payload is
// trusted as evidence.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, session *paygate.Session) error {
	var intent *entities.PaymentIntent
	var err error

	if ref, parseErr := uuid.Parse(session.Reference); parseErr == nil {
		intent, err = s.intents.GetByID(ctx, ref)
	} else {
		intent, err = s.intents.GetByCheckoutSession(ctx, session.ID)
	}
	if err != nil {
		return fmt.Errorf("resolve intent for session %s: %w", session.ID, err)
	}

	_, err = s.ConfirmPayment(ctx, intent.ID, &entities.PaymentEvidence{
		Source:    entities.EvidenceSourceWebhook,
		SessionID: session.ID,
		Status:    session.Status,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Reference: session.Reference,
	})
	return err
}

// HandlePayoutCompleted finalizes a settlement payout when the gateway
// reports it delivered. Returns ErrNotFound when no intent owns the payout,
// so the caller can try the cashout path.
func (s *Service) HandlePayoutCompleted(ctx context.Context, payoutID string) error {
	intent, err := s.intents.GetByPayoutID(ctx, payoutID)
	if err != nil {
		return err
	}

	settledStatus := entities.IntentStatusCompleted
	if intent.PaymentType == entities.PaymentTypePartial {
		settledStatus = entities.IntentStatusPartialPayoutCompleted
	}

	advanced, err := s.intents.TransitionStatus(ctx, intent.ID,
		[]entities.IntentStatus{entities.IntentStatusPayoutInitiated}, settledStatus)
	if err != nil {
		return err
	}
	if advanced {
		s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPayoutInitiated,
			"payment_intent", intent.ID.String(),
			"Your payout was delivered")
	}
	return nil
}

// HandlePayoutFailed reopens the payout leg when the gateway reports a
// settlement payout failed. The payment confirmation itself is untouched.
func (s *Service) HandlePayoutFailed(ctx context.Context, payoutID, reason string) error {
	intent, err := s.intents.GetByPayoutID(ctx, payoutID)
	if err != nil {
		return err
	}

	received := entities.IntentStatusPaymentReceived
	if intent.PaymentType == entities.PaymentTypePartial {
		received = entities.IntentStatusPartialPaymentReceived
	}

	advanced, err := s.intents.TransitionStatus(ctx, intent.ID,
		[]entities.IntentStatus{entities.IntentStatusPayoutInitiated}, received)
	if err != nil {
		return err
	}
	if advanced {
		s.logger.Error("Settlement payout failed, intent reopened for retry",
			"intent_id", intent.ID,
			"payout_id", payoutID,
			"reason", reason)
		s.notifier.Notify(ctx, intent.PayeeID, entities.NotificationPayoutActionRequired,
			"payment_intent", intent.ID.String(),
			"Your payout failed and will be retried")
	}
	return nil
}
