package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

type MockIntentRepository struct {
	mock.Mock
}

func (m *MockIntentRepository) Create(ctx context.Context, intent *entities.PaymentIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

func (m *MockIntentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) GetByCheckoutSession(ctx context.Context, sessionID string) (*entities.PaymentIntent, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) GetByPayoutID(ctx context.Context, payoutID string) (*entities.PaymentIntent, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentIntent), args.Error(1)
}

func (m *MockIntentRepository) HasActiveForSubmission(ctx context.Context, submissionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, submissionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntentRepository) HasActiveForPitchInvestor(ctx context.Context, pitchID, investorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, pitchID, investorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntentRepository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockIntentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entities.IntentStatus, to entities.IntentStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockIntentRepository) SetPayoutInitiated(ctx context.Context, id uuid.UUID, payoutID string) error {
	args := m.Called(ctx, id, payoutID)
	return args.Error(0)
}

func (m *MockIntentRepository) ListUnconfirmedWithSession(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]*entities.PaymentIntent, error) {
	args := m.Called(ctx, minAge, maxAge, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentIntent), args.Error(1)
}

type MockSubmissionStore struct {
	mock.Mock
}

func (m *MockSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Submission), args.Error(1)
}

func (m *MockSubmissionStore) MarkApproved(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPitchStore struct {
	mock.Mock
}

func (m *MockPitchStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.Pitch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pitch), args.Error(1)
}

func (m *MockPitchStore) IncrementFundedTotal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

type MockTransactionRecorder struct {
	mock.Mock
}

func (m *MockTransactionRecorder) Record(ctx context.Context, tx *entities.TransactionRecord) (bool, error) {
	args := m.Called(ctx, tx)
	return args.Bool(0), args.Error(1)
}

type MockDestinationStore struct {
	mock.Mock
}

func (m *MockDestinationStore) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.PayoutDestination, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayoutDestination), args.Error(1)
}

type MockWalletCreditor struct {
	mock.Mock
}

func (m *MockWalletCreditor) CreditForSource(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, sourceType entities.LedgerSourceType, sourceID string, metadata map[string]any) (uuid.UUID, error) {
	args := m.Called(ctx, userID, currency, amount, sourceType, sourceID, metadata)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType entities.NotificationType, refType, refID, message string) {
	m.Called(ctx, userID, notifType, refType, refID, message)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req *paygate.CreateCheckoutSessionRequest) (*paygate.CheckoutSessionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.CheckoutSessionResult), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*paygate.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.Session), args.Error(1)
}

func (m *MockGateway) CreatePayout(ctx context.Context, req *paygate.CreatePayoutRequest) (*paygate.Payout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.Payout), args.Error(1)
}

func (m *MockGateway) GetPayoutStatus(ctx context.Context, payoutID string) (*paygate.Payout, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paygate.Payout), args.Error(1)
}

func (m *MockGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	args := m.Called(rawBody, signature)
	return args.Bool(0)
}

type testDeps struct {
	intents      *MockIntentRepository
	submissions  *MockSubmissionStore
	pitches      *MockPitchStore
	transactions *MockTransactionRecorder
	destinations *MockDestinationStore
	wallets      *MockWalletCreditor
	gateway      *MockGateway
	notifier     *MockNotifier
}

func newTestService(cfg config.SettlementConfig) (*Service, *testDeps) {
	deps := &testDeps{
		intents:      new(MockIntentRepository),
		submissions:  new(MockSubmissionStore),
		pitches:      new(MockPitchStore),
		transactions: new(MockTransactionRecorder),
		destinations: new(MockDestinationStore),
		wallets:      new(MockWalletCreditor),
		gateway:      new(MockGateway),
		notifier:     new(MockNotifier),
	}
	svc := NewService(
		deps.intents, deps.submissions, deps.pitches, deps.transactions,
		deps.destinations, deps.wallets, deps.gateway, deps.notifier,
		cfg, logger.New("debug", "test"),
	)
	return svc, deps
}

func defaultConfig() config.SettlementConfig {
	return config.SettlementConfig{
		PlatformFeePercent:    5.0,
		PartialPaymentPercent: 50.0,
		MaxRevisions:          2,
		DefaultCurrency:       "SLE",
	}
}

func newEscrowIntent(paymentType entities.PaymentType, status entities.IntentStatus) *entities.PaymentIntent {
	submissionID := uuid.New()
	sessionID := "cs_test_123"
	gross := decimal.NewFromInt(1000)
	paymentAmount := gross
	if paymentType == entities.PaymentTypePartial {
		paymentAmount = decimal.NewFromInt(500)
	}
	return &entities.PaymentIntent{
		ID:                uuid.New(),
		Kind:              entities.IntentKindDeliveryEscrow,
		PayerID:           uuid.New(),
		PayeeID:           uuid.New(),
		GrossAmount:       gross,
		PaymentAmount:     paymentAmount,
		PlatformFee:       decimal.NewFromInt(50),
		NetPayoutAmount:   decimal.NewFromInt(950),
		Currency:          "SLE",
		PaymentType:       paymentType,
		Status:            status,
		SubmissionID:      &submissionID,
		CheckoutSessionID: &sessionID,
	}
}

func TestCreateEscrow(t *testing.T) {
	employerID := uuid.New()
	creativeID := uuid.New()
	submissionID := uuid.New()

	submission := &entities.Submission{
		ID:         submissionID,
		CreativeID: creativeID,
		EmployerID: employerID,
		Status:     entities.SubmissionStatusInReview,
	}

	t.Run("full payment computes fee split", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())

		deps.submissions.On("GetByID", mock.Anything, submissionID).Return(submission, nil)
		deps.intents.On("HasActiveForSubmission", mock.Anything, submissionID).Return(false, nil)
		deps.intents.On("Create", mock.Anything, mock.AnythingOfType("*entities.PaymentIntent")).Return(nil)
		deps.gateway.On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("*paygate.CreateCheckoutSessionRequest")).
			Return(&paygate.CheckoutSessionResult{ID: "cs_1", Status: "open", RedirectURL: "https://pay.example/cs_1"}, nil)
		deps.intents.On("SetCheckoutSession", mock.Anything, mock.AnythingOfType("uuid.UUID"), "cs_1").Return(nil)

		result, err := svc.CreateEscrow(context.Background(), &CreateEscrowRequest{
			SubmissionID: submissionID,
			PayerID:      employerID,
			GrossAmount:  decimal.NewFromInt(1000),
			PaymentType:  entities.PaymentTypeFull,
		})

		require.NoError(t, err)
		intent := result.Intent
		assert.True(t, intent.PaymentAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, intent.PlatformFee.Equal(decimal.RequireFromString("50.00")))
		assert.True(t, intent.NetPayoutAmount.Equal(decimal.RequireFromString("950.00")))
		assert.Equal(t, entities.IntentStatusAwaitingPayment, intent.Status)
		assert.Equal(t, "SLE", intent.Currency)
		assert.Equal(t, "https://pay.example/cs_1", result.RedirectURL)
		deps.intents.AssertExpectations(t)
	})

	t.Run("partial payment collects half up front", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())

		deps.submissions.On("GetByID", mock.Anything, submissionID).Return(submission, nil)
		deps.intents.On("HasActiveForSubmission", mock.Anything, submissionID).Return(false, nil)
		deps.intents.On("Create", mock.Anything, mock.AnythingOfType("*entities.PaymentIntent")).Return(nil)
		deps.gateway.On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("*paygate.CreateCheckoutSessionRequest")).
			Return(&paygate.CheckoutSessionResult{ID: "cs_2", RedirectURL: "https://pay.example/cs_2"}, nil)
		deps.intents.On("SetCheckoutSession", mock.Anything, mock.AnythingOfType("uuid.UUID"), "cs_2").Return(nil)

		result, err := svc.CreateEscrow(context.Background(), &CreateEscrowRequest{
			SubmissionID: submissionID,
			PayerID:      employerID,
			GrossAmount:  decimal.NewFromInt(1000),
			PaymentType:  entities.PaymentTypePartial,
		})

		require.NoError(t, err)
		assert.True(t, result.Intent.PaymentAmount.Equal(decimal.NewFromInt(500)))
		assert.True(t, result.Intent.GrossAmount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("rejects a second active intent for the same submission", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())

		deps.submissions.On("GetByID", mock.Anything, submissionID).Return(submission, nil)
		deps.intents.On("HasActiveForSubmission", mock.Anything, submissionID).Return(true, nil)

		_, err := svc.CreateEscrow(context.Background(), &CreateEscrowRequest{
			SubmissionID: submissionID,
			PayerID:      employerID,
			GrossAmount:  decimal.NewFromInt(1000),
		})

		assert.ErrorIs(t, err, entities.ErrConflict)
	})

	t.Run("rejects a payer who is not the employer", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		deps.submissions.On("GetByID", mock.Anything, submissionID).Return(submission, nil)

		_, err := svc.CreateEscrow(context.Background(), &CreateEscrowRequest{
			SubmissionID: submissionID,
			PayerID:      uuid.New(),
			GrossAmount:  decimal.NewFromInt(1000),
		})

		assert.ErrorIs(t, err, entities.ErrUnauthorized)
	})

	t.Run("exhausted revisions produce the dedicated pre-payment state", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())

		exhausted := &entities.Submission{
			ID:            submissionID,
			CreativeID:    creativeID,
			EmployerID:    employerID,
			RevisionCount: 2,
		}
		deps.submissions.On("GetByID", mock.Anything, submissionID).Return(exhausted, nil)
		deps.intents.On("HasActiveForSubmission", mock.Anything, submissionID).Return(false, nil)
		deps.intents.On("Create", mock.Anything, mock.AnythingOfType("*entities.PaymentIntent")).Return(nil)
		deps.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(&paygate.CheckoutSessionResult{ID: "cs_3"}, nil)
		deps.intents.On("SetCheckoutSession", mock.Anything, mock.AnythingOfType("uuid.UUID"), "cs_3").Return(nil)

		result, err := svc.CreateEscrow(context.Background(), &CreateEscrowRequest{
			SubmissionID: submissionID,
			PayerID:      employerID,
			GrossAmount:  decimal.NewFromInt(1000),
		})

		require.NoError(t, err)
		assert.Equal(t, entities.IntentStatusRevisionExhaustedAwaitingPayment, result.Intent.Status)
	})
}

func TestConfirmPayment_WalletCreditPath(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	dest := &entities.PayoutDestination{
		ID:         uuid.New(),
		UserID:     intent.PayeeID,
		Provider:   entities.DestinationProviderMomo,
		PayoutMode: entities.PayoutModeWallet,
	}

	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.AnythingOfType("*entities.TransactionRecord")).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(dest, nil)
	deps.wallets.On("CreditForSource", mock.Anything, intent.PayeeID, "SLE",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(950)) }),
		entities.LedgerSourceDeliveryEscrow, intent.ID.String(), mock.Anything).Return(uuid.New(), nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusCompleted).Return(true, nil)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusCompleted, result.Status)
	deps.wallets.AssertNumberOfCalls(t, "CreditForSource", 1)
	deps.transactions.AssertNumberOfCalls(t, "Record", 1)
	deps.submissions.AssertNumberOfCalls(t, "MarkApproved", 1)
}

func TestConfirmPayment_AlreadyAdvancedIsNoOp(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusCompleted)
	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceFallback,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusCompleted, result.Status)
	deps.intents.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.transactions.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	deps.wallets.AssertNotCalled(t, "CreditForSource", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_LostRaceIsNoOp(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(false, nil)

	_, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceFallback,
	})

	require.NoError(t, err)
	deps.transactions.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	deps.wallets.AssertNotCalled(t, "CreditForSource", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_NoDestinationLeavesReceived(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(nil, entities.ErrNoPayoutDestination)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusPaymentReceived, result.Status)
	deps.notifier.AssertCalled(t, "Notify", mock.Anything, intent.PayeeID,
		entities.NotificationPayoutActionRequired, "payment_intent", intent.ID.String(), mock.Anything)
}

func TestConfirmPayment_PayoutFailureKeepsConfirmation(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	dest := &entities.PayoutDestination{
		ID:         uuid.New(),
		UserID:     intent.PayeeID,
		Provider:   entities.DestinationProviderMomo,
		ProviderID: "m17",
		AccountID:  "23276123456",
		PayoutMode: entities.PayoutModeDirect,
	}

	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(dest, nil)
	deps.gateway.On("CreatePayout", mock.Anything, mock.Anything).
		Return(nil, &paygate.GatewayError{Operation: "create payout", StatusCode: 502})
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err, "payout failure must not fail the confirmation")
	assert.Equal(t, entities.IntentStatusPaymentReceived, result.Status)
	deps.intents.AssertNotCalled(t, "SetPayoutInitiated", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_DirectPayoutInitiates(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	dest := &entities.PayoutDestination{
		ID:         uuid.New(),
		UserID:     intent.PayeeID,
		Provider:   entities.DestinationProviderBank,
		ProviderID: "SLCB",
		AccountID:  "0012345678",
		PayoutMode: entities.PayoutModeDirect,
	}

	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(dest, nil)
	deps.gateway.On("CreatePayout", mock.Anything, mock.MatchedBy(func(req *paygate.CreatePayoutRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(950)) && req.Destination.Kind == paygate.DestinationBank
	})).Return(&paygate.Payout{ID: "po_1", Status: "processing"}, nil)
	deps.intents.On("SetPayoutInitiated", mock.Anything, intent.ID, "po_1").Return(nil)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusPayoutInitiated, result.Status)
	require.NotNil(t, result.GatewayPayoutID)
	assert.Equal(t, "po_1", *result.GatewayPayoutID)
}

func TestConfirmPayment_InvestmentIncrementsPitch(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	pitchID := uuid.New()
	sessionID := "cs_inv_1"
	intent := &entities.PaymentIntent{
		ID:                uuid.New(),
		Kind:              entities.IntentKindPitchInvestment,
		PayerID:           uuid.New(),
		PayeeID:           uuid.New(),
		GrossAmount:       decimal.NewFromInt(200),
		PaymentAmount:     decimal.NewFromInt(200),
		PlatformFee:       decimal.NewFromInt(10),
		NetPayoutAmount:   decimal.NewFromInt(190),
		Currency:          "SLE",
		PaymentType:       entities.PaymentTypeFull,
		Status:            entities.IntentStatusAwaitingPayment,
		PitchID:           &pitchID,
		CheckoutSessionID: &sessionID,
	}

	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.pitches.On("IncrementFundedTotal", mock.Anything, pitchID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(200)) })).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(&entities.PayoutDestination{
		ID:         uuid.New(),
		UserID:     intent.PayeeID,
		Provider:   entities.DestinationProviderWallet,
		PayoutMode: entities.PayoutModeWallet,
	}, nil)
	deps.wallets.On("CreditForSource", mock.Anything, intent.PayeeID, "SLE",
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(190)) }),
		entities.LedgerSourcePitchInvestment, intent.ID.String(), mock.Anything).Return(uuid.New(), nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusCompleted).Return(true, nil)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusCompleted, result.Status)
	deps.pitches.AssertNumberOfCalls(t, "IncrementFundedTotal", 1)
	deps.submissions.AssertNotCalled(t, "MarkApproved", mock.Anything, mock.Anything)
}

func TestConfirmPayment_PartialSkipsApproval(t *testing.T) {
	svc, deps := newTestService(defaultConfig())

	intent := newEscrowIntent(entities.PaymentTypePartial, entities.IntentStatusAwaitingPayment)
	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPartialPaymentReceived).Return(true, nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(nil, entities.ErrNoPayoutDestination)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.ConfirmPayment(context.Background(), intent.ID, &entities.PaymentEvidence{
		Source: entities.EvidenceSourceWebhook,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusPartialPaymentReceived, result.Status)
	deps.submissions.AssertNotCalled(t, "MarkApproved", mock.Anything, mock.Anything)
}

func TestDevBypass_DisabledByConfig(t *testing.T) {
	svc, _ := newTestService(defaultConfig())

	_, err := svc.DevBypassConfirm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestDevBypass_Enabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.AllowDevBypass = true
	svc, deps := newTestService(cfg)

	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
	deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
	deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
	deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
	deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
	deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(nil, entities.ErrNoPayoutDestination)
	deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	result, err := svc.DevBypassConfirm(context.Background(), intent.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.IntentStatusPaymentReceived, result.Status)
}
