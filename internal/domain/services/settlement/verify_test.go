package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

func matchingSession(intent *entities.PaymentIntent) *paygate.Session {
	return &paygate.Session{
		ID:        *intent.CheckoutSessionID,
		Status:    "completed",
		Amount:    intent.PaymentAmount,
		Currency:  intent.Currency,
		Reference: intent.ID.String(),
	}
}

func TestSessionMatchesIntent(t *testing.T) {
	intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)

	t.Run("all checks pass", func(t *testing.T) {
		assert.True(t, sessionMatchesIntent(matchingSession(intent), intent))
	})

	t.Run("status vocabulary is case insensitive", func(t *testing.T) {
		for _, status := range []string{"Completed", "PAID", "complete", "Successful", "CAPTURED"} {
			session := matchingSession(intent)
			session.Status = status
			assert.True(t, sessionMatchesIntent(session, intent), status)
		}
	})

	t.Run("non-completed status rejected", func(t *testing.T) {
		session := matchingSession(intent)
		session.Status = "open"
		assert.False(t, sessionMatchesIntent(session, intent))
	})

	t.Run("amount beyond tolerance rejected", func(t *testing.T) {
		session := matchingSession(intent)
		session.Amount = intent.PaymentAmount.Sub(decimal.RequireFromString("0.02"))
		assert.False(t, sessionMatchesIntent(session, intent))
	})

	t.Run("amount within tolerance accepted", func(t *testing.T) {
		session := matchingSession(intent)
		session.Amount = intent.PaymentAmount.Add(decimal.RequireFromString("0.01"))
		assert.True(t, sessionMatchesIntent(session, intent))
	})

	t.Run("currency mismatch rejected", func(t *testing.T) {
		session := matchingSession(intent)
		session.Currency = "USD"
		assert.False(t, sessionMatchesIntent(session, intent))
	})

	t.Run("currency compares case insensitively", func(t *testing.T) {
		session := matchingSession(intent)
		session.Currency = "sle"
		assert.True(t, sessionMatchesIntent(session, intent))
	})

	t.Run("foreign reference rejected", func(t *testing.T) {
		session := matchingSession(intent)
		session.Reference = uuid.New().String()
		assert.False(t, sessionMatchesIntent(session, intent))
	})
}

func TestVerifyAndConfirm(t *testing.T) {
	t.Run("rejects callers outside the intent", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
		deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)

		_, _, err := svc.VerifyAndConfirm(context.Background(), intent.ID, uuid.New())
		assert.ErrorIs(t, err, entities.ErrUnauthorized)
	})

	t.Run("already settled reports confirmed without polling", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusCompleted)
		deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)

		_, confirmed, err := svc.VerifyAndConfirm(context.Background(), intent.ID, intent.PayerID)
		require.NoError(t, err)
		assert.True(t, confirmed)
		deps.gateway.AssertNotCalled(t, "GetCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("gateway poll failure leaves intent pending", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
		deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
		deps.gateway.On("GetCheckoutSession", mock.Anything, *intent.CheckoutSessionID).
			Return(nil, &paygate.GatewayError{Operation: "get checkout session", StatusCode: 503})

		result, confirmed, err := svc.VerifyAndConfirm(context.Background(), intent.ID, intent.PayerID)
		require.NoError(t, err)
		assert.False(t, confirmed)
		assert.Equal(t, entities.IntentStatusAwaitingPayment, result.Status)
	})

	t.Run("failed verification leaves intent pending", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
		session := matchingSession(intent)
		session.Status = "open"
		deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
		deps.gateway.On("GetCheckoutSession", mock.Anything, *intent.CheckoutSessionID).Return(session, nil)

		_, confirmed, err := svc.VerifyAndConfirm(context.Background(), intent.ID, intent.PayerID)
		require.NoError(t, err)
		assert.False(t, confirmed)
		deps.intents.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("passing verification confirms and settles", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusAwaitingPayment)
		dest := &entities.PayoutDestination{
			ID:         uuid.New(),
			UserID:     intent.PayeeID,
			Provider:   entities.DestinationProviderWallet,
			PayoutMode: entities.PayoutModeWallet,
		}

		deps.intents.On("GetByID", mock.Anything, intent.ID).Return(intent, nil)
		deps.gateway.On("GetCheckoutSession", mock.Anything, *intent.CheckoutSessionID).Return(matchingSession(intent), nil)
		deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusPaymentReceived).Return(true, nil)
		deps.submissions.On("MarkApproved", mock.Anything, *intent.SubmissionID).Return(nil)
		deps.transactions.On("Record", mock.Anything, mock.Anything).Return(true, nil)
		deps.destinations.On("GetByUser", mock.Anything, intent.PayeeID).Return(dest, nil)
		deps.wallets.On("CreditForSource", mock.Anything, intent.PayeeID, "SLE",
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(950)) }),
			entities.LedgerSourceDeliveryEscrow, intent.ID.String(), mock.Anything).Return(uuid.New(), nil)
		deps.intents.On("TransitionStatus", mock.Anything, intent.ID, mock.Anything, entities.IntentStatusCompleted).Return(true, nil)
		deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

		result, confirmed, err := svc.VerifyAndConfirm(context.Background(), intent.ID, intent.PayerID)
		require.NoError(t, err)
		assert.True(t, confirmed)
		assert.Equal(t, entities.IntentStatusCompleted, result.Status)
		deps.wallets.AssertNumberOfCalls(t, "CreditForSource", 1)
	})
}

func TestHandlePayoutWebhooks(t *testing.T) {
	t.Run("completed finalizes payout", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusPayoutInitiated)
		payoutID := "po_42"
		intent.GatewayPayoutID = &payoutID

		deps.intents.On("GetByPayoutID", mock.Anything, payoutID).Return(intent, nil)
		deps.intents.On("TransitionStatus", mock.Anything, intent.ID,
			[]entities.IntentStatus{entities.IntentStatusPayoutInitiated}, entities.IntentStatusCompleted).Return(true, nil)
		deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

		require.NoError(t, svc.HandlePayoutCompleted(context.Background(), payoutID))
		deps.intents.AssertExpectations(t)
	})

	t.Run("failed reopens the payout leg only", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		intent := newEscrowIntent(entities.PaymentTypeFull, entities.IntentStatusPayoutInitiated)
		payoutID := "po_43"
		intent.GatewayPayoutID = &payoutID

		deps.intents.On("GetByPayoutID", mock.Anything, payoutID).Return(intent, nil)
		deps.intents.On("TransitionStatus", mock.Anything, intent.ID,
			[]entities.IntentStatus{entities.IntentStatusPayoutInitiated}, entities.IntentStatusPaymentReceived).Return(true, nil)
		deps.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

		require.NoError(t, svc.HandlePayoutFailed(context.Background(), payoutID, "insufficient float"))
		deps.intents.AssertExpectations(t)
	})

	t.Run("unknown payout id surfaces not found", func(t *testing.T) {
		svc, deps := newTestService(defaultConfig())
		deps.intents.On("GetByPayoutID", mock.Anything, "po_missing").Return(nil, entities.ErrNotFound)

		err := svc.HandlePayoutCompleted(context.Background(), "po_missing")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}
