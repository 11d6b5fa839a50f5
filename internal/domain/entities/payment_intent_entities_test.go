package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIntentStatusAcceptsConfirmation(t *testing.T) {
	tests := []struct {
		status IntentStatus
		kind   IntentKind
		want   bool
	}{
		{IntentStatusAwaitingPayment, IntentKindDeliveryEscrow, true},
		{IntentStatusAwaitingPayment, IntentKindPitchInvestment, true},
		{IntentStatusReviewApproved, IntentKindDeliveryEscrow, true},
		{IntentStatusRevisionExhaustedAwaitingPayment, IntentKindDeliveryEscrow, true},
		{IntentStatusReviewApproved, IntentKindPitchInvestment, false},
		{IntentStatusRevisionExhaustedAwaitingPayment, IntentKindPitchInvestment, false},
		{IntentStatusPaymentReceived, IntentKindDeliveryEscrow, false},
		{IntentStatusPartialPaymentReceived, IntentKindDeliveryEscrow, false},
		{IntentStatusPayoutInitiated, IntentKindDeliveryEscrow, false},
		{IntentStatusCompleted, IntentKindDeliveryEscrow, false},
		{IntentStatusCompleted, IntentKindPitchInvestment, false},
		{IntentStatusPartialPayoutCompleted, IntentKindDeliveryEscrow, false},
	}

	for _, tt := range tests {
		got := tt.status.AcceptsConfirmation(tt.kind)
		assert.Equal(t, tt.want, got, "%s / %s", tt.status, tt.kind)
	}
}

func TestActiveIntentStatusesBlockEveryConfirmableState(t *testing.T) {
	allStatuses := []IntentStatus{
		IntentStatusAwaitingPayment,
		IntentStatusReviewApproved,
		IntentStatusRevisionExhaustedAwaitingPayment,
		IntentStatusPaymentReceived,
		IntentStatusPartialPaymentReceived,
		IntentStatusPayoutInitiated,
		IntentStatusCompleted,
		IntentStatusPartialPayoutCompleted,
	}

	// Any state that can still accept a confirmation must also count as
	// active, or two confirmable intents could coexist for one work item.
	for _, status := range allStatuses {
		for _, kind := range []IntentKind{IntentKindDeliveryEscrow, IntentKindPitchInvestment} {
			if status.AcceptsConfirmation(kind) {
				assert.Contains(t, ActiveIntentStatuses, status,
					"%s accepts confirmation for %s but does not block a new intent", status, kind)
			}
		}
	}

	// Mid-settlement states block too; only a fully settled partial payout
	// frees the work item for the balance collection.
	assert.Contains(t, ActiveIntentStatuses, IntentStatusPartialPaymentReceived)
	assert.Contains(t, ActiveIntentStatuses, IntentStatusPayoutInitiated)
	assert.Contains(t, ActiveIntentStatuses, IntentStatusCompleted)
	assert.NotContains(t, ActiveIntentStatuses, IntentStatusPartialPayoutCompleted)
}

func TestPaymentIntentValidate(t *testing.T) {
	submissionID := uuid.New()
	valid := func() *PaymentIntent {
		return &PaymentIntent{
			ID:              uuid.New(),
			Kind:            IntentKindDeliveryEscrow,
			PayerID:         uuid.New(),
			PayeeID:         uuid.New(),
			GrossAmount:     decimal.NewFromInt(1000),
			PaymentAmount:   decimal.NewFromInt(1000),
			PlatformFee:     decimal.NewFromInt(50),
			NetPayoutAmount: decimal.NewFromInt(950),
			Currency:        "SLE",
			PaymentType:     PaymentTypeFull,
			Status:          IntentStatusAwaitingPayment,
			SubmissionID:    &submissionID,
		}
	}

	assert.NoError(t, valid().Validate())

	t.Run("fee split must reconcile", func(t *testing.T) {
		intent := valid()
		intent.PlatformFee = decimal.NewFromInt(60)
		assert.Error(t, intent.Validate())
	})

	t.Run("escrow requires a submission", func(t *testing.T) {
		intent := valid()
		intent.SubmissionID = nil
		assert.Error(t, intent.Validate())
	})

	t.Run("investment requires a pitch", func(t *testing.T) {
		intent := valid()
		intent.Kind = IntentKindPitchInvestment
		intent.PitchID = nil
		assert.Error(t, intent.Validate())
	})

	t.Run("currency must be ISO length", func(t *testing.T) {
		intent := valid()
		intent.Currency = "LEONES"
		assert.Error(t, intent.Validate())
	})

	t.Run("gross must be positive", func(t *testing.T) {
		intent := valid()
		intent.GrossAmount = decimal.Zero
		intent.PlatformFee = decimal.Zero
		intent.NetPayoutAmount = decimal.Zero
		assert.Error(t, intent.Validate())
	})
}

func TestMaskAccount(t *testing.T) {
	assert.Equal(t, "****3456", MaskAccount("23276123456"))
	assert.Equal(t, "****", MaskAccount("123"))
	assert.Equal(t, "****", MaskAccount(""))
	assert.Equal(t, "****", MaskAccount("5678"))
	assert.Equal(t, "****2345", MaskAccount("12345"))
}
