package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// SplitFee computes the platform fee and net payout for a gross amount.
// The fee is rounded to 2 decimals; the net absorbs the rounding so that
// net + fee == gross exactly.
func SplitFee(gross decimal.Decimal, feePercent float64) (fee, net decimal.Decimal) {
	fee = gross.Mul(decimal.NewFromFloat(feePercent)).Div(decimal.NewFromInt(100)).Round(2)
	net = gross.Sub(fee)
	return fee, net
}

// PartialAmount computes the upfront collection for a partial payment,
// rounded to 2 decimals
func PartialAmount(gross decimal.Decimal, partialPercent float64) decimal.Decimal {
	return gross.Mul(decimal.NewFromFloat(partialPercent)).Div(decimal.NewFromInt(100)).Round(2)
}

// settledShare returns the fee and net for the payment actually collected.
// Full payments settle the stored split exactly; partial payments settle a
// pro-rata share of the stored fee so the remainder reconciles when the
// balance is collected.
func settledShare(intent *entities.PaymentIntent) (fee, net decimal.Decimal) {
	if intent.PaymentType == entities.PaymentTypeFull {
		return intent.PlatformFee, intent.NetPayoutAmount
	}
	fee = intent.PlatformFee.Mul(intent.PaymentAmount).Div(intent.GrossAmount).Round(2)
	net = intent.PaymentAmount.Sub(fee)
	return fee, net
}
