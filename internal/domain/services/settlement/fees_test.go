package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

func TestSplitFee(t *testing.T) {
	tests := []struct {
		name       string
		gross      string
		feePercent float64
		wantFee    string
		wantNet    string
	}{
		{"round thousand", "1000", 5.0, "50", "950"},
		{"small amount", "10", 5.0, "0.5", "9.5"},
		{"fee rounds up", "999.99", 5.0, "50", "949.99"},
		{"sub-cent gross", "0.01", 5.0, "0", "0.01"},
		{"fractional percent", "333.33", 2.5, "8.33", "325"},
		{"zero percent", "100", 0, "0", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross := decimal.RequireFromString(tt.gross)
			fee, net := SplitFee(gross, tt.feePercent)

			assert.True(t, fee.Equal(decimal.RequireFromString(tt.wantFee)), "fee %s", fee)
			assert.True(t, net.Equal(decimal.RequireFromString(tt.wantNet)), "net %s", net)
			assert.True(t, fee.Add(net).Equal(gross), "fee + net must reconcile to gross")
		})
	}
}

func TestPartialAmount(t *testing.T) {
	assert.True(t, PartialAmount(decimal.NewFromInt(1000), 50.0).Equal(decimal.NewFromInt(500)))
	assert.True(t, PartialAmount(decimal.RequireFromString("333.33"), 50.0).Equal(decimal.RequireFromString("166.67")))
}

func TestSettledShare(t *testing.T) {
	t.Run("full payment settles stored split exactly", func(t *testing.T) {
		intent := &entities.PaymentIntent{
			GrossAmount:     decimal.NewFromInt(1000),
			PaymentAmount:   decimal.NewFromInt(1000),
			PlatformFee:     decimal.NewFromInt(50),
			NetPayoutAmount: decimal.NewFromInt(950),
			PaymentType:     entities.PaymentTypeFull,
		}
		fee, net := settledShare(intent)
		assert.True(t, fee.Equal(decimal.NewFromInt(50)))
		assert.True(t, net.Equal(decimal.NewFromInt(950)))
	})

	t.Run("partial payment settles a pro-rata share", func(t *testing.T) {
		intent := &entities.PaymentIntent{
			GrossAmount:     decimal.NewFromInt(1000),
			PaymentAmount:   decimal.NewFromInt(500),
			PlatformFee:     decimal.NewFromInt(50),
			NetPayoutAmount: decimal.NewFromInt(950),
			PaymentType:     entities.PaymentTypePartial,
		}
		fee, net := settledShare(intent)
		assert.True(t, fee.Equal(decimal.NewFromInt(25)))
		assert.True(t, net.Equal(decimal.NewFromInt(475)))
		assert.True(t, fee.Add(net).Equal(intent.PaymentAmount))
	})

	t.Run("pro-rata share rounds to cents", func(t *testing.T) {
		intent := &entities.PaymentIntent{
			GrossAmount:     decimal.RequireFromString("333.33"),
			PaymentAmount:   decimal.RequireFromString("166.67"),
			PlatformFee:     decimal.RequireFromString("16.67"),
			NetPayoutAmount: decimal.RequireFromString("316.66"),
			PaymentType:     entities.PaymentTypePartial,
		}
		fee, net := settledShare(intent)
		assert.True(t, fee.Add(net).Equal(intent.PaymentAmount))
		assert.True(t, fee.Equal(fee.Round(2)))
	})
}
