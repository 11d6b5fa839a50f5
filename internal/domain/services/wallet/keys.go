package wallet

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// Ledger idempotency keys are derived from the mutation's own coordinates so
// that any retry of the same logical operation lands on the same key, whether
// the retry comes from a webhook redelivery, the redirect fallback, or the
// reconciliation sweep.

// CreditKey is the key for crediting settled funds to a recipient
func CreditKey(sourceType entities.LedgerSourceType, sourceID string, userID uuid.UUID, currency string, amount decimal.Decimal) string {
	return fmt.Sprintf("credit:%s:%s:%s:%s:%s", sourceType, sourceID, userID, currency, amount.StringFixed(2))
}

// HoldKey is the key for placing a cashout hold
func HoldKey(cashoutID uuid.UUID) string {
	return fmt.Sprintf("hold:%s", cashoutID)
}

// ReleaseKey is the key for releasing a cashout hold after a failed payout
func ReleaseKey(cashoutID uuid.UUID) string {
	return fmt.Sprintf("release:%s", cashoutID)
}

// SettleHoldKey is the key for burning a held amount once the payout completes
func SettleHoldKey(cashoutID uuid.UUID) string {
	return fmt.Sprintf("settle:%s", cashoutID)
}
