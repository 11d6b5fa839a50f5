package entities

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies in-app notifications emitted after settlement
// and cashout transitions commit
type NotificationType string

const (
	NotificationPaymentConfirmed     NotificationType = "payment_confirmed"
	NotificationPaymentReceived      NotificationType = "payment_received"
	NotificationPayoutInitiated      NotificationType = "payout_initiated"
	NotificationPayoutActionRequired NotificationType = "payout_action_required"
	NotificationWalletCredited       NotificationType = "wallet_credited"
	NotificationCashoutInitiated     NotificationType = "cashout_initiated"
	NotificationCashoutCompleted     NotificationType = "cashout_completed"
	NotificationCashoutFailed        NotificationType = "cashout_failed"
)

// Notification is a persisted in-app notification row. Content rendering is
// the main application's concern; this service only records the event.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	RefType   string           `json:"ref_type" db:"ref_type"`
	RefID     string           `json:"ref_id" db:"ref_id"`
	Message   string           `json:"message" db:"message"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
