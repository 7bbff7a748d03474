package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatus represents the lifecycle status of a payment as reported by
// the upstream payments backend
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"

	// Confirmation aliases some backend versions report instead of "completed".
	PaymentStatusPaymentConfirmed      PaymentStatus = "payment_confirmed"
	PaymentStatusSubscriptionConfirmed PaymentStatus = "subscription_confirmed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusProcessing,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusCancelled,
		PaymentStatusPaymentConfirmed,
		PaymentStatusSubscriptionConfirmed,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment status: %s", s)
	}
	return nil
}

// IsSuccess returns true for any status that confirms the payment went through
func (s PaymentStatus) IsSuccess() bool {
	return lo.Contains([]PaymentStatus{
		PaymentStatusCompleted,
		PaymentStatusPaymentConfirmed,
		PaymentStatusSubscriptionConfirmed,
	}, s)
}

// IsTerminal returns true when no further status transitions are possible
func (s PaymentStatus) IsTerminal() bool {
	return s.IsSuccess() || s == PaymentStatusFailed || s == PaymentStatusCancelled
}
