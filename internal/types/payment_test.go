package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusValidate(t *testing.T) {
	assert.NoError(t, PaymentStatusPending.Validate())
	assert.NoError(t, PaymentStatusPaymentConfirmed.Validate())
	assert.Error(t, PaymentStatus("approved").Validate())
	assert.Error(t, PaymentStatus("").Validate())
}

func TestPaymentStatusIsSuccess(t *testing.T) {
	assert.True(t, PaymentStatusCompleted.IsSuccess())
	assert.True(t, PaymentStatusPaymentConfirmed.IsSuccess())
	assert.True(t, PaymentStatusSubscriptionConfirmed.IsSuccess())
	assert.False(t, PaymentStatusPending.IsSuccess())
	assert.False(t, PaymentStatusFailed.IsSuccess())
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.True(t, PaymentStatusCompleted.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusCancelled.IsTerminal())
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusProcessing.IsTerminal())
}
