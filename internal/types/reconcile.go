package types

// ReconcileState is the state of a payment-return reconciliation pass.
// checking is the only non-terminal state; every other state ends the pass.
type ReconcileState string

const (
	ReconcileStateChecking  ReconcileState = "checking"
	ReconcileStateSucceeded ReconcileState = "succeeded"
	ReconcileStateFailed    ReconcileState = "failed"
	ReconcileStateCancelled ReconcileState = "cancelled"
	ReconcileStateTimedOut  ReconcileState = "timed_out"

	// ReconcileStateNotPaymentReturn is reported when neither the callback
	// parameters nor the pending marker indicate a payment round trip.
	ReconcileStateNotPaymentReturn ReconcileState = "not_payment_return"
)

func (s ReconcileState) String() string {
	return string(s)
}

// IsTerminal returns true once the reconciliation pass has finished
func (s ReconcileState) IsTerminal() bool {
	return s != ReconcileStateChecking
}
