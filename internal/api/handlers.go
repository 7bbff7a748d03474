package api

import (
	v1 "github.com/fincoach/billing/internal/api/v1"
)

// Handlers bundles all HTTP handlers for router wiring
type Handlers struct {
	Health       *v1.HealthHandler
	Plan         *v1.PlanHandler
	Subscription *v1.SubscriptionHandler
	Payment      *v1.PaymentHandler
	Callback     *v1.CallbackHandler
}
