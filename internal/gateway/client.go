package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/domain/payment"
	"github.com/fincoach/billing/internal/domain/subscription"
	ierr "github.com/fincoach/billing/internal/errors"
	"github.com/fincoach/billing/internal/httpclient"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/marker"
)

// Client is the stateless facade over the upstream payments backend. Payment
// operations follow a defensive contract: backend-reported failures are
// encoded in the result value, never returned as errors, so callers always
// get a usable shape back.
type Client interface {
	// InitiatePayment starts a payment for a plan change. A failure, network
	// or backend-reported, is encoded in the result's Success/Error fields.
	InitiatePayment(ctx context.Context, req *InitiateRequest) *InitiateResult

	// CheckPaymentStatus returns the payment record, or nil when the lookup
	// failed for any reason. Callers must treat nil as "unknown, retry later".
	CheckPaymentStatus(ctx context.Context, paymentID string) *payment.Record

	// CancelPayment asks the backend to cancel an in-flight payment
	CancelPayment(ctx context.Context, paymentID string) *OperationResult

	// GetPaymentHistory lists the user's past payments, newest first
	GetPaymentHistory(ctx context.Context, limit int) []*payment.Record

	// GetAvailablePaymentMethods lists the methods available in a country
	GetAvailablePaymentMethods(ctx context.Context, country string) []payment.Method

	// ApplyDiscountCode validates a discount code against a plan
	ApplyDiscountCode(ctx context.Context, code, planID string) *DiscountResult

	// BeginRedirect validates the processor URL and persists the pending
	// payment marker. The marker write happens before the URL is handed out
	// because the redirect ends the caller's session.
	BeginRedirect(ctx context.Context, rawURL, paymentID string) (string, error)

	// CheckReturnFromPayment consumes the pending marker after the round trip
	CheckReturnFromPayment(ctx context.Context) marker.ReturnCheck

	// GetCurrentSubscription fetches the user's subscription. A backend 404
	// means "no subscription" and returns (nil, nil).
	GetCurrentSubscription(ctx context.Context) (*subscription.Subscription, error)

	// CancelSubscription posts a cancellation for the given subscription
	CancelSubscription(ctx context.Context, subscriptionID, reason, feedback string) error

	// ReactivateSubscription re-enables a cancelled subscription
	ReactivateSubscription(ctx context.Context, subscriptionID string) error

	// ApplyDiscount applies a discount code to the given subscription. An
	// empty subscription id means "apply at next checkout".
	ApplyDiscount(ctx context.Context, code, subscriptionID string) error
}

type client struct {
	http    httpclient.Client
	markers *marker.Store
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates the payments backend facade
func NewClient(http httpclient.Client, markers *marker.Store, cfg *config.Configuration, log *logger.Logger) Client {
	return &client{
		http:    http,
		markers: markers,
		baseURL: cfg.Upstream.BaseURL,
		apiKey:  cfg.Upstream.APIKey,
		logger:  log,
	}
}

func (c *client) url(path string, args ...any) string {
	return c.baseURL + fmt.Sprintf(path, args...)
}

func (c *client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["Authorization"] = "Bearer " + c.apiKey
	}
	return h
}

// send performs a request and decodes the JSON response body into out when
// out is non-nil
func (c *client) send(ctx context.Context, method, url string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode the request payload").
				Mark(ierr.ErrSystem)
		}
	}

	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     url,
		Headers: c.headers(),
		Body:    payload,
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return ierr.WithError(err).
				WithHint("The backend returned an unrecognized response shape").
				Mark(ierr.ErrUpstream)
		}
	}
	return nil
}

// isNotFound reports whether the error is an upstream HTTP 404
func isNotFound(err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		return httpErr.StatusCode == http.StatusNotFound
	}
	return false
}

// validateRedirectURL enforces that the processor URL is absolute http(s)
func validateRedirectURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ierr.WithError(err).
			WithHint("The payment redirect URL is not a valid URL").
			Mark(ierr.ErrValidation)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ierr.NewError("redirect URL must be http or https").
			WithHint("The payment redirect URL is not allowed").
			WithReportableDetails(map[string]any{
				"scheme": u.Scheme,
			}).
			Mark(ierr.ErrValidation)
	}
	if u.Host == "" {
		return ierr.NewError("redirect URL must be absolute").
			WithHint("The payment redirect URL is not allowed").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (c *client) BeginRedirect(ctx context.Context, rawURL, paymentID string) (string, error) {
	if err := validateRedirectURL(rawURL); err != nil {
		return "", err
	}

	// Persist before handing the URL out: once the caller follows it, this
	// side of the flow is gone until the processor redirects back.
	c.markers.Put(ctx, paymentID)

	c.logger.Infow("payment redirect prepared", "payment_id", paymentID)
	return rawURL, nil
}

func (c *client) CheckReturnFromPayment(ctx context.Context) marker.ReturnCheck {
	return c.markers.Consume(ctx)
}
