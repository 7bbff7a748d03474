package marker

import (
	"context"
	"time"

	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/logger"
)

// recordVersion guards against stale marker shapes surviving a deploy
const recordVersion = 1

// markerKey is the single-writer slot for the pending-payment marker.
// The flow is strictly one payment round trip at a time per process, so one
// slot is enough; the last writer wins.
const markerKey = cache.PrefixPendingPayment + "current"

// retention keeps consumed-but-stale markers discoverable long enough to
// report WasPaymentInProgress after the round trip, independent of MaxAge
const retention = 24 * time.Hour

// Record marks that a redirect-based payment flow is in progress across the
// round trip to the external processor
type Record struct {
	PaymentID string    `json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
	Version   int       `json:"version"`
}

// ReturnCheck is the outcome of consuming the marker after a redirect returns
type ReturnCheck struct {
	// WasPaymentInProgress is true when a marker existed at all
	WasPaymentInProgress bool
	// ShouldCheckStatus is true when the marker is fresh enough that polling
	// the backend is still worthwhile
	ShouldCheckStatus bool
	// PaymentID is the payment the marker was written for
	PaymentID string
}

// Store persists the pending-payment marker. Reads are consuming: a marker is
// deleted the moment it is read, regardless of its staleness outcome.
type Store struct {
	cache  cache.Cache
	maxAge time.Duration
	logger *logger.Logger

	nowFn func() time.Time
}

// NewStore creates a marker store with the given staleness window
func NewStore(c cache.Cache, maxAge time.Duration, log *logger.Logger) *Store {
	return &Store{
		cache:  c,
		maxAge: maxAge,
		logger: log,
		nowFn:  time.Now,
	}
}

// Put writes the marker for the given payment, replacing any previous one
func (s *Store) Put(ctx context.Context, paymentID string) {
	rec := &Record{
		PaymentID: paymentID,
		CreatedAt: s.nowFn().UTC(),
		Version:   recordVersion,
	}
	s.cache.Set(ctx, markerKey, rec, retention)
	s.logger.Debugw("pending payment marker written", "payment_id", paymentID)
}

// Consume reads and clears the marker. The clear happens unconditionally,
// even when the marker turns out to be stale or of an unknown version.
func (s *Store) Consume(ctx context.Context) ReturnCheck {
	v, found := s.cache.Get(ctx, markerKey)
	if !found {
		return ReturnCheck{}
	}
	s.cache.Delete(ctx, markerKey)

	rec, ok := v.(*Record)
	if !ok || rec.Version != recordVersion {
		s.logger.Warnw("discarding pending payment marker with unknown shape")
		return ReturnCheck{WasPaymentInProgress: true}
	}

	fresh := s.nowFn().Sub(rec.CreatedAt) < s.maxAge
	return ReturnCheck{
		WasPaymentInProgress: true,
		ShouldCheckStatus:    fresh,
		PaymentID:            rec.PaymentID,
	}
}

// Clear removes the marker without reading it
func (s *Store) Clear(ctx context.Context) {
	s.cache.Delete(ctx, markerKey)
}
