package marker

import (
	"context"
	"testing"
	"time"

	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/logger"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	cache cache.Cache
	store *Store
	now   time.Time
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	log, err := logger.NewLogger(config.GetDefaultConfig())
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.cache = cache.NewInMemoryCache()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewStore(s.cache, 30*time.Minute, log)
	s.store.nowFn = func() time.Time { return s.now }
}

func (s *StoreTestSuite) TestConsumeWithoutMarker() {
	check := s.store.Consume(s.ctx)

	s.False(check.WasPaymentInProgress)
	s.False(check.ShouldCheckStatus)
	s.Empty(check.PaymentID)
}

func (s *StoreTestSuite) TestConsumeFreshMarker() {
	s.store.Put(s.ctx, "pay_123")
	s.now = s.now.Add(5 * time.Minute)

	check := s.store.Consume(s.ctx)

	s.True(check.WasPaymentInProgress)
	s.True(check.ShouldCheckStatus)
	s.Equal("pay_123", check.PaymentID)
}

func (s *StoreTestSuite) TestConsumeIsDestructive() {
	s.store.Put(s.ctx, "pay_123")

	first := s.store.Consume(s.ctx)
	second := s.store.Consume(s.ctx)

	s.True(first.WasPaymentInProgress)
	s.False(second.WasPaymentInProgress)
}

func (s *StoreTestSuite) TestConsumeStaleMarker() {
	s.store.Put(s.ctx, "pay_123")
	s.now = s.now.Add(31 * time.Minute)

	check := s.store.Consume(s.ctx)

	s.True(check.WasPaymentInProgress)
	s.False(check.ShouldCheckStatus)
	s.Equal("pay_123", check.PaymentID)
}

func (s *StoreTestSuite) TestConsumeAtExactMaxAgeIsStale() {
	s.store.Put(s.ctx, "pay_123")
	s.now = s.now.Add(30 * time.Minute)

	check := s.store.Consume(s.ctx)

	s.True(check.WasPaymentInProgress)
	s.False(check.ShouldCheckStatus)
}

func (s *StoreTestSuite) TestPutReplacesPreviousMarker() {
	s.store.Put(s.ctx, "pay_old")
	s.store.Put(s.ctx, "pay_new")

	check := s.store.Consume(s.ctx)

	s.Equal("pay_new", check.PaymentID)
}

func (s *StoreTestSuite) TestConsumeUnknownVersion() {
	s.cache.Set(s.ctx, markerKey, &Record{
		PaymentID: "pay_123",
		CreatedAt: s.now,
		Version:   99,
	}, time.Hour)

	check := s.store.Consume(s.ctx)

	s.True(check.WasPaymentInProgress)
	s.False(check.ShouldCheckStatus)
	s.Empty(check.PaymentID)

	// The unknown-shape marker is still consumed
	second := s.store.Consume(s.ctx)
	s.False(second.WasPaymentInProgress)
}

func (s *StoreTestSuite) TestClear() {
	s.store.Put(s.ctx, "pay_123")
	s.store.Clear(s.ctx)

	check := s.store.Consume(s.ctx)
	s.False(check.WasPaymentInProgress)
}
