package testutil

import (
	"context"
	"time"

	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/gateway"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/marker"
	"github.com/fincoach/billing/internal/sentry"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/types"
	"github.com/fincoach/billing/internal/validator"
	"github.com/stretchr/testify/suite"
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	config   *config.Configuration
	logger   *logger.Logger
	cache    cache.Cache
	markers  *marker.Store
	catalog  *plan.Catalog
	backend  *MockHTTPClient
	notifier *RecordingNotifier
	gateway  gateway.Client
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	// Keep polling loops fast in unit tests
	cfg.Billing.PollInterval = time.Millisecond
	cfg.Billing.PollMaxAttempts = 5
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())

	s.cache = cache.NewInMemoryCache()
	s.markers = marker.NewStore(s.cache, s.config.Billing.MarkerMaxAge, s.logger)
	s.catalog = plan.NewCatalog()
	s.backend = NewMockHTTPClient()
	s.notifier = NewRecordingNotifier()
	s.gateway = gateway.NewClient(s.backend, s.markers, s.config, s.logger)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.backend.Clear()
	s.notifier.Reset()
	s.cache.Flush(context.Background())
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetBackend returns the mock payments backend
func (s *BaseServiceTestSuite) GetBackend() *MockHTTPClient {
	return s.backend
}

// GetNotifier returns the recording notification sink
func (s *BaseServiceTestSuite) GetNotifier() *RecordingNotifier {
	return s.notifier
}

// GetMarkers returns the pending payment marker store
func (s *BaseServiceTestSuite) GetMarkers() *marker.Store {
	return s.markers
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetGateway returns the gateway client wired to the mock backend
func (s *BaseServiceTestSuite) GetGateway() gateway.Client {
	return s.gateway
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// GetServiceParams assembles service dependencies around the suite's mocks
func (s *BaseServiceTestSuite) GetServiceParams() service.ServiceParams {
	return service.ServiceParams{
		Logger:   s.logger,
		Config:   s.config,
		Gateway:  s.gateway,
		Catalog:  s.catalog,
		Markers:  s.markers,
		Cache:    s.cache,
		Notifier: s.notifier,
		Sentry:   sentry.NewSentryService(s.config, s.logger),
	}
}
