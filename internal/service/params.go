package service

import (
	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/gateway"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/marker"
	"github.com/fincoach/billing/internal/notify"
	"github.com/fincoach/billing/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger   *logger.Logger
	Config   *config.Configuration
	Gateway  gateway.Client
	Catalog  *plan.Catalog
	Markers  *marker.Store
	Cache    cache.Cache
	Notifier notify.Notifier
	Sentry   *sentry.Service
}

// NewServiceParams assembles the shared dependency bundle
func NewServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	gw gateway.Client,
	catalog *plan.Catalog,
	markers *marker.Store,
	c cache.Cache,
	notifier notify.Notifier,
	sentrySvc *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:   log,
		Config:   cfg,
		Gateway:  gw,
		Catalog:  catalog,
		Markers:  markers,
		Cache:    c,
		Notifier: notifier,
		Sentry:   sentrySvc,
	}
}
