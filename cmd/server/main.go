package main

import (
	"context"
	"net/http"
	"time"

	"github.com/fincoach/billing/internal/api"
	v1 "github.com/fincoach/billing/internal/api/v1"
	"github.com/fincoach/billing/internal/cache"
	"github.com/fincoach/billing/internal/config"
	"github.com/fincoach/billing/internal/domain/plan"
	"github.com/fincoach/billing/internal/gateway"
	"github.com/fincoach/billing/internal/httpclient"
	"github.com/fincoach/billing/internal/logger"
	"github.com/fincoach/billing/internal/marker"
	"github.com/fincoach/billing/internal/notify"
	"github.com/fincoach/billing/internal/sentry"
	"github.com/fincoach/billing/internal/service"
	"github.com/fincoach/billing/internal/validator"
	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"go.uber.org/fx"
)

// sweepInterval drives the periodic billing notification pass
const sweepInterval = 1 * time.Hour

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache and pending-payment markers
			cache.NewInMemoryCache,
			provideMarkerStore,

			// Plan catalog
			plan.NewCatalog,

			// HTTP client and payments backend facade
			httpclient.NewDefaultClient,
			gateway.NewClient,

			// Notification sink
			notify.NewLogNotifier,

			// Services
			service.NewServiceParams,
			service.NewSubscriptionService,
			service.NewReconcilerService,
			service.NewBillingNotificationService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
			startNotificationSweeper,
		),
	)
	app.Run()
}

func provideMarkerStore(c cache.Cache, cfg *config.Configuration, log *logger.Logger) *marker.Store {
	return marker.NewStore(c, cfg.Billing.MarkerMaxAge, log)
}

// provideHandlers depends on the validator so request validation is
// initialized before any handler can run
func provideHandlers(
	_ *govalidator.Validate,
	cfg *config.Configuration,
	log *logger.Logger,
	catalog *plan.Catalog,
	gw gateway.Client,
	subscriptionService service.SubscriptionService,
	reconcilerService service.ReconcilerService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(log),
		Plan:         v1.NewPlanHandler(catalog, log),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, cfg, log),
		Payment:      v1.NewPaymentHandler(gw, log),
		Callback:     v1.NewCallbackHandler(reconcilerService, cfg, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}

func startNotificationSweeper(
	lc fx.Lifecycle,
	notifications service.BillingNotificationService,
	subscriptions service.SubscriptionService,
	log *logger.Logger,
) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(sweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						ctx := context.Background()
						if err := subscriptions.Load(ctx); err != nil {
							log.Errorw("notification sweep: subscription load failed", "error", err)
							continue
						}
						notifications.RunSweep(ctx)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
