package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fincoach/billing/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Upstream   UpstreamConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Sentry     SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

// UpstreamConfig points at the payments backend this service orchestrates
type UpstreamConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

// BillingConfig carries the tunables of the payment-return and notification flows
type BillingConfig struct {
	// PollInterval is the delay between payment status polls during reconciliation
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// PollMaxAttempts bounds the reconciliation polling loop
	PollMaxAttempts int `mapstructure:"poll_max_attempts"`
	// MarkerMaxAge is how long a pending-payment marker stays actionable
	MarkerMaxAge time.Duration `mapstructure:"marker_max_age"`
	// ExpiryWarningDays is the days-until-expiry threshold for the warning notification
	ExpiryWarningDays int `mapstructure:"expiry_warning_days"`
	// ExpiryUrgentDays is the days-until-expiry threshold for the urgent notification
	ExpiryUrgentDays int `mapstructure:"expiry_urgent_days"`
	// UpgradePromptInterval is the minimum gap between upgrade prompts to free-tier users
	UpgradePromptInterval time.Duration `mapstructure:"upgrade_prompt_interval"`
	// DashboardURL is where non-payment-return callbacks are redirected
	DashboardURL string `mapstructure:"dashboard_url"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// Optional .env for local development; ignored when absent
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fincoach")

	v.SetEnvPrefix("FINCOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)

	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.retry_max", 3)
	v.SetDefault("upstream.retry_wait_min", 500*time.Millisecond)
	v.SetDefault("upstream.retry_wait_max", 5*time.Second)

	v.SetDefault("billing.poll_interval", 3*time.Second)
	v.SetDefault("billing.poll_max_attempts", 20)
	v.SetDefault("billing.marker_max_age", 30*time.Minute)
	v.SetDefault("billing.expiry_warning_days", 7)
	v.SetDefault("billing.expiry_urgent_days", 3)
	v.SetDefault("billing.upgrade_prompt_interval", 72*time.Hour)
	v.SetDefault("billing.dashboard_url", "/dashboard")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and unit tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Upstream: UpstreamConfig{
			BaseURL:      "http://localhost:9090",
			Timeout:      30 * time.Second,
			RetryMax:     3,
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
		},
		Billing: BillingConfig{
			PollInterval:          3 * time.Second,
			PollMaxAttempts:       20,
			MarkerMaxAge:          30 * time.Minute,
			ExpiryWarningDays:     7,
			ExpiryUrgentDays:      3,
			UpgradePromptInterval: 72 * time.Hour,
			DashboardURL:          "/dashboard",
		},
		Logging: LoggingConfig{Level: types.LogLevelInfo},
	}
}
