package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Ordered order lifecycle statuses. Exactly one of them is the shipping
	// status, which gates the shipped_at stamp.
	OrderStatuses  []string `env:"ORDER_STATUSES" envDefault:"Pending,Confirmed,Processing,Shipping,Delivered,Cancelled" validate:"min=1"`
	ShippingStatus string   `env:"SHIPPING_STATUS" envDefault:"Shipping" validate:"required"`

	// Service-level fallback delivery charges, used when the settings rate
	// table has no entry for the chosen zone.
	ShippingInsideDhaka  int `env:"SHIPPING_INSIDE_DHAKA" envDefault:"60" validate:"min=0"`
	ShippingOutsideDhaka int `env:"SHIPPING_OUTSIDE_DHAKA" envDefault:"120" validate:"min=0"`

	// Path to the YAML settings file holding the primary delivery charge
	// rate table. A missing file is tolerated.
	SettingsFile string `env:"SETTINGS_FILE" envDefault:"settings.yaml"`

	JWTSecret string `env:"JWT_SECRET,required" validate:"required,min=32"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider  string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`

	EmailProvider string `env:"EMAIL_PROVIDER" validate:"omitempty,oneof=resend"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" validate:"omitempty,email"`

	SentryDSN string `env:"SENTRY_DSN"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json both"`
	Port      string     `env:"PORT" envDefault:"8080"`
	BaseURL   string     `env:"BASE_URL" validate:"omitempty,url"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if !c.IsKnownStatus(c.ShippingStatus) {
		return fmt.Errorf("SHIPPING_STATUS %q is not in ORDER_STATUSES", c.ShippingStatus)
	}

	hasEmailProvider := strings.TrimSpace(c.EmailProvider) != ""
	hasEmailKey := strings.TrimSpace(c.EmailAPIKey) != ""
	if hasEmailProvider != hasEmailKey {
		return fmt.Errorf("EMAIL_PROVIDER and EMAIL_API_KEY must be set together")
	}
	if hasEmailProvider && strings.TrimSpace(c.EmailFrom) == "" {
		return fmt.Errorf("EMAIL_FROM is required when EMAIL_PROVIDER is set")
	}

	return nil
}

// IsKnownStatus reports whether status is one of the configured lifecycle
// statuses.
func (c *Config) IsKnownStatus(status string) bool {
	for _, s := range c.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// FallbackRate returns the service-level delivery charge for the zone.
func (c *Config) FallbackRate(zone string) int {
	if IsInsideDhaka(zone) {
		return c.ShippingInsideDhaka
	}
	return c.ShippingOutsideDhaka
}

// IsInsideDhaka reports whether the shipping zone is the near zone.
func IsInsideDhaka(zone string) bool {
	return strings.EqualFold(strings.TrimSpace(zone), "Inside Dhaka")
}
