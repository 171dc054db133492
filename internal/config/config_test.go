package config

import (
	"log/slog"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:          "postgres://localhost:5432/kroyjogot",
		OrderStatuses:        []string{"Pending", "Confirmed", "Processing", "Shipping", "Delivered", "Cancelled"},
		ShippingStatus:       "Shipping",
		ShippingInsideDhaka:  60,
		ShippingOutsideDhaka: 120,
		JWTSecret:            strings.Repeat("k", 32),
		CacheProvider:        "memory",
		SessionStoreProvider: "memory",
		LogLevel:             slog.LevelInfo,
		LogFormat:            "text",
		Port:                 "8080",
	}
}

func TestValidateShippingStatusMustBeConfigured(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.ShippingStatus = "Dispatched"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ORDER_STATUSES") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateJWTSecretLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "valid 32-byte secret", secret: strings.Repeat("s", 32), wantErr: false},
		{name: "short secret", secret: "short", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.JWTSecret = tt.secret

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateEmailCredentialsMustBePaired(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.EmailProvider = "resend"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "EMAIL_PROVIDER and EMAIL_API_KEY") {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.EmailAPIKey = "re_123"
	err = cfg.validate()
	if err == nil || !strings.Contains(err.Error(), "EMAIL_FROM") {
		t.Fatalf("expected EMAIL_FROM error, got %v", err)
	}

	cfg.EmailFrom = "orders@kroyjogot24.com"
	if err := cfg.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestFallbackRate(t *testing.T) {
	t.Parallel()

	cfg := validConfig()

	tests := []struct {
		zone string
		want int
	}{
		{zone: "Inside Dhaka", want: 60},
		{zone: "inside dhaka", want: 60},
		{zone: "Outside Dhaka", want: 120},
		{zone: "Chattogram", want: 120},
	}

	for _, tt := range tests {
		if got := cfg.FallbackRate(tt.zone); got != tt.want {
			t.Fatalf("FallbackRate(%q) = %d, want %d", tt.zone, got, tt.want)
		}
	}
}

func TestIsKnownStatus(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if !cfg.IsKnownStatus("Shipping") {
		t.Fatalf("expected Shipping to be known")
	}
	if cfg.IsKnownStatus("Archived") {
		t.Fatalf("expected Archived to be unknown")
	}
}
