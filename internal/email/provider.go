// Package email sends transactional mail to customers.
package email

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Provider sends email. Implementations must be safe for concurrent use.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Provider string
	APIKey   string
	From     string
}

// NewProvider builds the configured email provider. An empty provider name
// yields a no-op sender so the rest of the app never branches on whether
// email is configured.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "":
		return NoopProvider{}, nil
	case "resend":
		return NewResendProvider(cfg.APIKey, cfg.From)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// NoopProvider drops messages. Used when no email provider is configured.
type NoopProvider struct{}

func (NoopProvider) Send(ctx context.Context, msg Message) error {
	slog.DebugContext(ctx, "email provider not configured, dropping message",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
