package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bdsumon4u/KroyJogot24/internal/logging"
	"github.com/bdsumon4u/KroyJogot24/internal/models"
	"github.com/bdsumon4u/KroyJogot24/internal/observability"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials covers both unknown emails and wrong passwords so
// the login response never reveals which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService authenticates admins and issues bearer tokens for JSON
// clients. Cookie sessions are handled at the HTTP layer.
type AuthService struct {
	admins    adminStore
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time
}

type adminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, adminID int64) (*models.Admin, error)
}

func NewAuthService(admins adminStore, jwtSecret string, logger *slog.Logger) (*AuthService, error) {
	if admins == nil {
		return nil, fmt.Errorf("admin store is required")
	}
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 bytes")
	}

	return &AuthService{
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
	}, nil
}

type LoginResult struct {
	Admin *models.Admin
	Token string
}

// Login verifies the credentials and returns the admin with a signed bearer
// token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.auth.login",
		sentry.WithOpName("service.auth"),
		sentry.WithDescription("Login"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		meter.Count("auth.login.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "missing_credentials"),
		))
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			meter.Count("auth.login.failed", 1, sentry.WithAttributes(
				attribute.String("reason", "unknown_email"),
			))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		meter.Count("auth.login.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "wrong_password"),
		))
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(admin)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	meter.Count("auth.login.succeeded", 1)
	logging.FromContext(ctx, s.logger).Info("admin logged in", "admin_id", admin.ID)

	return &LoginResult{Admin: admin, Token: token}, nil
}

type tokenClaims struct {
	Role int `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(admin *models.Admin) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: admin.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", admin.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyToken parses and validates a bearer token and loads the admin it
// names.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.Admin, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", ErrForbidden)
	}

	var adminID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &adminID); err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", ErrForbidden)
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("admin no longer exists: %w", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return admin, nil
}
