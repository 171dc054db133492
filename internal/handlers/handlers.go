package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdsumon4u/KroyJogot24/internal/config"
	"github.com/bdsumon4u/KroyJogot24/internal/logging"
	"github.com/bdsumon4u/KroyJogot24/internal/services"
	"github.com/bdsumon4u/KroyJogot24/internal/session"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// Handlers provides the JSON HTTP handlers for the back office.
type Handlers struct {
	config           *config.Config
	db               *pgxpool.Pool
	cartService      *services.CartService
	editorService    *services.EditorService
	dashboardService *services.DashboardService
	authService      *services.AuthService
	sessionManager   *session.Manager
	logger           *slog.Logger
}

type Dependencies struct {
	Config           *config.Config
	DB               *pgxpool.Pool
	CartService      *services.CartService
	EditorService    *services.EditorService
	DashboardService *services.DashboardService
	AuthService      *services.AuthService
	SessionManager   *session.Manager
	Logger           *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.CartService == nil {
		return nil, fmt.Errorf("handlers dependencies: cartService is required")
	}
	if deps.EditorService == nil {
		return nil, fmt.Errorf("handlers dependencies: editorService is required")
	}
	if deps.DashboardService == nil {
		return nil, fmt.Errorf("handlers dependencies: dashboardService is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}

	return &Handlers{
		config:           deps.Config,
		db:               deps.DB,
		cartService:      deps.CartService,
		editorService:    deps.EditorService,
		dashboardService: deps.DashboardService,
		authService:      deps.AuthService,
		sessionManager:   deps.SessionManager,
		logger:           logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors to HTTP status codes. Everything not in the
// outcome taxonomy is a 500, with the detail kept out of the response.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong."

	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrOutOfStock):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrValidation):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		h.loggerFromContext(r.Context()).Error("request failed", "error", err, "path", r.URL.Path)
	}

	h.writeJSON(w, r, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func decodeJSONBody(r *http.Request, dst any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", services.ErrValidation)
	}
	return nil
}

// SecureCookiesFromConfig reports whether session cookies should carry the
// Secure flag, based on the configured base URL or port.
func SecureCookiesFromConfig(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil {
			return strings.EqualFold(parsed.Scheme, "https")
		}
	}

	return cfg.Port == "443" || cfg.Port == "8443"
}
