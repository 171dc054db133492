package handlers

import (
	"net/http"
	"strings"

	"github.com/bdsumon4u/KroyJogot24/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an admin and establishes both a cookie session and a
// bearer token, so browser and API clients share one endpoint.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data := &session.Data{
		AdminID: result.Admin.ID,
		Name:    result.Admin.Name,
		Role:    result.Admin.RoleID,
	}
	if _, err := h.sessionManager.CreateSession(ctx, w, data); err != nil {
		h.loggerFromContext(ctx).Error("failed to create session", "error", err)
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"admin": map[string]any{
			"id":   result.Admin.ID,
			"name": result.Admin.Name,
			"role": result.Admin.RoleID,
		},
		"redirect": "/admin/dashboard",
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.sessionManager.DestroySession(ctx, w, r); err != nil {
		h.loggerFromContext(ctx).Warn("failed to destroy session", "error", err)
	}

	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"redirect": "/admin/login",
	})
}

// RequireAuth admits requests carrying either a valid session cookie or a
// bearer token. The resolved identity is placed in the context for the
// handlers behind it.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if sess := session.GetSessionFromContext(ctx); sess != nil {
			next.ServeHTTP(w, r)
			return
		}

		if token := bearerToken(r); token != "" {
			admin, err := h.authService.VerifyToken(ctx, token)
			if err == nil {
				ctx = session.WithData(ctx, &session.Data{
					AdminID: admin.ID,
					Name:    admin.Name,
					Role:    admin.RoleID,
				})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			h.loggerFromContext(ctx).Warn("rejected bearer token", "error", err)
		}

		h.writeJSON(w, r, http.StatusUnauthorized, map[string]any{
			"success":  false,
			"message":  "Authentication required.",
			"redirect": "/admin/login",
		})
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
