package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bdsumon4u/KroyJogot24/internal/config"
	"github.com/bdsumon4u/KroyJogot24/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not Found"}`))
	})

	// Login runs outside the auth chain but behind the same-origin guard.
	r.Handle("/admin/login", h.RequireSameOrigin(http.HandlerFunc(h.Login))).Methods("POST").Name("admin.login")

	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(h.SessionMiddleware)
	adminRouter.Use(h.RequireAuth)
	adminRouter.Use(h.MetricsContext)
	adminRouter.Use(h.RequireSameOrigin)
	adminRouter.HandleFunc("/logout", h.Logout).Methods("POST").Name("admin.logout")
	adminRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET").Name("admin.dashboard")
	adminRouter.HandleFunc("/orders/reports", h.Reports).Methods("GET").Name("admin.orders.reports")
	adminRouter.HandleFunc("/orders/invoices", h.Invoices).Methods("GET").Name("admin.orders.invoices")
	adminRouter.HandleFunc("/orders/status", h.BulkStatus).Methods("POST").Name("admin.orders.status")
	adminRouter.HandleFunc("/orders/{id}", h.ShowOrder).Methods("GET").Name("admin.orders.show")
	adminRouter.HandleFunc("/orders/{id}", h.UpdateOrder).Methods("POST").Name("admin.orders.update")
	adminRouter.HandleFunc("/orders/{id}/products", h.AddProduct).Methods("POST").Name("admin.orders.products")
	adminRouter.HandleFunc("/orders/{id}/quantities", h.UpdateQuantities).Methods("POST").Name("admin.orders.quantities")
	adminRouter.HandleFunc("/orders/{id}", h.DeleteOrder).Methods("DELETE").Name("admin.orders.delete")

	return r
}
