package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bdsumon4u/KroyJogot24/internal/config"
	"github.com/bdsumon4u/KroyJogot24/internal/db"
	"github.com/bdsumon4u/KroyJogot24/internal/email"
	"github.com/bdsumon4u/KroyJogot24/internal/logging"
	"github.com/bdsumon4u/KroyJogot24/internal/models"
	"github.com/bdsumon4u/KroyJogot24/internal/observability"
	"github.com/bdsumon4u/KroyJogot24/internal/settings"
)

// EditorService applies administrative edits to an order's contact,
// shipping, status and monetary fields, and bulk status updates.
type EditorService struct {
	orders   editorOrderStore
	settings *settings.Settings
	cfg      *config.Config
	emails   email.Provider
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

type editorOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateDetails(ctx context.Context, orderID uuid.UUID, d db.OrderDetails, stampShipped bool) error
	BulkUpdateStatus(ctx context.Context, orderIDs []uuid.UUID, status string, statusAt time.Time, stampShipped bool) (int64, error)
}

func NewEditorService(orders editorOrderStore, shopSettings *settings.Settings, cfg *config.Config, emails email.Provider, logger *slog.Logger) (*EditorService, error) {
	if emails == nil {
		emails = email.NoopProvider{}
	}

	validate := validator.New()
	if err := validate.RegisterValidation("bd_mobile", func(fl validator.FieldLevel) bool {
		return IsValidBDMobile(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register phone validation: %w", err)
	}

	return &EditorService{
		orders:   orders,
		settings: shopSettings,
		cfg:      cfg,
		emails:   emails,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *EditorService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// EditOrderInput is the editable field set of an order. Subtotal is never
// accepted from the caller; it is recomputed from the stored line items.
// Discount and Advanced are pointers so an omitted field is distinguishable
// from an explicit zero; both must be present on every edit.
type EditOrderInput struct {
	Phone        string `json:"phone" validate:"required,bd_mobile"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address" validate:"required"`
	Note         string `json:"note"`
	Status       string `json:"status" validate:"required"`
	ShippingArea string `json:"shipping_area" validate:"required"`
	Discount     *int   `json:"discount" validate:"required,min=0"`
	Advanced     *int   `json:"advanced" validate:"required,min=0"`
}

// Update validates and persists an order edit. The phone number is
// normalized to international form first. status_at is stamped on every
// save; shipped_at is stamped only the first time the order reaches the
// shipping status, and triggers a customer notification when the order has
// an email address.
func (s *EditorService) Update(ctx context.Context, orderID uuid.UUID, input EditOrderInput) (*models.Order, error) {
	span := sentry.StartSpan(
		ctx,
		"service.editor.update",
		sentry.WithOpName("service.editor"),
		sentry.WithDescription("Update"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("order.edit.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	input.Phone = NormalizePhone(input.Phone)

	if err := s.validate.Struct(input); err != nil {
		recordFailure("invalid_input")
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if !s.cfg.IsKnownStatus(input.Status) {
		recordFailure("unknown_status")
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordFailure("order_not_found")
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	now := s.now()
	stampShipped := input.Status == s.cfg.ShippingStatus
	firstShipment := stampShipped && order.ShippedAt.IsZero()

	data := order.Data
	data.Subtotal = order.Subtotal()
	data.ShippingCost = s.shippingCost(input.ShippingArea)
	data.ShippingArea = input.ShippingArea
	data.Discount = *input.Discount
	data.Advanced = *input.Advanced

	details := db.OrderDetails{
		Phone:    input.Phone,
		Name:     input.Name,
		Email:    input.Email,
		Address:  input.Address,
		Note:     input.Note,
		Status:   input.Status,
		StatusAt: now,
		Data:     data,
	}
	if err := s.orders.UpdateDetails(ctx, orderID, details, stampShipped); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordFailure("order_not_found")
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	order.Phone = input.Phone
	order.Name = input.Name
	order.Email = input.Email
	order.Address = input.Address
	order.Note = input.Note
	order.Status = input.Status
	order.StatusAt = now
	order.Data = data
	if firstShipment {
		order.ShippedAt = now
	}

	meter.Count("order.edited", 1, sentry.WithAttributes(
		attribute.String("status", input.Status),
	))

	if firstShipment && order.Email != "" {
		s.notifyShipped(ctx, order)
	}

	return order, nil
}

// BulkStatusUpdate stamps a new status on every listed order in one
// statement. When the target is the shipping status, shipped_at is
// overwritten for all of them.
func (s *EditorService) BulkStatusUpdate(ctx context.Context, orderIDs []uuid.UUID, status string) (int64, error) {
	span := sentry.StartSpan(
		ctx,
		"service.editor.bulk_status_update",
		sentry.WithOpName("service.editor"),
		sentry.WithDescription("BulkStatusUpdate"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	if !s.cfg.IsKnownStatus(status) {
		meter.Count("order.bulk_status.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "unknown_status"),
		))
		return 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if len(orderIDs) == 0 {
		meter.Count("order.bulk_status.failed", 1, sentry.WithAttributes(
			attribute.String("reason", "no_orders"),
		))
		return 0, fmt.Errorf("%w: no orders selected", ErrValidation)
	}

	stampShipped := status == s.cfg.ShippingStatus
	updated, err := s.orders.BulkUpdateStatus(ctx, orderIDs, status, s.now(), stampShipped)
	if err != nil {
		return 0, fmt.Errorf("failed to update statuses: %w", err)
	}

	meter.Count("order.bulk_status.updated", updated, sentry.WithAttributes(
		attribute.String("status", status),
	))
	s.loggerFromContext(ctx).Info("bulk status update",
		"status", status,
		"requested", len(orderIDs),
		"updated", updated,
	)
	return updated, nil
}

// shippingCost resolves the delivery charge for a zone, preferring the shop
// settings rate table and falling back to the service-level rates.
func (s *EditorService) shippingCost(zone string) int {
	if rate, ok := s.settings.Rate(config.IsInsideDhaka(zone)); ok {
		return rate
	}
	return s.cfg.FallbackRate(zone)
}

func (s *EditorService) notifyShipped(ctx context.Context, order *models.Order) {
	msg := email.Message{
		To:      order.Email,
		Subject: fmt.Sprintf("Your order is on the way, %s", order.Name),
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your order has been handed to the courier and is on its way to:</p><p>%s</p><p>Total due on delivery: %d Tk.</p>",
			order.Name, order.Address,
			order.Data.Subtotal+order.Data.ShippingCost-order.Data.Discount-order.Data.Advanced,
		),
	}
	if err := s.emails.Send(ctx, msg); err != nil {
		s.loggerFromContext(ctx).Warn("failed to send shipped notification",
			"error", err,
			"order_id", order.ID,
		)
	}
}
