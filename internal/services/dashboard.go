package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bdsumon4u/KroyJogot24/internal/cache"
	"github.com/bdsumon4u/KroyJogot24/internal/config"
	"github.com/bdsumon4u/KroyJogot24/internal/db"
	"github.com/bdsumon4u/KroyJogot24/internal/logging"
	"github.com/bdsumon4u/KroyJogot24/internal/models"
	"github.com/bdsumon4u/KroyJogot24/internal/observability"
)

const overviewCacheTTL = 60 * time.Second

// DashboardService aggregates orders and products for the back-office
// landing page and reports.
type DashboardService struct {
	orders   dashboardOrderStore
	products dashboardProductStore
	cache    cache.Provider
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

type dashboardOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetByIDs(ctx context.Context, orderIDs []uuid.UUID) ([]*models.Order, error)
	ListByPhone(ctx context.Context, phone string, excludeID uuid.UUID) ([]*models.Order, error)
	CountAndRevenue(ctx context.Context, start, end time.Time, status, dateColumn string) (db.StatusAggregate, error)
	ProductSalesCounts(ctx context.Context, start, end time.Time, status, dateColumn string, adminID int64) (map[string]int, error)
}

type dashboardProductStore interface {
	Count(ctx context.Context) (int64, error)
	ListInactive(ctx context.Context) ([]*models.Product, error)
	ListOutOfStock(ctx context.Context) ([]*models.Product, error)
}

func NewDashboardService(orders dashboardOrderStore, products dashboardProductStore, cacheProvider cache.Provider, cfg *config.Config, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		orders:   orders,
		products: products,
		cache:    cacheProvider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Overview is the dashboard aggregate for one date range. Revenue is gross:
// subtotal plus shipping cost, before discounts and advances.
type Overview struct {
	ProductCount     int64                         `json:"product_count"`
	Total            db.StatusAggregate            `json:"total"`
	ByStatus         map[string]db.StatusAggregate `json:"by_status"`
	InactiveProducts []*models.Product             `json:"inactive_products"`
	OutOfStock       []*models.Product             `json:"out_of_stock"`
}

// Overview builds the dashboard aggregates for the date range. Orders in the
// shipping status are keyed by when they shipped; every other bucket is
// keyed by when the order was created. Results are cached briefly since the
// page polls.
func (s *DashboardService) Overview(ctx context.Context, start, end time.Time) (*Overview, error) {
	span := sentry.StartSpan(
		ctx,
		"service.dashboard.overview",
		sentry.WithOpName("service.dashboard"),
		sentry.WithDescription("Overview"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	logger := s.loggerFromContext(ctx)

	key := cache.DashboardKey(start.Format(time.DateOnly), end.Format(time.DateOnly))
	if cached, err := s.cache.Get(ctx, key); err == nil {
		var overview Overview
		if err := json.Unmarshal([]byte(cached), &overview); err == nil {
			meter.Count("dashboard.cache.hit", 1)
			return &overview, nil
		}
		logger.Warn("failed to decode cached dashboard overview", "error", err)
	}
	meter.Count("dashboard.cache.miss", 1)

	overview := &Overview{
		ByStatus: make(map[string]db.StatusAggregate, len(s.cfg.OrderStatuses)),
	}

	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	overview.ProductCount = productCount

	total, err := s.orders.CountAndRevenue(ctx, start, end, "", "created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	overview.Total = total

	for _, status := range s.cfg.OrderStatuses {
		column := "created_at"
		if status == s.cfg.ShippingStatus {
			column = "shipped_at"
		}
		agg, err := s.orders.CountAndRevenue(ctx, start, end, status, column)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate %s orders: %w", status, err)
		}
		overview.ByStatus[status] = agg
	}

	inactive, err := s.products.ListInactive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive products: %w", err)
	}
	overview.InactiveProducts = inactive

	outOfStock, err := s.products.ListOutOfStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list out-of-stock products: %w", err)
	}
	overview.OutOfStock = outOfStock

	if encoded, err := json.Marshal(overview); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), overviewCacheTTL); err != nil {
			logger.Warn("failed to cache dashboard overview", "error", err)
		}
	}

	return overview, nil
}

// ProductSales counts line item occurrences per product name for one day.
// The status picks the date column: "all" counts every order by creation
// date, the shipping status counts by ship date, anything else by when the
// status was stamped. A non-zero staffID narrows to that admin's orders.
func (s *DashboardService) ProductSales(ctx context.Context, status string, date time.Time, staffID int64) (map[string]int, error) {
	span := sentry.StartSpan(
		ctx,
		"service.dashboard.product_sales",
		sentry.WithOpName("service.dashboard"),
		sentry.WithDescription("ProductSales"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	if date.IsZero() {
		date = s.now()
	}

	statusFilter := status
	column := "status_at"
	switch status {
	case "", "all":
		statusFilter = ""
		column = "created_at"
	case s.cfg.ShippingStatus:
		column = "shipped_at"
	default:
		if !s.cfg.IsKnownStatus(status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	counts, err := s.orders.ProductSalesCounts(ctx, start, end, statusFilter, column, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to count product sales: %w", err)
	}
	return counts, nil
}

// Invoices loads the orders named in a comma-separated id list. Blank and
// malformed entries are skipped.
func (s *DashboardService) Invoices(ctx context.Context, idList string) ([]*models.Order, error) {
	var ids []uuid.UUID
	for _, raw := range strings.Split(idList, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no valid order ids", ErrValidation)
	}

	orders, err := s.orders.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// Order loads one order for the show page.
func (s *DashboardService) Order(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

// RelatedOrders returns the customer's other orders, matched by phone.
func (s *DashboardService) RelatedOrders(ctx context.Context, order *models.Order) ([]*models.Order, error) {
	if order == nil || order.Phone == "" {
		return nil, nil
	}
	orders, err := s.orders.ListByPhone(ctx, order.Phone, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load related orders: %w", err)
	}
	return orders, nil
}

func (s *DashboardService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}
