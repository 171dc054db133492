package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bdsumon4u/KroyJogot24/internal/logging"
	"github.com/bdsumon4u/KroyJogot24/internal/models"
	"github.com/bdsumon4u/KroyJogot24/internal/observability"
)

// CartService mutates an order's line items while keeping tracked product
// stock consistent. Every operation runs in a single transaction so the
// stock adjustment and the cart write commit or roll back together.
type CartService struct {
	orders   cartOrderStore
	products cartProductStore
	tx       txRunner
	logger   *slog.Logger
}

type cartOrderStore interface {
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateCart(ctx context.Context, orderID uuid.UUID, items []models.LineItem, data models.OrderData) (bool, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

type cartProductStore interface {
	GetByIDOrSKU(ctx context.Context, ref string) (*models.Product, error)
	GetByID(ctx context.Context, productID int64) (*models.Product, error)
	ReserveStock(ctx context.Context, productID int64, want int) (int, error)
	Restock(ctx context.Context, productID int64, quantity int) error
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewCartService(orders cartOrderStore, products cartProductStore, tx txRunner, logger *slog.Logger) *CartService {
	return &CartService{
		orders:   orders,
		products: products,
		tx:       tx,
		logger:   logger,
	}
}

func (s *CartService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// CartResult reports the outcome of a cart mutation. Changed is false when
// the persisted cart was already identical.
type CartResult struct {
	Changed bool
	Order   *models.Order
}

// AddLineItem appends a product to the order's cart. The product reference
// resolves as a primary key first, then as a SKU. For tracked products the
// requested quantity is clamped to the available stock, which is decremented
// in the same transaction.
func (s *CartService) AddLineItem(ctx context.Context, orderID uuid.UUID, idOrSKU string, requestedQty int) (*CartResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.cart.add_line_item",
		sentry.WithOpName("service.cart"),
		sentry.WithDescription("AddLineItem"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	recordFailure := func(reason string) {
		meter.Count("cart.add.failed", 1, sentry.WithAttributes(
			attribute.String("reason", reason),
		))
	}

	if requestedQty < 1 {
		requestedQty = 1
	}

	var result *CartResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				recordFailure("order_not_found")
				return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		product, err := s.products.GetByIDOrSKU(ctx, idOrSKU)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				recordFailure("product_not_found")
				return fmt.Errorf("product %q: %w", idOrSKU, ErrNotFound)
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		if _, exists := order.FindLineItem(product.ID); exists {
			recordFailure("duplicate_product")
			return fmt.Errorf("product %q is already in the order: %w", product.Name, ErrConflict)
		}

		quantity := requestedQty
		if product.ShouldTrack {
			applied, err := s.products.ReserveStock(ctx, product.ID, requestedQty)
			if err != nil {
				return fmt.Errorf("failed to reserve stock: %w", err)
			}
			if applied == 0 {
				recordFailure("out_of_stock")
				return fmt.Errorf("product %q: %w", product.Name, ErrOutOfStock)
			}
			quantity = applied
		}

		order.Products = append(order.Products, models.NewLineItem(product, quantity))
		order.Data.Subtotal = order.Subtotal()

		changed, err := s.orders.UpdateCart(ctx, order.ID, order.Products, order.Data)
		if err != nil {
			return fmt.Errorf("failed to persist cart: %w", err)
		}

		result = &CartResult{Changed: changed, Order: order}
		return nil
	})
	if err != nil {
		return nil, err
	}

	meter.Count("cart.line_item.added", 1)
	s.loggerFromContext(ctx).Info("line item added",
		"order_id", orderID,
		"product", idOrSKU,
		"quantity", requestedQty,
	)
	return result, nil
}

// UpdateQuantities applies a batch of quantity changes in one pass. A
// missing or non-positive quantity removes the line and returns its full
// quantity to stock; decreases restock the difference; increases are clamped
// to the available stock. Lines whose product no longer exists are dropped
// without touching stock. Surviving snapshots keep their recorded price.
func (s *CartService) UpdateQuantities(ctx context.Context, orderID uuid.UUID, quantities map[int64]int) (*CartResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.cart.update_quantities",
		sentry.WithOpName("service.cart"),
		sentry.WithDescription("UpdateQuantities"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	var result *CartResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				meter.Count("cart.update.failed", 1, sentry.WithAttributes(
					attribute.String("reason", "order_not_found"),
				))
				return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		kept := make([]models.LineItem, 0, len(order.Products))
		for _, item := range order.Products {
			product, err := s.products.GetByID(ctx, item.ID)
			if errors.Is(err, pgx.ErrNoRows) {
				// The product was removed from the catalog; there is no
				// stock row left to return the quantity to.
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load product %d: %w", item.ID, err)
			}

			want, present := quantities[item.ID]
			if !present || want <= 0 {
				if product.ShouldTrack {
					if err := s.products.Restock(ctx, item.ID, item.Quantity); err != nil {
						return fmt.Errorf("failed to restock product %d: %w", item.ID, err)
					}
				}
				continue
			}

			switch {
			case want < item.Quantity:
				if product.ShouldTrack {
					if err := s.products.Restock(ctx, item.ID, item.Quantity-want); err != nil {
						return fmt.Errorf("failed to restock product %d: %w", item.ID, err)
					}
				}
				item.Quantity = want
			case want > item.Quantity:
				if product.ShouldTrack {
					applied, err := s.products.ReserveStock(ctx, item.ID, want-item.Quantity)
					if err != nil {
						return fmt.Errorf("failed to reserve stock for product %d: %w", item.ID, err)
					}
					item.Quantity += applied
				} else {
					item.Quantity = want
				}
			}

			item.Total = item.Quantity * item.Price
			kept = append(kept, item)
		}

		order.Products = kept
		order.Data.Subtotal = order.Subtotal()

		changed, err := s.orders.UpdateCart(ctx, order.ID, order.Products, order.Data)
		if err != nil {
			return fmt.Errorf("failed to persist cart: %w", err)
		}

		result = &CartResult{Changed: changed, Order: order}
		return nil
	})
	if err != nil {
		return nil, err
	}

	meter.Count("cart.quantities.updated", 1)
	return result, nil
}

// DeleteOrder removes an order after returning every tracked line item's
// quantity to stock. Only the owner role may delete.
func (s *CartService) DeleteOrder(ctx context.Context, orderID uuid.UUID, actorRole int) error {
	span := sentry.StartSpan(
		ctx,
		"service.cart.delete_order",
		sentry.WithOpName("service.cart"),
		sentry.WithDescription("DeleteOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)

	if actorRole != models.RoleOwner {
		meter.Count("order.delete.rejected", 1, sentry.WithAttributes(
			attribute.String("reason", "not_owner"),
		))
		return fmt.Errorf("only the owner may delete orders: %w", ErrForbidden)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		for _, item := range order.Products {
			product, err := s.products.GetByID(ctx, item.ID)
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load product %d: %w", item.ID, err)
			}
			if !product.ShouldTrack {
				continue
			}
			if err := s.products.Restock(ctx, item.ID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restock product %d: %w", item.ID, err)
			}
		}

		if err := s.orders.Delete(ctx, order.ID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	meter.Count("order.deleted", 1)
	s.loggerFromContext(ctx).Info("order deleted", "order_id", orderID)
	return nil
}
