package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdsumon4u/KroyJogot24/internal/models"
)

type ProductStore struct {
	pool *pgxpool.Pool
}

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `id, name, slug, sku, selling_price, base_image, should_track, stock_count, is_active`

// GetByIDOrSKU resolves a product reference as a primary key first, then as
// a SKU.
func (s *ProductStore) GetByIDOrSKU(ctx context.Context, ref string) (*models.Product, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		product, err := s.GetByID(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return s.GetBySKU(ctx, ref)
}

func (s *ProductStore) GetByID(ctx context.Context, productID int64) (*models.Product, error) {
	q := querierFrom(ctx, s.pool)
	return scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID))
}

func (s *ProductStore) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	q := querierFrom(ctx, s.pool)
	return scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
}

func (s *ProductStore) GetByIDs(ctx context.Context, productIDs []int64) ([]*models.Product, error) {
	q := querierFrom(ctx, s.pool)
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	var count int64
	q := querierFrom(ctx, s.pool)
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *ProductStore) ListInactive(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products WHERE NOT is_active ORDER BY id`)
}

func (s *ProductStore) ListOutOfStock(ctx context.Context) ([]*models.Product, error) {
	return s.list(ctx, `SELECT `+productColumns+` FROM products WHERE should_track AND stock_count <= 0 ORDER BY id`)
}

// ReserveStock takes up to want units of a tracked product's stock in a
// single conditional statement and returns the quantity actually taken. The
// LEAST clamp and the stock_count > 0 guard make it impossible to drive the
// counter negative, even under concurrent reservations. Callers must only
// pass tracked products; a zero return means the stock was already empty.
func (s *ProductStore) ReserveStock(ctx context.Context, productID int64, want int) (int, error) {
	if want <= 0 {
		return 0, nil
	}

	q := querierFrom(ctx, s.pool)
	var applied int
	err := q.QueryRow(ctx, `
		WITH prev AS (
			SELECT stock_count FROM products WHERE id = $1 FOR UPDATE
		)
		UPDATE products p
		SET stock_count = p.stock_count - LEAST(p.stock_count, $2::int)
		FROM prev
		WHERE p.id = $1 AND p.should_track AND prev.stock_count > 0
		RETURNING prev.stock_count - p.stock_count
	`, productID, want).Scan(&applied)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// Restock returns quantity units to a tracked product's stock. Untracked or
// vanished products are left untouched.
func (s *ProductStore) Restock(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return nil
	}

	q := querierFrom(ctx, s.pool)
	_, err := q.Exec(ctx,
		`UPDATE products SET stock_count = stock_count + $2 WHERE id = $1 AND should_track`,
		productID, quantity)
	return err
}

func (s *ProductStore) list(ctx context.Context, query string) ([]*models.Product, error) {
	q := querierFrom(ctx, s.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.SellingPrice,
		&p.BaseImage, &p.ShouldTrack, &p.StockCount, &p.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
