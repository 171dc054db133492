package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdsumon4u/KroyJogot24/internal/models"
)

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// OrderDetails is the full editable field set of an order; the editor
// persists it in one statement.
type OrderDetails struct {
	Phone    string
	Name     string
	Email    string
	Address  string
	Note     string
	Status   string
	StatusAt time.Time
	Data     models.OrderData
}

const orderColumns = `id, phone, name, email, address, note, status, admin_id, products, data, status_at, shipped_at, created_at`

func (s *OrderStore) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	q := querierFrom(ctx, s.pool)
	row := q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	return scanOrder(row)
}

// ListByPhone returns other orders placed from the same phone number, newest
// first.
func (s *OrderStore) ListByPhone(ctx context.Context, phone string, excludeID uuid.UUID) ([]*models.Order, error) {
	q := querierFrom(ctx, s.pool)
	rows, err := q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE phone = $1 AND id != $2 ORDER BY created_at DESC`,
		phone, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (s *OrderStore) GetByIDs(ctx context.Context, orderIDs []uuid.UUID) ([]*models.Order, error) {
	q := querierFrom(ctx, s.pool)
	rows, err := q.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ANY($1) ORDER BY created_at DESC`,
		orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// UpdateCart persists the line item list and derived data bag. The guard
// makes the statement a no-op when nothing differs, so the caller can tell a
// real update from an unchanged one.
func (s *OrderStore) UpdateCart(ctx context.Context, orderID uuid.UUID, items []models.LineItem, data models.OrderData) (bool, error) {
	productsJSON, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("failed to encode line items: %w", err)
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to encode order data: %w", err)
	}

	q := querierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET products = $2, data = $3
		WHERE id = $1 AND (products IS DISTINCT FROM $2::jsonb OR data IS DISTINCT FROM $3::jsonb)
	`, orderID, productsJSON, dataJSON)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateDetails persists the full editable field set atomically. When
// stampShipped is set, shipped_at is written only if it is still null, so
// the first transition into the shipping status wins and later saves never
// overwrite it.
func (s *OrderStore) UpdateDetails(ctx context.Context, orderID uuid.UUID, d OrderDetails, stampShipped bool) error {
	dataJSON, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to encode order data: %w", err)
	}

	q := querierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET phone = $2, name = $3, email = $4, address = $5, note = $6,
		    status = $7, status_at = $8, data = $9,
		    shipped_at = CASE WHEN $10 THEN COALESCE(shipped_at, $8) ELSE shipped_at END
		WHERE id = $1
	`, orderID, d.Phone, d.Name, d.Email, d.Address, d.Note, d.Status, d.StatusAt, dataJSON, stampShipped)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// BulkUpdateStatus stamps status and status_at for every order in one
// statement. When stampShipped is set, shipped_at is overwritten for every
// targeted order, regardless of its prior status.
func (s *OrderStore) BulkUpdateStatus(ctx context.Context, orderIDs []uuid.UUID, status string, statusAt time.Time, stampShipped bool) (int64, error) {
	q := querierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `
		UPDATE orders
		SET status = $1, status_at = $2,
		    shipped_at = CASE WHEN $3 THEN $2 ELSE shipped_at END
		WHERE id = ANY($4)
	`, status, statusAt, stampShipped, orderIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *OrderStore) Delete(ctx context.Context, orderID uuid.UUID) error {
	q := querierFrom(ctx, s.pool)
	tag, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// StatusAggregate is one dashboard cell: order count and gross revenue
// (subtotal + shipping cost) over a date range.
type StatusAggregate struct {
	Count  int64 `json:"count"`
	Amount int64 `json:"amount"`
}

// CountAndRevenue aggregates orders whose dateColumn falls inside the range,
// optionally filtered to one status. dateColumn must be one of the known
// timestamp columns.
func (s *OrderStore) CountAndRevenue(ctx context.Context, start, end time.Time, status, dateColumn string) (StatusAggregate, error) {
	column, err := orderDateColumn(dateColumn)
	if err != nil {
		return StatusAggregate{}, err
	}

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM((data->>'subtotal')::bigint + COALESCE((data->>'shipping_cost')::bigint, 0)), 0)
		FROM orders
		WHERE ` + column + ` BETWEEN $1 AND $2`
	args := []any{start, end}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}

	var agg StatusAggregate
	q := querierFrom(ctx, s.pool)
	if err := q.QueryRow(ctx, query, args...).Scan(&agg.Count, &agg.Amount); err != nil {
		return StatusAggregate{}, err
	}
	return agg, nil
}

// ProductSalesCounts flattens the line item lists of matching orders and
// counts occurrences per product name.
func (s *OrderStore) ProductSalesCounts(ctx context.Context, start, end time.Time, status, dateColumn string, adminID int64) (map[string]int, error) {
	column, err := orderDateColumn(dateColumn)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT item->>'name', COUNT(*)
		FROM orders, jsonb_array_elements(products) AS item
		WHERE ` + column + ` BETWEEN $1 AND $2`
	args := []any{start, end}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if adminID > 0 {
		args = append(args, adminID)
		query += fmt.Sprintf(` AND admin_id = $%d`, len(args))
	}
	query += ` GROUP BY 1`

	q := querierFrom(ctx, s.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func orderDateColumn(name string) (string, error) {
	switch name {
	case "created_at", "status_at", "shipped_at":
		return name, nil
	default:
		return "", fmt.Errorf("unknown order date column: %s", name)
	}
}

func scanOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order        models.Order
		productsJSON []byte
		dataJSON     []byte
		adminID      pgtype.Int8
		statusAt     pgtype.Timestamptz
		shippedAt    pgtype.Timestamptz
		createdAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&order.ID, &order.Phone, &order.Name, &order.Email, &order.Address,
		&order.Note, &order.Status, &adminID, &productsJSON, &dataJSON,
		&statusAt, &shippedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if adminID.Valid {
		order.AdminID = adminID.Int64
	}
	if statusAt.Valid {
		order.StatusAt = statusAt.Time
	}
	if shippedAt.Valid {
		order.ShippedAt = shippedAt.Time
	}
	if createdAt.Valid {
		order.CreatedAt = createdAt.Time
	}

	if len(productsJSON) > 0 {
		if err := json.Unmarshal(productsJSON, &order.Products); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &order.Data); err != nil {
			return nil, fmt.Errorf("failed to decode order data: %w", err)
		}
	}

	return &order, nil
}
