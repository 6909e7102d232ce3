package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tienda/internal/domain/order"
	"tienda/internal/domain/product"
)

const (
	productForUpdateSQL = `SELECT id, price, stock FROM products
		WHERE id = $1 AND NOT deleted FOR UPDATE`

	insertOrderSQL = `INSERT INTO orders (total, status, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	insertOrderLineSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	decrementStockSQL = `UPDATE products SET stock = stock - $2 WHERE id = $1`

	listOrdersForUserSQL = `SELECT id, total, status, user_id, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	listAllOrdersSQL = `SELECT o.id, o.total, o.status, o.user_id, o.created_at, o.updated_at,
			u.name, u.email
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC`

	// Lines join the current product name/image; unit_price stays the
	// snapshot taken at checkout.
	listLinesSQL = `SELECT oi.id, oi.order_id, oi.product_id, p.name, p.image_url,
			oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, total, status, user_id, created_at, updated_at`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Checkout runs fn inside one transaction. Product reads made through the
// transaction take row locks, so two concurrent checkouts of the same product
// serialize and the loser observes the already-decremented stock. Any error
// from fn rolls the whole transaction back.
func (r *OrderRepository) Checkout(ctx context.Context, fn func(ctx context.Context, tx order.CheckoutTx) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &checkoutTx{tx: tx})
	})
}

// checkoutTx adapts a pgx.Tx to the order.CheckoutTx interface.
type checkoutTx struct {
	tx pgx.Tx
}

func (t *checkoutTx) ProductForUpdate(ctx context.Context, id int64) (*order.CatalogRow, error) {
	var row order.CatalogRow
	err := t.tx.QueryRow(ctx, productForUpdateSQL, id).Scan(&row.ID, &row.Price, &row.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("locking product %d: %w", id, err)
	}
	return &row, nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, insertOrderSQL, o.Total, string(o.Status), o.UserID).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (t *checkoutTx) InsertLine(ctx context.Context, l *order.Line) error {
	err := t.tx.QueryRow(ctx, insertOrderLineSQL,
		l.OrderID, l.ProductID, l.Quantity, l.UnitPrice).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("inserting order line: %w", err)
	}
	return nil
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	_, err := t.tx.Exec(ctx, decrementStockSQL, productID, qty)
	if err != nil {
		return fmt.Errorf("decrementing stock for product %d: %w", productID, err)
	}
	return nil
}

// ListForUser returns all orders owned by userID, newest-first, with lines.
func (r *OrderRepository) ListForUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.Total, &o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning orders for user %d: %w", userID, err)
	}

	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every order newest-first with the owning user's name and
// email joined. Guest orders carry nil owner fields.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.Total, &o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt,
			&o.UserName, &o.UserEmail)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning all orders: %w", err)
	}

	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines batch-loads the lines for the given orders in a single query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
		orders[i].Lines = []order.Line{}
	}

	rows, err := r.pool.Query(ctx, listLinesSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l order.Line
		err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.ProductImage,
			&l.Quantity, &l.UnitPrice)
		if err != nil {
			return fmt.Errorf("scanning order line: %w", err)
		}
		if o, ok := byID[l.OrderID]; ok {
			o.Lines = append(o.Lines, l)
		}
	}
	return rows.Err()
}

// UpdateStatus sets the order status and bumps updated_at.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, updateOrderStatusSQL, orderID, string(status)).
		Scan(&o.ID, &o.Total, &o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("updating status of order %d: %w", orderID, err)
	}
	return &o, nil
}
