package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

// Valid order statuses.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is a persisted customer order. Total is computed from authoritative
// catalog prices at checkout time and never changes afterwards.
type Order struct {
	ID        int64           `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	UserID    *int64          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Lines     []Line          `json:"items"`

	// Owner details, populated only on the privileged listing. Nil for
	// guest orders.
	UserName  *string `json:"user_name,omitempty"`
	UserEmail *string `json:"user_email,omitempty"`
}

// Line is a single order line. UnitPrice is a snapshot of the product price
// at order time; ProductName and ProductImage are joined at read time and
// track the current catalog row.
type Line struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	ProductImage string          `json:"product_image,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

// CartLine is one requested line of a checkout cart.
type CartLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CatalogRow is the product state observed inside a checkout transaction:
// the authoritative price and the stock backing the requested quantity.
type CatalogRow struct {
	ID    int64
	Price decimal.Decimal
	Stock int
}

// CheckoutTx is the set of operations available inside a single checkout
// transaction. Reads lock the product row, so the stock observed by
// ProductForUpdate is the stock DecrementStock applies to.
type CheckoutTx interface {
	// ProductForUpdate reads and locks an active (non-deleted) product row.
	// It returns product.ErrNotFound when no such product exists.
	ProductForUpdate(ctx context.Context, id int64) (*CatalogRow, error)
	// InsertOrder persists the order row and fills in the generated ID and
	// server-side timestamps.
	InsertOrder(ctx context.Context, o *Order) error
	// InsertLine persists one order line and fills in the generated ID.
	InsertLine(ctx context.Context, l *Line) error
	// DecrementStock subtracts qty from the product's stock.
	DecrementStock(ctx context.Context, productID int64, qty int) error
}

// Ledger runs checkout work inside one atomic transaction: either every
// write in fn commits, or none do.
type Ledger interface {
	Checkout(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error
}

// Repository defines persistence operations for orders.
type Repository interface {
	Ledger
	// ListForUser returns the user's orders newest-first, lines included.
	ListForUser(ctx context.Context, userID int64) ([]Order, error)
	// ListAll returns every order newest-first with owner name/email joined.
	ListAll(ctx context.Context) ([]Order, error)
	// UpdateStatus sets the status and bumps updated_at, returning the
	// updated order. It returns ErrOrderNotFound when no row matches.
	UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error)
}
