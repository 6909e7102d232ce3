package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"tienda/internal/domain/product"
)

// Sentinel errors for order operations.
var (
	ErrEmptyCart     = fmt.Errorf("items required")
	ErrOrderNotFound = fmt.Errorf("order not found")
	ErrInvalidStatus = fmt.Errorf("status must be one of: pending, completed, cancelled")
)

// InvalidQuantityError indicates a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// ProductNotFoundError indicates a cart line referencing a product that does
// not exist (or is soft-deleted and therefore not purchasable).
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError indicates a cart line requesting more units than the
// product has available.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// PlaceOrderRequest holds the input for a checkout attempt.
type PlaceOrderRequest struct {
	Lines  []CartLine
	UserID *int64
}

// Service encapsulates checkout and order management business logic.
type Service struct {
	orders Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// PlaceOrder validates the cart against live stock, computes the total from
// authoritative catalog prices, and commits the order, its lines, and the
// stock decrements as one atomic unit. On any failure nothing is persisted.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
	}

	var placed *Order
	err := s.orders.Checkout(ctx, func(ctx context.Context, tx CheckoutTx) error {
		// Duplicate product IDs stay separate lines, so stock already
		// claimed by earlier lines of the same cart counts as unavailable.
		claimed := make(map[int64]int, len(req.Lines))

		total := decimal.Zero
		lines := make([]Line, len(req.Lines))
		for i, line := range req.Lines {
			row, err := tx.ProductForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return errors.Wrapf(err, "read product %d", line.ProductID)
			}

			available := row.Stock - claimed[line.ProductID]
			if available < line.Quantity {
				return &InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: available,
				}
			}
			claimed[line.ProductID] += line.Quantity

			lines[i] = Line{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: row.Price,
			}
			total = total.Add(row.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		o := &Order{
			Total:  total,
			Status: StatusPending,
			UserID: req.UserID,
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return errors.Wrap(err, "insert order")
		}

		for i := range lines {
			lines[i].OrderID = o.ID
			if err := tx.InsertLine(ctx, &lines[i]); err != nil {
				return errors.Wrapf(err, "insert line for product %d", lines[i].ProductID)
			}
			if err := tx.DecrementStock(ctx, lines[i].ProductID, lines[i].Quantity); err != nil {
				return errors.Wrapf(err, "decrement stock for product %d", lines[i].ProductID)
			}
		}

		o.Lines = lines
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return placed, nil
}

// ListForUser returns every order owned by userID, newest-first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.orders.ListForUser(ctx, userID)
}

// ListAll returns every order regardless of owner, newest-first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// UpdateStatus transitions an order to the given status. It fails with
// ErrInvalidStatus for unrecognized statuses and ErrOrderNotFound when the
// order does not exist.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.orders.UpdateStatus(ctx, orderID, status)
}
