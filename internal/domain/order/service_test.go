package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda/internal/domain/product"
)

// --- Mock implementations ---

// mockLedger implements Repository with transactional semantics: writes made
// through the CheckoutTx only become visible when the callback returns nil.
type mockLedger struct {
	stock  map[int64]*CatalogRow
	orders []*Order

	checkoutErr error
	nextOrderID int64
	nextLineID  int64
}

func newMockLedger(rows ...CatalogRow) *mockLedger {
	stock := make(map[int64]*CatalogRow, len(rows))
	for i := range rows {
		stock[rows[i].ID] = &rows[i]
	}
	return &mockLedger{stock: stock}
}

type mockTx struct {
	ledger *mockLedger

	// Pending writes, applied on commit.
	decrements map[int64]int
	order      *Order
	lines      []Line
}

func (m *mockLedger) Checkout(ctx context.Context, fn func(ctx context.Context, tx CheckoutTx) error) error {
	if m.checkoutErr != nil {
		return m.checkoutErr
	}
	tx := &mockTx{ledger: m, decrements: make(map[int64]int)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// Commit.
	for id, qty := range tx.decrements {
		m.stock[id].Stock -= qty
	}
	if tx.order != nil {
		m.orders = append(m.orders, tx.order)
	}
	return nil
}

func (t *mockTx) ProductForUpdate(_ context.Context, id int64) (*CatalogRow, error) {
	row, ok := t.ledger.stock[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (t *mockTx) InsertOrder(_ context.Context, o *Order) error {
	t.ledger.nextOrderID++
	o.ID = t.ledger.nextOrderID
	t.order = o
	return nil
}

func (t *mockTx) InsertLine(_ context.Context, l *Line) error {
	t.ledger.nextLineID++
	l.ID = t.ledger.nextLineID
	t.lines = append(t.lines, *l)
	return nil
}

func (t *mockTx) DecrementStock(_ context.Context, productID int64, qty int) error {
	t.decrements[productID] += qty
	return nil
}

func (m *mockLedger) ListForUser(_ context.Context, _ int64) ([]Order, error) { return nil, nil }
func (m *mockLedger) ListAll(_ context.Context) ([]Order, error)              { return nil, nil }

func (m *mockLedger) UpdateStatus(_ context.Context, orderID int64, status Status) (*Order, error) {
	for _, o := range m.orders {
		if o.ID == orderID {
			o.Status = status
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// --- Helpers ---

func row(id int64, price string, stock int) CatalogRow {
	return CatalogRow{ID: id, Price: decimal.RequireFromString(price), Stock: stock}
}

func cart(lines ...CartLine) PlaceOrderRequest {
	return PlaceOrderRequest{Lines: lines}
}

// --- Tests ---

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc := NewService(newMockLedger())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	svc := NewService(newMockLedger(row(1, "10.00", 5)))

	_, err := svc.PlaceOrder(context.Background(), cart(CartLine{ProductID: 1, Quantity: 0}))

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ProductID)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	svc := NewService(ledger)

	_, err := svc.PlaceOrder(context.Background(), cart(
		CartLine{ProductID: 1, Quantity: 1},
		CartLine{ProductID: 99, Quantity: 1},
	))

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, int64(99), pnfErr.ProductID)

	// Nothing persisted, no stock change.
	assert.Empty(t, ledger.orders)
	assert.Equal(t, 5, ledger.stock[1].Stock)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5), row(2, "3.50", 2))
	svc := NewService(ledger)

	_, err := svc.PlaceOrder(context.Background(), cart(
		CartLine{ProductID: 1, Quantity: 2},
		CartLine{ProductID: 2, Quantity: 3},
	))

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, int64(2), isErr.ProductID)
	assert.Equal(t, 3, isErr.Requested)
	assert.Equal(t, 2, isErr.Available)

	// The whole checkout rolled back, including the passing first line.
	assert.Empty(t, ledger.orders)
	assert.Equal(t, 5, ledger.stock[1].Stock)
	assert.Equal(t, 2, ledger.stock[2].Stock)
}

func TestPlaceOrder_Success(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	svc := NewService(ledger)

	o, err := svc.PlaceOrder(context.Background(), cart(CartLine{ProductID: 1, Quantity: 2}))

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("20.00").Equal(o.Total))
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.Lines, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(o.Lines[0].UnitPrice))
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, 3, ledger.stock[1].Stock)
}

func TestPlaceOrder_MultipleProducts(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5), row(2, "3.50", 10))
	svc := NewService(ledger)

	userID := int64(7)
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		Lines: []CartLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 4},
		},
		UserID: &userID,
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("34.00").Equal(o.Total))
	require.NotNil(t, o.UserID)
	assert.Equal(t, int64(7), *o.UserID)
	assert.Equal(t, 3, ledger.stock[1].Stock)
	assert.Equal(t, 6, ledger.stock[2].Stock)
}

func TestPlaceOrder_DuplicateLinesKeptSeparate(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	svc := NewService(ledger)

	o, err := svc.PlaceOrder(context.Background(), cart(
		CartLine{ProductID: 1, Quantity: 2},
		CartLine{ProductID: 1, Quantity: 3},
	))

	require.NoError(t, err)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 2, o.Lines[0].Quantity)
	assert.Equal(t, 3, o.Lines[1].Quantity)
	assert.True(t, decimal.RequireFromString("50.00").Equal(o.Total))
	assert.Equal(t, 0, ledger.stock[1].Stock)
}

func TestPlaceOrder_DuplicateLinesCannotOversell(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	svc := NewService(ledger)

	// 3+3 exceeds the stock of 5 even though each line alone fits.
	_, err := svc.PlaceOrder(context.Background(), cart(
		CartLine{ProductID: 1, Quantity: 3},
		CartLine{ProductID: 1, Quantity: 3},
	))

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, 2, isErr.Available)
	assert.Equal(t, 5, ledger.stock[1].Stock)
}

func TestPlaceOrder_LedgerError(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	ledger.checkoutErr = errors.New("connection lost")
	svc := NewService(ledger)

	_, err := svc.PlaceOrder(context.Background(), cart(CartLine{ProductID: 1, Quantity: 1}))

	require.Error(t, err)
	assert.Empty(t, ledger.orders)
}

func TestUpdateStatus_Invalid(t *testing.T) {
	svc := NewService(newMockLedger())

	_, err := svc.UpdateStatus(context.Background(), 1, Status("shipped"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := NewService(newMockLedger())

	_, err := svc.UpdateStatus(context.Background(), 42, StatusCompleted)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatus_Completes(t *testing.T) {
	ledger := newMockLedger(row(1, "10.00", 5))
	svc := NewService(ledger)

	o, err := svc.PlaceOrder(context.Background(), cart(CartLine{ProductID: 1, Quantity: 1}))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
}
