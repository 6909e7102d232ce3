package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrConflict is returned when a product cannot be deleted because existing
// order lines reference it.
var ErrConflict = errors.New("product is referenced by existing orders")

// Product represents a catalog item available for purchase. Price is the
// authoritative unit price; checkout never trusts a client-supplied value.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	Deleted     bool            `json:"deleted"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Data holds the mutable product fields accepted on create and update.
type Data struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
}

// Page is one page of products together with pagination metadata.
type Page struct {
	Items      []Product `json:"products"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
	HasNext    bool      `json:"hasNext"`
	HasPrev    bool      `json:"hasPrev"`
}

// NewPage computes pagination metadata for a page slice.
func NewPage(items []Product, page, limit, total int) Page {
	totalPages := (total + limit - 1) / limit
	return Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Repository defines persistence operations for the product catalog.
// ListActive variants exclude soft-deleted rows; ListAll variants include
// them, sorted active-first then newest-first.
type Repository interface {
	ListActive(ctx context.Context) ([]Product, error)
	ListActivePaginated(ctx context.Context, page, limit int) (Page, error)
	ListAll(ctx context.Context) ([]Product, error)
	ListAllPaginated(ctx context.Context, page, limit int) (Page, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, data Data) (*Product, error)
	Update(ctx context.Context, id int64, data Data) (*Product, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}
