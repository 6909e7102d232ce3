package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tienda/internal/domain/product"
)

const productColumns = `id, name, description, price, stock, image_url, deleted, deleted_at, created_at`

const (
	listActiveProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE NOT deleted ORDER BY id DESC`

	listActiveProductsPageSQL = `SELECT ` + productColumns + `
		FROM products WHERE NOT deleted ORDER BY id DESC LIMIT $1 OFFSET $2`

	countActiveProductsSQL = `SELECT count(*) FROM products WHERE NOT deleted`

	listAllProductsSQL = `SELECT ` + productColumns + `
		FROM products ORDER BY deleted ASC, id DESC`

	listAllProductsPageSQL = `SELECT ` + productColumns + `
		FROM products ORDER BY deleted ASC, id DESC LIMIT $1 OFFSET $2`

	countAllProductsSQL = `SELECT count(*) FROM products`

	getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (name, description, price, stock, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	updateProductSQL = `UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, image_url = $6
		WHERE id = $1
		RETURNING ` + productColumns

	softDeleteProductSQL = `UPDATE products SET deleted = TRUE, deleted_at = now() WHERE id = $1`

	restoreProductSQL = `UPDATE products SET deleted = FALSE, deleted_at = NULL WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.Deleted, &p.DeletedAt, &p.CreatedAt)
	return p, err
}

// ListActive returns all non-deleted products, newest-first.
func (r *ProductRepository) ListActive(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listActiveProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListActivePaginated returns one page of non-deleted products with
// pagination metadata.
func (r *ProductRepository) ListActivePaginated(ctx context.Context, page, limit int) (product.Page, error) {
	return r.paginate(ctx, listActiveProductsPageSQL, countActiveProductsSQL, page, limit)
}

// ListAll returns every product including soft-deleted ones, active-first
// then newest-first.
func (r *ProductRepository) ListAll(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listAllProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing all products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListAllPaginated returns one page of all products, soft-deleted included.
func (r *ProductRepository) ListAllPaginated(ctx context.Context, page, limit int) (product.Page, error) {
	return r.paginate(ctx, listAllProductsPageSQL, countAllProductsSQL, page, limit)
}

func (r *ProductRepository) paginate(ctx context.Context, pageSQL, countSQL string, page, limit int) (product.Page, error) {
	offset := (page - 1) * limit

	rows, err := r.pool.Query(ctx, pageSQL, limit, offset)
	if err != nil {
		return product.Page{}, fmt.Errorf("listing products page %d: %w", page, err)
	}
	items, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return product.Page{}, fmt.Errorf("scanning products page %d: %w", page, err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL).Scan(&total); err != nil {
		return product.Page{}, fmt.Errorf("counting products: %w", err)
	}

	return product.NewPage(items, page, limit, total), nil
}

// Get returns a single product by ID, soft-deleted or not.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	p, err := pgx.CollectOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new product and returns the full stored row.
func (r *ProductRepository) Create(ctx context.Context, data product.Data) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, createProductSQL,
		data.Name, data.Description, data.Price, data.Stock, data.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	p, err := pgx.CollectOneRow(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	return &p, nil
}

// Update overwrites the mutable fields of an existing product. It returns
// product.ErrNotFound when the ID does not exist.
func (r *ProductRepository) Update(ctx context.Context, id int64, data product.Data) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, updateProductSQL,
		id, data.Name, data.Description, data.Price, data.Stock, data.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	p, err := pgx.CollectOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	return &p, nil
}

// SoftDelete marks a product deleted without removing the row, preserving
// historical order lines. A referential-integrity refusal from the store is
// reported as product.ErrConflict.
func (r *ProductRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, softDeleteProductSQL, id)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return product.ErrConflict
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Restore clears the deleted flag and timestamp.
func (r *ProductRepository) Restore(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, restoreProductSQL, id)
	if err != nil {
		return fmt.Errorf("restoring product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}
