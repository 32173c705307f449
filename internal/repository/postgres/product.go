package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

const pqUniqueViolation = "23505"

// ProductRepository implements domain.ProductRepository for PostgreSQL.
// It runs over sqlx.ExtContext so the same implementation serves both a
// plain connection and a transaction-scoped unit of work.
type ProductRepository struct {
	ext      sqlx.ExtContext
	affected *int64
}

// NewProductRepository creates a repository over a plain connection; each
// mutation is committed individually by the database.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{ext: db, affected: new(int64)}
}

// GetByID retrieves a product by ID (excludes soft-deleted)
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted
		FROM products
		WHERE id = $1 AND NOT is_deleted
	`

	var product domain.Product
	err := sqlx.GetContext(ctx, r.ext, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// GetAll retrieves every product (excludes soft-deleted)
func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted
		FROM products
		WHERE NOT is_deleted
		ORDER BY created_at
	`

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.ext, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// GetBySku retrieves a product by SKU (excludes soft-deleted)
func (r *ProductRepository) GetBySku(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted
		FROM products
		WHERE sku = $1 AND NOT is_deleted
	`

	var product domain.Product
	err := sqlx.GetContext(ctx, r.ext, &product, query, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// GetByCategory retrieves products in a category (excludes soft-deleted)
func (r *ProductRepository) GetByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted
		FROM products
		WHERE category = $1 AND NOT is_deleted
		ORDER BY created_at
	`

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.ext, &products, query, category); err != nil {
		return nil, err
	}

	return products, nil
}

// GetInStock retrieves products with stock available (excludes soft-deleted)
func (r *ProductRepository) GetInStock(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted
		FROM products
		WHERE stock_quantity > 0 AND NOT is_deleted
		ORDER BY created_at
	`

	var products []*domain.Product
	if err := sqlx.SelectContext(ctx, r.ext, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// Add persists a new product. The partial unique index on sku (filtered to
// non-deleted rows) is the authoritative uniqueness check; its violation
// maps to domain.ErrConflict.
func (r *ProductRepository) Add(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock_quantity, category, sku, created_at, updated_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.ext.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.Category,
		product.Sku,
		product.CreatedAt,
		product.UpdatedAt,
		product.IsDeleted,
	)
	if err != nil {
		return translateError(err)
	}

	*r.affected++
	return nil
}

// Update replaces stored state for the product's identity. Soft deletes go
// through here as well: the deleted flag is part of the stored state.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4,
		    category = $5, sku = $6, updated_at = $7, is_deleted = $8
		WHERE id = $9
	`

	result, err := r.ext.ExecContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.Category,
		product.Sku,
		product.UpdatedAt,
		product.IsDeleted,
		product.ID,
	)
	if err != nil {
		return translateError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	*r.affected += rowsAffected
	return nil
}

// Exists reports whether a non-deleted product with the ID exists
func (r *ProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND NOT is_deleted)`

	var exists bool
	if err := sqlx.GetContext(ctx, r.ext, &exists, query, id); err != nil {
		return false, err
	}

	return exists, nil
}

// SkuExists reports whether a non-deleted product holds the SKU
func (r *ProductRepository) SkuExists(ctx context.Context, sku string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND NOT is_deleted)`

	var exists bool
	if err := sqlx.GetContext(ctx, r.ext, &exists, query, sku); err != nil {
		return false, err
	}

	return exists, nil
}

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("sku already in use: %w", domain.ErrConflict)
	}
	return err
}
