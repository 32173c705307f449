package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the data access port for products. Reads return
// detached copies and exclude soft-deleted records; a mutation on a returned
// product is only observed after Update and a unit-of-work Commit.
type ProductRepository interface {
	// GetByID retrieves a product by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// GetAll retrieves every product (excludes soft-deleted), fully materialized
	GetAll(ctx context.Context) ([]*Product, error)

	// GetBySku retrieves a product by SKU (excludes soft-deleted)
	GetBySku(ctx context.Context, sku string) (*Product, error)

	// GetByCategory retrieves products in a category (excludes soft-deleted)
	GetByCategory(ctx context.Context, category string) ([]*Product, error)

	// GetInStock retrieves products with stock available (excludes soft-deleted)
	GetInStock(ctx context.Context) ([]*Product, error)

	// Add persists a new product; identity is already assigned by the caller.
	// The storage constraint on SKU is the authoritative uniqueness check and
	// surfaces as ErrConflict.
	Add(ctx context.Context, product *Product) error

	// Update replaces stored state for the product's identity
	Update(ctx context.Context, product *Product) error

	// Exists reports whether a non-deleted product with the ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// SkuExists reports whether a non-deleted product holds the SKU
	SkuExists(ctx context.Context, sku string) (bool, error)
}

// UnitOfWork is the commit boundary for a batch of repository mutations.
type UnitOfWork interface {
	// Products returns the repository bound to this unit of work
	Products() ProductRepository

	// Commit persists the batch and reports whether any change was persisted
	Commit(ctx context.Context) (bool, error)

	// Rollback discards uncommitted changes; safe to call after Commit
	Rollback() error
}

// Store opens units of work and serves reads that need no commit boundary.
type Store interface {
	// Products returns a repository for reads outside any unit of work
	Products() ProductRepository

	// Begin opens a new unit of work
	Begin(ctx context.Context) (UnitOfWork, error)
}
