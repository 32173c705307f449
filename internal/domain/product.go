package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 1000
	maxCategoryLength    = 100
	maxSkuLength         = 50
	maxPrice             = 1_000_000
	maxStockQuantity     = 10_000
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Product is the aggregate root of the catalog. Its invariants hold after
// every mutation: fields are re-validated by the constructor and by each
// mutator, not only at the API boundary.
type Product struct {
	ID            uuid.UUID  `db:"id"`
	Name          string     `db:"name"`
	Description   string     `db:"description"`
	Price         float64    `db:"price"`
	StockQuantity int        `db:"stock_quantity"`
	Category      string     `db:"category"`
	Sku           string     `db:"sku"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
	IsDeleted     bool       `db:"is_deleted"`
}

// NewProduct creates a product with a fresh identity, validating every field.
func NewProduct(name, description string, price float64, stockQuantity int, category, sku string) (*Product, error) {
	p := &Product{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}

	if err := p.setDetails(name, description, price, category, sku); err != nil {
		return nil, err
	}
	if err := p.setStock(stockQuantity); err != nil {
		return nil, err
	}

	return p, nil
}

// Update replaces the product details and stamps the update timestamp.
// Stock is deliberately not part of the generic update; it changes only
// through UpdateStock.
func (p *Product) Update(name, description string, price float64, category, sku string) error {
	if err := p.setDetails(name, description, price, category, sku); err != nil {
		return err
	}

	p.touch()
	return nil
}

// UpdateStock sets the stock quantity and stamps the update timestamp.
func (p *Product) UpdateStock(quantity int) error {
	if err := p.setStock(quantity); err != nil {
		return err
	}

	p.touch()
	return nil
}

// MarkAsDeleted soft-deletes the product. The record is never physically
// removed; its SKU becomes available for reuse by a new product.
func (p *Product) MarkAsDeleted() {
	p.IsDeleted = true
	p.touch()
}

// IsInStock reports whether the product has any stock. Derived, never persisted.
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

// Clone returns a detached copy so callers cannot mutate stored state directly.
func (p *Product) Clone() *Product {
	clone := *p
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		clone.UpdatedAt = &t
	}
	return &clone
}

func (p *Product) setDetails(name, description string, price float64, category, sku string) error {
	switch {
	case name == "":
		return fmt.Errorf("name is required: %w", ErrInvalidInput)
	case len(name) > maxNameLength:
		return fmt.Errorf("name must not exceed %d characters: %w", maxNameLength, ErrInvalidInput)
	case len(description) > maxDescriptionLength:
		return fmt.Errorf("description must not exceed %d characters: %w", maxDescriptionLength, ErrInvalidInput)
	case price <= 0:
		return fmt.Errorf("price must be greater than zero: %w", ErrInvalidInput)
	case price >= maxPrice:
		return fmt.Errorf("price must be less than %d: %w", maxPrice, ErrInvalidInput)
	case category == "":
		return fmt.Errorf("category is required: %w", ErrInvalidInput)
	case len(category) > maxCategoryLength:
		return fmt.Errorf("category must not exceed %d characters: %w", maxCategoryLength, ErrInvalidInput)
	case sku == "":
		return fmt.Errorf("sku is required: %w", ErrInvalidInput)
	case len(sku) > maxSkuLength:
		return fmt.Errorf("sku must not exceed %d characters: %w", maxSkuLength, ErrInvalidInput)
	case !skuPattern.MatchString(sku):
		return fmt.Errorf("sku may only contain uppercase letters, numbers and hyphens: %w", ErrInvalidInput)
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Category = category
	p.Sku = sku
	return nil
}

func (p *Product) setStock(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("stock quantity cannot be negative: %w", ErrInvalidInput)
	}
	if quantity >= maxStockQuantity {
		return fmt.Errorf("stock quantity must be less than %d: %w", maxStockQuantity, ErrInvalidInput)
	}

	p.StockQuantity = quantity
	return nil
}

func (p *Product) touch() {
	now := time.Now().UTC()
	p.UpdatedAt = &now
}
