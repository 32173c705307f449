// Package memory provides the reference in-memory implementation of the
// product store ports. Reads hand out detached copies; writes are staged on
// a unit of work and applied atomically on Commit, where the SKU constraint
// is re-checked under the store lock. Two concurrent creates racing the same
// SKU therefore resolve to exactly one winner, the same guarantee the
// PostgreSQL adapter gets from its partial unique index.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
)

// Store implements domain.Store over a mutex-guarded map.
type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

// Products returns a repository whose mutations apply immediately, each as
// its own atomic operation.
func (s *Store) Products() domain.ProductRepository {
	return &repository{store: s}
}

// Begin opens a unit of work staging mutations until Commit.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uow := &unitOfWork{store: s}
	uow.repo = &repository{store: s, uow: uow}
	return uow, nil
}

type change struct {
	product *domain.Product
	update  bool
}

// apply validates and applies a batch under one lock acquisition. Nothing
// is written unless the whole batch validates.
func (s *Store) apply(changes []change) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range changes {
		if err := s.validateLocked(c, changes[:i]); err != nil {
			return false, err
		}
	}

	for _, c := range changes {
		s.products[c.product.ID] = c.product.Clone()
	}

	return len(changes) > 0, nil
}

func (s *Store) validateLocked(c change, earlier []change) error {
	if c.update {
		if _, exists := s.products[c.product.ID]; !exists && !containsAdd(earlier, c.product.ID) {
			return domain.ErrNotFound
		}
	} else if _, exists := s.products[c.product.ID]; exists {
		return fmt.Errorf("duplicate product id %s: %w", c.product.ID, domain.ErrConflict)
	}

	if c.product.IsDeleted {
		return nil
	}

	// SKU must be unique among non-deleted products, committed or staged.
	for _, other := range s.products {
		if other.ID != c.product.ID && !other.IsDeleted && other.Sku == c.product.Sku && !supersededBy(earlier, other.ID) {
			return fmt.Errorf("sku already in use: %w", domain.ErrConflict)
		}
	}
	for _, prior := range earlier {
		if prior.product.ID != c.product.ID && !prior.product.IsDeleted && prior.product.Sku == c.product.Sku {
			return fmt.Errorf("sku already in use: %w", domain.ErrConflict)
		}
	}

	return nil
}

func containsAdd(changes []change, id uuid.UUID) bool {
	for _, c := range changes {
		if !c.update && c.product.ID == id {
			return true
		}
	}
	return false
}

func supersededBy(changes []change, id uuid.UUID) bool {
	for _, c := range changes {
		if c.update && c.product.ID == id {
			return true
		}
	}
	return false
}

// repository implements domain.ProductRepository. With a unit of work it
// stages writes; without one it applies them immediately.
type repository struct {
	store *Store
	uow   *unitOfWork
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, exists := r.store.products[id]
	if !exists || p.IsDeleted {
		return nil, domain.ErrNotFound
	}

	return p.Clone(), nil
}

func (r *repository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	products := make([]*domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if !p.IsDeleted {
			products = append(products, p.Clone())
		}
	}

	return products, nil
}

func (r *repository) GetBySku(ctx context.Context, sku string) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.products {
		if !p.IsDeleted && p.Sku == sku {
			return p.Clone(), nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *repository) GetByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var products []*domain.Product
	for _, p := range r.store.products {
		if !p.IsDeleted && p.Category == category {
			products = append(products, p.Clone())
		}
	}

	return products, nil
}

func (r *repository) GetInStock(ctx context.Context) ([]*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var products []*domain.Product
	for _, p := range r.store.products {
		if !p.IsDeleted && p.IsInStock() {
			products = append(products, p.Clone())
		}
	}

	return products, nil
}

func (r *repository) Add(ctx context.Context, product *domain.Product) error {
	return r.write(ctx, change{product: product.Clone()})
}

func (r *repository) Update(ctx context.Context, product *domain.Product) error {
	return r.write(ctx, change{product: product.Clone(), update: true})
}

func (r *repository) write(ctx context.Context, c change) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.uow != nil {
		r.uow.staged = append(r.uow.staged, c)
		return nil
	}

	_, err := r.store.apply([]change{c})
	return err
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, exists := r.store.products[id]
	return exists && !p.IsDeleted, nil
}

func (r *repository) SkuExists(ctx context.Context, sku string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.products {
		if !p.IsDeleted && p.Sku == sku {
			return true, nil
		}
	}

	return false, nil
}

// unitOfWork stages mutations until Commit.
type unitOfWork struct {
	store  *Store
	repo   *repository
	staged []change
}

func (u *unitOfWork) Products() domain.ProductRepository {
	return u.repo
}

// Commit applies the staged batch and reports whether anything was persisted.
func (u *unitOfWork) Commit(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	staged := u.staged
	u.staged = nil
	return u.store.apply(staged)
}

// Rollback discards staged mutations.
func (u *unitOfWork) Rollback() error {
	u.staged = nil
	return nil
}
