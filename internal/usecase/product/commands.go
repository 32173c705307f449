package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// CreateProductCommand requests creation of a new product.
type CreateProductCommand struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Description   string  `json:"description" validate:"max=1000"`
	Price         float64 `json:"price" validate:"gt=0,lt=1000000"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0,lt=10000"`
	Category      string  `json:"category" validate:"required,max=100"`
	Sku           string  `json:"sku" validate:"required,max=50,sku"`
}

// UpdateProductCommand requests an in-place update of product details.
// Stock is not part of the generic update; see UpdateProductStockCommand.
type UpdateProductCommand struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=1000"`
	Price       float64   `json:"price" validate:"gt=0,lt=1000000"`
	Category    string    `json:"category" validate:"required,max=100"`
	Sku         string    `json:"sku" validate:"required,max=50,sku"`
}

// UpdateProductStockCommand requests a stock quantity change.
type UpdateProductStockCommand struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity" validate:"gte=0,lt=10000"`
}

// DeleteProductCommand requests a soft delete.
type DeleteProductCommand struct {
	ID uuid.UUID `json:"id"`
}

// CreateProductHandler handles CreateProductCommand.
type CreateProductHandler struct {
	store  domain.Store
	events Publisher
	logger *logger.Logger
}

// NewCreateProductHandler creates the handler.
func NewCreateProductHandler(store domain.Store, events Publisher, log *logger.Logger) *CreateProductHandler {
	return &CreateProductHandler{store: store, events: events, logger: log}
}

// Handle creates the product and returns its new identity. The SkuExists
// pre-check gives a fast ConflictError in the common case; the storage
// constraint behind Add is the authoritative uniqueness guarantee and
// surfaces the same domain.ErrConflict when two creates race.
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (uuid.UUID, error) {
	uow, err := h.store.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer uow.Rollback()

	repo := uow.Products()

	taken, err := repo.SkuExists(ctx, cmd.Sku)
	if err != nil {
		return uuid.Nil, err
	}
	if taken {
		return uuid.Nil, fmt.Errorf("product with SKU %q already exists: %w", cmd.Sku, domain.ErrConflict)
	}

	p, err := domain.NewProduct(cmd.Name, cmd.Description, cmd.Price, cmd.StockQuantity, cmd.Category, cmd.Sku)
	if err != nil {
		return uuid.Nil, err
	}

	if err := repo.Add(ctx, p); err != nil {
		return uuid.Nil, err
	}

	persisted, err := uow.Commit(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if !persisted {
		return uuid.Nil, fmt.Errorf("create product was not persisted: %w", domain.ErrInternal)
	}

	publishEvent(ctx, h.events, h.logger, EventProductCreated, p.ID, p.Sku)

	h.logger.WithFields(map[string]interface{}{
		"product_id": p.ID,
		"sku":        p.Sku,
	}).Info("Product created")

	return p.ID, nil
}

// UpdateProductHandler handles UpdateProductCommand.
type UpdateProductHandler struct {
	store  domain.Store
	events Publisher
	cache  ProjectionCache
	logger *logger.Logger
}

// NewUpdateProductHandler creates the handler.
func NewUpdateProductHandler(store domain.Store, events Publisher, cache ProjectionCache, log *logger.Logger) *UpdateProductHandler {
	return &UpdateProductHandler{store: store, events: events, cache: cache, logger: log}
}

// Handle updates the product details, re-checking SKU uniqueness when the
// SKU is being changed.
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (bool, error) {
	uow, err := h.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.Products()

	p, err := repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return false, err
	}

	if p.Sku != cmd.Sku {
		taken, err := repo.SkuExists(ctx, cmd.Sku)
		if err != nil {
			return false, err
		}
		if taken {
			return false, fmt.Errorf("product with SKU %q already exists: %w", cmd.Sku, domain.ErrConflict)
		}
	}

	if err := p.Update(cmd.Name, cmd.Description, cmd.Price, cmd.Category, cmd.Sku); err != nil {
		return false, err
	}

	if err := repo.Update(ctx, p); err != nil {
		return false, err
	}

	persisted, err := uow.Commit(ctx)
	if err != nil {
		return false, err
	}
	if !persisted {
		return false, fmt.Errorf("update product was not persisted: %w", domain.ErrInternal)
	}

	invalidateProjection(ctx, h.cache, h.logger, p.ID)
	publishEvent(ctx, h.events, h.logger, EventProductUpdated, p.ID, p.Sku)

	h.logger.WithFields(map[string]interface{}{
		"product_id": p.ID,
	}).Info("Product updated")

	return true, nil
}

// UpdateProductStockHandler handles UpdateProductStockCommand.
type UpdateProductStockHandler struct {
	store  domain.Store
	events Publisher
	cache  ProjectionCache
	logger *logger.Logger
}

// NewUpdateProductStockHandler creates the handler.
func NewUpdateProductStockHandler(store domain.Store, events Publisher, cache ProjectionCache, log *logger.Logger) *UpdateProductStockHandler {
	return &UpdateProductStockHandler{store: store, events: events, cache: cache, logger: log}
}

// Handle sets the product's stock quantity.
func (h *UpdateProductStockHandler) Handle(ctx context.Context, cmd UpdateProductStockCommand) (bool, error) {
	uow, err := h.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.Products()

	p, err := repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return false, err
	}

	if err := p.UpdateStock(cmd.Quantity); err != nil {
		return false, err
	}

	if err := repo.Update(ctx, p); err != nil {
		return false, err
	}

	persisted, err := uow.Commit(ctx)
	if err != nil {
		return false, err
	}
	if !persisted {
		return false, fmt.Errorf("update product stock was not persisted: %w", domain.ErrInternal)
	}

	invalidateProjection(ctx, h.cache, h.logger, p.ID)
	publishEvent(ctx, h.events, h.logger, EventProductStockUpdated, p.ID, p.Sku)

	h.logger.WithFields(map[string]interface{}{
		"product_id": p.ID,
		"quantity":   cmd.Quantity,
	}).Info("Product stock updated")

	return true, nil
}

// DeleteProductHandler handles DeleteProductCommand.
type DeleteProductHandler struct {
	store  domain.Store
	events Publisher
	cache  ProjectionCache
	logger *logger.Logger
}

// NewDeleteProductHandler creates the handler.
func NewDeleteProductHandler(store domain.Store, events Publisher, cache ProjectionCache, log *logger.Logger) *DeleteProductHandler {
	return &DeleteProductHandler{store: store, events: events, cache: cache, logger: log}
}

// Handle soft-deletes the product. The row is kept; the deleted flag flips
// and the SKU becomes available for reuse.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) (bool, error) {
	uow, err := h.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.Products()

	p, err := repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return false, err
	}

	p.MarkAsDeleted()

	if err := repo.Update(ctx, p); err != nil {
		return false, err
	}

	persisted, err := uow.Commit(ctx)
	if err != nil {
		return false, err
	}
	if !persisted {
		return false, fmt.Errorf("delete product was not persisted: %w", domain.ErrInternal)
	}

	invalidateProjection(ctx, h.cache, h.logger, p.ID)
	publishEvent(ctx, h.events, h.logger, EventProductDeleted, p.ID, p.Sku)

	h.logger.WithFields(map[string]interface{}{
		"product_id": p.ID,
	}).Info("Product deleted")

	return true, nil
}
