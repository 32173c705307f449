package product

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// GetProductByIDQuery fetches a single product projection.
type GetProductByIDQuery struct {
	ID uuid.UUID `json:"id"`
}

// GetAllProductsQuery fetches every non-deleted product projection.
type GetAllProductsQuery struct{}

// GetProductBySkuQuery fetches a product projection by business key.
type GetProductBySkuQuery struct {
	Sku string `json:"sku" validate:"required,max=50,sku"`
}

// GetProductsByCategoryQuery fetches projections for one category.
type GetProductsByCategoryQuery struct {
	Category string `json:"category" validate:"required,max=100"`
}

// GetProductsInStockQuery fetches projections with stock available.
type GetProductsInStockQuery struct{}

// GetProductByIDHandler handles GetProductByIDQuery with a read-through
// projection cache.
type GetProductByIDHandler struct {
	store  domain.Store
	cache  ProjectionCache
	logger *logger.Logger
}

// NewGetProductByIDHandler creates the handler.
func NewGetProductByIDHandler(store domain.Store, cache ProjectionCache, log *logger.Logger) *GetProductByIDHandler {
	return &GetProductByIDHandler{store: store, cache: cache, logger: log}
}

// Handle returns the projection, from cache when possible. Absent or
// soft-deleted products surface domain.ErrNotFound.
func (h *GetProductByIDHandler) Handle(ctx context.Context, query GetProductByIDQuery) (*ProductDTO, error) {
	if h.cache != nil {
		dto, err := h.cache.GetProduct(ctx, query.ID)
		if err == nil {
			return dto, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger.Error("Product cache lookup failed", err)
		}
	}

	p, err := h.store.Products().GetByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}

	dto := NewProductDTO(p)

	if h.cache != nil {
		if err := h.cache.SetProduct(ctx, dto); err != nil {
			h.logger.Error("Failed to cache product projection", err)
		}
	}

	return dto, nil
}

// GetAllProductsHandler handles GetAllProductsQuery.
type GetAllProductsHandler struct {
	store  domain.Store
	logger *logger.Logger
}

// NewGetAllProductsHandler creates the handler.
func NewGetAllProductsHandler(store domain.Store, log *logger.Logger) *GetAllProductsHandler {
	return &GetAllProductsHandler{store: store, logger: log}
}

// Handle returns every non-deleted projection; no order is guaranteed.
func (h *GetAllProductsHandler) Handle(ctx context.Context, query GetAllProductsQuery) ([]*ProductDTO, error) {
	products, err := h.store.Products().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return newProductDTOs(products), nil
}

// GetProductBySkuHandler handles GetProductBySkuQuery.
type GetProductBySkuHandler struct {
	store  domain.Store
	logger *logger.Logger
}

// NewGetProductBySkuHandler creates the handler.
func NewGetProductBySkuHandler(store domain.Store, log *logger.Logger) *GetProductBySkuHandler {
	return &GetProductBySkuHandler{store: store, logger: log}
}

func (h *GetProductBySkuHandler) Handle(ctx context.Context, query GetProductBySkuQuery) (*ProductDTO, error) {
	p, err := h.store.Products().GetBySku(ctx, query.Sku)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(p), nil
}

// GetProductsByCategoryHandler handles GetProductsByCategoryQuery.
type GetProductsByCategoryHandler struct {
	store  domain.Store
	logger *logger.Logger
}

// NewGetProductsByCategoryHandler creates the handler.
func NewGetProductsByCategoryHandler(store domain.Store, log *logger.Logger) *GetProductsByCategoryHandler {
	return &GetProductsByCategoryHandler{store: store, logger: log}
}

func (h *GetProductsByCategoryHandler) Handle(ctx context.Context, query GetProductsByCategoryQuery) ([]*ProductDTO, error) {
	products, err := h.store.Products().GetByCategory(ctx, query.Category)
	if err != nil {
		return nil, err
	}
	return newProductDTOs(products), nil
}

// GetProductsInStockHandler handles GetProductsInStockQuery.
type GetProductsInStockHandler struct {
	store  domain.Store
	logger *logger.Logger
}

// NewGetProductsInStockHandler creates the handler.
func NewGetProductsInStockHandler(store domain.Store, log *logger.Logger) *GetProductsInStockHandler {
	return &GetProductsInStockHandler{store: store, logger: log}
}

func (h *GetProductsInStockHandler) Handle(ctx context.Context, query GetProductsInStockQuery) ([]*ProductDTO, error) {
	products, err := h.store.Products().GetInStock(ctx)
	if err != nil {
		return nil, err
	}
	return newProductDTOs(products), nil
}
