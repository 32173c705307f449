package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/delivery/http/request"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/mediator"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
)

// ProductHandler adapts HTTP requests into commands and queries for the
// dispatcher. It holds no business logic: it builds a request value, sends
// it, and translates the outcome to a status code.
type ProductHandler struct {
	dispatcher *mediator.Dispatcher
	logger     *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(dispatcher *mediator.Dispatcher, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Create handles POST /api/v1/products
// @Summary Create a new product
// @Description Create a new product with name, description, price, stock, category and SKU
// @Tags Products
// @Accept json
// @Produce json
// @Param product body product.CreateProductCommand true "Product details"
// @Success 201 {object} map[string]interface{} "Product created successfully"
// @Failure 400 {object} map[string]interface{} "Validation failed"
// @Failure 409 {object} map[string]string "SKU already in use"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd product.CreateProductCommand
	if err := request.DecodeJSON(r, &cmd); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := mediator.Send[uuid.UUID](r.Context(), h.dispatcher, cmd)
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Created(w, map[string]uuid.UUID{"id": id})
}

// GetByID handles GET /api/v1/products/:id
// @Summary Get a product by ID
// @Description Get a single product projection including the in-stock flag
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	dto, err := mediator.Send[*product.ProductDTO](r.Context(), h.dispatcher, product.GetProductByIDQuery{ID: id})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, dto)
}

// List handles GET /api/v1/products
// @Summary List all products
// @Description Get every non-deleted product
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "List of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	dtos, err := mediator.Send[[]*product.ProductDTO](r.Context(), h.dispatcher, product.GetAllProductsQuery{})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, dtos)
}

// GetBySku handles GET /api/v1/products/sku/:sku
// @Summary Get a product by SKU
// @Tags Products
// @Accept json
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} map[string]interface{} "Product details"
// @Failure 400 {object} map[string]interface{} "Invalid SKU"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/sku/{sku} [get]
func (h *ProductHandler) GetBySku(w http.ResponseWriter, r *http.Request) {
	sku, err := request.GetStringParam(r, "sku")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid SKU")
		return
	}

	dto, err := mediator.Send[*product.ProductDTO](r.Context(), h.dispatcher, product.GetProductBySkuQuery{Sku: sku})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, dto)
}

// GetByCategory handles GET /api/v1/products/category/:category
// @Summary List products in a category
// @Tags Products
// @Accept json
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} map[string]interface{} "List of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/category/{category} [get]
func (h *ProductHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := request.GetStringParam(r, "category")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category")
		return
	}

	dtos, err := mediator.Send[[]*product.ProductDTO](r.Context(), h.dispatcher, product.GetProductsByCategoryQuery{Category: category})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, dtos)
}

// GetInStock handles GET /api/v1/products/in-stock
// @Summary List products with stock available
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "List of products"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/in-stock [get]
func (h *ProductHandler) GetInStock(w http.ResponseWriter, r *http.Request) {
	dtos, err := mediator.Send[[]*product.ProductDTO](r.Context(), h.dispatcher, product.GetProductsInStockQuery{})
	if err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, dtos)
}

// UpdateProductRequest represents the request body for updating a product
type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Sku         string  `json:"sku"`
}

// Update handles PUT /api/v1/products/:id
// @Summary Update a product
// @Description Update product details (name, description, price, category, SKU)
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param product body UpdateProductRequest true "Updated product details"
// @Success 200 {object} map[string]interface{} "Product updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation failed"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 409 {object} map[string]string "SKU already in use"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := product.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Sku:         req.Sku,
	}

	if _, err := mediator.Send[bool](r.Context(), h.dispatcher, cmd); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, map[string]uuid.UUID{"id": id})
}

// UpdateStockRequest represents the request body for a stock change
type UpdateStockRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateStock handles PATCH /api/v1/products/:id/stock
// @Summary Update product stock
// @Description Set the stock quantity of a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param stock body UpdateStockRequest true "New stock quantity"
// @Success 200 {object} map[string]interface{} "Stock updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation failed"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateStockRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := product.UpdateProductStockCommand{ID: id, Quantity: req.Quantity}

	if _, err := mediator.Send[bool](r.Context(), h.dispatcher, cmd); err != nil {
		h.handleError(w, err)
		return
	}

	response.Success(w, map[string]uuid.UUID{"id": id})
}

// Delete handles DELETE /api/v1/products/:id
// @Summary Delete a product
// @Description Soft delete a product; its SKU becomes available for reuse
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 204 "Product deleted successfully"
// @Failure 400 {object} map[string]string "Invalid product ID"
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.GetUUIDParam(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if _, err := mediator.Send[bool](r.Context(), h.dispatcher, product.DeleteProductCommand{ID: id}); err != nil {
		h.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleError maps dispatch outcomes to HTTP responses
func (h *ProductHandler) handleError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Violations)
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrConflict):
		response.Error(w, http.StatusConflict, "Product with this SKU already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "Invalid input")
	default:
		h.logger.Error("Internal error in product handler", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
