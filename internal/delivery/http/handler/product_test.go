package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/mediator"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/repository/memory"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
)

// newTestServer wires the product routes over an in-memory store the same
// way the router mounts them.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New("test")

	validation := mediator.NewValidationBehavior()
	product.RegisterValidation(validation)

	dispatcher := mediator.New(validation, mediator.NewLoggingBehavior(log))
	require.NoError(t, product.RegisterHandlers(dispatcher, memory.NewStore(), nil, nil, log))

	h := NewProductHandler(dispatcher, log)

	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/in-stock", h.GetInStock)
		r.Get("/sku/{sku}", h.GetBySku)
		r.Get("/category/{category}", h.GetByCategory)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}/stock", h.UpdateStock)
		r.Delete("/{id}", h.Delete)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createBody() map[string]any {
	return map[string]any{
		"name":           "Laptop",
		"description":    "A laptop",
		"price":          999.99,
		"stock_quantity": 10,
		"category":       "Electronics",
		"sku":            "LT-001",
	}
}

func createProduct(t *testing.T, server *httptest.Server, body map[string]any) uuid.UUID {
	t.Helper()

	resp, decoded := doJSON(t, server, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)

	id, err := uuid.Parse(data["id"].(string))
	require.NoError(t, err)
	return id
}

func TestCreate_Success(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := doJSON(t, server, http.MethodPost, "/api/v1/products", createBody())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, decoded["success"])

	data := decoded["data"].(map[string]any)
	_, err := uuid.Parse(data["id"].(string))
	assert.NoError(t, err)
}

func TestCreate_MalformedBody(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/products", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreate_ValidationFailureListsViolations(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := doJSON(t, server, http.MethodPost, "/api/v1/products", map[string]any{
		"name":  "",
		"price": -5,
		"sku":   "bad sku",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", decoded["error"])

	violations, ok := decoded["violations"].([]any)
	require.True(t, ok)

	fields := make(map[string]bool)
	for _, v := range violations {
		violation := v.(map[string]any)
		fields[violation["field"].(string)] = true
	}

	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["sku"])
	assert.True(t, fields["category"])
}

func TestCreate_DuplicateSkuConflicts(t *testing.T) {
	server := newTestServer(t)

	createProduct(t, server, createBody())

	resp, decoded := doJSON(t, server, http.MethodPost, "/api/v1/products", createBody())

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, decoded["error"], "SKU")
}

func TestGetByID_Success(t *testing.T) {
	server := newTestServer(t)

	id := createProduct(t, server, createBody())

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/"+id.String(), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decoded["data"].(map[string]any)
	assert.Equal(t, "Laptop", data["name"])
	assert.Equal(t, "LT-001", data["sku"])
	assert.Equal(t, true, data["in_stock"])
}

func TestGetByID_InvalidUUID(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid product ID", decoded["error"])
}

func TestGetByID_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Product not found", decoded["error"])
}

func TestList(t *testing.T) {
	server := newTestServer(t)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decoded["data"])

	createProduct(t, server, createBody())

	second := createBody()
	second["sku"] = "LT-002"
	createProduct(t, server, second)

	resp, decoded = doJSON(t, server, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decoded["data"], 2)
}

func TestGetBySku(t *testing.T) {
	server := newTestServer(t)

	createProduct(t, server, createBody())

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/sku/LT-001", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decoded["data"].(map[string]any)
	assert.Equal(t, "Laptop", data["name"])

	resp, _ = doJSON(t, server, http.MethodGet, "/api/v1/products/sku/LT-999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetByCategory(t *testing.T) {
	server := newTestServer(t)

	createProduct(t, server, createBody())

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/category/Electronics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decoded["data"], 1)

	resp, decoded = doJSON(t, server, http.MethodGet, "/api/v1/products/category/Unknown", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decoded["data"])
}

func TestGetInStock(t *testing.T) {
	server := newTestServer(t)

	createProduct(t, server, createBody())

	soldOut := createBody()
	soldOut["sku"] = "LT-002"
	soldOut["stock_quantity"] = 0
	createProduct(t, server, soldOut)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/in-stock", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decoded["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "LT-001", data[0].(map[string]any)["sku"])
}

func TestUpdate_Success(t *testing.T) {
	server := newTestServer(t)

	id := createProduct(t, server, createBody())

	resp, _ := doJSON(t, server, http.MethodPut, "/api/v1/products/"+id.String(), map[string]any{
		"name":     "Gaming laptop",
		"price":    1499.99,
		"category": "Gaming",
		"sku":      "LT-002",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/"+id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decoded["data"].(map[string]any)
	assert.Equal(t, "Gaming laptop", data["name"])
	assert.Equal(t, "LT-002", data["sku"])
	assert.Equal(t, float64(10), data["stock_quantity"])
}

func TestUpdate_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodPut, "/api/v1/products/"+uuid.NewString(), map[string]any{
		"name":     "Laptop",
		"price":    999.99,
		"category": "Electronics",
		"sku":      "LT-001",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdate_SkuConflict(t *testing.T) {
	server := newTestServer(t)

	createProduct(t, server, createBody())

	second := createBody()
	second["sku"] = "LT-002"
	secondID := createProduct(t, server, second)

	resp, _ := doJSON(t, server, http.MethodPut, "/api/v1/products/"+secondID.String(), map[string]any{
		"name":     "Laptop",
		"price":    999.99,
		"category": "Electronics",
		"sku":      "LT-001",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateStock(t *testing.T) {
	server := newTestServer(t)

	id := createProduct(t, server, createBody())

	resp, _ := doJSON(t, server, http.MethodPatch, fmt.Sprintf("/api/v1/products/%s/stock", id), map[string]any{
		"quantity": 0,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, decoded := doJSON(t, server, http.MethodGet, "/api/v1/products/"+id.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decoded["data"].(map[string]any)
	assert.Equal(t, float64(0), data["stock_quantity"])
	assert.Equal(t, false, data["in_stock"])
}

func TestUpdateStock_NegativeQuantityRejected(t *testing.T) {
	server := newTestServer(t)

	id := createProduct(t, server, createBody())

	resp, decoded := doJSON(t, server, http.MethodPatch, fmt.Sprintf("/api/v1/products/%s/stock", id), map[string]any{
		"quantity": -1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", decoded["error"])
}

func TestDelete(t *testing.T) {
	server := newTestServer(t)

	id := createProduct(t, server, createBody())

	resp, _ := doJSON(t, server, http.MethodDelete, "/api/v1/products/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, server, http.MethodGet, "/api/v1/products/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A fresh product can claim the freed SKU.
	createProduct(t, server, createBody())
}

func TestDelete_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, server, http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
