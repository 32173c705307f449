package product

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/mediator"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/repository/memory"
)

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []ProductEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	var event ProductEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []ProductEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ProductEvent(nil), f.events...)
}

// fakeCache records projections and invalidations.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[uuid.UUID]*ProductDTO
	invalidated   []uuid.UUID
	getErr        error
	setErr        error
	invalidateErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID]*ProductDTO)}
}

func (f *fakeCache) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	dto, ok := f.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return dto, nil
}

func (f *fakeCache) SetProduct(ctx context.Context, dto *ProductDTO) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}
	f.entries[dto.ID] = dto
	return nil
}

func (f *fakeCache) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	delete(f.entries, id)
	f.invalidated = append(f.invalidated, id)
	return nil
}

type testEnv struct {
	store  *memory.Store
	events *fakePublisher
	cache  *fakeCache
	logger *logger.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		store:  memory.NewStore(),
		events: &fakePublisher{},
		cache:  newFakeCache(),
		logger: logger.New("test"),
	}
}

func validCreateCommand() CreateProductCommand {
	return CreateProductCommand{
		Name:          "Laptop",
		Description:   "A laptop",
		Price:         999.99,
		StockQuantity: 10,
		Category:      "Electronics",
		Sku:           "LT-001",
	}
}

func (e *testEnv) createProduct(t *testing.T, cmd CreateProductCommand) uuid.UUID {
	t.Helper()
	id, err := NewCreateProductHandler(e.store, e.events, e.logger).Handle(context.Background(), cmd)
	require.NoError(t, err)
	return id
}

func TestCreateProductHandler_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id, err := NewCreateProductHandler(env.store, env.events, env.logger).Handle(ctx, validCreateCommand())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	p, err := env.store.Products().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "LT-001", p.Sku)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Nil(t, p.UpdatedAt)

	events := env.events.published()
	require.Len(t, events, 1)
	assert.Equal(t, EventProductCreated, events[0].Type)
	assert.Equal(t, id, events[0].ProductID)
	assert.Equal(t, "LT-001", events[0].Sku)
}

func TestCreateProductHandler_SkuConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createProduct(t, validCreateCommand())

	second := validCreateCommand()
	second.Name = "Another laptop"

	_, err := NewCreateProductHandler(env.store, env.events, env.logger).Handle(ctx, second)
	assert.ErrorIs(t, err, domain.ErrConflict)

	all, err := env.store.Products().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, env.events.published(), 1)
}

func TestCreateProductHandler_InvalidDomainState(t *testing.T) {
	env := newTestEnv()

	cmd := validCreateCommand()
	cmd.Price = -1

	_, err := NewCreateProductHandler(env.store, env.events, env.logger).Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, env.events.published())
}

func TestCreateProductHandler_PublishFailureDoesNotFailCommand(t *testing.T) {
	env := newTestEnv()
	env.events.err = errors.New("broker down")

	id, err := NewCreateProductHandler(env.store, env.events, env.logger).Handle(context.Background(), validCreateCommand())
	require.NoError(t, err)

	_, err = env.store.Products().GetByID(context.Background(), id)
	assert.NoError(t, err)
}

func TestCreateProductHandler_ConcurrentSameSkuOneWinner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const writers = 16

	handler := NewCreateProductHandler(env.store, env.events, env.logger)

	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = handler.Handle(ctx, validCreateCommand())
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, domain.ErrConflict)
			conflicts++
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	all, err := env.store.Products().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateProductHandler_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id := env.createProduct(t, validCreateCommand())

	updated, err := NewUpdateProductHandler(env.store, env.events, env.cache, env.logger).Handle(ctx, UpdateProductCommand{
		ID:          id,
		Name:        "Gaming laptop",
		Description: "Faster",
		Price:       1499.99,
		Category:    "Gaming",
		Sku:         "LT-002",
	})
	require.NoError(t, err)
	assert.True(t, updated)

	p, err := env.store.Products().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Gaming laptop", p.Name)
	assert.Equal(t, "LT-002", p.Sku)
	assert.Equal(t, 10, p.StockQuantity, "generic update must not touch stock")
	require.NotNil(t, p.UpdatedAt)

	assert.Contains(t, env.cache.invalidated, id)

	events := env.events.published()
	require.Len(t, events, 2)
	assert.Equal(t, EventProductUpdated, events[1].Type)
}

func TestUpdateProductHandler_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := NewUpdateProductHandler(env.store, env.events, env.cache, env.logger).Handle(context.Background(), UpdateProductCommand{
		ID:       uuid.New(),
		Name:     "Laptop",
		Price:    999.99,
		Category: "Electronics",
		Sku:      "LT-001",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProductHandler_SkuConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.createProduct(t, validCreateCommand())

	other := validCreateCommand()
	other.Sku = "LT-002"
	otherID := env.createProduct(t, other)

	_, err := NewUpdateProductHandler(env.store, env.events, env.cache, env.logger).Handle(ctx, UpdateProductCommand{
		ID:       otherID,
		Name:     "Laptop",
		Price:    999.99,
		Category: "Electronics",
		Sku:      "LT-001",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	p, err := env.store.Products().GetByID(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, "LT-002", p.Sku)
}

func TestUpdateProductHandler_KeepingOwnSkuIsNoConflict(t *testing.T) {
	env := newTestEnv()

	id := env.createProduct(t, validCreateCommand())

	updated, err := NewUpdateProductHandler(env.store, env.events, env.cache, env.logger).Handle(context.Background(), UpdateProductCommand{
		ID:       id,
		Name:     "Renamed",
		Price:    999.99,
		Category: "Electronics",
		Sku:      "LT-001",
	})
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestUpdateProductStockHandler_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id := env.createProduct(t, validCreateCommand())

	updated, err := NewUpdateProductStockHandler(env.store, env.events, env.cache, env.logger).Handle(ctx, UpdateProductStockCommand{
		ID:       id,
		Quantity: 0,
	})
	require.NoError(t, err)
	assert.True(t, updated)

	p, err := env.store.Products().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockQuantity)
	assert.Equal(t, "Laptop", p.Name, "stock update must not touch details")

	assert.Contains(t, env.cache.invalidated, id)

	events := env.events.published()
	require.Len(t, events, 2)
	assert.Equal(t, EventProductStockUpdated, events[1].Type)
}

func TestUpdateProductStockHandler_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := NewUpdateProductStockHandler(env.store, env.events, env.cache, env.logger).Handle(context.Background(), UpdateProductStockCommand{
		ID:       uuid.New(),
		Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProductHandler_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id := env.createProduct(t, validCreateCommand())

	deleted, err := NewDeleteProductHandler(env.store, env.events, env.cache, env.logger).Handle(ctx, DeleteProductCommand{ID: id})
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.store.Products().GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Contains(t, env.cache.invalidated, id)

	events := env.events.published()
	require.Len(t, events, 2)
	assert.Equal(t, EventProductDeleted, events[1].Type)

	// The SKU is freed for reuse once its holder is soft-deleted.
	env.createProduct(t, validCreateCommand())
}

func TestDeleteProductHandler_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := NewDeleteProductHandler(env.store, env.events, env.cache, env.logger).Handle(context.Background(), DeleteProductCommand{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteProductHandler_DeleteTwice(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	id := env.createProduct(t, validCreateCommand())

	handler := NewDeleteProductHandler(env.store, env.events, env.cache, env.logger)

	_, err := handler.Handle(ctx, DeleteProductCommand{ID: id})
	require.NoError(t, err)

	_, err = handler.Handle(ctx, DeleteProductCommand{ID: id})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// newTestDispatcher wires the full pipeline the way the API binary does.
func newTestDispatcher(t *testing.T, env *testEnv) *mediator.Dispatcher {
	t.Helper()

	validation := mediator.NewValidationBehavior()
	RegisterValidation(validation)

	d := mediator.New(validation, mediator.NewLoggingBehavior(env.logger))
	require.NoError(t, RegisterHandlers(d, env.store, env.events, env.cache, env.logger))
	return d
}

func TestDispatcher_ProductLifecycle(t *testing.T) {
	env := newTestEnv()
	d := newTestDispatcher(t, env)
	ctx := context.Background()

	id, err := mediator.Send[uuid.UUID](ctx, d, validCreateCommand())
	require.NoError(t, err)

	dto, err := mediator.Send[*ProductDTO](ctx, d, GetProductByIDQuery{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", dto.Name)
	assert.Equal(t, 999.99, dto.Price)
	assert.True(t, dto.InStock)

	_, err = mediator.Send[bool](ctx, d, UpdateProductCommand{
		ID:       id,
		Name:     "Laptop",
		Price:    899.99,
		Category: "Electronics",
		Sku:      "LT-001",
	})
	require.NoError(t, err)

	_, err = mediator.Send[bool](ctx, d, UpdateProductStockCommand{ID: id, Quantity: 0})
	require.NoError(t, err)

	dto, err = mediator.Send[*ProductDTO](ctx, d, GetProductByIDQuery{ID: id})
	require.NoError(t, err)
	assert.Equal(t, 899.99, dto.Price)
	assert.False(t, dto.InStock)

	// A second product with the same SKU conflicts while the first lives.
	_, err = mediator.Send[uuid.UUID](ctx, d, validCreateCommand())
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = mediator.Send[bool](ctx, d, DeleteProductCommand{ID: id})
	require.NoError(t, err)

	_, err = mediator.Send[*ProductDTO](ctx, d, GetProductByIDQuery{ID: id})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// After the soft delete the SKU is free again.
	_, err = mediator.Send[uuid.UUID](ctx, d, validCreateCommand())
	require.NoError(t, err)
}

func TestDispatcher_CreateValidationCollectsAllViolations(t *testing.T) {
	env := newTestEnv()
	d := newTestDispatcher(t, env)

	_, err := mediator.Send[uuid.UUID](context.Background(), d, CreateProductCommand{
		Name:          "",
		Price:         0,
		StockQuantity: -1,
		Category:      "",
		Sku:           "bad sku",
	})
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	fields := make(map[string]bool)
	for _, v := range vErr.Violations {
		fields[v.Field] = true
	}

	assert.True(t, fields["name"])
	assert.True(t, fields["price"])
	assert.True(t, fields["stock_quantity"])
	assert.True(t, fields["category"])
	assert.True(t, fields["sku"])

	// Validation short-circuits: nothing was stored, nothing published.
	all, storeErr := env.store.Products().GetAll(context.Background())
	require.NoError(t, storeErr)
	assert.Empty(t, all)
	assert.Empty(t, env.events.published())
}

func TestRegisterHandlers_DuplicateRegistration(t *testing.T) {
	env := newTestEnv()
	d := mediator.New()

	require.NoError(t, RegisterHandlers(d, env.store, env.events, env.cache, env.logger))
	assert.Error(t, RegisterHandlers(d, env.store, env.events, env.cache, env.logger))
}
