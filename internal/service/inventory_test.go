package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/domain"
)

// memInventoryStore keeps stock levels in memory and records calls.
type memInventoryStore struct {
	products   map[uuid.UUID]*domain.Product
	decrements int
	increments int

	decrementErr error
}

func newMemInventoryStore(products ...*domain.Product) *memInventoryStore {
	m := &memInventoryStore{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memInventoryStore) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memInventoryStore) DecrementStock(_ context.Context, id uuid.UUID, quantity int32) (bool, error) {
	if m.decrementErr != nil {
		return false, m.decrementErr
	}
	p, ok := m.products[id]
	if !ok {
		return false, domain.ErrProductNotFound
	}
	if p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	m.decrements++
	return true, nil
}

func (m *memInventoryStore) IncrementStock(_ context.Context, id uuid.UUID, quantity int32) error {
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock += quantity
	m.increments++
	return nil
}

func trackedProduct(name string, stock int32) *domain.Product {
	return &domain.Product{
		ID:             uuid.New(),
		Name:           name,
		Stock:          stock,
		TrackInventory: true,
		IsActive:       true,
	}
}

func testInventoryService(store InventoryStore) *InventoryService {
	return NewInventoryService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestInventoryService_ReserveStock(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	store := newMemInventoryStore(product)
	svc := testInventoryService(store)

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: product.ID, Quantity: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(6), store.products[product.ID].Stock)
}

func TestInventoryService_ReserveStock_InsufficientStock(t *testing.T) {
	product := trackedProduct("Grinder", 3)
	store := newMemInventoryStore(product)
	svc := testInventoryService(store)

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: product.ID, Quantity: 5},
	})
	require.Error(t, err)

	stockErr, ok := domain.IsStockError(err)
	require.True(t, ok)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, int32(3), stockErr.Available)
	assert.Equal(t, int32(5), stockErr.Requested)

	// Stock is untouched.
	assert.Equal(t, int32(3), store.products[product.ID].Stock)
	assert.Zero(t, store.decrements)
}

func TestInventoryService_ReserveStock_SkipsUntrackedProducts(t *testing.T) {
	product := trackedProduct("Digital Download", 0)
	product.TrackInventory = false
	store := newMemInventoryStore(product)
	svc := testInventoryService(store)

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: product.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Zero(t, store.decrements)
}

func TestInventoryService_ReserveStock_RollsBackOnPartialFailure(t *testing.T) {
	first := trackedProduct("Kettle", 10)
	second := trackedProduct("Scale", 10)
	store := newMemInventoryStore(first, second)

	// The second decrement loses a race: stock drops to 1 after validation.
	failing := &racingInventoryStore{
		memInventoryStore: store,
		raceProduct:       second.ID,
	}
	svc := testInventoryService(failing)

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: first.ID, Quantity: 5},
		{ProductID: second.ID, Quantity: 5},
	})
	require.Error(t, err)

	_, ok := domain.IsStockError(err)
	assert.True(t, ok)

	// The first product's decrement was rolled back.
	assert.Equal(t, int32(10), store.products[first.ID].Stock)
}

// racingInventoryStore drops one product's stock between the validation read
// and its decrement.
type racingInventoryStore struct {
	*memInventoryStore
	raceProduct uuid.UUID
	raced       bool
}

func (r *racingInventoryStore) DecrementStock(ctx context.Context, id uuid.UUID, quantity int32) (bool, error) {
	if id == r.raceProduct && !r.raced {
		r.raced = true
		r.products[id].Stock = 1
	}
	return r.memInventoryStore.DecrementStock(ctx, id, quantity)
}

func TestInventoryService_ReserveStock_EmptyItems(t *testing.T) {
	svc := testInventoryService(newMemInventoryStore())

	err := svc.ReserveStock(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestInventoryService_ReserveStock_InvalidQuantity(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	svc := testInventoryService(newMemInventoryStore(product))

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: product.ID, Quantity: 0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestInventoryService_ReserveStock_StoreError(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	store := newMemInventoryStore(product)
	store.decrementErr = errors.New("connection reset")
	svc := testInventoryService(store)

	err := svc.ReserveStock(context.Background(), []domain.LineItem{
		{ProductID: product.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.Equal(t, int32(10), store.products[product.ID].Stock)
}

func TestInventoryService_ReleaseStock(t *testing.T) {
	tracked := trackedProduct("Grinder", 2)
	untracked := trackedProduct("Download", 0)
	untracked.TrackInventory = false
	store := newMemInventoryStore(tracked, untracked)
	svc := testInventoryService(store)

	err := svc.ReleaseStock(context.Background(), []domain.LineItem{
		{ProductID: tracked.ID, Quantity: 3},
		{ProductID: untracked.ID, Quantity: 1},
		{ProductID: uuid.New(), Quantity: 1}, // deleted product, skipped
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), store.products[tracked.ID].Stock)
	assert.Equal(t, 1, store.increments)
}
