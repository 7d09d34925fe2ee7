package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/shipping"
	"github.com/mbracken/njord/internal/tax"
)

type mockOrderStore struct {
	orders map[uuid.UUID]*domain.Order

	createErr error
	events    []domain.StatusEvent
	tracking  map[uuid.UUID]domain.Tracking
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:   make(map[uuid.UUID]*domain.Order),
		tracking: make(map[uuid.UUID]domain.Tracking),
	}
}

func (m *mockOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderStore) GetOrderByNumber(_ context.Context, number string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.Number == number {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderStore) UpdatePayment(_ context.Context, orderID uuid.UUID, payment domain.PaymentInfo) error {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Payment = payment
	return nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, filter OrderFilter) ([]domain.Order, int, error) {
	var result []domain.Order
	for _, order := range m.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		result = append(result, *order)
	}
	return result, len(result), nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, order *domain.Order, event domain.StatusEvent) error {
	m.orders[order.ID] = order
	m.events = append(m.events, event)
	return nil
}

func (m *mockOrderStore) UpdateTracking(_ context.Context, orderID uuid.UUID, tracking domain.Tracking) error {
	m.tracking[orderID] = tracking
	return nil
}

type fixedCouponEvaluator struct {
	discount int64
	err      error
}

func (f *fixedCouponEvaluator) Evaluate(_ context.Context, code string, _ int64) (*CouponResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &CouponResult{Code: domain.NormalizeCouponCode(code), DiscountCents: f.discount}, nil
}

// orderFixture wires an order service against in-memory stores.
type orderFixture struct {
	svc       *OrderService
	store     *mockOrderStore
	inventory *memInventoryStore
	coupons   *fixedCouponEvaluator
}

func newOrderFixture(t *testing.T, products ...*domain.Product) *orderFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockOrderStore()
	inventoryStore := newMemInventoryStore(products...)
	coupons := &fixedCouponEvaluator{}
	taxCalc, err := tax.NewPercentageCalculator(0)
	require.NoError(t, err)

	svc := NewOrderService(
		store,
		inventoryStore,
		NewInventoryService(inventoryStore, logger),
		coupons,
		shipping.NewFlatRateProvider([]shipping.FlatRate{
			{Code: "standard", Name: "Standard", CostCents: 500, DaysMin: 3, DaysMax: 7},
		}, 0),
		taxCalc,
		logger,
	)
	return &orderFixture{svc: svc, store: store, inventory: inventoryStore, coupons: coupons}
}

func validParams(items ...OrderItemParams) CreateOrderParams {
	return CreateOrderParams{
		UserID: uuid.New(),
		Items:  items,
		ShippingAddress: domain.Address{
			FullName:   "Alex Doe",
			Line1:      "1 Harbor Way",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
			Country:    "US",
		},
		PaymentMethod:  "card",
		ShippingMethod: "standard",
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	product.PriceCents = 100
	product.Images = []domain.Image{{URL: "https://cdn.example.com/grinder.jpg"}}

	fx := newOrderFixture(t, product)

	order, err := fx.svc.CreateOrder(context.Background(), validParams(
		OrderItemParams{ProductID: product.ID, Quantity: 2},
	))
	require.NoError(t, err)

	// Snapshot fields come from the live product, not the request.
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Burr Grinder", order.Items[0].Name)
	assert.Equal(t, int64(100), order.Items[0].UnitPriceCents)
	assert.Equal(t, "https://cdn.example.com/grinder.jpg", order.Items[0].ImageURL)

	assert.Equal(t, int64(200), order.Pricing.SubtotalCents)
	assert.Equal(t, int64(500), order.Pricing.ShippingCents)
	assert.Equal(t, int64(700), order.Pricing.TotalCents)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.History, 1)
	assert.Equal(t, domain.OrderStatusPending, order.History[0].Status)

	// Billing defaults to shipping when omitted.
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)

	assert.True(t, strings.HasPrefix(order.Number, "ORD-"))
	assert.Equal(t, int32(8), fx.inventory.products[product.ID].Stock)

	// The order was persisted.
	_, err = fx.store.GetOrder(context.Background(), order.ID)
	assert.NoError(t, err)
}

func TestOrderService_CreateOrder_InsufficientStock(t *testing.T) {
	product := trackedProduct("Kettle", 3)
	product.PriceCents = 2500

	fx := newOrderFixture(t, product)

	_, err := fx.svc.CreateOrder(context.Background(), validParams(
		OrderItemParams{ProductID: product.ID, Quantity: 5},
	))
	require.Error(t, err)

	stockErr, ok := domain.IsStockError(err)
	require.True(t, ok)
	assert.Equal(t, int32(3), stockErr.Available)
	assert.Equal(t, int32(5), stockErr.Requested)

	// Nothing was decremented or persisted.
	assert.Equal(t, int32(3), fx.inventory.products[product.ID].Stock)
	assert.Empty(t, fx.store.orders)
}

func TestOrderService_CreateOrder_InactiveProduct(t *testing.T) {
	product := trackedProduct("Retired Mug", 10)
	product.IsActive = false

	fx := newOrderFixture(t, product)

	_, err := fx.svc.CreateOrder(context.Background(), validParams(
		OrderItemParams{ProductID: product.ID, Quantity: 1},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductInactive)
}

func TestOrderService_CreateOrder_WithCoupon(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 10000

	fx := newOrderFixture(t, product)
	fx.coupons.discount = 3000

	params := validParams(OrderItemParams{ProductID: product.ID, Quantity: 1})
	params.CouponCode = "save30"

	order, err := fx.svc.CreateOrder(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "SAVE30", order.CouponCode)
	assert.Equal(t, int64(3000), order.Pricing.DiscountCents)
	assert.Equal(t, int64(10000+500-3000), order.Pricing.TotalCents)
}

func TestOrderService_CreateOrder_ReleasesStockOnPersistFailure(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000

	fx := newOrderFixture(t, product)
	fx.store.createErr = errors.New("connection reset")

	_, err := fx.svc.CreateOrder(context.Background(), validParams(
		OrderItemParams{ProductID: product.ID, Quantity: 4},
	))
	require.Error(t, err)
	assert.Equal(t, int32(10), fx.inventory.products[product.ID].Stock)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	fx := newOrderFixture(t)

	_, err := fx.svc.CreateOrder(context.Background(), CreateOrderParams{})
	require.Error(t, err)

	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "shippingAddress.fullName")
	assert.Contains(t, fields, "paymentMethod")
}

func TestOrderService_CreateOrder_UnknownShippingMethod(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000

	fx := newOrderFixture(t, product)

	params := validParams(OrderItemParams{ProductID: product.ID, Quantity: 1})
	params.ShippingMethod = "teleport"

	_, err := fx.svc.CreateOrder(context.Background(), params)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, int32(10), fx.inventory.products[product.ID].Stock)
}

func createTestOrder(t *testing.T, fx *orderFixture, product *domain.Product) *domain.Order {
	t.Helper()
	order, err := fx.svc.CreateOrder(context.Background(), validParams(
		OrderItemParams{ProductID: product.ID, Quantity: 2},
	))
	require.NoError(t, err)
	return order
}

func TestOrderService_TransitionStatus(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	updated, err := fx.svc.TransitionStatus(context.Background(), order.ID, domain.OrderStatusProcessing, "picked")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	require.Len(t, updated.History, 2)
	assert.Equal(t, "picked", updated.History[1].Note)
	require.Len(t, fx.store.events, 1)
}

func TestOrderService_TransitionStatus_DeliveredIsTerminal(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	ctx := context.Background()
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusProcessing,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		_, err := fx.svc.TransitionStatus(ctx, order.ID, status, "")
		require.NoError(t, err)
	}

	delivered, err := fx.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = fx.svc.TransitionStatus(ctx, order.ID, domain.OrderStatusCancelled, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestOrderService_TransitionStatus_SkipNotAllowed(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	_, err := fx.svc.TransitionStatus(context.Background(), order.ID, domain.OrderStatusDelivered, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestOrderService_TransitionStatus_CancelRestoresStock(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)
	require.Equal(t, int32(8), fx.inventory.products[product.ID].Stock)

	cancelled, err := fx.svc.TransitionStatus(context.Background(), order.ID, domain.OrderStatusCancelled, "customer request")
	require.NoError(t, err)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, int32(10), fx.inventory.products[product.ID].Stock)
}

func TestOrderService_TransitionStatus_UnknownStatus(t *testing.T) {
	fx := newOrderFixture(t)

	_, err := fx.svc.TransitionStatus(context.Background(), uuid.New(), "misplaced", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderService_UpdateTracking(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	updated, err := fx.svc.UpdateTracking(context.Background(), order.ID, domain.Tracking{
		Carrier: "UPS",
		Number:  "1Z999",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Tracking)
	assert.Equal(t, "UPS", updated.Tracking.Carrier)
	assert.Equal(t, "1Z999", fx.store.tracking[order.ID].Number)
}

func TestOrderService_UpdateTracking_CancelledOrder(t *testing.T) {
	product := trackedProduct("Grinder", 10)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	_, err := fx.svc.TransitionStatus(context.Background(), order.ID, domain.OrderStatusCancelled, "")
	require.NoError(t, err)

	_, err = fx.svc.UpdateTracking(context.Background(), order.ID, domain.Tracking{Carrier: "UPS", Number: "1Z999"})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestOrderService_ListOrders_FiltersByUser(t *testing.T) {
	product := trackedProduct("Grinder", 100)
	product.PriceCents = 1000
	fx := newOrderFixture(t, product)

	first := createTestOrder(t, fx, product)
	createTestOrder(t, fx, product)

	orders, total, err := fx.svc.ListOrders(context.Background(), OrderFilter{UserID: &first.UserID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
}

func TestOrderService_ListOrders_InvalidStatusFilter(t *testing.T) {
	fx := newOrderFixture(t)

	_, _, err := fx.svc.ListOrders(context.Background(), OrderFilter{Status: "misplaced"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderService_RecordPaymentResult(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	updated, err := fx.svc.RecordPaymentResult(context.Background(), order.Number, "pi_123", true)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, updated.Payment.Status)
	assert.Equal(t, "pi_123", updated.Payment.TransactionID)
	require.NotNil(t, updated.Payment.PaidAt)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestOrderService_RecordPaymentResult_Failure(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	updated, err := fx.svc.RecordPaymentResult(context.Background(), order.Number, "pi_456", false)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusFailed, updated.Payment.Status)
	assert.Nil(t, updated.Payment.PaidAt)
	// A failed payment leaves the order pending so the customer can retry.
	assert.Equal(t, domain.OrderStatusPending, updated.Status)
}

func TestOrderService_RecordPaymentResult_Replay(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	fx := newOrderFixture(t, product)
	order := createTestOrder(t, fx, product)

	_, err := fx.svc.RecordPaymentResult(context.Background(), order.Number, "pi_123", true)
	require.NoError(t, err)

	// A duplicate webhook delivery must not touch the order again.
	updated, err := fx.svc.RecordPaymentResult(context.Background(), order.Number, "pi_123", true)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, updated.Payment.Status)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestOrderService_RecordPaymentResult_UnknownOrder(t *testing.T) {
	fx := newOrderFixture(t)

	_, err := fx.svc.RecordPaymentResult(context.Background(), "ORD-20260101-ZZZZ", "pi_789", true)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestGenerateOrderNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := generateOrderNumber(time.Now())
		assert.Regexp(t, `^ORD-\d{8}-[A-Z2-9]{4}$`, number)
		seen[number] = true
	}
	// Collisions over 100 draws from a 32^4 space should be absent.
	assert.Greater(t, len(seen), 95)
}
