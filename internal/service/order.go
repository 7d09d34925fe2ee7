package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/shipping"
	"github.com/mbracken/njord/internal/tax"
)

// OrderStore is the persistence surface the order service needs.
// CreateOrder must persist the order, its items, and the initial status
// event atomically.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateOrderStatus(ctx context.Context, order *domain.Order, event domain.StatusEvent) error
	UpdatePayment(ctx context.Context, orderID uuid.UUID, payment domain.PaymentInfo) error
	UpdateTracking(ctx context.Context, orderID uuid.UUID, tracking domain.Tracking) error
}

// CatalogReader looks up live products for snapshotting and validation.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

// StockReserver reserves and releases inventory for orders.
type StockReserver interface {
	ReserveStock(ctx context.Context, items []domain.LineItem) error
	ReleaseStock(ctx context.Context, items []domain.LineItem) error
}

// CouponEvaluator resolves a coupon code to a discount for a cart total.
type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, cartTotalCents int64) (*CouponResult, error)
}

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status domain.OrderStatus
	Limit  int
	Offset int
}

// OrderService owns order creation and the status lifecycle.
type OrderService struct {
	store     OrderStore
	catalog   CatalogReader
	inventory StockReserver
	coupons   CouponEvaluator
	shipping  shipping.Provider
	tax       tax.Calculator
	logger    *slog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(
	store OrderStore,
	catalog CatalogReader,
	inventory StockReserver,
	coupons CouponEvaluator,
	shippingProvider shipping.Provider,
	taxCalculator tax.Calculator,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		store:     store,
		catalog:   catalog,
		inventory: inventory,
		coupons:   coupons,
		shipping:  shippingProvider,
		tax:       taxCalculator,
		logger:    logger,
	}
}

// OrderItemParams identifies one requested product within a new order.
type OrderItemParams struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	Variant   string    `json:"variant,omitempty"`
}

// CreateOrderParams describes a new order.
type CreateOrderParams struct {
	UserID          uuid.UUID         `json:"-"`
	Items           []OrderItemParams `json:"items"`
	ShippingAddress domain.Address    `json:"shippingAddress"`
	BillingAddress  domain.Address    `json:"billingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	ShippingMethod  string            `json:"shippingMethod"`
	CouponCode      string            `json:"coupon,omitempty"`
}

func (p CreateOrderParams) validate() error {
	var err error
	if len(p.Items) == 0 {
		err = domain.AddFieldError(err, "items", "at least one item is required")
	}
	for i, item := range p.Items {
		if item.ProductID == uuid.Nil {
			err = domain.AddFieldError(err, fmt.Sprintf("items[%d].productId", i), "product id is required")
		}
		if item.Quantity <= 0 {
			err = domain.AddFieldError(err, fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
	}
	if p.ShippingAddress.FullName == "" {
		err = domain.AddFieldError(err, "shippingAddress.fullName", "full name is required")
	}
	if p.ShippingAddress.Line1 == "" {
		err = domain.AddFieldError(err, "shippingAddress.line1", "address line is required")
	}
	if p.ShippingAddress.City == "" {
		err = domain.AddFieldError(err, "shippingAddress.city", "city is required")
	}
	if p.ShippingAddress.PostalCode == "" {
		err = domain.AddFieldError(err, "shippingAddress.postalCode", "postal code is required")
	}
	if p.ShippingAddress.Country == "" {
		err = domain.AddFieldError(err, "shippingAddress.country", "country is required")
	}
	if p.PaymentMethod == "" {
		err = domain.AddFieldError(err, "paymentMethod", "payment method is required")
	}
	return err
}

// CreateOrder builds, reserves, and persists a new order.
//
// The sequence is snapshot, price, reserve, persist. All reads and the full
// pricing computation happen before any stock is touched, so a rejected
// order never moves inventory. If persistence fails after reservation, the
// reserved stock is released again.
func (s *OrderService) CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	const op = "order.create"

	if err := params.validate(); err != nil {
		return nil, err
	}

	items, err := s.snapshotItems(ctx, params.Items)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.SubtotalCents()
	}

	shippingCents, err := s.shippingCost(ctx, params, items, subtotal)
	if err != nil {
		return nil, err
	}

	var discountCents int64
	var couponCode string
	if params.CouponCode != "" {
		result, err := s.coupons.Evaluate(ctx, params.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		discountCents = result.DiscountCents
		couponCode = result.Code
	}

	taxResult, err := s.tax.Calculate(ctx, tax.Params{
		Destination:   params.ShippingAddress,
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to calculate tax")
	}

	pricing, err := ComputePricing(items, shippingCents, taxResult.TaxCents, discountCents)
	if err != nil {
		return nil, err
	}

	if err := s.inventory.ReserveStock(ctx, items); err != nil {
		return nil, err
	}

	billing := params.BillingAddress
	if billing.Empty() {
		billing = params.ShippingAddress
	}

	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		Number:          generateOrderNumber(now),
		UserID:          params.UserID,
		Items:           items,
		ShippingAddress: params.ShippingAddress,
		BillingAddress:  billing,
		Payment:         domain.PaymentInfo{Method: params.PaymentMethod, Status: domain.PaymentStatusPending},
		Pricing:         pricing,
		CouponCode:      couponCode,
		Status:          domain.OrderStatusPending,
		History: []domain.StatusEvent{
			{Status: domain.OrderStatusPending, Note: "Order placed", CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		if releaseErr := s.inventory.ReleaseStock(ctx, items); releaseErr != nil {
			s.logger.Error("failed to release stock after order persist failure",
				slog.String("order_number", order.Number),
				slog.String("error", releaseErr.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("order_number", order.Number),
		slog.Int64("total", order.Pricing.TotalCents),
	)
	return order, nil
}

// snapshotItems resolves requested products into immutable line items.
func (s *OrderService) snapshotItems(ctx context.Context, requested []OrderItemParams) ([]domain.LineItem, error) {
	const op = "order.create"

	items := make([]domain.LineItem, 0, len(requested))
	for _, req := range requested {
		product, err := s.catalog.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, domain.WrapError(domain.ErrProductInactive, domain.EINVALID, op,
				fmt.Sprintf("%q is no longer available", product.Name))
		}
		items = append(items, domain.LineItem{
			ProductID:      product.ID,
			Name:           product.Name,
			ImageURL:       product.PrimaryImageURL(),
			UnitPriceCents: product.PriceCents,
			Quantity:       req.Quantity,
			Variant:        req.Variant,
		})
	}
	return items, nil
}

// shippingCost resolves the requested shipping method to a cost. An empty
// method selects the cheapest available rate.
func (s *OrderService) shippingCost(ctx context.Context, params CreateOrderParams, items []domain.LineItem, subtotal int64) (int64, error) {
	rates, err := s.shipping.GetRates(ctx, shipping.RateParams{
		Destination:   params.ShippingAddress,
		Items:         items,
		SubtotalCents: subtotal,
	})
	if err != nil {
		return 0, err
	}

	if params.ShippingMethod == "" {
		cheapest := rates[0]
		for _, rate := range rates[1:] {
			if rate.CostCents < cheapest.CostCents {
				cheapest = rate
			}
		}
		return cheapest.CostCents, nil
	}

	for _, rate := range rates {
		if rate.Code == params.ShippingMethod {
			return rate.CostCents, nil
		}
	}
	return 0, domain.WrapError(shipping.ErrUnknownMethod, domain.EINVALID, "order.create",
		fmt.Sprintf("Unknown shipping method %q", params.ShippingMethod))
}

// GetOrder returns one order with its items and status history.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// GetOrderByNumber returns one order by its human-facing order number.
// Payment webhooks carry the number, not the ID.
func (s *OrderService) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	if number == "" {
		return nil, domain.Invalid("order.get", "order number is required")
	}
	return s.store.GetOrderByNumber(ctx, number)
}

// RecordPaymentResult applies a payment outcome reported by the billing
// provider. A successful payment moves a pending order to processing; a
// failure only marks the payment so the customer can retry. Replayed
// events for an already-paid order are ignored.
func (s *OrderService) RecordPaymentResult(ctx context.Context, orderNumber, transactionID string, succeeded bool) (*domain.Order, error) {
	const op = "order.payment"

	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	if order.Payment.Status == domain.PaymentStatusPaid {
		return order, nil
	}

	now := time.Now()
	payment := order.Payment
	payment.TransactionID = transactionID
	if succeeded {
		payment.Status = domain.PaymentStatusPaid
		payment.PaidAt = &now
	} else {
		payment.Status = domain.PaymentStatusFailed
	}

	if err := s.store.UpdatePayment(ctx, order.ID, payment); err != nil {
		return nil, err
	}
	order.Payment = payment
	order.UpdatedAt = now

	s.logger.Info("payment result recorded",
		slog.String("order_number", orderNumber),
		slog.String("status", payment.Status),
		slog.String("transaction_id", transactionID),
	)

	if succeeded && order.Status == domain.OrderStatusPending {
		return s.TransitionStatus(ctx, order.ID, domain.OrderStatusProcessing, "Payment received")
	}
	return order, nil
}

// ListOrders returns orders matching the filter, newest first, along with
// the total match count for pagination.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.WrapError(domain.ErrInvalidStatus, domain.EINVALID, "order.list",
			fmt.Sprintf("Unknown order status %q", filter.Status))
	}
	return s.store.ListOrders(ctx, filter)
}

// TransitionStatus moves an order to the next lifecycle status, appending a
// status event. Transitions outside the state machine are rejected with a
// conflict. Cancelling a not-yet-terminal order returns its reserved stock.
func (s *OrderService) TransitionStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus, note string) (*domain.Order, error) {
	const op = "order.transition"

	if !next.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidStatus, domain.EINVALID, op,
			fmt.Sprintf("Unknown order status %q", next))
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, domain.WrapError(domain.ErrInvalidTransition, domain.ECONFLICT, op,
			fmt.Sprintf("Cannot move order from %s to %s", order.Status, next))
	}

	now := time.Now()
	event := domain.StatusEvent{Status: next, Note: note, CreatedAt: now}

	order.Status = next
	order.History = append(order.History, event)
	order.UpdatedAt = now
	switch next {
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &now
	case domain.OrderStatusCancelled:
		order.CancelledAt = &now
	}

	if err := s.store.UpdateOrderStatus(ctx, order, event); err != nil {
		return nil, err
	}

	if next == domain.OrderStatusCancelled {
		if err := s.inventory.ReleaseStock(ctx, order.Items); err != nil {
			s.logger.Error("failed to restock cancelled order",
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("order status changed",
		slog.String("order_id", order.ID.String()),
		slog.String("status", string(next)),
	)
	return order, nil
}

// UpdateTracking attaches shipment tracking details to an order.
func (s *OrderService) UpdateTracking(ctx context.Context, id uuid.UUID, tracking domain.Tracking) (*domain.Order, error) {
	const op = "order.tracking"

	if tracking.Carrier == "" || tracking.Number == "" {
		return nil, domain.NewValidationError(op, "tracking", "carrier and tracking number are required")
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, domain.Errorf(domain.ECONFLICT, op, "Cannot add tracking to a cancelled order")
	}

	if err := s.store.UpdateTracking(ctx, id, tracking); err != nil {
		return nil, err
	}

	order.Tracking = &tracking
	order.UpdatedAt = time.Now()
	return order, nil
}

const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNumber builds a human-friendly order number such as
// ORD-20260829-K7QX. Collisions are guarded by a unique index on the column.
func generateOrderNumber(now time.Time) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	for i := range suffix {
		suffix[i] = orderNumberCharset[int(suffix[i])%len(orderNumberCharset)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}
