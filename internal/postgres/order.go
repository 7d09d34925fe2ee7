package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// OrderStore persists orders, their items, and their status event log.
// Creation and status changes are transactional: an order row is never
// visible without its items, and a status change is never visible without
// its event.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ service.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new OrderStore instance.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// CreateOrder inserts the order, its items, and its initial status event
// in one transaction.
func (s *OrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	const op = "postgres.order.create"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, shipping_address, billing_address,
			payment, subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
			coupon_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID, order.Number, order.UserID,
		mustJSON(order.ShippingAddress), mustJSON(order.BillingAddress), mustJSON(order.Payment),
		order.Pricing.SubtotalCents, order.Pricing.ShippingCents, order.Pricing.TaxCents,
		order.Pricing.DiscountCents, order.Pricing.TotalCents,
		order.CouponCode, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return domain.Errorf(domain.ECONFLICT, op, "Order number %s already exists", order.Number)
		}
		return domain.Internal(err, op, "failed to insert order")
	}

	for i, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, image_url, unit_price_cents, quantity, variant, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			order.ID, item.ProductID, item.Name, item.ImageURL,
			item.UnitPriceCents, item.Quantity, item.Variant, i,
		)
		if err != nil {
			return domain.Internal(err, op, "failed to insert order item")
		}
	}

	for _, event := range order.History {
		if err := insertStatusEvent(ctx, tx, order.ID, event); err != nil {
			return domain.Internal(err, op, "failed to insert status event")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit order")
	}
	return nil
}

func insertStatusEvent(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, event domain.StatusEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_events (order_id, status, note, created_at)
		VALUES ($1, $2, $3, $4)`,
		orderID, event.Status, event.Note, event.CreatedAt)
	return err
}

const orderColumns = `
	id, order_number, user_id, shipping_address, billing_address, payment,
	subtotal_cents, shipping_cents, tax_cents, discount_cents, total_cents,
	coupon_code, status, tracking, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var shippingAddr, billingAddr, payment, tracking []byte

	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &shippingAddr, &billingAddr, &payment,
		&o.Pricing.SubtotalCents, &o.Pricing.ShippingCents, &o.Pricing.TaxCents,
		&o.Pricing.DiscountCents, &o.Pricing.TotalCents,
		&o.CouponCode, &o.Status, &tracking, &o.DeliveredAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(shippingAddr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billingAddr, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address: %w", err)
	}
	if err := json.Unmarshal(payment, &o.Payment); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	if tracking != nil {
		o.Tracking = &domain.Tracking{}
		if err := json.Unmarshal(tracking, o.Tracking); err != nil {
			return nil, fmt.Errorf("decode tracking: %w", err)
		}
	}
	return &o, nil
}

// GetOrder returns one order with its items and status history.
func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.getOrderWhere(ctx, "id = $1", id)
}

// GetOrderByNumber returns one order by its human-facing number.
func (s *OrderStore) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.getOrderWhere(ctx, "order_number = $1", number)
}

func (s *OrderStore) getOrderWhere(ctx context.Context, where string, arg interface{}) (*domain.Order, error) {
	const op = "postgres.order.get"

	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}

	if err := s.loadItems(ctx, order); err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	if err := s.loadHistory(ctx, order); err != nil {
		return nil, domain.Internal(err, op, "failed to load order history")
	}
	return order, nil
}

func (s *OrderStore) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, name, image_url, unit_price_cents, quantity, variant
		FROM order_items WHERE order_id = $1 ORDER BY position`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.ImageURL,
			&item.UnitPriceCents, &item.Quantity, &item.Variant); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (s *OrderStore) loadHistory(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT status, note, created_at
		FROM order_status_events WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var event domain.StatusEvent
		if err := rows.Scan(&event.Status, &event.Note, &event.CreatedAt); err != nil {
			return err
		}
		order.History = append(order.History, event)
	}
	return rows.Err()
}

// ListOrders returns order summaries matching the filter, newest first.
// Items and history are loaded per order; listings are paginated so the
// extra queries stay bounded.
func (s *OrderStore) ListOrders(ctx context.Context, filter service.OrderFilter) ([]domain.Order, int, error) {
	const op = "postgres.order.list"

	where := " WHERE 1=1"
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != nil {
		where += " AND user_id = " + arg(*filter.UserID)
	}
	if filter.Status != "" {
		where += " AND status = " + arg(filter.Status)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count orders")
	}

	query := "SELECT " + orderColumns + " FROM orders" + where +
		" ORDER BY created_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, domain.Internal(err, op, "failed to scan order")
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to iterate orders")
	}

	for i := range orders {
		if err := s.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, domain.Internal(err, op, "failed to load order items")
		}
	}
	return orders, total, nil
}

// UpdateOrderStatus writes the new status and appends its event in one
// transaction.
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, order *domain.Order, event domain.StatusEvent) error {
	const op = "postgres.order.status"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, delivered_at = $3, cancelled_at = $4, updated_at = $5
		WHERE id = $1`,
		order.ID, order.Status, order.DeliveredAt, order.CancelledAt, order.UpdatedAt)
	if err != nil {
		return domain.Internal(err, op, "failed to update order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}

	if err := insertStatusEvent(ctx, tx, order.ID, event); err != nil {
		return domain.Internal(err, op, "failed to insert status event")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit status change")
	}
	return nil
}

// UpdatePayment rewrites the order's payment record.
func (s *OrderStore) UpdatePayment(ctx context.Context, orderID uuid.UUID, payment domain.PaymentInfo) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET payment = $2, updated_at = now() WHERE id = $1`,
		orderID, mustJSON(payment))
	if err != nil {
		return domain.Internal(err, "postgres.order.payment", "failed to update payment")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateTracking attaches tracking details to an order.
func (s *OrderStore) UpdateTracking(ctx context.Context, orderID uuid.UUID, tracking domain.Tracking) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET tracking = $2, updated_at = now() WHERE id = $1`,
		orderID, mustJSON(tracking))
	if err != nil {
		return domain.Internal(err, "postgres.order.tracking", "failed to update tracking")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
