package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order-related domain errors.
var (
	ErrOrderNotFound     = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyOrder        = &Error{Code: EINVALID, Message: "Order has no items"}
	ErrInvalidTransition = &Error{Code: ECONFLICT, Message: "Status transition not allowed"}
	ErrInvalidStatus     = &Error{Code: EINVALID, Message: "Unknown order status"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions defines the forward edges of the status state machine.
// Cancelled is reachable from any non-terminal state; delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether next is reachable from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LineItem is one product entry within an order. Name, price and image are
// snapshots taken at order-creation time and are never re-derived from the
// live product, so order records stay stable if the product is later edited
// or deleted.
type LineItem struct {
	ProductID      uuid.UUID `json:"productId"`
	Name           string    `json:"name"`
	ImageURL       string    `json:"image"`
	UnitPriceCents int64     `json:"price"`
	Quantity       int32     `json:"quantity"`
	Variant        string    `json:"variant,omitempty"`
}

// SubtotalCents returns the line total (unit price x quantity).
func (li LineItem) SubtotalCents() int64 {
	return li.UnitPriceCents * int64(li.Quantity)
}

// Pricing is the money breakdown of an order. All amounts are integer cents.
// Invariants: every component >= 0, discount <= subtotal+shipping+tax, and
// total = subtotal + shipping + tax - discount.
type Pricing struct {
	SubtotalCents int64 `json:"subtotal"`
	ShippingCents int64 `json:"shipping"`
	TaxCents      int64 `json:"tax"`
	DiscountCents int64 `json:"discount"`
	TotalCents    int64 `json:"total"`
}

// StatusEvent is an immutable record of a status change. Events are
// append-only and chronological; they are never edited or removed.
type StatusEvent struct {
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Address is a shipping or billing address embedded in an order.
type Address struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Empty reports whether the address carries no data.
func (a Address) Empty() bool {
	return a == Address{}
}

// Payment statuses reported by the billing provider.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// PaymentInfo records how an order was (or will be) paid.
type PaymentInfo struct {
	Method        string     `json:"method"`
	Status        string     `json:"status,omitempty"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

// Tracking holds shipment tracking details set after dispatch.
type Tracking struct {
	Carrier           string     `json:"carrier"`
	Number            string     `json:"number"`
	URL               string     `json:"url,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

// Order is a permanent record of a purchase. Orders are created once in a
// single reserve-then-persist sequence and are never deleted; status changes
// go through the order service's transition operation, which always appends
// a StatusEvent.
type Order struct {
	ID              uuid.UUID     `json:"id"`
	Number          string        `json:"orderNumber"`
	UserID          uuid.UUID     `json:"userId"`
	Items           []LineItem    `json:"items"`
	ShippingAddress Address       `json:"shippingAddress"`
	BillingAddress  Address       `json:"billingAddress"`
	Payment         PaymentInfo   `json:"payment"`
	Pricing         Pricing       `json:"pricing"`
	CouponCode      string        `json:"coupon,omitempty"`
	Status          OrderStatus   `json:"status"`
	History         []StatusEvent `json:"statusHistory"`
	Tracking        *Tracking     `json:"tracking,omitempty"`
	DeliveredAt     *time.Time    `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
