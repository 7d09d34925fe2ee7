package billing

import (
	"context"
	"encoding/json"
)

// Provider defines the interface for payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreatePaymentIntent registers an intended charge with the gateway and
	// returns a client secret the frontend uses to confirm payment.
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error)

	// ConstructWebhookEvent verifies a webhook payload's signature and
	// decodes it.
	ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// PaymentIntentParams describes a charge to be authorized.
type PaymentIntentParams struct {
	AmountCents int64
	Currency    string
	UserID      string
	OrderNumber string
}

// PaymentIntent is the gateway's record of an intended charge.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string
	Status       string
}

// Webhook event types the order flow reacts to.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookEvent is a verified, decoded gateway notification.
type WebhookEvent struct {
	ID   string
	Type string
	// Data is the raw event object for type-specific decoding.
	Data json.RawMessage
}
