package billing

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockProvider is an in-memory Provider for tests and local development.
type MockProvider struct {
	counter atomic.Int64

	// CreateErr, when set, is returned by CreatePaymentIntent.
	CreateErr error
	// Events maps signature strings to canned webhook events.
	Events map[string]*WebhookEvent
}

// NewMockProvider creates a mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{Events: make(map[string]*WebhookEvent)}
}

// CreatePaymentIntent returns a fabricated intent with a predictable id.
func (m *MockProvider) CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	n := m.counter.Add(1)
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}
	return &PaymentIntent{
		ID:           fmt.Sprintf("pi_mock_%d", n),
		ClientSecret: fmt.Sprintf("pi_mock_%d_secret", n),
		AmountCents:  params.AmountCents,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

// ConstructWebhookEvent looks the signature up in the canned event table.
func (m *MockProvider) ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, ok := m.Events[signature]
	if !ok {
		return nil, fmt.Errorf("unknown webhook signature %q", signature)
	}
	return event, nil
}
