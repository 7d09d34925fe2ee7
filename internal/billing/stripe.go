package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/mbracken/njord/internal/domain"
)

// StripeProvider implements Provider using the Stripe API.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider creates a Stripe-backed billing provider.
func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

// CreatePaymentIntent creates a Stripe PaymentIntent for the given amount.
func (s *StripeProvider) CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error) {
	const op = "billing.create_intent"

	if params.AmountCents <= 0 {
		return nil, domain.Invalid(op, "amount must be greater than 0")
	}
	currency := params.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(currency),
	}
	piParams.Context = ctx
	if params.UserID != "" {
		piParams.AddMetadata("user_id", params.UserID)
	}
	if params.OrderNumber != "" {
		piParams.AddMetadata("order_number", params.OrderNumber)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op,
			fmt.Sprintf("failed to create payment intent for %d %s", params.AmountCents, currency))
	}

	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}, nil
}

// ConstructWebhookEvent verifies the Stripe signature header and decodes
// the event.
func (s *StripeProvider) ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, domain.WrapError(err, domain.EUNAUTHORIZED, "billing.webhook", "invalid webhook signature")
	}

	return &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Data: event.Data.Raw,
	}, nil
}
