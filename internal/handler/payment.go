package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mbracken/njord/internal/billing"
	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/middleware"
	"github.com/mbracken/njord/internal/service"
)

// PaymentHandler serves payment intent creation and the billing
// provider's webhook.
type PaymentHandler struct {
	billing billing.Provider
	orders  *service.OrderService
}

// NewPaymentHandler creates a new PaymentHandler instance.
func NewPaymentHandler(provider billing.Provider, orders *service.OrderService) *PaymentHandler {
	return &PaymentHandler{billing: provider, orders: orders}
}

// CreateIntent handles POST /payments/intent. The amount always comes from
// the stored order, never from the client.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	orderID, err := parseUUID(req.OrderID, "orderId")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	if order.UserID != claims.UserID {
		NotFoundResponse(w, r)
		return
	}
	if order.Payment.Status == domain.PaymentStatusPaid {
		ErrorResponse(w, r, domain.Errorf(domain.ECONFLICT, "payment.intent", "Order %s is already paid", order.Number))
		return
	}

	intent, err := h.billing.CreatePaymentIntent(r.Context(), billing.PaymentIntentParams{
		AmountCents: order.Pricing.TotalCents,
		Currency:    "usd",
		UserID:      claims.UserID.String(),
		OrderNumber: order.Number,
	})
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"clientSecret": intent.ClientSecret,
		"amount":       intent.AmountCents,
		"currency":     intent.Currency,
	})
}

// paymentIntentData is the subset of the gateway's payment intent object
// the webhook needs.
type paymentIntentData struct {
	ID       string `json:"id"`
	Metadata struct {
		OrderNumber string `json:"order_number"`
	} `json:"metadata"`
}

// Webhook handles POST /webhooks/billing. The raw body is read before any
// decoding because signature verification runs over the exact bytes sent.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "payment.webhook", "Could not read webhook body"))
		return
	}

	event, err := h.billing.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	logger := middleware.GetLogger(r.Context())

	switch event.Type {
	case billing.EventPaymentSucceeded, billing.EventPaymentFailed:
		var intent paymentIntentData
		if err := json.Unmarshal(event.Data, &intent); err != nil {
			ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "payment.webhook", "Malformed event payload"))
			return
		}
		if intent.Metadata.OrderNumber == "" {
			logger.Warn("webhook event without order number", "event_id", event.ID, "type", event.Type)
			break
		}

		succeeded := event.Type == billing.EventPaymentSucceeded
		if _, err := h.orders.RecordPaymentResult(r.Context(), intent.Metadata.OrderNumber, intent.ID, succeeded); err != nil {
			// A 5xx makes the gateway retry; unknown orders are not
			// retryable so they are acknowledged and logged.
			if domain.ErrorCode(err) != domain.ENOTFOUND {
				ErrorResponse(w, r, err)
				return
			}
			logger.Warn("webhook for unknown order",
				"order_number", intent.Metadata.OrderNumber,
				"event_id", event.ID,
			)
		}
	default:
		logger.Debug("ignoring webhook event", "type", event.Type)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
