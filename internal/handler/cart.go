package handler

import (
	"net/http"

	"github.com/mbracken/njord/internal/service"
)

// CartHandler serves the cart pre-check and checkout quote endpoints.
// Carts live in the client; the server only validates and prices them.
type CartHandler struct {
	cart     *service.CartService
	checkout *service.CheckoutService
}

// NewCartHandler creates a new CartHandler instance.
func NewCartHandler(cart *service.CartService, checkout *service.CheckoutService) *CartHandler {
	return &CartHandler{cart: cart, checkout: checkout}
}

// Validate handles POST /cart/validate. It reports per-item problems with
// a 200 so the client can render them inline; only a malformed request is
// an error.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []service.OrderItemParams `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	validation, err := h.cart.ValidateCart(r.Context(), req.Items)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, validation)
}

// Quote handles POST /checkout/quote.
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var params service.QuoteParams
	if err := decodeJSON(r, &params); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	quote, err := h.checkout.Quote(r.Context(), params)
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}
