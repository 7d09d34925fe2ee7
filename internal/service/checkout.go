package service

import (
	"context"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/shipping"
	"github.com/mbracken/njord/internal/tax"
)

// QuoteParams describes a cart to price before an order is placed.
type QuoteParams struct {
	Items       []OrderItemParams `json:"items"`
	Destination domain.Address    `json:"shippingAddress"`
	CouponCode  string            `json:"coupon,omitempty"`
}

// QuoteOption is one shipping choice with its full money breakdown.
type QuoteOption struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ShippingCents int64  `json:"shipping"`
	TaxCents      int64  `json:"tax"`
	TotalCents    int64  `json:"total"`
	DaysMin       int    `json:"daysMin"`
	DaysMax       int    `json:"daysMax"`
}

// Quote is a non-binding price preview. Nothing is reserved or persisted;
// the authoritative numbers are recomputed at order creation.
type Quote struct {
	Items         []domain.LineItem `json:"items"`
	SubtotalCents int64             `json:"subtotal"`
	DiscountCents int64             `json:"discount"`
	Coupon        *CouponResult     `json:"couponApplied,omitempty"`
	Options       []QuoteOption     `json:"shippingOptions"`
}

// CheckoutService prices carts ahead of order placement.
type CheckoutService struct {
	cart     *CartService
	coupons  CouponEvaluator
	shipping shipping.Provider
	tax      tax.Calculator
}

// NewCheckoutService creates a new CheckoutService instance.
func NewCheckoutService(cart *CartService, coupons CouponEvaluator, shippingProvider shipping.Provider, taxCalculator tax.Calculator) *CheckoutService {
	return &CheckoutService{
		cart:     cart,
		coupons:  coupons,
		shipping: shippingProvider,
		tax:      taxCalculator,
	}
}

// Quote validates the cart and prices it under every available shipping
// option. Cart problems surface as a ValidationError keyed by product ID
// so the client can fix the cart before retrying.
func (s *CheckoutService) Quote(ctx context.Context, params QuoteParams) (*Quote, error) {
	const op = "checkout.quote"

	validation, err := s.cart.ValidateCart(ctx, params.Items)
	if err != nil {
		return nil, err
	}
	if validation.HasErrors {
		var verr error
		for _, itemErr := range validation.Errors {
			verr = domain.AddFieldError(verr, itemErr.ProductID.String(), itemErr.Message)
		}
		return nil, verr
	}

	var subtotal int64
	for _, item := range validation.Items {
		subtotal += item.SubtotalCents()
	}

	quote := &Quote{
		Items:         validation.Items,
		SubtotalCents: subtotal,
	}

	if params.CouponCode != "" {
		result, err := s.coupons.Evaluate(ctx, params.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		quote.Coupon = result
		quote.DiscountCents = result.DiscountCents
	}

	rates, err := s.shipping.GetRates(ctx, shipping.RateParams{
		Destination:   params.Destination,
		Items:         validation.Items,
		SubtotalCents: subtotal,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "could not fetch shipping rates")
	}

	for _, rate := range rates {
		taxResult, err := s.tax.Calculate(ctx, tax.Params{
			Destination:   params.Destination,
			SubtotalCents: subtotal,
			ShippingCents: rate.CostCents,
		})
		if err != nil {
			return nil, err
		}

		pricing, err := ComputePricing(validation.Items, rate.CostCents, taxResult.TaxCents, quote.DiscountCents)
		if err != nil {
			return nil, err
		}

		quote.Options = append(quote.Options, QuoteOption{
			Code:          rate.Code,
			Name:          rate.Name,
			ShippingCents: rate.CostCents,
			TaxCents:      taxResult.TaxCents,
			TotalCents:    pricing.TotalCents,
			DaysMin:       rate.DaysMin,
			DaysMax:       rate.DaysMax,
		})
	}

	return quote, nil
}
