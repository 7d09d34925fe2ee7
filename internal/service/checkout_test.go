package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/shipping"
	"github.com/mbracken/njord/internal/tax"
)

func newCheckoutService(t *testing.T, taxRate float64, products ...*domain.Product) *CheckoutService {
	t.Helper()

	taxCalc, err := tax.NewPercentageCalculator(taxRate)
	require.NoError(t, err)

	return NewCheckoutService(
		NewCartService(newMemInventoryStore(products...)),
		&fixedCouponEvaluator{},
		shipping.NewFlatRateProvider([]shipping.FlatRate{
			{Code: "standard", Name: "Standard", CostCents: 599, DaysMin: 3, DaysMax: 7},
			{Code: "express", Name: "Express", CostCents: 1499, DaysMin: 1, DaysMax: 2},
		}, 10000),
		taxCalc,
	)
}

func quoteDestination() domain.Address {
	return domain.Address{
		FullName:   "Alex Doe",
		Line1:      "1 Harbor Way",
		City:       "Seattle",
		State:      "WA",
		PostalCode: "98101",
		Country:    "US",
	}
}

func TestCheckoutService_Quote(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	product.PriceCents = 2000
	svc := newCheckoutService(t, 0.10, product)

	quote, err := svc.Quote(context.Background(), QuoteParams{
		Items:       []OrderItemParams{{ProductID: product.ID, Quantity: 2}},
		Destination: quoteDestination(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4000), quote.SubtotalCents)
	assert.Zero(t, quote.DiscountCents)
	require.Len(t, quote.Options, 2)

	standard := quote.Options[0]
	assert.Equal(t, "standard", standard.Code)
	assert.Equal(t, int64(599), standard.ShippingCents)
	// 10% of 4599 rounds to 460
	assert.Equal(t, int64(460), standard.TaxCents)
	assert.Equal(t, int64(4000+599+460), standard.TotalCents)

	express := quote.Options[1]
	assert.Equal(t, int64(1499), express.ShippingCents)
}

func TestCheckoutService_Quote_FreeShippingThreshold(t *testing.T) {
	product := trackedProduct("Espresso Machine", 5)
	product.PriceCents = 10000
	svc := newCheckoutService(t, 0, product)

	quote, err := svc.Quote(context.Background(), QuoteParams{
		Items:       []OrderItemParams{{ProductID: product.ID, Quantity: 1}},
		Destination: quoteDestination(),
	})
	require.NoError(t, err)

	for _, opt := range quote.Options {
		assert.Zero(t, opt.ShippingCents, "option %s should be free over the threshold", opt.Code)
		assert.Equal(t, quote.SubtotalCents, opt.TotalCents)
	}
}

func TestCheckoutService_Quote_WithCoupon(t *testing.T) {
	product := trackedProduct("Burr Grinder", 10)
	product.PriceCents = 2000
	svc := newCheckoutService(t, 0, product)
	svc.coupons = &fixedCouponEvaluator{discount: 500}

	quote, err := svc.Quote(context.Background(), QuoteParams{
		Items:       []OrderItemParams{{ProductID: product.ID, Quantity: 1}},
		Destination: quoteDestination(),
		CouponCode:  "save5",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), quote.DiscountCents)
	require.NotNil(t, quote.Coupon)
	assert.Equal(t, "SAVE5", quote.Coupon.Code)
	assert.Equal(t, int64(2000+599-500), quote.Options[0].TotalCents)
}

func TestCheckoutService_Quote_InvalidCart(t *testing.T) {
	product := trackedProduct("Burr Grinder", 1)
	svc := newCheckoutService(t, 0, product)

	_, err := svc.Quote(context.Background(), QuoteParams{
		Items:       []OrderItemParams{{ProductID: product.ID, Quantity: 3}},
		Destination: quoteDestination(),
	})
	require.Error(t, err)

	fields := domain.GetValidationFields(err)
	require.Len(t, fields, 1)
	assert.Contains(t, fields[product.ID.String()], "available")
}
