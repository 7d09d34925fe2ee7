package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/domain"
)

func TestComputePricing_Breakdown(t *testing.T) {
	items := []domain.LineItem{
		{UnitPriceCents: 100, Quantity: 2},
	}

	pricing, err := ComputePricing(items, 10, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(200), pricing.SubtotalCents)
	assert.Equal(t, int64(10), pricing.ShippingCents)
	assert.Equal(t, int64(5), pricing.TaxCents)
	assert.Equal(t, int64(0), pricing.DiscountCents)
	assert.Equal(t, int64(215), pricing.TotalCents)
}

func TestComputePricing_MultipleItems(t *testing.T) {
	items := []domain.LineItem{
		{UnitPriceCents: 1800, Quantity: 2},
		{UnitPriceCents: 2200, Quantity: 1},
	}

	pricing, err := ComputePricing(items, 795, 462, 500)
	require.NoError(t, err)

	assert.Equal(t, int64(5800), pricing.SubtotalCents)
	assert.Equal(t, pricing.SubtotalCents+pricing.ShippingCents+pricing.TaxCents-pricing.DiscountCents, pricing.TotalCents)
}

func TestComputePricing_EmptyItems(t *testing.T) {
	pricing, err := ComputePricing(nil, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pricing.TotalCents)
}

func TestComputePricing_RejectsNegativeInputs(t *testing.T) {
	items := []domain.LineItem{{UnitPriceCents: 100, Quantity: 1}}

	tests := []struct {
		name                    string
		shipping, tax, discount int64
	}{
		{"negative shipping", -1, 0, 0},
		{"negative tax", 0, -1, 0},
		{"negative discount", 0, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputePricing(items, tt.shipping, tt.tax, tt.discount)
			require.Error(t, err)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
}

func TestComputePricing_RejectsNegativeTotal(t *testing.T) {
	items := []domain.LineItem{{UnitPriceCents: 100, Quantity: 1}}

	// discount exceeds subtotal + shipping + tax
	_, err := ComputePricing(items, 10, 5, 200)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestComputePricing_DiscountEqualToChargesIsFree(t *testing.T) {
	items := []domain.LineItem{{UnitPriceCents: 100, Quantity: 1}}

	pricing, err := ComputePricing(items, 0, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pricing.TotalCents)
}

func TestComputePricing_RejectsBadQuantity(t *testing.T) {
	items := []domain.LineItem{{UnitPriceCents: 100, Quantity: 0}}

	_, err := ComputePricing(items, 0, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
