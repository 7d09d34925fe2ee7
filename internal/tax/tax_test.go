package tax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageCalculator_Calculate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		subtotal int64
		shipping int64
		want     int64
	}{
		{"6.5% on subtotal and shipping", 0.065, 10000, 599, 689},
		{"zero rate", 0, 10000, 599, 0},
		{"rounds to nearest cent", 0.08, 333, 0, 27},
		{"zero amounts", 0.08, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := NewPercentageCalculator(tt.rate)
			require.NoError(t, err)

			result, err := calc.Calculate(context.Background(), Params{
				SubtotalCents: tt.subtotal,
				ShippingCents: tt.shipping,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.TaxCents)
			assert.Equal(t, tt.rate, result.Rate)
		})
	}
}

func TestPercentageCalculator_RateOutOfRange(t *testing.T) {
	_, err := NewPercentageCalculator(-0.01)
	assert.Error(t, err)

	_, err = NewPercentageCalculator(1.5)
	assert.Error(t, err)
}

func TestPercentageCalculator_NegativeAmounts(t *testing.T) {
	calc, err := NewPercentageCalculator(0.08)
	require.NoError(t, err)

	_, err = calc.Calculate(context.Background(), Params{SubtotalCents: -1})
	assert.Error(t, err)
}

func TestNoTaxCalculator_Calculate(t *testing.T) {
	calc := NewNoTaxCalculator()

	result, err := calc.Calculate(context.Background(), Params{
		SubtotalCents: 10000,
		ShippingCents: 599,
	})
	require.NoError(t, err)
	assert.Zero(t, result.TaxCents)
	assert.Zero(t, result.Rate)
}
