package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// PercentageCalculator applies a single flat rate to the taxable amount
// (subtotal plus shipping). Good enough for a single-jurisdiction store;
// a real tax provider can replace it behind the Calculator interface.
type PercentageCalculator struct {
	rate decimal.Decimal
}

// NewPercentageCalculator creates a calculator for the given rate,
// expressed as a fraction (0.065 for 6.5%).
func NewPercentageCalculator(rate float64) (Calculator, error) {
	if rate < 0 || rate > 1 {
		return nil, fmt.Errorf("tax rate %v out of range [0, 1]", rate)
	}
	return &PercentageCalculator{rate: decimal.NewFromFloat(rate)}, nil
}

// Calculate computes tax on subtotal + shipping, rounded to the nearest cent.
func (c *PercentageCalculator) Calculate(ctx context.Context, params Params) (*Result, error) {
	if params.SubtotalCents < 0 || params.ShippingCents < 0 {
		return nil, fmt.Errorf("taxable amounts must not be negative")
	}

	taxable := decimal.NewFromInt(params.SubtotalCents + params.ShippingCents)
	tax := taxable.Mul(c.rate).Round(0).IntPart()

	rate, _ := c.rate.Float64()
	return &Result{TaxCents: tax, Rate: rate}, nil
}
