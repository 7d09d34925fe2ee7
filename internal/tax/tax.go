package tax

import (
	"context"

	"github.com/mbracken/njord/internal/domain"
)

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator.
type Calculator interface {
	// Calculate computes the tax, in cents, owed on an order.
	Calculate(ctx context.Context, params Params) (*Result, error)
}

// Params contains the inputs for tax calculation.
type Params struct {
	Destination   domain.Address
	SubtotalCents int64
	ShippingCents int64
}

// Result contains the calculated tax amount.
type Result struct {
	TaxCents int64
	// Rate is the effective rate applied, e.g. 0.065 for 6.5%.
	Rate float64
}
