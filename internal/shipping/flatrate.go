package shipping

import (
	"context"
	"time"
)

// FlatRateProvider returns predefined flat-rate shipping options.
// Orders at or above the free-shipping threshold get the standard rate at
// zero cost.
type FlatRateProvider struct {
	rates         []FlatRate
	freeOverCents int64
}

// FlatRate defines a single flat-rate shipping option.
type FlatRate struct {
	Code      string
	Name      string
	CostCents int64
	DaysMin   int
	DaysMax   int
}

// NewFlatRateProvider creates a new flat-rate shipping provider.
// freeOverCents of zero disables the free-shipping threshold.
func NewFlatRateProvider(rates []FlatRate, freeOverCents int64) Provider {
	return &FlatRateProvider{rates: rates, freeOverCents: freeOverCents}
}

// GetRates converts the configured flat rates to Rate values.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if len(params.Items) == 0 {
		return nil, ErrNoItems
	}
	if len(p.rates) == 0 {
		return nil, ErrNoRates
	}

	freeShipping := p.freeOverCents > 0 && params.SubtotalCents >= p.freeOverCents

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		cost := fr.CostCents
		if freeShipping {
			cost = 0
		}
		result[i] = Rate{
			Code:              fr.Code,
			Name:              fr.Name,
			Carrier:           "Flat Rate",
			CostCents:         cost,
			DaysMin:           fr.DaysMin,
			DaysMax:           fr.DaysMax,
			EstimatedDelivery: time.Now().AddDate(0, 0, fr.DaysMax),
		}
	}
	return result, nil
}

// DefaultRates returns the storefront's standard flat-rate table.
func DefaultRates() []FlatRate {
	return []FlatRate{
		{Code: "standard", Name: "Standard Shipping", CostCents: 599, DaysMin: 3, DaysMax: 7},
		{Code: "express", Name: "Express Shipping", CostCents: 1499, DaysMin: 1, DaysMax: 2},
	}
}
