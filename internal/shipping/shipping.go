package shipping

import (
	"context"
	"time"

	"github.com/mbracken/njord/internal/domain"
)

// Provider defines the interface for shipping rate calculation.
// Implementations can integrate with real carriers later; the flat-rate
// provider covers the storefront's current needs.
type Provider interface {
	// GetRates returns the shipping options available for a cart.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams contains the inputs for rate calculation.
type RateParams struct {
	Destination   domain.Address
	Items         []domain.LineItem
	SubtotalCents int64
}

// Rate is a single shipping option.
type Rate struct {
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Carrier           string    `json:"carrier"`
	CostCents         int64     `json:"cost"`
	DaysMin           int       `json:"daysMin"`
	DaysMax           int       `json:"daysMax"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}
