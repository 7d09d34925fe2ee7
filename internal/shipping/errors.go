package shipping

import "github.com/mbracken/njord/internal/domain"

var (
	// ErrNoItems is returned when rate calculation is requested for an
	// empty cart.
	ErrNoItems = &domain.Error{Code: domain.EINVALID, Message: "At least one item is required"}

	// ErrNoRates is returned when no shipping rates are available.
	ErrNoRates = &domain.Error{Code: domain.EINVALID, Message: "No shipping rates available"}

	// ErrUnknownMethod is returned when a requested shipping method code
	// matches none of the provider's rates.
	ErrUnknownMethod = &domain.Error{Code: domain.EINVALID, Message: "Unknown shipping method"}
)
