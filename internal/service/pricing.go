package service

import (
	"github.com/mbracken/njord/internal/domain"
)

// ComputePricing builds the money breakdown for an order. Subtotal is the
// sum of line-item snapshots (unit price x quantity); total is
// subtotal + shipping + tax - discount.
//
// Unit prices come from catalog snapshots taken at order-creation time, not
// from the client, so callers cannot tamper with pricing. The function is
// pure: it never touches storage.
func ComputePricing(items []domain.LineItem, shippingCents, taxCents, discountCents int64) (domain.Pricing, error) {
	const op = "pricing.compute"

	if shippingCents < 0 {
		return domain.Pricing{}, domain.Invalid(op, "shipping must not be negative")
	}
	if taxCents < 0 {
		return domain.Pricing{}, domain.Invalid(op, "tax must not be negative")
	}
	if discountCents < 0 {
		return domain.Pricing{}, domain.Invalid(op, "discount must not be negative")
	}

	var subtotal int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.Pricing{}, domain.WrapError(domain.ErrInvalidQuantity, domain.EINVALID, op, "line item quantity must be greater than 0")
		}
		if item.UnitPriceCents < 0 {
			return domain.Pricing{}, domain.Invalid(op, "unit price must not be negative")
		}
		subtotal += item.SubtotalCents()
	}

	charges := subtotal + shippingCents + taxCents
	if discountCents > charges {
		return domain.Pricing{}, domain.Errorf(domain.EINVALID, op, "discount %d exceeds order charges %d", discountCents, charges)
	}

	return domain.Pricing{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TaxCents:      taxCents,
		DiscountCents: discountCents,
		TotalCents:    charges - discountCents,
	}, nil
}
