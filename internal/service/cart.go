package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// CartItemError describes why one cart entry failed validation.
type CartItemError struct {
	ProductID      uuid.UUID `json:"productId"`
	Message        string    `json:"message"`
	AvailableStock *int32    `json:"availableStock,omitempty"`
}

// CartValidation is the result of a cart pre-check.
type CartValidation struct {
	Items     []domain.LineItem `json:"validatedItems"`
	Errors    []CartItemError   `json:"errors"`
	HasErrors bool              `json:"hasErrors"`
}

// CartService validates client-held carts against the live catalog.
// The cart itself lives in the client; nothing here holds state or
// reserves stock.
type CartService struct {
	catalog CatalogReader
}

// NewCartService creates a new CartService instance.
func NewCartService(catalog CatalogReader) *CartService {
	return &CartService{catalog: catalog}
}

// ValidateCart re-reads every requested product and reports, per item,
// whether it can currently be purchased at what price. Prices and names in
// the result come from the catalog, never from the request. Read-only.
func (s *CartService) ValidateCart(ctx context.Context, items []OrderItemParams) (*CartValidation, error) {
	const op = "cart.validate"

	if len(items) == 0 {
		return nil, domain.Invalid(op, "cart is empty")
	}

	result := &CartValidation{
		Items:  make([]domain.LineItem, 0, len(items)),
		Errors: []CartItemError{},
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			result.Errors = append(result.Errors, CartItemError{
				ProductID: item.ProductID,
				Message:   "Quantity must be greater than 0",
			})
			continue
		}

		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				result.Errors = append(result.Errors, CartItemError{
					ProductID: item.ProductID,
					Message:   "Product not found",
				})
				continue
			}
			return nil, err
		}

		if !product.IsActive {
			result.Errors = append(result.Errors, CartItemError{
				ProductID: item.ProductID,
				Message:   "Product is no longer available",
			})
			continue
		}

		if product.TrackInventory && product.Stock < item.Quantity {
			available := product.Stock
			result.Errors = append(result.Errors, CartItemError{
				ProductID:      item.ProductID,
				Message:        fmt.Sprintf("Only %d items available", available),
				AvailableStock: &available,
			})
			continue
		}

		result.Items = append(result.Items, domain.LineItem{
			ProductID:      product.ID,
			Name:           product.Name,
			ImageURL:       product.PrimaryImageURL(),
			UnitPriceCents: product.PriceCents,
			Quantity:       item.Quantity,
			Variant:        item.Variant,
		})
	}

	result.HasErrors = len(result.Errors) > 0
	return result, nil
}
