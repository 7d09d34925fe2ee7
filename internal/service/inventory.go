package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// InventoryStore is the persistence surface the inventory service needs.
// DecrementStock must apply the decrement only when the current stock covers
// the quantity, reporting whether the decrement was applied. Postgres does
// this with a conditional UPDATE and a rows-affected check.
type InventoryStore interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int32) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int32) error
}

// InventoryService reserves and releases product stock for orders.
type InventoryService struct {
	store  InventoryStore
	logger *slog.Logger
}

// NewInventoryService creates a new InventoryService instance.
func NewInventoryService(store InventoryStore, logger *slog.Logger) *InventoryService {
	return &InventoryService{store: store, logger: logger}
}

// ReserveStock decrements stock for every tracked item, all or nothing.
// Items whose product does not track inventory are skipped. If any item
// cannot be covered, decrements already applied are rolled back and a
// StockError identifies the offending product.
func (s *InventoryService) ReserveStock(ctx context.Context, items []domain.LineItem) error {
	const op = "inventory.reserve"

	if len(items) == 0 {
		return domain.WrapError(domain.ErrEmptyOrder, domain.EINVALID, op, "no items to reserve")
	}

	tracked := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.WrapError(domain.ErrInvalidQuantity, domain.EINVALID, op, "quantity must be greater than 0")
		}

		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !product.TrackInventory {
			continue
		}
		if product.Stock < item.Quantity {
			return &domain.StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}
		tracked = append(tracked, item)
	}

	applied := make([]domain.LineItem, 0, len(tracked))
	for _, item := range tracked {
		ok, err := s.store.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil && !ok {
			// Lost the race since the read above. Report current availability.
			product, getErr := s.store.GetProduct(ctx, item.ProductID)
			if getErr != nil {
				err = getErr
			} else {
				err = &domain.StockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}
		}
		if err != nil {
			s.rollback(ctx, applied)
			return err
		}
		applied = append(applied, item)
	}

	return nil
}

// ReleaseStock returns previously reserved quantities to tracked products.
// Used when an order is cancelled or persistence fails after reservation.
func (s *InventoryService) ReleaseStock(ctx context.Context, items []domain.LineItem) error {
	for _, item := range items {
		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			// Product may have been deleted since the order was placed.
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				continue
			}
			return err
		}
		if !product.TrackInventory {
			continue
		}
		if err := s.store.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// rollback restores decrements applied before a partial reservation failed.
func (s *InventoryService) rollback(ctx context.Context, applied []domain.LineItem) {
	for _, item := range applied {
		if err := s.store.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to roll back stock reservation",
				slog.String("product_id", item.ProductID.String()),
				slog.Int("quantity", int(item.Quantity)),
				slog.String("error", err.Error()),
			)
		}
	}
}
