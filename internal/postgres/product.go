package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// ProductStore persists catalog entries and their stock counters. It backs
// both the product service and the inventory service.
type ProductStore struct {
	pool *pgxpool.Pool
}

var (
	_ service.ProductStore   = (*ProductStore)(nil)
	_ service.InventoryStore = (*ProductStore)(nil)
	_ service.CatalogReader  = (*ProductStore)(nil)
)

// NewProductStore creates a new ProductStore instance.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `
	id, name, slug, description, price_cents, compare_price_cents,
	category_id, subcategory, tags, images, variants, COALESCE(sku, ''),
	stock, low_stock_threshold, track_inventory, free_shipping,
	rating_average, rating_count, featured, is_active,
	COALESCE(created_by, '00000000-0000-0000-0000-000000000000'),
	created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var images, variants []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.PriceCents, &p.ComparePriceCents,
		&p.CategoryID, &p.Subcategory, &p.Tags, &images, &variants, &p.SKU,
		&p.Stock, &p.LowStockThreshold, &p.TrackInventory, &p.FreeShipping,
		&p.RatingAverage, &p.RatingCount, &p.Featured, &p.IsActive,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal(variants, &p.Variants); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	return &p, nil
}

// CreateProduct inserts a catalog entry.
func (s *ProductStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	const op = "postgres.product.create"

	query := `
		INSERT INTO products (
			id, name, slug, description, price_cents, compare_price_cents,
			category_id, subcategory, tags, images, variants, sku,
			stock, low_stock_threshold, track_inventory, free_shipping,
			featured, is_active, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''),
			$13, $14, $15, $16, $17, $18, NULLIF($19, '00000000-0000-0000-0000-000000000000')::uuid,
			$20, $21
		)`

	_, err := s.pool.Exec(ctx, query,
		product.ID, product.Name, product.Slug, product.Description,
		product.PriceCents, product.ComparePriceCents,
		product.CategoryID, product.Subcategory, product.Tags,
		mustJSON(product.Images), mustJSON(product.Variants), product.SKU,
		product.Stock, product.LowStockThreshold, product.TrackInventory,
		product.FreeShipping, product.Featured, product.IsActive,
		product.CreatedBy.String(), product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "products_slug_key"):
			return domain.ErrDuplicateSlug
		case isUniqueViolation(err, "idx_products_sku"):
			return domain.ErrDuplicateSKU
		default:
			return domain.Internal(err, op, "failed to insert product")
		}
	}
	return nil
}

// GetProduct returns one product by ID.
func (s *ProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "postgres.product.get", "failed to load product")
	}
	return product, nil
}

// GetProductBySlug returns one product by its URL slug.
func (s *ProductStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "postgres.product.get_slug", "failed to load product")
	}
	return product, nil
}

// ListProducts returns products matching the filter plus the total match
// count. Filters compose as AND conditions.
func (s *ProductStore) ListProducts(ctx context.Context, filter service.ProductFilter) ([]domain.Product, int, error) {
	const op = "postgres.product.list"

	where := " WHERE 1=1"
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where += fmt.Sprintf(" AND (name ILIKE %s OR description ILIKE %s)", p, p)
	}
	if filter.CategoryID != nil {
		where += " AND category_id = " + arg(*filter.CategoryID)
	}
	if filter.Featured != nil {
		where += " AND featured = " + arg(*filter.Featured)
	}
	if filter.IsActive != nil {
		where += " AND is_active = " + arg(*filter.IsActive)
	}
	if filter.MinPriceCents != nil {
		where += " AND price_cents >= " + arg(*filter.MinPriceCents)
	}
	if filter.MaxPriceCents != nil {
		where += " AND price_cents <= " + arg(*filter.MaxPriceCents)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count products")
	}

	orderBy := " ORDER BY created_at DESC"
	switch filter.Sort {
	case service.ProductSortPriceAsc:
		orderBy = " ORDER BY price_cents ASC"
	case service.ProductSortPriceDesc:
		orderBy = " ORDER BY price_cents DESC"
	case service.ProductSortRating:
		orderBy = " ORDER BY rating_average DESC, rating_count DESC"
	}

	query := "SELECT " + productColumns + " FROM products" + where + orderBy +
		" LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, domain.Internal(err, op, "failed to scan product")
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to iterate products")
	}

	return products, total, nil
}

// UpdateProduct rewrites all mutable columns.
func (s *ProductStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	const op = "postgres.product.update"

	query := `
		UPDATE products SET
			name = $2, slug = $3, description = $4, price_cents = $5,
			compare_price_cents = $6, category_id = $7, subcategory = $8,
			tags = $9, images = $10, variants = $11, sku = NULLIF($12, ''),
			stock = $13, low_stock_threshold = $14, track_inventory = $15,
			free_shipping = $16, featured = $17, is_active = $18, updated_at = $19
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		product.ID, product.Name, product.Slug, product.Description,
		product.PriceCents, product.ComparePriceCents, product.CategoryID,
		product.Subcategory, product.Tags, mustJSON(product.Images),
		mustJSON(product.Variants), product.SKU, product.Stock,
		product.LowStockThreshold, product.TrackInventory, product.FreeShipping,
		product.Featured, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "products_slug_key"):
			return domain.ErrDuplicateSlug
		case isUniqueViolation(err, "idx_products_sku"):
			return domain.ErrDuplicateSKU
		default:
			return domain.Internal(err, op, "failed to update product")
		}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DeactivateProduct soft-deletes a product.
func (s *ProductStore) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "postgres.product.deactivate", "failed to deactivate product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DecrementStock conditionally subtracts qty from a product's stock. It
// returns false without error when the product has fewer than qty units,
// so concurrent order attempts race on the database rather than on stale
// reads.
func (s *ProductStore) DecrementStock(ctx context.Context, id uuid.UUID, qty int32) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now()
		 WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return false, domain.Internal(err, "postgres.product.decrement", "failed to decrement stock")
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementStock adds qty back to a product's stock.
func (s *ProductStore) IncrementStock(ctx context.Context, id uuid.UUID, qty int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`, id, qty)
	if err != nil {
		return domain.Internal(err, "postgres.product.increment", "failed to increment stock")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
