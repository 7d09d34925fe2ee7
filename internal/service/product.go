package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// ProductSort orders catalog listings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortRating    ProductSort = "rating"
)

// ProductFilter narrows and pages catalog listings.
type ProductFilter struct {
	Search        string
	CategoryID    *uuid.UUID
	Featured      *bool
	IsActive      *bool
	MinPriceCents *int64
	MaxPriceCents *int64
	Sort          ProductSort
	Limit         int
	Offset        int
}

// ProductStore is the persistence surface the product service needs.
// Create and Update surface ErrDuplicateSlug and ErrDuplicateSKU from the
// store's unique indexes.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

// ProductService owns the catalog CRUD surface.
type ProductService struct {
	store ProductStore
}

// NewProductService creates a new ProductService instance.
func NewProductService(store ProductStore) *ProductService {
	return &ProductService{store: store}
}

// ProductParams describes a new or updated product.
type ProductParams struct {
	Name              string
	Description       string
	PriceCents        int64
	ComparePriceCents int64
	CategoryID        uuid.UUID
	Subcategory       string
	Tags              []string
	Images            []domain.Image
	Variants          []domain.Variant
	SKU               string
	Stock             int32
	LowStockThreshold int32
	TrackInventory    bool
	FreeShipping      bool
	Featured          bool
	IsActive          bool
	CreatedBy         uuid.UUID
}

func (p ProductParams) validate() error {
	var err error
	if p.Name == "" {
		err = domain.AddFieldError(err, "name", "name is required")
	}
	if p.Description == "" {
		err = domain.AddFieldError(err, "description", "description is required")
	}
	if p.PriceCents < 0 {
		err = domain.AddFieldError(err, "price", "must not be negative")
	}
	if p.ComparePriceCents < 0 {
		err = domain.AddFieldError(err, "comparePrice", "must not be negative")
	}
	if p.CategoryID == uuid.Nil {
		err = domain.AddFieldError(err, "category", "category is required")
	}
	if p.Stock < 0 {
		err = domain.AddFieldError(err, "stock", "must not be negative")
	}
	return err
}

// CreateProduct stores a new catalog entry. The slug is derived from the
// name; a duplicate slug or SKU surfaces as a conflict.
func (s *ProductService) CreateProduct(ctx context.Context, params ProductParams) (*domain.Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	threshold := params.LowStockThreshold
	if threshold == 0 {
		threshold = 10
	}

	now := time.Now()
	product := &domain.Product{
		ID:                uuid.New(),
		Name:              params.Name,
		Slug:              domain.Slugify(params.Name),
		Description:       params.Description,
		PriceCents:        params.PriceCents,
		ComparePriceCents: params.ComparePriceCents,
		CategoryID:        params.CategoryID,
		Subcategory:       params.Subcategory,
		Tags:              params.Tags,
		Images:            params.Images,
		Variants:          params.Variants,
		SKU:               params.SKU,
		Stock:             params.Stock,
		LowStockThreshold: threshold,
		TrackInventory:    params.TrackInventory,
		FreeShipping:      params.FreeShipping,
		Featured:          params.Featured,
		IsActive:          params.IsActive,
		CreatedBy:         params.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns one product by id.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// GetProductBySlug returns one product by its URL slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.store.GetProductBySlug(ctx, slug)
}

// ListProducts returns products matching the filter plus the total match
// count for pagination.
func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Sort == "" {
		filter.Sort = ProductSortNewest
	}
	return s.store.ListProducts(ctx, filter)
}

// UpdateProduct replaces a product's catalog attributes. The slug follows
// the name. Stock set here is an absolute restatement; order flow uses the
// inventory service's conditional decrement instead.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (*domain.Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = params.Name
	product.Slug = domain.Slugify(params.Name)
	product.Description = params.Description
	product.PriceCents = params.PriceCents
	product.ComparePriceCents = params.ComparePriceCents
	product.CategoryID = params.CategoryID
	product.Subcategory = params.Subcategory
	product.Tags = params.Tags
	product.Images = params.Images
	product.Variants = params.Variants
	product.SKU = params.SKU
	product.Stock = params.Stock
	if params.LowStockThreshold > 0 {
		product.LowStockThreshold = params.LowStockThreshold
	}
	product.TrackInventory = params.TrackInventory
	product.FreeShipping = params.FreeShipping
	product.Featured = params.Featured
	product.IsActive = params.IsActive
	product.UpdatedAt = time.Now()

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeactivateProduct soft-deletes a product. Orders keep their snapshots, so
// nothing is ever physically removed from the catalog.
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return s.store.DeactivateProduct(ctx, id)
}
