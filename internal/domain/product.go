package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrProductInactive = &Error{Code: EINVALID, Message: "Product is no longer available"}
	ErrDuplicateSlug   = &Error{Code: ECONFLICT, Message: "Product slug already exists"}
	ErrDuplicateSKU    = &Error{Code: ECONFLICT, Message: "SKU already exists"}
)

// Image is a stored product or review image reference.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Variant describes a configurable product option, e.g. Size: [S, M, L].
type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Product is a catalog entry. The order core treats products as externally
// owned and only ever mutates the stock counter; everything else belongs to
// the catalog CRUD surface.
type Product struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       string     `json:"description"`
	PriceCents        int64      `json:"price"`
	ComparePriceCents int64      `json:"comparePrice,omitempty"`
	CategoryID        uuid.UUID  `json:"category"`
	Subcategory       string     `json:"subcategory,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Images            []Image    `json:"images,omitempty"`
	Variants          []Variant  `json:"variants,omitempty"`
	SKU               string     `json:"sku,omitempty"`
	Stock             int32      `json:"stock"`
	LowStockThreshold int32      `json:"lowStockThreshold"`
	TrackInventory    bool       `json:"trackInventory"`
	FreeShipping      bool       `json:"freeShipping"`
	RatingAverage     float64    `json:"ratingAverage"`
	RatingCount       int32      `json:"ratingCount"`
	Featured          bool       `json:"featured"`
	IsActive          bool       `json:"isActive"`
	CreatedBy         uuid.UUID  `json:"createdBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// LowStock reports whether the product is at or below its low-stock
// threshold. Always false for untracked inventory.
func (p *Product) LowStock() bool {
	return p.TrackInventory && p.Stock <= p.LowStockThreshold
}

// PrimaryImageURL returns the first image URL, or "" when there are none.
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
