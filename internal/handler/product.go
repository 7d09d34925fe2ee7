package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// ProductHandler serves the catalog read surface and the staff CRUD
// surface.
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler creates a new ProductHandler instance.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type productRequest struct {
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	PriceCents        int64            `json:"price"`
	ComparePriceCents int64            `json:"comparePrice,omitempty"`
	CategoryID        uuid.UUID        `json:"category"`
	Subcategory       string           `json:"subcategory,omitempty"`
	Tags              []string         `json:"tags,omitempty"`
	Images            []domain.Image   `json:"images,omitempty"`
	Variants          []domain.Variant `json:"variants,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	Stock             int32            `json:"stock"`
	LowStockThreshold int32            `json:"lowStockThreshold,omitempty"`
	TrackInventory    bool             `json:"trackInventory"`
	FreeShipping      bool             `json:"freeShipping"`
	Featured          bool             `json:"featured"`
	IsActive          bool             `json:"isActive"`
}

func (req productRequest) toParams(createdBy uuid.UUID) service.ProductParams {
	return service.ProductParams{
		Name:              req.Name,
		Description:       req.Description,
		PriceCents:        req.PriceCents,
		ComparePriceCents: req.ComparePriceCents,
		CategoryID:        req.CategoryID,
		Subcategory:       req.Subcategory,
		Tags:              req.Tags,
		Images:            req.Images,
		Variants:          req.Variants,
		SKU:               req.SKU,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		TrackInventory:    req.TrackInventory,
		FreeShipping:      req.FreeShipping,
		Featured:          req.Featured,
		IsActive:          req.IsActive,
		CreatedBy:         createdBy,
	}
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := service.ProductFilter{
		Search:        r.URL.Query().Get("search"),
		CategoryID:    queryUUIDPtr(r, "category"),
		Featured:      queryBoolPtr(r, "featured"),
		IsActive:      queryBoolPtr(r, "isActive"),
		MinPriceCents: queryInt64Ptr(r, "minPrice"),
		MaxPriceCents: queryInt64Ptr(r, "maxPrice"),
		Sort:          service.ProductSort(r.URL.Query().Get("sort")),
		Limit:         queryInt(r, "limit", 0),
		Offset:        queryInt(r, "offset", 0),
	}

	products, total, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{Items: products, Total: total})
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// GetBySlug handles GET /products/slug/{slug}.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Create handles POST /products. Staff only.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req.toParams(claims.UserID))
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// Update handles PUT /products/{id}. Staff only.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, req.toParams(claims.UserID))
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id}. Staff only. Products are
// deactivated, not removed, so existing orders keep their references.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.products.DeactivateProduct(r.Context(), id); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deactivated"})
}
