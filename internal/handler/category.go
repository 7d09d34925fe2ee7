package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/mbracken/njord/internal/service"
)

// CategoryHandler serves the category tree.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler instance.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image,omitempty"`
	ParentID    *uuid.UUID `json:"parent,omitempty"`
	IsActive    bool       `json:"isActive"`
	SortOrder   int32      `json:"sortOrder,omitempty"`
}

func (req categoryRequest) toParams() service.CategoryParams {
	return service.CategoryParams{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		ParentID:    req.ParentID,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}
}

// List handles GET /categories. Anonymous callers see active categories
// only; ?all=true includes inactive ones for the admin UI.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	all := queryBoolPtr(r, "all")
	activeOnly := all == nil || !*all

	categories, err := h.categories.ListCategories(r.Context(), activeOnly)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.GetCategory(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// Create handles POST /categories. Staff only.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), req.toParams())
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// Update handles PUT /categories/{id}. Staff only.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), id, req.toParams())
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}. Staff only.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
