package handler

import (
	"net/http"

	"github.com/mbracken/njord/internal/service"
)

// ReviewHandler serves product reviews.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler instance.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListForProduct handles GET /products/{id}/reviews.
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	reviews, total, err := h.reviews.ListProductReviews(r.Context(), productID,
		queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, listResponse{Items: reviews, Total: total})
}

// Create handles POST /reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	var params service.CreateReviewParams
	if err := decodeJSON(r, &params); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	params.UserID = claims.UserID

	review, err := h.reviews.CreateReview(r.Context(), params)
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, review)
}

// MarkHelpful handles POST /reviews/{id}/helpful. One vote per user.
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentUser(w, r)
	if !ok {
		return
	}

	reviewID, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	review, err := h.reviews.MarkHelpful(r.Context(), reviewID, claims.UserID)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}
