package handler

import (
	"net/http"
	"time"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// CouponHandler serves coupon evaluation and the admin CRUD surface.
type CouponHandler struct {
	coupons *service.CouponService
}

// NewCouponHandler creates a new CouponHandler instance.
func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// Validate handles POST /coupons/validate. It prices a coupon against a
// cart total without redeeming anything.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code           string `json:"code"`
		CartTotalCents int64  `json:"cartTotal"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	result, err := h.coupons.Evaluate(r.Context(), req.Code, req.CartTotalCents)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type couponRequest struct {
	Code             string              `json:"code"`
	Description      string              `json:"description,omitempty"`
	Type             domain.DiscountType `json:"discountType"`
	Value            int64               `json:"discountValue"`
	MaxDiscountCents int64               `json:"maxDiscount,omitempty"`
	MinPurchaseCents int64               `json:"minPurchase,omitempty"`
	StartsAt         time.Time           `json:"startDate,omitempty"`
	ExpiresAt        time.Time           `json:"endDate,omitempty"`
	IsActive         bool                `json:"isActive"`
}

func (req couponRequest) toParams() service.CreateCouponParams {
	return service.CreateCouponParams{
		Code:             req.Code,
		Description:      req.Description,
		Type:             req.Type,
		Value:            req.Value,
		MaxDiscountCents: req.MaxDiscountCents,
		MinPurchaseCents: req.MinPurchaseCents,
		StartsAt:         req.StartsAt,
		ExpiresAt:        req.ExpiresAt,
		IsActive:         req.IsActive,
	}
}

// List handles GET /coupons. Admin only.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListCoupons(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, coupons)
}

// Create handles POST /coupons. Admin only.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	coupon, err := h.coupons.CreateCoupon(r.Context(), req.toParams())
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, coupon)
}

// Update handles PUT /coupons/{id}. Admin only.
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	coupon, err := h.coupons.UpdateCoupon(r.Context(), id, req.toParams())
	if err != nil {
		ValidationErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, coupon)
}

// Delete handles DELETE /coupons/{id}. Admin only.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	if err := h.coupons.DeleteCoupon(r.Context(), id); err != nil {
		ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}
