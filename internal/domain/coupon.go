package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Coupon-related domain errors.
var (
	ErrCouponNotFound     = &Error{Code: ENOTFOUND, Message: "Invalid coupon code"}
	ErrCouponInvalid      = &Error{Code: EINVALID, Message: "Coupon is expired or inactive"}
	ErrMinPurchaseNotMet  = &Error{Code: EINVALID, Message: "Minimum purchase not met"}
	ErrDuplicateCouponCode = &Error{Code: ECONFLICT, Message: "Coupon code already exists"}
)

// DiscountType distinguishes percentage coupons from fixed-amount coupons.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is a discount code. Codes are stored normalized to upper case.
// Evaluation never mutates the record.
type Coupon struct {
	ID          uuid.UUID    `json:"id"`
	Code        string       `json:"code"`
	Description string       `json:"description,omitempty"`
	Type        DiscountType `json:"discountType"`

	// Value is whole percent for percentage coupons (20 = 20% off) and
	// cents for fixed-amount coupons.
	Value int64 `json:"discountValue"`

	// MaxDiscountCents caps percentage discounts. Zero means no cap.
	// Ignored for fixed-amount coupons.
	MaxDiscountCents int64 `json:"maxDiscount,omitempty"`

	MinPurchaseCents int64     `json:"minPurchase"`
	StartsAt         time.Time `json:"startsAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RedeemableAt reports whether the coupon is active and t falls inside its
// validity window.
func (c *Coupon) RedeemableAt(t time.Time) bool {
	if !c.IsActive {
		return false
	}
	if !c.StartsAt.IsZero() && t.Before(c.StartsAt) {
		return false
	}
	if !c.ExpiresAt.IsZero() && t.After(c.ExpiresAt) {
		return false
	}
	return true
}

// NormalizeCouponCode upper-cases and trims a user-supplied coupon code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
