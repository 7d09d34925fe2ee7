package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mbracken/njord/internal/domain"
)

// CouponStore is the persistence surface the coupon service needs.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	GetCoupon(ctx context.Context, id uuid.UUID) (*domain.Coupon, error)
	ListCoupons(ctx context.Context) ([]domain.Coupon, error)
	CreateCoupon(ctx context.Context, coupon *domain.Coupon) error
	UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}

// CouponResult is the outcome of evaluating a coupon against a cart total.
type CouponResult struct {
	Code          string              `json:"code"`
	Description   string              `json:"description,omitempty"`
	Type          domain.DiscountType `json:"discountType"`
	Value         int64               `json:"discountValue"`
	DiscountCents int64               `json:"discount"`
}

// CouponService evaluates and manages discount coupons.
type CouponService struct {
	store CouponStore
}

// NewCouponService creates a new CouponService instance.
func NewCouponService(store CouponStore) *CouponService {
	return &CouponService{store: store}
}

// Evaluate computes the discount a coupon yields for the given cart total.
// The code is normalized to upper case before lookup. Evaluation is
// idempotent and never mutates the coupon record.
//
// Fixed-amount discounts are capped at the cart total so a generous coupon
// cannot drive an order total negative.
func (s *CouponService) Evaluate(ctx context.Context, code string, cartTotalCents int64) (*CouponResult, error) {
	const op = "coupon.evaluate"

	if cartTotalCents < 0 {
		return nil, domain.Invalid(op, "cart total must not be negative")
	}

	coupon, err := s.store.FindByCode(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		return nil, err
	}

	if !coupon.RedeemableAt(time.Now()) {
		return nil, domain.WrapError(domain.ErrCouponInvalid, domain.EINVALID, op, "coupon is expired or inactive")
	}

	if cartTotalCents < coupon.MinPurchaseCents {
		return nil, &domain.Error{
			Code:    domain.EINVALID,
			Op:      op,
			Message: fmt.Sprintf("Minimum purchase of %d required", coupon.MinPurchaseCents),
			Err:     domain.ErrMinPurchaseNotMet,
		}
	}

	return &CouponResult{
		Code:          coupon.Code,
		Description:   coupon.Description,
		Type:          coupon.Type,
		Value:         coupon.Value,
		DiscountCents: discountFor(coupon, cartTotalCents),
	}, nil
}

// discountFor computes the discount in cents for a redeemable coupon.
func discountFor(coupon *domain.Coupon, cartTotalCents int64) int64 {
	switch coupon.Type {
	case domain.DiscountPercentage:
		discount := decimal.NewFromInt(cartTotalCents).
			Mul(decimal.NewFromInt(coupon.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
		if coupon.MaxDiscountCents > 0 && discount > coupon.MaxDiscountCents {
			discount = coupon.MaxDiscountCents
		}
		return discount
	default:
		if coupon.Value > cartTotalCents {
			return cartTotalCents
		}
		return coupon.Value
	}
}

// ListCoupons returns all coupons, newest first. Admin surface.
func (s *CouponService) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.store.ListCoupons(ctx)
}

// CreateCouponParams describes a new coupon.
type CreateCouponParams struct {
	Code             string
	Description      string
	Type             domain.DiscountType
	Value            int64
	MaxDiscountCents int64
	MinPurchaseCents int64
	StartsAt         time.Time
	ExpiresAt        time.Time
	IsActive         bool
}

func (p CreateCouponParams) validate() error {
	var err error
	if domain.NormalizeCouponCode(p.Code) == "" {
		err = domain.AddFieldError(err, "code", "code is required")
	}
	if !p.Type.Valid() {
		err = domain.AddFieldError(err, "discountType", "must be percentage or fixed")
	}
	if p.Value <= 0 {
		err = domain.AddFieldError(err, "discountValue", "must be greater than 0")
	}
	if p.Type == domain.DiscountPercentage && p.Value > 100 {
		err = domain.AddFieldError(err, "discountValue", "percentage must not exceed 100")
	}
	if p.MaxDiscountCents < 0 {
		err = domain.AddFieldError(err, "maxDiscount", "must not be negative")
	}
	if p.MinPurchaseCents < 0 {
		err = domain.AddFieldError(err, "minPurchase", "must not be negative")
	}
	return err
}

// CreateCoupon stores a new coupon with a normalized code. Admin surface.
func (s *CouponService) CreateCoupon(ctx context.Context, params CreateCouponParams) (*domain.Coupon, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	coupon := &domain.Coupon{
		ID:               uuid.New(),
		Code:             domain.NormalizeCouponCode(params.Code),
		Description:      params.Description,
		Type:             params.Type,
		Value:            params.Value,
		MaxDiscountCents: params.MaxDiscountCents,
		MinPurchaseCents: params.MinPurchaseCents,
		StartsAt:         params.StartsAt,
		ExpiresAt:        params.ExpiresAt,
		IsActive:         params.IsActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// UpdateCoupon replaces a coupon's attributes. Admin surface.
func (s *CouponService) UpdateCoupon(ctx context.Context, id uuid.UUID, params CreateCouponParams) (*domain.Coupon, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	coupon, err := s.store.GetCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	coupon.Code = domain.NormalizeCouponCode(params.Code)
	coupon.Description = params.Description
	coupon.Type = params.Type
	coupon.Value = params.Value
	coupon.MaxDiscountCents = params.MaxDiscountCents
	coupon.MinPurchaseCents = params.MinPurchaseCents
	coupon.StartsAt = params.StartsAt
	coupon.ExpiresAt = params.ExpiresAt
	coupon.IsActive = params.IsActive
	coupon.UpdatedAt = time.Now()

	if err := s.store.UpdateCoupon(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// DeleteCoupon removes a coupon. Admin surface.
func (s *CouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteCoupon(ctx, id)
}
