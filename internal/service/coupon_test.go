package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/domain"
)

type mockCouponStore struct {
	findByCodeFn   func(ctx context.Context, code string) (*domain.Coupon, error)
	getCouponFn    func(ctx context.Context, id uuid.UUID) (*domain.Coupon, error)
	listCouponsFn  func(ctx context.Context) ([]domain.Coupon, error)
	createCouponFn func(ctx context.Context, coupon *domain.Coupon) error
	updateCouponFn func(ctx context.Context, coupon *domain.Coupon) error
	deleteCouponFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCouponStore) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return m.findByCodeFn(ctx, code)
}

func (m *mockCouponStore) GetCoupon(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	return m.getCouponFn(ctx, id)
}

func (m *mockCouponStore) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return m.listCouponsFn(ctx)
}

func (m *mockCouponStore) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	return m.createCouponFn(ctx, coupon)
}

func (m *mockCouponStore) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	return m.updateCouponFn(ctx, coupon)
}

func (m *mockCouponStore) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return m.deleteCouponFn(ctx, id)
}

func storeWithCoupon(t *testing.T, coupon *domain.Coupon) *mockCouponStore {
	t.Helper()
	return &mockCouponStore{
		findByCodeFn: func(_ context.Context, code string) (*domain.Coupon, error) {
			if coupon != nil && code == coupon.Code {
				return coupon, nil
			}
			return nil, domain.ErrCouponNotFound
		},
	}
}

func activeCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:        uuid.New(),
		Code:      "SAVE20",
		Type:      domain.DiscountPercentage,
		Value:     20,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
		IsActive:  true,
	}
}

func TestCouponService_Evaluate_PercentageCappedAtMaxDiscount(t *testing.T) {
	coupon := activeCoupon()
	coupon.MinPurchaseCents = 50
	coupon.MaxDiscountCents = 30

	svc := NewCouponService(storeWithCoupon(t, coupon))

	result, err := svc.Evaluate(context.Background(), "SAVE20", 200)
	require.NoError(t, err)

	// 20% of 200 is 40, capped at 30.
	assert.Equal(t, int64(30), result.DiscountCents)
	assert.Equal(t, "SAVE20", result.Code)
	assert.Equal(t, domain.DiscountPercentage, result.Type)
}

func TestCouponService_Evaluate_PercentageUncapped(t *testing.T) {
	coupon := activeCoupon()

	svc := NewCouponService(storeWithCoupon(t, coupon))

	result, err := svc.Evaluate(context.Background(), "SAVE20", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(200), result.DiscountCents)
}

func TestCouponService_Evaluate_NormalizesCode(t *testing.T) {
	coupon := activeCoupon()

	svc := NewCouponService(storeWithCoupon(t, coupon))

	result, err := svc.Evaluate(context.Background(), "  save20 ", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(200), result.DiscountCents)
}

func TestCouponService_Evaluate_FixedCappedAtCartTotal(t *testing.T) {
	coupon := activeCoupon()
	coupon.Type = domain.DiscountFixed
	coupon.Value = 500

	svc := NewCouponService(storeWithCoupon(t, coupon))

	result, err := svc.Evaluate(context.Background(), "SAVE20", 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.DiscountCents)

	result, err = svc.Evaluate(context.Background(), "SAVE20", 800)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.DiscountCents)
}

func TestCouponService_Evaluate_MinPurchaseNotMet(t *testing.T) {
	coupon := activeCoupon()
	coupon.MinPurchaseCents = 5000

	svc := NewCouponService(storeWithCoupon(t, coupon))

	_, err := svc.Evaluate(context.Background(), "SAVE20", 4999)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMinPurchaseNotMet)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCouponService_Evaluate_ExpiredOrInactive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Coupon)
	}{
		{"expired", func(c *domain.Coupon) { c.ExpiresAt = time.Now().Add(-time.Minute) }},
		{"not started", func(c *domain.Coupon) { c.StartsAt = time.Now().Add(time.Minute) }},
		{"inactive", func(c *domain.Coupon) { c.IsActive = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := activeCoupon()
			tt.mutate(coupon)

			svc := NewCouponService(storeWithCoupon(t, coupon))

			_, err := svc.Evaluate(context.Background(), "SAVE20", 1000)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrCouponInvalid)
		})
	}
}

func TestCouponService_Evaluate_UnknownCode(t *testing.T) {
	svc := NewCouponService(storeWithCoupon(t, nil))

	_, err := svc.Evaluate(context.Background(), "NOPE", 1000)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestCouponService_Evaluate_RoundsHalfUp(t *testing.T) {
	coupon := activeCoupon()
	coupon.Value = 15

	svc := NewCouponService(storeWithCoupon(t, coupon))

	// 15% of 333 is 49.95, rounded to 50.
	result, err := svc.Evaluate(context.Background(), "SAVE20", 333)
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.DiscountCents)
}

func TestCouponService_CreateCoupon_Validation(t *testing.T) {
	svc := NewCouponService(&mockCouponStore{})

	_, err := svc.CreateCoupon(context.Background(), CreateCouponParams{
		Code:  "",
		Type:  "bogus",
		Value: 0,
	})
	require.Error(t, err)

	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "code")
	assert.Contains(t, fields, "discountType")
	assert.Contains(t, fields, "discountValue")
}

func TestCouponService_CreateCoupon_NormalizesCode(t *testing.T) {
	var stored *domain.Coupon
	store := &mockCouponStore{
		createCouponFn: func(_ context.Context, coupon *domain.Coupon) error {
			stored = coupon
			return nil
		},
	}

	svc := NewCouponService(store)

	created, err := svc.CreateCoupon(context.Background(), CreateCouponParams{
		Code:     " welcome10 ",
		Type:     domain.DiscountPercentage,
		Value:    10,
		IsActive: true,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "WELCOME10", created.Code)
	assert.NotEqual(t, uuid.Nil, created.ID)
}
