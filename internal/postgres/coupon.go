package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// CouponStore persists discount coupons.
type CouponStore struct {
	pool *pgxpool.Pool
}

var _ service.CouponStore = (*CouponStore)(nil)

// NewCouponStore creates a new CouponStore instance.
func NewCouponStore(pool *pgxpool.Pool) *CouponStore {
	return &CouponStore{pool: pool}
}

const couponColumns = `id, code, description, discount_type, discount_value, max_discount_cents, min_purchase_cents, starts_at, expires_at, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var startsAt, expiresAt *time.Time

	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.Type, &c.Value,
		&c.MaxDiscountCents, &c.MinPurchaseCents,
		&startsAt, &expiresAt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if startsAt != nil {
		c.StartsAt = *startsAt
	}
	if expiresAt != nil {
		c.ExpiresAt = *expiresAt
	}
	return &c, nil
}

// nullableTime maps the zero time to NULL for open-ended validity windows.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FindByCode returns one coupon by its normalized code.
func (s *CouponStore) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(s.pool.QueryRow(ctx, query, code))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "postgres.coupon.find", "failed to load coupon")
	}
	return coupon, nil
}

// GetCoupon returns one coupon by ID.
func (s *CouponStore) GetCoupon(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "postgres.coupon.get", "failed to load coupon")
	}
	return coupon, nil
}

// ListCoupons returns all coupons, newest first.
func (s *CouponStore) ListCoupons(ctx context.Context) ([]domain.Coupon, error) {
	const op = "postgres.coupon.list"

	rows, err := s.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query coupons")
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan coupon")
		}
		coupons = append(coupons, *coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate coupons")
	}
	return coupons, nil
}

// CreateCoupon inserts a coupon.
func (s *CouponStore) CreateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	const op = "postgres.coupon.create"

	query := `
		INSERT INTO coupons (id, code, description, discount_type, discount_value,
			max_discount_cents, min_purchase_cents, starts_at, expires_at,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		coupon.ID, coupon.Code, coupon.Description, coupon.Type, coupon.Value,
		coupon.MaxDiscountCents, coupon.MinPurchaseCents,
		nullableTime(coupon.StartsAt), nullableTime(coupon.ExpiresAt),
		coupon.IsActive, coupon.CreatedAt, coupon.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "coupons_code_key") {
			return domain.ErrDuplicateCouponCode
		}
		return domain.Internal(err, op, "failed to insert coupon")
	}
	return nil
}

// UpdateCoupon rewrites all mutable columns.
func (s *CouponStore) UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error {
	const op = "postgres.coupon.update"

	query := `
		UPDATE coupons SET
			code = $2, description = $3, discount_type = $4, discount_value = $5,
			max_discount_cents = $6, min_purchase_cents = $7, starts_at = $8,
			expires_at = $9, is_active = $10, updated_at = $11
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		coupon.ID, coupon.Code, coupon.Description, coupon.Type, coupon.Value,
		coupon.MaxDiscountCents, coupon.MinPurchaseCents,
		nullableTime(coupon.StartsAt), nullableTime(coupon.ExpiresAt),
		coupon.IsActive, coupon.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "coupons_code_key") {
			return domain.ErrDuplicateCouponCode
		}
		return domain.Internal(err, op, "failed to update coupon")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// DeleteCoupon removes a coupon. Orders keep only the redeemed code, so
// deleting a coupon never breaks order history.
func (s *CouponStore) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "postgres.coupon.delete", "failed to delete coupon")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}
