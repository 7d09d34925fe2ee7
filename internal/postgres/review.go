package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// ReviewStore persists reviews, helpful votes, and the derived product
// rating aggregate.
type ReviewStore struct {
	pool *pgxpool.Pool
}

var _ service.ReviewStore = (*ReviewStore)(nil)

// NewReviewStore creates a new ReviewStore instance.
func NewReviewStore(pool *pgxpool.Pool) *ReviewStore {
	return &ReviewStore{pool: pool}
}

const reviewColumns = `id, product_id, user_id, rating, title, comment, images, verified, helpful_count, is_approved, created_at, updated_at`

func scanReview(row pgx.Row) (*domain.Review, error) {
	var r domain.Review
	var images []byte

	err := row.Scan(
		&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title, &r.Comment,
		&images, &r.Verified, &r.HelpfulCount, &r.IsApproved,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &r.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	return &r, nil
}

// CreateReview inserts a review. The schema's unique index enforces one
// review per user per product even under concurrent submissions.
func (s *ReviewStore) CreateReview(ctx context.Context, review *domain.Review) error {
	const op = "postgres.review.create"

	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, title, comment, images,
			verified, helpful_count, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Title,
		review.Comment, mustJSON(review.Images), review.Verified,
		review.HelpfulCount, review.IsApproved, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "reviews_product_id_user_id_key") {
			return domain.ErrDuplicateReview
		}
		return domain.Internal(err, op, "failed to insert review")
	}
	return nil
}

// GetReview returns one review by ID.
func (s *ReviewStore) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := scanReview(s.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, domain.Internal(err, "postgres.review.get", "failed to load review")
	}
	return review, nil
}

// ListProductReviews returns approved reviews for a product, newest first,
// plus the total approved count.
func (s *ReviewStore) ListProductReviews(ctx context.Context, productID uuid.UUID, limit, offset int) ([]domain.Review, int, error) {
	const op = "postgres.review.list"

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM reviews WHERE product_id = $1 AND is_approved`, productID).Scan(&total)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count reviews")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE product_id = $1 AND is_approved
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, productID, limit, offset)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query reviews")
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, domain.Internal(err, op, "failed to scan review")
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to iterate reviews")
	}
	return reviews, total, nil
}

// FindUserReview returns the review a user wrote for a product, if any.
func (s *ReviewStore) FindUserReview(ctx context.Context, productID, userID uuid.UUID) (*domain.Review, error) {
	review, err := scanReview(s.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE product_id = $1 AND user_id = $2`,
		productID, userID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, domain.Internal(err, "postgres.review.find", "failed to load review")
	}
	return review, nil
}

// MarkHelpful records one helpful vote per user and returns the review
// with its updated count. A repeat vote leaves the count unchanged.
func (s *ReviewStore) MarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (*domain.Review, error) {
	const op = "postgres.review.helpful"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO review_helpful_votes (review_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, reviewID, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to record vote")
	}

	if tag.RowsAffected() > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = $1`, reviewID); err != nil {
			return nil, domain.Internal(err, op, "failed to bump helpful count")
		}
	}

	review, err := scanReview(tx.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, reviewID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, domain.Internal(err, op, "failed to load review")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, op, "failed to commit vote")
	}
	return review, nil
}

// ProductRating computes the approved-review aggregate for a product.
func (s *ReviewStore) ProductRating(ctx context.Context, productID uuid.UUID) (float64, int32, error) {
	var avg float64
	var count int32
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(avg(rating), 0), count(*)
		FROM reviews WHERE product_id = $1 AND is_approved`, productID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, domain.Internal(err, "postgres.review.rating", "failed to aggregate rating")
	}
	return avg, count, nil
}

// UpdateProductRating writes the recomputed aggregate onto the product.
func (s *ReviewStore) UpdateProductRating(ctx context.Context, productID uuid.UUID, avg float64, count int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET rating_average = $2, rating_count = $3, updated_at = now() WHERE id = $1`,
		productID, avg, count)
	if err != nil {
		return domain.Internal(err, "postgres.review.rating_write", "failed to update product rating")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// HasPurchased reports whether the user has a delivered order containing
// the product. Backs the verified-purchase badge.
func (s *ReviewStore) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var purchased bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = $3
		)`, userID, productID, domain.OrderStatusDelivered).Scan(&purchased)
	if err != nil {
		return false, domain.Internal(err, "postgres.review.purchased", "failed to check purchase")
	}
	return purchased, nil
}
