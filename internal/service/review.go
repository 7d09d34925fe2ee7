package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// ReviewStore is the persistence surface the review service needs.
// MarkHelpful must record the vote and bump the counter atomically,
// surfacing ErrAlreadyMarkedHelpful on a repeat vote by the same user.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID, limit, offset int) ([]domain.Review, int, error)
	FindUserReview(ctx context.Context, productID, userID uuid.UUID) (*domain.Review, error)
	MarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (*domain.Review, error)
	ProductRating(ctx context.Context, productID uuid.UUID) (avg float64, count int32, err error)
	UpdateProductRating(ctx context.Context, productID uuid.UUID, avg float64, count int32) error
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// ReviewService owns product reviews and the derived product rating.
type ReviewService struct {
	store   ReviewStore
	catalog CatalogReader
}

// NewReviewService creates a new ReviewService instance.
func NewReviewService(store ReviewStore, catalog CatalogReader) *ReviewService {
	return &ReviewService{store: store, catalog: catalog}
}

// CreateReviewParams describes a new review.
type CreateReviewParams struct {
	ProductID uuid.UUID      `json:"product"`
	UserID    uuid.UUID      `json:"-"`
	Rating    int32          `json:"rating"`
	Title     string         `json:"title,omitempty"`
	Comment   string         `json:"comment"`
	Images    []domain.Image `json:"images,omitempty"`
}

// CreateReview stores a review and recomputes the product's rating
// aggregate. One review per user per product; a verified flag is set when
// the reviewer has a delivered order containing the product.
func (s *ReviewService) CreateReview(ctx context.Context, params CreateReviewParams) (*domain.Review, error) {
	const op = "review.create"

	if params.Rating < 1 || params.Rating > 5 {
		return nil, domain.WrapError(domain.ErrInvalidRating, domain.EINVALID, op, "Rating must be between 1 and 5")
	}
	if params.Comment == "" {
		return nil, domain.NewValidationError(op, "comment", "comment is required")
	}

	if _, err := s.catalog.GetProduct(ctx, params.ProductID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindUserReview(ctx, params.ProductID, params.UserID)
	if err != nil && domain.ErrorCode(err) != domain.ENOTFOUND {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateReview
	}

	verified, err := s.store.HasPurchased(ctx, params.UserID, params.ProductID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:         uuid.New(),
		ProductID:  params.ProductID,
		UserID:     params.UserID,
		Rating:     params.Rating,
		Title:      params.Title,
		Comment:    params.Comment,
		Images:     params.Images,
		Verified:   verified,
		IsApproved: true,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	if err := s.refreshProductRating(ctx, params.ProductID); err != nil {
		return nil, err
	}
	return review, nil
}

// ListProductReviews returns approved reviews for a product, newest first,
// with the total count for pagination.
func (s *ReviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, limit, offset int) ([]domain.Review, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListProductReviews(ctx, productID, limit, offset)
}

// MarkHelpful records a helpful vote. Each user can vote once per review.
func (s *ReviewService) MarkHelpful(ctx context.Context, reviewID, userID uuid.UUID) (*domain.Review, error) {
	return s.store.MarkHelpful(ctx, reviewID, userID)
}

// refreshProductRating recomputes the approved-review aggregate and writes
// it back to the product.
func (s *ReviewService) refreshProductRating(ctx context.Context, productID uuid.UUID) error {
	avg, count, err := s.store.ProductRating(ctx, productID)
	if err != nil {
		return err
	}
	return s.store.UpdateProductRating(ctx, productID, avg, count)
}
