package domain

import (
	"time"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound      = &Error{Code: ENOTFOUND, Message: "Review not found"}
	ErrDuplicateReview     = &Error{Code: ECONFLICT, Message: "You have already reviewed this product"}
	ErrAlreadyMarkedHelpful = &Error{Code: ECONFLICT, Message: "You have already marked this review as helpful"}
	ErrInvalidRating       = &Error{Code: EINVALID, Message: "Rating must be between 1 and 5"}
)

// Review is a customer review of a product. One review per user per
// product; only approved reviews count toward the product rating.
type Review struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product"`
	UserID       uuid.UUID `json:"user"`
	Rating       int32     `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Comment      string    `json:"comment"`
	Images       []Image   `json:"images,omitempty"`
	Verified     bool      `json:"verified"`
	HelpfulCount int32     `json:"helpfulCount"`
	IsApproved   bool      `json:"isApproved"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
