package domain

import (
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = &Error{Code: ENOTFOUND, Message: "Category not found"}
	ErrDuplicateCategoryName = &Error{Code: ECONFLICT, Message: "Category name already exists"}
)

// Category is a catalog grouping. Categories form a tree via ParentID.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"image,omitempty"`
	ParentID    *uuid.UUID `json:"parent,omitempty"`
	IsActive    bool       `json:"isActive"`
	SortOrder   int32      `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
