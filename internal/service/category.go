package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// CategoryStore is the persistence surface the category service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// CategoryService owns the category tree.
type CategoryService struct {
	store CategoryStore
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

// CategoryParams describes a new or updated category.
type CategoryParams struct {
	Name        string
	Description string
	ImageURL    string
	ParentID    *uuid.UUID
	IsActive    bool
	SortOrder   int32
}

func (p CategoryParams) validate() error {
	if p.Name == "" {
		return domain.NewValidationError("category", "name", "name is required")
	}
	return nil
}

// CreateCategory stores a new category with a slug derived from its name.
func (s *CategoryService) CreateCategory(ctx context.Context, params CategoryParams) (*domain.Category, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        params.Name,
		Slug:        domain.Slugify(params.Name),
		Description: params.Description,
		ImageURL:    params.ImageURL,
		ParentID:    params.ParentID,
		IsActive:    params.IsActive,
		SortOrder:   params.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory returns one category by id.
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// ListCategories returns categories ordered by sort order. The public
// surface passes activeOnly; the admin surface lists everything.
func (s *CategoryService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return s.store.ListCategories(ctx, activeOnly)
}

// UpdateCategory replaces a category's attributes, re-deriving the slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, params CategoryParams) (*domain.Category, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = params.Name
	category.Slug = domain.Slugify(params.Name)
	category.Description = params.Description
	category.ImageURL = params.ImageURL
	category.ParentID = params.ParentID
	category.IsActive = params.IsActive
	category.SortOrder = params.SortOrder
	category.UpdatedAt = time.Now()

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Products keep their category id;
// listings simply stop resolving it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteCategory(ctx, id)
}
