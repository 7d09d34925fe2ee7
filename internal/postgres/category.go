package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// CategoryStore persists the category tree.
type CategoryStore struct {
	pool *pgxpool.Pool
}

var _ service.CategoryStore = (*CategoryStore)(nil)

// NewCategoryStore creates a new CategoryStore instance.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

const categoryColumns = `id, name, slug, description, image_url, parent_id, is_active, sort_order, created_at, updated_at`

// CreateCategory inserts a category.
func (s *CategoryStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	const op = "postgres.category.create"

	query := `
		INSERT INTO categories (id, name, slug, description, image_url, parent_id, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		category.ID, category.Name, category.Slug, category.Description,
		category.ImageURL, category.ParentID, category.IsActive,
		category.SortOrder, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "categories_slug_key") {
			return domain.ErrDuplicateCategoryName
		}
		return domain.Internal(err, op, "failed to insert category")
	}
	return nil
}

// GetCategory returns one category by ID.
func (s *CategoryStore) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var c domain.Category
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL,
		&c.ParentID, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.Internal(err, "postgres.category.get", "failed to load category")
	}
	return &c, nil
}

// ListCategories returns categories ordered for display.
func (s *CategoryStore) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	const op = "postgres.category.list"

	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query categories")
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL,
			&c.ParentID, &c.IsActive, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, domain.Internal(err, op, "failed to scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate categories")
	}
	return categories, nil
}

// UpdateCategory rewrites all mutable columns.
func (s *CategoryStore) UpdateCategory(ctx context.Context, category *domain.Category) error {
	const op = "postgres.category.update"

	query := `
		UPDATE categories SET
			name = $2, slug = $3, description = $4, image_url = $5,
			parent_id = $6, is_active = $7, sort_order = $8, updated_at = $9
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		category.ID, category.Name, category.Slug, category.Description,
		category.ImageURL, category.ParentID, category.IsActive,
		category.SortOrder, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "categories_slug_key") {
			return domain.ErrDuplicateCategoryName
		}
		return domain.Internal(err, op, "failed to update category")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category. Children are detached by the schema's
// ON DELETE SET NULL; products referencing the category block the delete.
func (s *CategoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "postgres.category.delete", "failed to delete category")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
