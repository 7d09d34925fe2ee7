package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// UserStore persists accounts, their address books, and wishlists.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ service.UserStore = (*UserStore)(nil)

// NewUserStore creates a new UserStore instance.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, name, email, password_hash, phone, avatar_url, role, is_active, created_at, updated_at`

// GetUser returns one user by ID.
func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUserWhere(ctx, "id = $1", id)
}

// GetUserByEmail returns one user by normalized email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUserWhere(ctx, "email = $1", email)
}

func (s *UserStore) getUserWhere(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.AvatarURL,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "postgres.user.get", "failed to load user")
	}
	return &u, nil
}

// ListUsers returns users matching the filter plus the total match count.
func (s *UserStore) ListUsers(ctx context.Context, filter service.UserFilter) ([]domain.User, int, error) {
	const op = "postgres.user.list"

	where := " WHERE 1=1"
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Role != "" {
		where += " AND role = " + arg(filter.Role)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where += fmt.Sprintf(" AND (name ILIKE %s OR email ILIKE %s)", p, p)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to count users")
	}

	query := "SELECT " + userColumns + " FROM users" + where +
		" ORDER BY created_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, domain.Internal(err, op, "failed to query users")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.AvatarURL,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, domain.Internal(err, op, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.Internal(err, op, "failed to iterate users")
	}
	return users, total, nil
}

// CreateUser inserts an account.
func (s *UserStore) CreateUser(ctx context.Context, user *domain.User) error {
	const op = "postgres.user.create"

	query := `
		INSERT INTO users (id, name, email, password_hash, phone, avatar_url, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.AvatarURL, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailTaken
		}
		return domain.Internal(err, op, "failed to insert user")
	}
	return nil
}

// UpdateUser rewrites all mutable columns.
func (s *UserStore) UpdateUser(ctx context.Context, user *domain.User) error {
	const op = "postgres.user.update"

	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, phone = $5,
			avatar_url = $6, role = $7, is_active = $8, updated_at = $9
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.AvatarURL, user.Role, user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrEmailTaken
		}
		return domain.Internal(err, op, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListAddresses returns a user's saved addresses, default first.
func (s *UserStore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error) {
	const op = "postgres.address.list"

	rows, err := s.pool.Query(ctx, `
		SELECT id, label, address, is_default
		FROM user_addresses WHERE user_id = $1
		ORDER BY is_default DESC, id`, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query addresses")
	}
	defer rows.Close()

	var addresses []domain.UserAddress
	for rows.Next() {
		var a domain.UserAddress
		var payload []byte
		if err := rows.Scan(&a.ID, &a.Label, &payload, &a.IsDefault); err != nil {
			return nil, domain.Internal(err, op, "failed to scan address")
		}
		if err := json.Unmarshal(payload, &a.Address); err != nil {
			return nil, domain.Internal(err, op, "failed to decode address")
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate addresses")
	}
	return addresses, nil
}

// AddAddress inserts an address-book entry. A new default demotes any
// existing default in the same transaction.
func (s *UserStore) AddAddress(ctx context.Context, userID uuid.UUID, address *domain.UserAddress) error {
	const op = "postgres.address.add"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if address.IsDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE user_addresses SET is_default = FALSE WHERE user_id = $1`, userID); err != nil {
			return domain.Internal(err, op, "failed to clear default address")
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_addresses (id, user_id, label, address, is_default)
		VALUES ($1, $2, $3, $4, $5)`,
		address.ID, userID, address.Label, mustJSON(address.Address), address.IsDefault)
	if err != nil {
		return domain.Internal(err, op, "failed to insert address")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit address")
	}
	return nil
}

// UpdateAddress rewrites an address-book entry the user owns.
func (s *UserStore) UpdateAddress(ctx context.Context, userID uuid.UUID, address *domain.UserAddress) error {
	const op = "postgres.address.update"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if address.IsDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE user_addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`,
			userID, address.ID); err != nil {
			return domain.Internal(err, op, "failed to clear default address")
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE user_addresses SET label = $3, address = $4, is_default = $5
		WHERE id = $1 AND user_id = $2`,
		address.ID, userID, address.Label, mustJSON(address.Address), address.IsDefault)
	if err != nil {
		return domain.Internal(err, op, "failed to update address")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAddressNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit address")
	}
	return nil
}

// DeleteAddress removes an address-book entry the user owns.
func (s *UserStore) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return domain.Internal(err, "postgres.address.delete", "failed to delete address")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

// ListWishlist returns the products on a user's wishlist, most recently
// added first.
func (s *UserStore) ListWishlist(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	const op = "postgres.wishlist.list"

	query := `
		SELECT p.id, p.name, p.slug, p.description, p.price_cents, p.compare_price_cents,
			p.category_id, p.subcategory, p.tags, p.images, p.variants, COALESCE(p.sku, ''),
			p.stock, p.low_stock_threshold, p.track_inventory, p.free_shipping,
			p.rating_average, p.rating_count, p.featured, p.is_active,
			COALESCE(p.created_by, '00000000-0000-0000-0000-000000000000'),
			p.created_at, p.updated_at
		FROM products p
		JOIN wishlist_items w ON w.product_id = p.id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query wishlist")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan wishlist product")
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate wishlist")
	}
	return products, nil
}

// AddToWishlist saves a product to the wishlist. Re-adding is a no-op.
func (s *UserStore) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, productID)
	if err != nil {
		return domain.Internal(err, "postgres.wishlist.add", "failed to add wishlist item")
	}
	return nil
}

// RemoveFromWishlist removes a product from the wishlist.
func (s *UserStore) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return domain.Internal(err, "postgres.wishlist.remove", "failed to remove wishlist item")
	}
	return nil
}
