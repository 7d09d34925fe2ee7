package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/domain"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error

	ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error)
	AddAddress(ctx context.Context, userID uuid.UUID, address *domain.UserAddress) error
	UpdateAddress(ctx context.Context, userID uuid.UUID, address *domain.UserAddress) error
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	ListWishlist(ctx context.Context, userID uuid.UUID) ([]domain.Product, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

// UserFilter narrows and pages admin user listings.
type UserFilter struct {
	Role   domain.Role
	Search string
	Limit  int
	Offset int
}

// UserService owns account profiles, the address book, and wishlists.
type UserService struct {
	store   UserStore
	catalog CatalogReader
}

// NewUserService creates a new UserService instance.
func NewUserService(store UserStore, catalog CatalogReader) *UserService {
	return &UserService{store: store, catalog: catalog}
}

// GetUser returns one user by id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns users matching the filter plus the total match count.
// Admin surface.
func (s *UserService) ListUsers(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, domain.WrapError(domain.ErrInvalidRole, domain.EINVALID, "user.list", "Unknown role")
	}
	return s.store.ListUsers(ctx, filter)
}

// UpdateProfileParams are the self-service profile fields.
type UpdateProfileParams struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar"`
}

// UpdateProfile lets a user change their own name, phone and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*domain.User, error) {
	if params.Name == "" {
		return nil, domain.NewValidationError("user.profile", "name", "name is required")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = params.Name
	user.Phone = params.Phone
	user.AvatarURL = params.AvatarURL
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Admin surface.
func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidRole, domain.EINVALID, "user.role", "Unknown role")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive activates or deactivates an account. Admin surface.
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListAddresses returns a user's saved addresses.
func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.UserAddress, error) {
	return s.store.ListAddresses(ctx, userID)
}

// AddressParams describes a new or updated address-book entry.
type AddressParams struct {
	Label     string         `json:"label"`
	Address   domain.Address `json:"address"`
	IsDefault bool           `json:"isDefault"`
}

func (p AddressParams) validate() error {
	var err error
	if p.Address.FullName == "" {
		err = domain.AddFieldError(err, "address.fullName", "full name is required")
	}
	if p.Address.Line1 == "" {
		err = domain.AddFieldError(err, "address.line1", "address line is required")
	}
	if p.Address.City == "" {
		err = domain.AddFieldError(err, "address.city", "city is required")
	}
	if p.Address.PostalCode == "" {
		err = domain.AddFieldError(err, "address.postalCode", "postal code is required")
	}
	if p.Address.Country == "" {
		err = domain.AddFieldError(err, "address.country", "country is required")
	}
	return err
}

// AddAddress appends an entry to the user's address book.
func (s *UserService) AddAddress(ctx context.Context, userID uuid.UUID, params AddressParams) (*domain.UserAddress, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	address := &domain.UserAddress{
		ID:        uuid.New(),
		Label:     params.Label,
		Address:   params.Address,
		IsDefault: params.IsDefault,
	}
	if err := s.store.AddAddress(ctx, userID, address); err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress replaces an existing address-book entry.
func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, params AddressParams) (*domain.UserAddress, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	address := &domain.UserAddress{
		ID:        addressID,
		Label:     params.Label,
		Address:   params.Address,
		IsDefault: params.IsDefault,
	}
	if err := s.store.UpdateAddress(ctx, userID, address); err != nil {
		return nil, err
	}
	return address, nil
}

// DeleteAddress removes an address-book entry.
func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.store.DeleteAddress(ctx, userID, addressID)
}

// ListWishlist returns the products in a user's wishlist.
func (s *UserService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	return s.store.ListWishlist(ctx, userID)
}

// AddToWishlist saves a product to the user's wishlist. Adding the same
// product twice is a no-op.
func (s *UserService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return err
	}
	return s.store.AddToWishlist(ctx, userID, productID)
}

// RemoveFromWishlist drops a product from the user's wishlist.
func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.store.RemoveFromWishlist(ctx, userID, productID)
}
