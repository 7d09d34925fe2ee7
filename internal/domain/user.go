package domain

import (
	"time"

	"github.com/google/uuid"
)

// User-related domain errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrAddressNotFound    = &Error{Code: ENOTFOUND, Message: "Address not found"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "Email already registered"}
	ErrInvalidRole        = &Error{Code: EINVALID, Message: "Unknown role"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrAccountDisabled    = &Error{Code: EFORBIDDEN, Message: "Account is deactivated"}
	ErrAlreadyInWishlist  = &Error{Code: ECONFLICT, Message: "Product already in wishlist"}
)

// Role controls access to admin and editor operations.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleEditor || r == RoleAdmin
}

// CanManageCatalog reports whether the role may create or edit catalog,
// coupon and order records.
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin || r == RoleEditor
}

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	AvatarURL    string    `json:"avatar,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserAddress is a saved address-book entry.
type UserAddress struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label,omitempty"`
	Address   Address   `json:"address"`
	IsDefault bool      `json:"isDefault"`
}
