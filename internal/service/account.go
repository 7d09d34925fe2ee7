package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mbracken/njord/internal/auth"
	"github.com/mbracken/njord/internal/domain"
)

// AccountService handles registration and login.
type AccountService struct {
	store UserStore
	jwt   *auth.JWTService
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(store UserStore, jwt *auth.JWTService) *AccountService {
	return &AccountService{store: store, jwt: jwt}
}

// AuthResult bundles the signed token with the authenticated user.
type AuthResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// RegisterParams describes a new account.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns a signed token for it. New
// accounts always start as customers; roles are promoted separately.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	const op = "account.register"

	var verr error
	if params.Name == "" {
		verr = domain.AddFieldError(verr, "name", "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		verr = domain.AddFieldError(verr, "email", "a valid email is required")
	}
	if len(params.Password) < auth.MinPasswordLength {
		verr = domain.AddFieldError(verr, "password", "must be at least 8 characters")
	}
	if verr != nil {
		return nil, verr
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if domain.ErrorCode(err) != domain.ENOTFOUND {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to hash password")
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// Login verifies credentials and returns a signed token. Lookup and
// password failures collapse into one unauthorized error so the endpoint
// does not reveal which emails exist.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	return s.issueToken(user)
}

func (s *AccountService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "account.token", "failed to sign token")
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
