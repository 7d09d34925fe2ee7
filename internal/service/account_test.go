package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbracken/njord/internal/auth"
	"github.com/mbracken/njord/internal/domain"
)

type memUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memUserStore) GetUser(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserStore) ListUsers(_ context.Context, filter UserFilter) ([]domain.User, int, error) {
	var result []domain.User
	for _, user := range m.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		result = append(result, *user)
	}
	return result, len(result), nil
}

func (m *memUserStore) CreateUser(_ context.Context, user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) UpdateUser(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) ListAddresses(_ context.Context, _ uuid.UUID) ([]domain.UserAddress, error) {
	return nil, nil
}

func (m *memUserStore) AddAddress(_ context.Context, _ uuid.UUID, _ *domain.UserAddress) error {
	return nil
}

func (m *memUserStore) UpdateAddress(_ context.Context, _ uuid.UUID, _ *domain.UserAddress) error {
	return nil
}

func (m *memUserStore) DeleteAddress(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (m *memUserStore) ListWishlist(_ context.Context, _ uuid.UUID) ([]domain.Product, error) {
	return nil, nil
}

func (m *memUserStore) AddToWishlist(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (m *memUserStore) RemoveFromWishlist(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func newAccountFixture() (*AccountService, *memUserStore) {
	store := newMemUserStore()
	return NewAccountService(store, auth.NewJWTService("test-secret", time.Hour)), store
}

func TestAccountService_RegisterAndLogin(t *testing.T) {
	svc, store := newAccountFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{
		Name:     "Alex Doe",
		Email:    " Alex@Example.com ",
		Password: "hunter22hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alex@example.com", result.User.Email)
	assert.Equal(t, domain.RoleCustomer, result.User.Role)
	assert.NotEqual(t, "hunter22hunter22", store.users[result.User.ID].PasswordHash)

	login, err := svc.Login(ctx, "alex@example.com", "hunter22hunter22")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAccountFixture()
	ctx := context.Background()

	params := RegisterParams{Name: "Alex", Email: "alex@example.com", Password: "hunter22hunter22"}
	_, err := svc.Register(ctx, params)
	require.NoError(t, err)

	_, err = svc.Register(ctx, params)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc, _ := newAccountFixture()

	_, err := svc.Register(context.Background(), RegisterParams{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	svc, _ := newAccountFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Name: "Alex", Email: "alex@example.com", Password: "hunter22hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alex@example.com", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown email yields the same error as a bad password.
	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAccountService_Login_DisabledAccount(t *testing.T) {
	svc, store := newAccountFixture()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Name: "Alex", Email: "alex@example.com", Password: "hunter22hunter22"})
	require.NoError(t, err)
	store.users[result.User.ID].IsActive = false

	_, err = svc.Login(ctx, "alex@example.com", "hunter22hunter22")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}
