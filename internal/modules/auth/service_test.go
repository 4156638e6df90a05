package auth

import (
	"context"
	"testing"
	"time"

	"studiobook/internal/domain"
	"studiobook/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 7
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newAuthService(users *mockUserRepo) *Service {
	return NewService(users, jwt.New("test-secret", time.Hour))
}

func TestRegisterCreatesClientByDefault(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := newAuthService(users).Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		Name:     "New User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "client", resp.User.Role)
	assert.Equal(t, int64(7), resp.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&domain.User{ID: 1, Email: "taken@example.com"}, nil)

	_, err := newAuthService(users).Register(context.Background(), RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
		Name:     "Dup",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginHappyPath(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(&domain.User{
		ID:           7,
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleClient,
	}, nil)

	svc := newAuthService(users)
	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	claims, err := jwt.New("test-secret", time.Hour).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "client", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(&domain.User{
		ID:           7,
		PasswordHash: string(hash),
	}, nil)

	_, err := newAuthService(users).Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := newAuthService(users).Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
