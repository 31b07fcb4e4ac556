package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/model"
	"go-todo-list/internal/repository"
	"go-todo-list/pkg/apierror"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MockUserRepository, *auth.TokenIssuer) {
	t.Helper()

	users := new(repository.MockUserRepository)
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)

	svc := NewAuthService(users, auth.NewPasswordHasher(bcrypt.MinCost), issuer)
	return svc, users, issuer
}

func requireAPIError(t *testing.T, err error, code string) *apierror.APIError {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a plain user with a hashed password", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		users.On("ExistsByEmailOrUsername", mock.Anything, "alice@example.com", "alice").Return(false, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Role == model.RoleUser &&
				u.PasswordHash != "Secret123" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Secret123")) == nil
		})).Return(nil)

		user, err := svc.Register(context.Background(), model.RegisterRequest{
			Email: " alice@example.com ", Username: "alice", Password: "Secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotEmpty(t, user.ID)
		users.AssertExpectations(t)
	})

	t.Run("missing fields are reported together", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), model.RegisterRequest{})

		apiErr := requireAPIError(t, err, apierror.CodeValidation)
		assert.Equal(t, "email, username and password are required", apiErr.Message)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("bad email and short password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), model.RegisterRequest{Email: "nope", Username: "a", Password: "Secret123"})
		assert.Equal(t, "invalid email format", requireAPIError(t, err, apierror.CodeValidation).Message)

		_, err = svc.Register(context.Background(), model.RegisterRequest{Email: "a@b.co", Username: "a", Password: "short"})
		assert.Equal(t, "password must be at least 8 characters", requireAPIError(t, err, apierror.CodeValidation).Message)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email: "a@b.co", Username: "a", Password: strings.Repeat("x", 73),
		})

		requireAPIError(t, err, apierror.CodeValidation)
		users.AssertNotCalled(t, "ExistsByEmailOrUsername", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("existing email or username conflicts", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("ExistsByEmailOrUsername", mock.Anything, "alice@example.com", "alice2").Return(true, nil)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email: "alice@example.com", Username: "alice2", Password: "Secret123",
		})

		apiErr := requireAPIError(t, err, apierror.CodeConflict)
		assert.Equal(t, "user with that email or username already exists", apiErr.Message)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on insert conflicts", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("ExistsByEmailOrUsername", mock.Anything, "bob@example.com", "bob").Return(false, nil)
		users.On("Create", mock.Anything, mock.Anything).Return(model.ErrUserAlreadyExists)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Email: "bob@example.com", Username: "bob", Password: "Secret123",
		})

		requireAPIError(t, err, apierror.CodeConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	alice := model.User{
		ID: "6a1f0c64-7cbb-4a4e-9a2e-0f5b1d1c2e01", Email: "alice@example.com", Username: "alice",
		PasswordHash: string(digest), Role: model.RoleUser,
	}

	t.Run("issues a token carrying the stored identity", func(t *testing.T) {
		svc, users, issuer := newAuthService(t)
		users.On("FindByIdentifier", mock.Anything, "alice").Return(alice, nil)

		resp, err := svc.Login(context.Background(), model.LoginRequest{Identifier: "alice", Password: "Secret123"})
		require.NoError(t, err)

		claims, err := issuer.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, alice.Identity(), claims.Identity())
		assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)
	})

	t.Run("wrong password and unknown identifier look the same", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("FindByIdentifier", mock.Anything, "alice").Return(alice, nil)
		users.On("FindByIdentifier", mock.Anything, "ghost").Return(model.User{}, model.ErrUserNotFound)

		_, wrongPass := svc.Login(context.Background(), model.LoginRequest{Identifier: "alice", Password: "Wrong1234"})
		_, unknown := svc.Login(context.Background(), model.LoginRequest{Identifier: "ghost", Password: "Secret123"})

		a := requireAPIError(t, wrongPass, apierror.CodeUnauthenticated)
		b := requireAPIError(t, unknown, apierror.CodeUnauthenticated)
		assert.Equal(t, "invalid credentials", a.Message)
		assert.Equal(t, a.Message, b.Message)
	})

	t.Run("both fields required", func(t *testing.T) {
		svc, users, _ := newAuthService(t)

		_, err := svc.Login(context.Background(), model.LoginRequest{Identifier: "alice"})

		apiErr := requireAPIError(t, err, apierror.CodeValidation)
		assert.Equal(t, "password is required", apiErr.Message)
		users.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		boom := errors.New("connection reset")
		users.On("FindByIdentifier", mock.Anything, "alice").Return(model.User{}, boom)

		_, err := svc.Login(context.Background(), model.LoginRequest{Identifier: "alice", Password: "Secret123"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_EnsureUser(t *testing.T) {
	t.Run("creates when absent", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("ExistsByEmailOrUsername", mock.Anything, "admin@example.com", "admin").Return(false, nil)
		users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool { return u.Role == model.RoleAdmin })).Return(nil)

		created, err := svc.EnsureUser(context.Background(), "admin@example.com", "admin", "AdminPass123", model.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("skips existing accounts", func(t *testing.T) {
		svc, users, _ := newAuthService(t)
		users.On("ExistsByEmailOrUsername", mock.Anything, "admin@example.com", "admin").Return(true, nil)

		created, err := svc.EnsureUser(context.Background(), "admin@example.com", "admin", "AdminPass123", model.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		svc, _, _ := newAuthService(t)

		_, err := svc.EnsureUser(context.Background(), "x@example.com", "x", "Password123", model.Role("root"))
		requireAPIError(t, err, apierror.CodeValidation)
	})
}
