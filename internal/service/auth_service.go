package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/model"
	"go-todo-list/internal/util"
	"go-todo-list/internal/validation"
	"go-todo-list/pkg/apierror"
)

type userStore interface {
	Create(ctx context.Context, u model.User) error
	ExistsByEmailOrUsername(ctx context.Context, email string, username string) (bool, error)
	FindByIdentifier(ctx context.Context, identifier string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role, updatedAt time.Time) error
}

type passwordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, digest string) bool
}

type tokenIssuer interface {
	Issue(identity model.Identity) (string, time.Time, error)
}

var errInvalidCredentials = apierror.Unauthenticated(model.ErrInvalidCredentials.Error())

type AuthService struct {
	users  userStore
	hasher passwordHasher
	tokens tokenIssuer
	now    func() time.Time
}

func NewAuthService(users userStore, hasher passwordHasher, tokens tokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register creates a plain user account. It never issues a token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = util.CleanText(req.Username, false)

	if err := validation.Struct(req); err != nil {
		return model.User{}, err
	}

	return s.createUser(ctx, req.Email, req.Username, req.Password, model.RoleUser)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	req.Identifier = strings.TrimSpace(req.Identifier)
	if err := validation.Struct(req); err != nil {
		return model.LoginResponse{}, err
	}

	user, err := s.users.FindByIdentifier(ctx, req.Identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResponse{}, errInvalidCredentials
	}
	if err != nil {
		return model.LoginResponse{}, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return model.LoginResponse{}, errInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	return model.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// EnsureUser creates the account unless its email or username is taken.
// The boolean reports whether a row was written.
func (s *AuthService) EnsureUser(ctx context.Context, email string, username string, password string, role model.Role) (bool, error) {
	if !role.Valid() {
		return false, apierror.Validation("role must be one of: user, admin", string(role))
	}

	req := model.RegisterRequest{Email: strings.TrimSpace(email), Username: util.CleanText(username, false), Password: password}
	if err := validation.Struct(req); err != nil {
		return false, err
	}

	_, err := s.createUser(ctx, req.Email, req.Username, req.Password, role)
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Code == apierror.CodeConflict {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, email string, username string, password string, role model.Role) (model.User, error) {
	if len(password) > auth.MaxPasswordBytes {
		return model.User{}, apierror.Validation(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes), "password")
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, apierror.Conflict(model.ErrUserAlreadyExists.Error())
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique indexes still guard against a concurrent registration.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, apierror.Conflict(model.ErrUserAlreadyExists.Error())
		}
		return model.User{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "role", role)
	return user, nil
}
