package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-todo-list/internal/model"
	"go-todo-list/internal/validation"
	"go-todo-list/pkg/apierror"
)

type AdminService struct {
	users userStore
	todos todoStore
	now   func() time.Time
}

func NewAdminService(users userStore, todos todoStore) *AdminService {
	return &AdminService{users: users, todos: todos, now: time.Now}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) ListTodos(ctx context.Context) ([]model.TodoWithOwner, error) {
	return s.todos.ListAll(ctx)
}

// ChangeRole takes effect for the target's next login; tokens already issued
// keep the role they were signed with until they expire.
func (s *AdminService) ChangeRole(ctx context.Context, actor model.Identity, id string, req model.ChangeRoleRequest) error {
	if _, err := uuid.Parse(id); err != nil {
		return apierror.Validation("invalid user id", id)
	}
	if err := validation.Struct(req); err != nil {
		return err
	}

	role := model.Role(req.Role)
	err := s.users.UpdateRole(ctx, id, role, s.now().UTC().Truncate(time.Microsecond))
	if errors.Is(err, model.ErrUserNotFound) {
		return apierror.NotFound(model.ErrUserNotFound.Error(), id)
	}
	if err != nil {
		return err
	}

	slog.Info("user role changed", "target_id", id, "role", role, "by", actor.ID)
	return nil
}
