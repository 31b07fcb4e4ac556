package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/model"
	"go-todo-list/internal/util"
	"go-todo-list/internal/validation"
	"go-todo-list/pkg/apierror"
)

type todoStore interface {
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	ListAll(ctx context.Context) ([]model.TodoWithOwner, error)
	FindByID(ctx context.Context, id string) (model.Todo, error)
	UpdateOwned(ctx context.Context, t model.Todo) (model.Todo, error)
	DeleteOwned(ctx context.Context, id string, ownerID string) error
}

type TodoService struct {
	todos todoStore
	now   func() time.Time
}

func NewTodoService(todos todoStore) *TodoService {
	return &TodoService{todos: todos, now: time.Now}
}

// List returns every todo with its owner summary for admins and the actor's
// own todos for everyone else.
func (s *TodoService) List(ctx context.Context, actor model.Identity) ([]model.TodoWithOwner, error) {
	if actor.IsAdmin() {
		return s.todos.ListAll(ctx)
	}

	own, err := s.todos.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]model.TodoWithOwner, 0, len(own))
	for _, t := range own {
		out = append(out, model.TodoWithOwner{Todo: t})
	}
	return out, nil
}

func (s *TodoService) Create(ctx context.Context, actor model.Identity, req model.CreateTodoRequest) (model.Todo, error) {
	req.Title = util.CleanText(req.Title, false)
	req.Description = cleanOptional(req.Description, true)
	if err := validation.Struct(req); err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Category:  model.CategoryNonUrgent,
		OwnerID:   actor.ID,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Category != nil {
		todo.Category = model.Category(*req.Category)
	}
	if req.DueDate != nil {
		due, err := validation.ParseDueDate(*req.DueDate)
		if err != nil {
			return model.Todo{}, apierror.Validation("dueDate must be an ISO 8601 date", "dueDate")
		}
		todo.DueDate = &due
	}

	created, err := s.todos.Create(ctx, todo)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Todo{}, apierror.NotFound(model.ErrUserNotFound.Error(), actor.ID)
	}
	if err != nil {
		return model.Todo{}, err
	}

	slog.Info("todo created", "todo_id", created.ID, "user_id", actor.ID)
	return created, nil
}

// Update applies the fields present in req. The owner never changes.
func (s *TodoService) Update(ctx context.Context, actor model.Identity, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	if err := validateTodoID(id); err != nil {
		return model.Todo{}, err
	}
	req.Title = cleanOptional(req.Title, false)
	req.Description = cleanOptional(req.Description, true)
	if err := validation.Struct(req); err != nil {
		return model.Todo{}, err
	}

	current, err := s.authorizedTodo(ctx, actor, id)
	if err != nil {
		return model.Todo{}, err
	}

	next := current
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Description != nil {
		next.Description = *req.Description
	}
	if req.Category != nil {
		next.Category = model.Category(*req.Category)
	}
	if req.Completed != nil {
		next.Completed = *req.Completed
	}
	if req.DueDate != nil {
		due, err := validation.ParseDueDate(*req.DueDate)
		if err != nil {
			return model.Todo{}, apierror.Validation("dueDate must be an ISO 8601 date", "dueDate")
		}
		next.DueDate = &due
	}

	updated, err := s.todos.UpdateOwned(ctx, next)
	if errors.Is(err, model.ErrTodoNotFound) {
		return model.Todo{}, apierror.NotFound(model.ErrTodoNotFound.Error(), id)
	}
	if err != nil {
		return model.Todo{}, err
	}

	slog.Info("todo updated", "todo_id", id, "user_id", actor.ID)
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, actor model.Identity, id string) error {
	if err := validateTodoID(id); err != nil {
		return err
	}

	current, err := s.authorizedTodo(ctx, actor, id)
	if err != nil {
		return err
	}

	// A concurrent delete between lookup and here surfaces as not found.
	err = s.todos.DeleteOwned(ctx, id, current.OwnerID)
	if errors.Is(err, model.ErrTodoNotFound) {
		return apierror.NotFound(model.ErrTodoNotFound.Error(), id)
	}
	if err != nil {
		return err
	}

	slog.Info("todo deleted", "todo_id", id, "user_id", actor.ID)
	return nil
}

func (s *TodoService) authorizedTodo(ctx context.Context, actor model.Identity, id string) (model.Todo, error) {
	current, err := s.todos.FindByID(ctx, id)
	if errors.Is(err, model.ErrTodoNotFound) {
		return model.Todo{}, apierror.NotFound(model.ErrTodoNotFound.Error(), id)
	}
	if err != nil {
		return model.Todo{}, err
	}

	if err := auth.AuthorizeOwner(actor, current.OwnerID); err != nil {
		slog.Warn("todo access denied", "todo_id", id, "user_id", actor.ID)
		return model.Todo{}, apierror.Forbidden(model.ErrForbidden.Error())
	}

	return current, nil
}

func cleanOptional(s *string, multiline bool) *string {
	if s == nil {
		return nil
	}
	cleaned := util.CleanText(*s, multiline)
	return &cleaned
}

func validateTodoID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apierror.Validation("invalid todo id", id)
	}
	return nil
}
