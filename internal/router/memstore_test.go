package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-todo-list/internal/model"
)

// memStore satisfies the service store contracts in memory, mirroring the
// conditional writes of the SQL repositories.
type memStore struct {
	mu    sync.Mutex
	users map[string]model.User
	todos map[string]model.Todo
}

func newMemStore() *memStore {
	return &memStore{users: map[string]model.User{}, todos: map[string]model.Todo{}}
}

type memUsers struct{ *memStore }

type memTodos struct{ *memStore }

func (s memUsers) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return model.ErrUserAlreadyExists
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s memUsers) ExistsByEmailOrUsername(_ context.Context, email string, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s memUsers) FindByIdentifier(_ context.Context, identifier string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var byUsername *model.User
	for _, u := range s.users {
		if u.Email == identifier {
			return u, nil
		}
		if u.Username == identifier {
			match := u
			byUsername = &match
		}
	}
	if byUsername != nil {
		return *byUsername, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s memUsers) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s memUsers) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		u.PasswordHash = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s memUsers) UpdateRole(_ context.Context, id string, role model.Role, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = updatedAt
	s.users[id] = u
	return nil
}

func (s memTodos) Create(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[t.OwnerID]; !ok {
		return model.Todo{}, model.ErrUserNotFound
	}
	s.todos[t.ID] = t
	return t, nil
}

func (s memTodos) ListByOwner(_ context.Context, ownerID string) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Todo, 0)
	for _, t := range s.todos {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memTodos) ListAll(_ context.Context) ([]model.TodoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.TodoWithOwner, 0, len(s.todos))
	for _, t := range s.todos {
		item := model.TodoWithOwner{Todo: t}
		if u, ok := s.users[t.OwnerID]; ok {
			item.Owner = &model.OwnerSummary{ID: u.ID, Username: u.Username, Email: u.Email}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memTodos) FindByID(_ context.Context, id string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return model.Todo{}, model.ErrTodoNotFound
	}
	return t, nil
}

func (s memTodos) UpdateOwned(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.todos[t.ID]
	if !ok || current.OwnerID != t.OwnerID {
		return model.Todo{}, model.ErrTodoNotFound
	}
	s.todos[t.ID] = t
	return t, nil
}

func (s memTodos) DeleteOwned(_ context.Context, id string, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.todos[id]
	if !ok || current.OwnerID != ownerID {
		return model.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}
