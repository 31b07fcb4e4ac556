package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"go-todo-list/internal/model"
)

var todoRowColumns = []string{"id", "title", "description", "due_date", "category", "completed", "user_id", "created_at"}

func TestTodoRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	todo := model.Todo{ID: "t-1", Title: "buy milk", Category: model.CategoryNonUrgent, OwnerID: "u-1", CreatedAt: now}

	mock.ExpectExec(`INSERT INTO todos`).
		WithArgs("t-1", "buy milk", "", sqlmock.AnyArg(), "Non-Urgent", false, "u-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), todo)
	require.NoError(t, err)
	require.Equal(t, todo, created)
}

func TestTodoRepositoryCreateMissingOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectExec(`INSERT INTO todos`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "todos_user_id_fkey"})

	_, err := repo.Create(context.Background(), model.Todo{ID: "t-1", OwnerID: "gone"})
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestTodoRepositoryListByOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	now := time.Now().UTC()
	due := now.Add(24 * time.Hour)
	mock.ExpectQuery(`FROM todos WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(todoRowColumns).
			AddRow("t-1", "a", "", nil, "Urgent", false, "u-1", now).
			AddRow("t-2", "b", "desc", due, "Non-Urgent", true, "u-1", now))

	todos, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	require.Nil(t, todos[0].DueDate)
	require.Equal(t, model.CategoryUrgent, todos[0].Category)
	require.NotNil(t, todos[1].DueDate)
	require.True(t, due.Equal(*todos[1].DueDate))
	require.True(t, todos[1].Completed)
}

func TestTodoRepositoryListByOwnerEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectQuery(`FROM todos WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(todoRowColumns))

	todos, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, todos)
	require.Empty(t, todos)
}

func TestTodoRepositoryListAllJoinsOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	now := time.Now().UTC()
	columns := append(append([]string{}, todoRowColumns...), "id", "username", "email")
	mock.ExpectQuery(`LEFT JOIN users u ON u.id = t.user_id`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("t-1", "a", "", nil, "Urgent", false, "u-1", now, "u-1", "alice", "alice@x.com").
			AddRow("t-2", "b", "", nil, "Non-Urgent", false, "u-2", now, nil, nil, nil))

	todos, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 2)
	require.Equal(t, &model.OwnerSummary{ID: "u-1", Username: "alice", Email: "alice@x.com"}, todos[0].Owner)
	require.Nil(t, todos[1].Owner)
}

func TestTodoRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM todos WHERE id = \$1`).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows(todoRowColumns).AddRow("t-1", "a", "", nil, "Urgent", false, "u-1", now))
	mock.ExpectQuery(`FROM todos WHERE id = \$1`).
		WithArgs("t-9").
		WillReturnRows(sqlmock.NewRows(todoRowColumns))

	todo, err := repo.FindByID(context.Background(), "t-1")
	require.NoError(t, err)
	require.Equal(t, "u-1", todo.OwnerID)

	_, err = repo.FindByID(context.Background(), "t-9")
	require.ErrorIs(t, err, model.ErrTodoNotFound)
}

func TestTodoRepositoryUpdateOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE todos\s+SET title = \$3.*WHERE id = \$1 AND user_id = \$2\s+RETURNING`).
		WithArgs("t-1", "u-1", "new", "", sqlmock.AnyArg(), "Urgent", true).
		WillReturnRows(sqlmock.NewRows(todoRowColumns).AddRow("t-1", "new", "", nil, "Urgent", true, "u-1", now))

	updated, err := repo.UpdateOwned(context.Background(), model.Todo{
		ID: "t-1", OwnerID: "u-1", Title: "new", Category: model.CategoryUrgent, Completed: true,
	})
	require.NoError(t, err)
	require.Equal(t, "new", updated.Title)
	require.True(t, updated.Completed)
}

func TestTodoRepositoryUpdateOwnedLostRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectQuery(`UPDATE todos`).WillReturnRows(sqlmock.NewRows(todoRowColumns))

	_, err := repo.UpdateOwned(context.Background(), model.Todo{ID: "t-1", OwnerID: "u-1"})
	require.ErrorIs(t, err, model.ErrTodoNotFound)
}

func TestTodoRepositoryDeleteOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTodoRepository(db)

	mock.ExpectExec(`DELETE FROM todos WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM todos`).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM todos`).
		WithArgs("t-2", "u-1").
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.DeleteOwned(context.Background(), "t-1", "u-1"))
	require.ErrorIs(t, repo.DeleteOwned(context.Background(), "t-1", "u-1"), model.ErrTodoNotFound)

	err := repo.DeleteOwned(context.Background(), "t-2", "u-1")
	require.ErrorContains(t, err, "delete todo")
	require.NotErrorIs(t, err, model.ErrTodoNotFound)
}
