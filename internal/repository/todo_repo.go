package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-todo-list/internal/model"
)

type TodoRepository struct {
	db DBTX
}

func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, title, description, due_date, category, completed, user_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create fails with model.ErrUserNotFound when the owner row is gone.
func (r *TodoRepository) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, nullTime(t), string(t.Category), t.Completed, t.OwnerID, t.CreatedAt)
	if hasPgCode(err, pgForeignKeyViolation) {
		return model.Todo{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos by owner: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos by owner: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) ListAll(ctx context.Context) ([]model.TodoWithOwner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.title, t.description, t.due_date, t.category, t.completed, t.user_id, t.created_at,
		        u.id, u.username, u.email
		 FROM todos t
		 LEFT JOIN users u ON u.id = t.user_id
		 ORDER BY t.created_at, t.id`)
	if err != nil {
		return nil, fmt.Errorf("list all todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.TodoWithOwner, 0)
	for rows.Next() {
		var (
			item                              model.TodoWithOwner
			dueDate                           sql.NullTime
			category                          string
			ownerID, ownerUsername, ownerMail sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &dueDate, &category, &item.Completed,
			&item.OwnerID, &item.CreatedAt, &ownerID, &ownerUsername, &ownerMail); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		item.Category = model.Category(category)
		if dueDate.Valid {
			due := dueDate.Time.UTC()
			item.DueDate = &due
		}
		item.CreatedAt = item.CreatedAt.UTC()
		if ownerID.Valid {
			item.Owner = &model.OwnerSummary{ID: ownerID.String, Username: ownerUsername.String, Email: ownerMail.String}
		}
		todos = append(todos, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (model.Todo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)

	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("find todo: %w", err)
	}
	return t, nil
}

// UpdateOwned writes the mutable fields only while the row still exists and
// still belongs to t.OwnerID.
func (r *TodoRepository) UpdateOwned(ctx context.Context, t model.Todo) (model.Todo, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET title = $3, description = $4, due_date = $5, category = $6, completed = $7
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+todoColumns,
		t.ID, t.OwnerID, t.Title, t.Description, nullTime(t), string(t.Category), t.Completed)

	updated, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

// DeleteOwned deletes in one statement conditioned on id and owner, so a row
// removed concurrently surfaces as model.ErrTodoNotFound.
func (r *TodoRepository) DeleteOwned(ctx context.Context, id string, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if affected == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row rowScanner) (model.Todo, error) {
	var (
		t        model.Todo
		dueDate  sql.NullTime
		category string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &dueDate, &category, &t.Completed, &t.OwnerID, &t.CreatedAt); err != nil {
		return model.Todo{}, err
	}

	t.Category = model.Category(category)
	t.CreatedAt = t.CreatedAt.UTC()
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		t.DueDate = &due
	}
	return t, nil
}

func nullTime(t model.Todo) sql.NullTime {
	if t.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t.DueDate, Valid: true}
}
