package postgres

import (
	"context"
	"database/sql"

	"todoboard/internal/model"
	"todoboard/internal/repository"
	"todoboard/internal/repository/sqlscan"
)

// TodoPostgres is a PostgreSQL implementation of repository.TodoRepository.
// Todo ids come from the BIGSERIAL sequence.
type TodoPostgres struct {
	db *sql.DB
}

// NewTodoPostgres creates a new TodoPostgres repository.
func NewTodoPostgres(db *sql.DB) *TodoPostgres {
	return &TodoPostgres{db: db}
}

var _ repository.TodoRepository = (*TodoPostgres)(nil)

func (r *TodoPostgres) Create(ctx context.Context, t *model.Todo) (*model.Todo, error) {
	const q = `
		INSERT INTO todos (file_id, user_id, text, completed, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + sqlscan.TodoColumns
	status := t.EffectiveStatus()
	row := r.db.QueryRowContext(ctx, q,
		t.FileID,
		t.UserID,
		t.Text,
		status == model.StatusCompleted,
		string(status),
		t.CreatedAt,
		t.UpdatedAt,
	)
	return sqlscan.Todo(row)
}

func (r *TodoPostgres) FindByID(ctx context.Context, userID string, id int64) (*model.Todo, error) {
	const q = `SELECT ` + sqlscan.TodoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	return sqlscan.Todo(r.db.QueryRowContext(ctx, q, id, userID))
}

// ListByFile returns the todos of a file in insertion order.
func (r *TodoPostgres) ListByFile(ctx context.Context, userID, fileID string) ([]model.Todo, error) {
	const q = `SELECT ` + sqlscan.TodoColumns + ` FROM todos WHERE file_id = $1 AND user_id = $2 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, fileID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlscan.Todos(rows)
}

// Update changes text and/or status; completed follows status.
func (r *TodoPostgres) Update(ctx context.Context, userID string, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	const q = `
		UPDATE todos
		SET text = COALESCE($3, text),
		    status = COALESCE($4, status),
		    completed = COALESCE($4, status) = 'completed',
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + sqlscan.TodoColumns
	row := r.db.QueryRowContext(ctx, q, id, userID, sqlscan.NullString(upd.Text), sqlscan.NullString(upd.Status))
	return sqlscan.Todo(row)
}

func (r *TodoPostgres) Delete(ctx context.Context, userID string, id int64) error {
	const q = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}
