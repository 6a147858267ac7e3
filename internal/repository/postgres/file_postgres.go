package postgres

import (
	"context"
	"database/sql"

	"todoboard/internal/model"
	"todoboard/internal/repository"
	"todoboard/internal/repository/sqlscan"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db    *sql.DB
	todos *TodoPostgres
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db, todos: NewTodoPostgres(db)}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, folder_id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + sqlscan.FileColumns
	row := r.db.QueryRowContext(ctx, q, f.ID, f.FolderID, f.UserID, f.Name, f.CreatedAt, f.UpdatedAt)
	return sqlscan.File(row)
}

// FindByID fetches a file and its todos.
func (r *FilePostgres) FindByID(ctx context.Context, userID, id string) (*model.File, error) {
	const q = `SELECT ` + sqlscan.FileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	f, err := sqlscan.File(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		return nil, err
	}
	todos, err := r.todos.ListByFile(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f.Todos = todos
	return f, nil
}

func (r *FilePostgres) ListIDsByFolder(ctx context.Context, userID, folderID string) ([]string, error) {
	const q = `SELECT id FROM files WHERE folder_id = $1 AND user_id = $2 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, folderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlscan.IDs(rows)
}

// Rename changes the file name and returns the file with its todos.
func (r *FilePostgres) Rename(ctx context.Context, userID, id, name string) (*model.File, error) {
	const q = `UPDATE files SET name = $3, updated_at = now() WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, name)
	if err != nil {
		return nil, err
	}
	if err := sqlscan.AffectedOne(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID, id)
}

func (r *FilePostgres) Touch(ctx context.Context, userID, id string) error {
	const q = `UPDATE files SET updated_at = now() WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}

// Delete removes a file by ID. Todos are removed by ON DELETE CASCADE.
func (r *FilePostgres) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}
