package postgres

import (
	"context"
	"database/sql"

	"todoboard/internal/model"
	"todoboard/internal/repository"
	"todoboard/internal/repository/sqlscan"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

// Tree loads folders, files and todos of a user with one query each and
// nests them in memory.
func (r *FolderPostgres) Tree(ctx context.Context, userID string) (model.Tree, error) {
	const qFolders = `SELECT ` + sqlscan.FolderColumns + ` FROM folders WHERE user_id = $1 ORDER BY created_at, id`
	const qFiles = `SELECT ` + sqlscan.FileColumns + ` FROM files WHERE user_id = $1 ORDER BY created_at, id`
	const qTodos = `SELECT ` + sqlscan.TodoColumns + ` FROM todos WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, qFolders, userID)
	if err != nil {
		return nil, err
	}
	folders, err := sqlscan.Folders(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, qFiles, userID)
	if err != nil {
		return nil, err
	}
	files, err := sqlscan.Files(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, qTodos, userID)
	if err != nil {
		return nil, err
	}
	todos, err := sqlscan.Todos(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	return repository.AssembleTree(folders, files, todos), nil
}

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, user_id, name, is_expanded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + sqlscan.FolderColumns
	row := r.db.QueryRowContext(ctx, q, f.ID, f.UserID, f.Name, f.IsExpanded, f.CreatedAt, f.UpdatedAt)
	return sqlscan.Folder(row)
}

// FindByID fetches a single folder owned by the user.
func (r *FolderPostgres) FindByID(ctx context.Context, userID, id string) (*model.Folder, error) {
	const q = `SELECT ` + sqlscan.FolderColumns + ` FROM folders WHERE id = $1 AND user_id = $2`
	return sqlscan.Folder(r.db.QueryRowContext(ctx, q, id, userID))
}

// Update renames and/or expands the folder.
func (r *FolderPostgres) Update(ctx context.Context, userID, id string, upd model.FolderUpdate) (*model.Folder, error) {
	const q = `
		UPDATE folders
		SET name = COALESCE($3, name),
		    is_expanded = COALESCE($4, is_expanded),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + sqlscan.FolderColumns
	row := r.db.QueryRowContext(ctx, q, id, userID, sqlscan.NullString(upd.Name), sqlscan.NullBool(upd.IsExpanded))
	return sqlscan.Folder(row)
}

// Delete removes a folder by ID. Files and todos are removed by ON DELETE CASCADE.
func (r *FolderPostgres) Delete(ctx context.Context, userID, id string) error {
	const q = `DELETE FROM folders WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}
