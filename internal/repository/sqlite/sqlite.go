// Package sqlite implements the repositories on a local SQLite file for
// single-user offline use. Queries mirror the postgres package with
// numbered placeholders and timestamps supplied by the application.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"todoboard/internal/model"
	"todoboard/internal/repository"
	"todoboard/internal/repository/sqlscan"
)

var now = func() time.Time { return time.Now().UTC() }

// Store bundles the SQLite repositories over one connection pool.
type Store struct {
	Folders    *FolderSQLite
	Files      *FileSQLite
	Todos      *TodoSQLite
	Workspaces *WorkspaceSQLite
}

// New wires every SQLite repository to db.
func New(db *sql.DB) *Store {
	todos := &TodoSQLite{db: db}
	return &Store{
		Folders:    &FolderSQLite{db: db},
		Files:      &FileSQLite{db: db, todos: todos},
		Todos:      todos,
		Workspaces: &WorkspaceSQLite{db: db},
	}
}

var (
	_ repository.FolderRepository    = (*FolderSQLite)(nil)
	_ repository.FileRepository      = (*FileSQLite)(nil)
	_ repository.TodoRepository      = (*TodoSQLite)(nil)
	_ repository.WorkspaceRepository = (*WorkspaceSQLite)(nil)
)

type FolderSQLite struct {
	db *sql.DB
}

func (r *FolderSQLite) Tree(ctx context.Context, userID string) (model.Tree, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqlscan.FolderColumns+` FROM folders WHERE user_id = ?1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	folders, err := sqlscan.Folders(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT `+sqlscan.FileColumns+` FROM files WHERE user_id = ?1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	files, err := sqlscan.Files(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT `+sqlscan.TodoColumns+` FROM todos WHERE user_id = ?1 ORDER BY id`, userID)
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

func (r *FolderSQLite) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `INSERT INTO folders (id, user_id, name, is_expanded, created_at, updated_at) VALUES (?1, ?2, ?3, ?4, ?5, ?6)`
	if _, err := r.db.ExecContext(ctx, q, f.ID, f.UserID, f.Name, f.IsExpanded, f.CreatedAt.UTC(), f.UpdatedAt.UTC()); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, f.UserID, f.ID)
}

func (r *FolderSQLite) FindByID(ctx context.Context, userID, id string) (*model.Folder, error) {
	const q = `SELECT ` + sqlscan.FolderColumns + ` FROM folders WHERE id = ?1 AND user_id = ?2`
	return sqlscan.Folder(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *FolderSQLite) Update(ctx context.Context, userID, id string, upd model.FolderUpdate) (*model.Folder, error) {
	const q = `
		UPDATE folders
		SET name = COALESCE(?3, name),
		    is_expanded = COALESCE(?4, is_expanded),
		    updated_at = ?5
		WHERE id = ?1 AND user_id = ?2`
	res, err := r.db.ExecContext(ctx, q, id, userID, sqlscan.NullString(upd.Name), sqlscan.NullBool(upd.IsExpanded), now())
	if err != nil {
		return nil, err
	}
	if err := sqlscan.AffectedOne(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID, id)
}

func (r *FolderSQLite) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?1 AND user_id = ?2`, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}

type FileSQLite struct {
	db    *sql.DB
	todos *TodoSQLite
}

func (r *FileSQLite) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `INSERT INTO files (id, folder_id, user_id, name, created_at, updated_at) VALUES (?1, ?2, ?3, ?4, ?5, ?6)`
	if _, err := r.db.ExecContext(ctx, q, f.ID, f.FolderID, f.UserID, f.Name, f.CreatedAt.UTC(), f.UpdatedAt.UTC()); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, f.UserID, f.ID)
}

func (r *FileSQLite) FindByID(ctx context.Context, userID, id string) (*model.File, error) {
	const q = `SELECT ` + sqlscan.FileColumns + ` FROM files WHERE id = ?1 AND user_id = ?2`
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

func (r *FileSQLite) ListIDsByFolder(ctx context.Context, userID, folderID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM files WHERE folder_id = ?1 AND user_id = ?2 ORDER BY created_at, id`, folderID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlscan.IDs(rows)
}

func (r *FileSQLite) Rename(ctx context.Context, userID, id, name string) (*model.File, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET name = ?3, updated_at = ?4 WHERE id = ?1 AND user_id = ?2`, id, userID, name, now())
	if err != nil {
		return nil, err
	}
	if err := sqlscan.AffectedOne(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID, id)
}

func (r *FileSQLite) Touch(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET updated_at = ?3 WHERE id = ?1 AND user_id = ?2`, id, userID, now())
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}

func (r *FileSQLite) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?1 AND user_id = ?2`, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}

type TodoSQLite struct {
	db *sql.DB
}

func (r *TodoSQLite) Create(ctx context.Context, t *model.Todo) (*model.Todo, error) {
	const q = `
		INSERT INTO todos (file_id, user_id, text, completed, status, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)`
	res, err := r.db.ExecContext(ctx, q,
		t.FileID,
		t.UserID,
		t.Text,
		t.EffectiveStatus() == model.StatusCompleted,
		string(t.EffectiveStatus()),
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, t.UserID, id)
}

func (r *TodoSQLite) FindByID(ctx context.Context, userID string, id int64) (*model.Todo, error) {
	const q = `SELECT ` + sqlscan.TodoColumns + ` FROM todos WHERE id = ?1 AND user_id = ?2`
	return sqlscan.Todo(r.db.QueryRowContext(ctx, q, id, userID))
}

func (r *TodoSQLite) ListByFile(ctx context.Context, userID, fileID string) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqlscan.TodoColumns+` FROM todos WHERE file_id = ?1 AND user_id = ?2 ORDER BY id`, fileID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return sqlscan.Todos(rows)
}

func (r *TodoSQLite) Update(ctx context.Context, userID string, id int64, upd model.TodoUpdate) (*model.Todo, error) {
	const q = `
		UPDATE todos
		SET text = COALESCE(?3, text),
		    status = COALESCE(?4, status),
		    completed = (COALESCE(?4, status) = 'completed'),
		    updated_at = ?5
		WHERE id = ?1 AND user_id = ?2`
	res, err := r.db.ExecContext(ctx, q, id, userID, sqlscan.NullString(upd.Text), sqlscan.NullString(upd.Status), now())
	if err != nil {
		return nil, err
	}
	if err := sqlscan.AffectedOne(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, userID, id)
}

func (r *TodoSQLite) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?1 AND user_id = ?2`, id, userID)
	if err != nil {
		return err
	}
	return sqlscan.AffectedOne(res)
}

// WorkspaceSQLite keeps workspace snapshots as JSON in the workspaces table.
type WorkspaceSQLite struct {
	db *sql.DB
}

func (r *WorkspaceSQLite) Load(ctx context.Context, userID string) (*model.Workspace, error) {
	var state string
	err := r.db.QueryRowContext(ctx, `SELECT state FROM workspaces WHERE user_id = ?1`, userID).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var w model.Workspace
	if err := json.Unmarshal([]byte(state), &w); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	w.UserID = userID
	return &w, nil
}

func (r *WorkspaceSQLite) Save(ctx context.Context, w *model.Workspace) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}
	const q = `
		INSERT INTO workspaces (user_id, state, updated_at) VALUES (?1, ?2, ?3)
		ON CONFLICT (user_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, q, w.UserID, string(b), now())
	return err
}

func (r *WorkspaceSQLite) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE user_id = ?1`, userID)
	return err
}
