// Package sqlscan holds the column lists and row scanners shared by the
// database/sql backed repositories.
package sqlscan

import (
	"database/sql"

	"todoboard/internal/model"
)

const (
	FolderColumns = "id, user_id, name, is_expanded, created_at, updated_at"
	FileColumns   = "id, folder_id, user_id, name, created_at, updated_at"
	TodoColumns   = "id, file_id, user_id, text, completed, status, created_at, updated_at"
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

func Folder(s Scanner) (*model.Folder, error) {
	var f model.Folder
	if err := s.Scan(&f.ID, &f.UserID, &f.Name, &f.IsExpanded, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Files = make([]model.File, 0)
	return &f, nil
}

func File(s Scanner) (*model.File, error) {
	var f model.File
	if err := s.Scan(&f.ID, &f.FolderID, &f.UserID, &f.Name, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Todos = make([]model.Todo, 0)
	return &f, nil
}

func Todo(s Scanner) (*model.Todo, error) {
	var (
		t      model.Todo
		status sql.NullString
	)
	if err := s.Scan(&t.ID, &t.FileID, &t.UserID, &t.Text, &t.Completed, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = model.Status(status.String)
	t.Status = t.EffectiveStatus()
	return &t, nil
}

// Folders drains rows into a slice. The caller closes rows.
func Folders(rows *sql.Rows) ([]model.Folder, error) {
	items := make([]model.Folder, 0)
	for rows.Next() {
		f, err := Folder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// Files drains rows into a slice. The caller closes rows.
func Files(rows *sql.Rows) ([]model.File, error) {
	items := make([]model.File, 0)
	for rows.Next() {
		f, err := File(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	return items, rows.Err()
}

// Todos drains rows into a slice. The caller closes rows.
func Todos(rows *sql.Rows) ([]model.Todo, error) {
	items := make([]model.Todo, 0)
	for rows.Next() {
		t, err := Todo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// IDs drains a single string column.
func IDs(rows *sql.Rows) ([]string, error) {
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AffectedOne maps a zero-row result to sql.ErrNoRows.
func AffectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NullString turns an optional value into a driver argument.
func NullString[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

// NullBool turns an optional value into a driver argument.
func NullBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
