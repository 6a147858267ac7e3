// Package repository contains the data access abstractions for folders,
// files, todos and workspaces. Implementations live in subpackages
// (postgres, sqlite, objectstore).
//
// Lookups and mutations of a row that does not exist, or that belongs to
// another user, return sql.ErrNoRows.
package repository

import (
	"context"

	"todoboard/internal/model"
)

// FolderRepository persists folders and reads the whole tree of a user.
type FolderRepository interface {
	// Tree returns the user's folders ordered by creation, each with its
	// files and their todos in insertion order.
	Tree(ctx context.Context, userID string) (model.Tree, error)

	// Create inserts a folder. The caller provides ID and timestamps.
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// FindByID returns a folder without its files.
	FindByID(ctx context.Context, userID, id string) (*model.Folder, error)

	// Update applies the non-nil fields of upd and bumps updated_at.
	Update(ctx context.Context, userID, id string, upd model.FolderUpdate) (*model.Folder, error)

	// Delete removes the folder; files and todos go with it.
	Delete(ctx context.Context, userID, id string) error
}

// FileRepository persists files.
type FileRepository interface {
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns the file with its todos.
	FindByID(ctx context.Context, userID, id string) (*model.File, error)

	// ListIDsByFolder returns the ids of the files in a folder.
	ListIDsByFolder(ctx context.Context, userID, folderID string) ([]string, error)

	Rename(ctx context.Context, userID, id, name string) (*model.File, error)

	// Touch bumps updated_at after one of the file's todos changed.
	Touch(ctx context.Context, userID, id string) error

	Delete(ctx context.Context, userID, id string) error
}

// TodoRepository persists todos. IDs are assigned by the store.
type TodoRepository interface {
	Create(ctx context.Context, t *model.Todo) (*model.Todo, error)
	FindByID(ctx context.Context, userID string, id int64) (*model.Todo, error)
	ListByFile(ctx context.Context, userID, fileID string) ([]model.Todo, error)
	Update(ctx context.Context, userID string, id int64, upd model.TodoUpdate) (*model.Todo, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// WorkspaceRepository persists per-user session state.
type WorkspaceRepository interface {
	// Load returns the stored workspace, or (nil, nil) if there is none.
	Load(ctx context.Context, userID string) (*model.Workspace, error)
	Save(ctx context.Context, w *model.Workspace) error
	// Delete removes the stored workspace; a missing one is not an error.
	Delete(ctx context.Context, userID string) error
}
