// Package objectstore persists workspace snapshots as JSON objects, one per
// user, next to the relational data of the postgres backend.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"todoboard/internal/model"
	"todoboard/internal/repository"
	"todoboard/internal/storage"
)

const (
	prefix      = "workspaces"
	contentType = "application/json"
)

var _ repository.WorkspaceRepository = (*WorkspaceStore)(nil)

type WorkspaceStore struct {
	store storage.Storage
}

func NewWorkspaceStore(store storage.Storage) *WorkspaceStore {
	return &WorkspaceStore{store: store}
}

// Key returns the object key holding a user's workspace. The user id is
// escaped into a single segment so it always stays under the prefix.
func Key(userID string) string {
	return prefix + "/" + url.PathEscape(userID) + ".json"
}

func (r *WorkspaceStore) Load(ctx context.Context, userID string) (*model.Workspace, error) {
	body, _, err := r.store.Get(ctx, Key(userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	defer body.Close()

	var w model.Workspace
	if err := json.NewDecoder(body).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode workspace: %w", err)
	}
	w.UserID = userID
	return &w, nil
}

func (r *WorkspaceStore) Save(ctx context.Context, w *model.Workspace) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode workspace: %w", err)
	}
	_, err = r.store.Put(ctx, Key(w.UserID), bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceStore) Delete(ctx context.Context, userID string) error {
	err := r.store.Delete(ctx, Key(userID))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}
