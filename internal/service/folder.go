package service

import (
	"context"

	"go.uber.org/zap"

	"todoboard/internal/model"
	"todoboard/internal/repository"
)

// FolderService manages the top level of the tree.
type FolderService interface {
	// List returns the user's whole tree.
	List(ctx context.Context, userID string) (model.Tree, error)
	Create(ctx context.Context, userID, name string) (*model.Folder, error)
	Rename(ctx context.Context, userID, id, name string) (*model.Folder, error)
	// Toggle flips the expanded flag.
	Toggle(ctx context.Context, userID, id string) (*model.Folder, error)
	// Delete removes the folder with its files and todos, and closes the
	// removed files in the user's workspace.
	Delete(ctx context.Context, userID, id string) error
}

type folderService struct {
	folders   repository.FolderRepository
	files     repository.FileRepository
	workspace WorkspaceService
	log       *zap.Logger
}

func NewFolderService(folders repository.FolderRepository, files repository.FileRepository, workspace WorkspaceService, log *zap.Logger) FolderService {
	return &folderService{
		folders:   folders,
		files:     files,
		workspace: workspace,
		log:       log.With(zap.String("component", "folders")),
	}
}

func (s *folderService) List(ctx context.Context, userID string) (model.Tree, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.folders.Tree(ctx, userID)
}

func (s *folderService) Create(ctx context.Context, userID, name string) (*model.Folder, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	ts := now()
	return s.folders.Create(ctx, &model.Folder{
		ID:         newID(),
		UserID:     userID,
		Name:       name,
		IsExpanded: true,
		Files:      []model.File{},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	})
}

func (s *folderService) Rename(ctx context.Context, userID, id, name string) (*model.Folder, error) {
	if err := requireIDs(userID, id); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := s.folders.Update(ctx, userID, id, model.FolderUpdate{Name: &name})
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *folderService) Toggle(ctx context.Context, userID, id string) (*model.Folder, error) {
	if err := requireIDs(userID, id); err != nil {
		return nil, err
	}
	cur, err := s.folders.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	expanded := !cur.IsExpanded
	f, err := s.folders.Update(ctx, userID, id, model.FolderUpdate{IsExpanded: &expanded})
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *folderService) Delete(ctx context.Context, userID, id string) error {
	if err := requireIDs(userID, id); err != nil {
		return err
	}
	fileIDs, err := s.files.ListIDsByFolder(ctx, userID, id)
	if err != nil {
		s.log.Warn("list folder files failed",
			zap.String("event", "folder_delete"),
			zap.String("folder_id", id),
			zap.Error(err),
		)
	}
	if err := s.folders.Delete(ctx, userID, id); err != nil {
		return notFound(err)
	}
	if len(fileIDs) > 0 {
		if err := s.workspace.Forget(ctx, userID, fileIDs...); err != nil {
			s.log.Warn("workspace prune failed",
				zap.String("event", "folder_delete"),
				zap.String("folder_id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}
