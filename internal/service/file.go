package service

import (
	"context"

	"go.uber.org/zap"

	"todoboard/internal/model"
	"todoboard/internal/repository"
)

// FileService manages the files inside folders.
type FileService interface {
	Create(ctx context.Context, userID, folderID, name string) (*model.File, error)
	// Get returns the file with its todos.
	Get(ctx context.Context, userID, id string) (*model.File, error)
	Rename(ctx context.Context, userID, id, name string) (*model.File, error)
	// Delete removes the file with its todos and closes it in the workspace.
	Delete(ctx context.Context, userID, id string) error
}

type fileService struct {
	folders   repository.FolderRepository
	files     repository.FileRepository
	workspace WorkspaceService
	log       *zap.Logger
}

func NewFileService(folders repository.FolderRepository, files repository.FileRepository, workspace WorkspaceService, log *zap.Logger) FileService {
	return &fileService{
		folders:   folders,
		files:     files,
		workspace: workspace,
		log:       log.With(zap.String("component", "files")),
	}
}

func (s *fileService) Create(ctx context.Context, userID, folderID, name string) (*model.File, error) {
	if err := requireIDs(userID, folderID); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.folders.FindByID(ctx, userID, folderID); err != nil {
		return nil, notFound(err)
	}
	ts := now()
	return s.files.Create(ctx, &model.File{
		ID:        newID(),
		FolderID:  folderID,
		UserID:    userID,
		Name:      name,
		Todos:     []model.Todo{},
		CreatedAt: ts,
		UpdatedAt: ts,
	})
}

func (s *fileService) Get(ctx context.Context, userID, id string) (*model.File, error) {
	if err := requireIDs(userID, id); err != nil {
		return nil, err
	}
	f, err := s.files.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *fileService) Rename(ctx context.Context, userID, id, name string) (*model.File, error) {
	if err := requireIDs(userID, id); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := s.files.Rename(ctx, userID, id, name)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (s *fileService) Delete(ctx context.Context, userID, id string) error {
	if err := requireIDs(userID, id); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, userID, id); err != nil {
		return notFound(err)
	}
	if err := s.workspace.Forget(ctx, userID, id); err != nil {
		s.log.Warn("workspace prune failed",
			zap.String("event", "file_delete"),
			zap.String("file_id", id),
			zap.Error(err),
		)
	}
	return nil
}
