package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"todoboard/internal/model"
	"todoboard/internal/service"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) List(ctx context.Context, userID string) (model.Tree, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Tree), args.Error(1)
}

func (m *MockFolderService) Create(ctx context.Context, userID, name string) (*model.Folder, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Rename(ctx context.Context, userID, id, name string) (*model.Folder, error) {
	args := m.Called(ctx, userID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Toggle(ctx context.Context, userID, id string) (*model.Folder, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Create(ctx context.Context, userID, folderID, name string) (*model.File, error) {
	args := m.Called(ctx, userID, folderID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, userID, id string) (*model.File, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Rename(ctx context.Context, userID, id, name string) (*model.File, error) {
	args := m.Called(ctx, userID, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) Add(ctx context.Context, userID, fileID, text string) (*model.Todo, error) {
	args := m.Called(ctx, userID, fileID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) Toggle(ctx context.Context, userID string, id int64) (*model.Todo, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) SetStatus(ctx context.Context, userID string, id int64, status string) (*model.Todo, error) {
	args := m.Called(ctx, userID, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) UpdateText(ctx context.Context, userID string, id int64, text string) (*model.Todo, error) {
	args := m.Called(ctx, userID, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *MockTodoService) Delete(ctx context.Context, userID string, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTodoService) Board(ctx context.Context, userID, fileID, query string) (*service.Board, error) {
	args := m.Called(ctx, userID, fileID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Board), args.Error(1)
}

type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Load(ctx context.Context, userID string) (*service.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockWorkspaceService) Open(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Close(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Activate(ctx context.Context, userID, fileID string) (*model.Workspace, error) {
	args := m.Called(ctx, userID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) ToggleSidebar(ctx context.Context, userID string) (*model.Workspace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Forget(ctx context.Context, userID string, fileIDs ...string) error {
	args := m.Called(ctx, userID, fileIDs)
	return args.Error(0)
}

func (m *MockWorkspaceService) Reset(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, userID string, raw []byte) (*service.ImportResult, error) {
	args := m.Called(ctx, userID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}
