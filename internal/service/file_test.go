package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"todoboard/internal/model"
	repoMocks "todoboard/internal/repository/mocks"
)

func TestFileService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		folderID   string
		fileName   string
		setupMocks func(mFolders *repoMocks.MockFolderRepository, mFiles *repoMocks.MockFileRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			folderID: "f1",
			fileName: " Sprint ",
			setupMocks: func(mFolders *repoMocks.MockFolderRepository, mFiles *repoMocks.MockFileRepository) {
				mFolders.On("FindByID", ctx, "u1", "f1").Return(&model.Folder{ID: "f1"}, nil)
				mFiles.On("Create", ctx, mock.MatchedBy(func(f *model.File) bool {
					return f.FolderID == "f1" && f.Name == "Sprint" && f.ID != "" && f.Todos != nil
				})).Return(&model.File{ID: "new", FolderID: "f1", Name: "Sprint"}, nil)
			},
		},
		{
			name:       "blank name",
			folderID:   "f1",
			fileName:   "",
			setupMocks: func(*repoMocks.MockFolderRepository, *repoMocks.MockFileRepository) {},
			wantErr:    ErrInvalidName,
		},
		{
			name:     "folder of another user",
			folderID: "f9",
			fileName: "x",
			setupMocks: func(mFolders *repoMocks.MockFolderRepository, mFiles *repoMocks.MockFileRepository) {
				mFolders.On("FindByID", ctx, "u1", "f9").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "missing folder id",
			fileName:   "x",
			setupMocks: func(*repoMocks.MockFolderRepository, *repoMocks.MockFileRepository) {},
			wantErr:    ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mFolders := new(repoMocks.MockFolderRepository)
			mFiles := new(repoMocks.MockFileRepository)
			svc := NewFileService(mFolders, mFiles, nil, zap.NewNop())
			tt.setupMocks(mFolders, mFiles)

			f, err := svc.Create(ctx, "u1", tt.folderID, tt.fileName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mFiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Sprint", f.Name)
			}
			mFolders.AssertExpectations(t)
			mFiles.AssertExpectations(t)
		})
	}
}

func TestFileService_GetRename(t *testing.T) {
	ctx := context.Background()
	mFiles := new(repoMocks.MockFileRepository)
	svc := NewFileService(nil, mFiles, nil, zap.NewNop())

	mFiles.On("FindByID", ctx, "u1", "a").Return(&model.File{ID: "a", Todos: []model.Todo{{ID: 1}}}, nil)
	f, err := svc.Get(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Len(t, f.Todos, 1)

	mFiles.On("FindByID", ctx, "u1", "zz").Return(nil, sql.ErrNoRows)
	_, err = svc.Get(ctx, "u1", "zz")
	assert.ErrorIs(t, err, ErrNotFound)

	mFiles.On("Rename", ctx, "u1", "a", "Plans").Return(&model.File{ID: "a", Name: "Plans"}, nil)
	f, err = svc.Rename(ctx, "u1", "a", "\tPlans\n")
	require.NoError(t, err)
	assert.Equal(t, "Plans", f.Name)

	_, err = svc.Rename(ctx, "u1", "a", " ")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()

	mFiles := new(repoMocks.MockFileRepository)
	mWs := new(repoMocks.MockWorkspaceRepository)
	wsSvc := NewWorkspaceService(nil, mFiles, mWs, newMetrics(t), zap.NewNop())
	svc := NewFileService(nil, mFiles, wsSvc, zap.NewNop())

	mFiles.On("Delete", ctx, "u1", "a").Return(nil)
	mWs.On("Load", ctx, "u1").Return(ws([]string{"a", "b"}, "a", true), nil)
	mWs.On("Save", ctx, mock.MatchedBy(func(w *model.Workspace) bool {
		return assert.ObjectsAreEqual([]string{"b"}, w.OpenFileIDs) && w.Active() == "b"
	})).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, "u1", "a"))

	mFiles.On("Delete", ctx, "u1", "gone").Return(sql.ErrNoRows)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", "gone"), ErrNotFound)
	mWs.AssertExpectations(t)
}
