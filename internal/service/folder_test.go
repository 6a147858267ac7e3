package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"todoboard/internal/model"
	repoMocks "todoboard/internal/repository/mocks"
)

func TestFolderService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      string
		setupMocks func(m *repoMocks.MockFolderRepository)
		wantErr    error
	}{
		{
			name:  "trims and expands",
			input: "  Work  ",
			setupMocks: func(m *repoMocks.MockFolderRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(f *model.Folder) bool {
					return f.Name == "Work" && f.IsExpanded && f.UserID == "u1" && f.ID != "" && !f.CreatedAt.IsZero()
				})).Return(&model.Folder{ID: "new", Name: "Work", IsExpanded: true}, nil)
			},
		},
		{
			name:       "blank name",
			input:      "   ",
			setupMocks: func(m *repoMocks.MockFolderRepository) {},
			wantErr:    ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mFolders := new(repoMocks.MockFolderRepository)
			svc := NewFolderService(mFolders, nil, nil, zap.NewNop())
			tt.setupMocks(mFolders)

			f, err := svc.Create(ctx, "u1", tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Work", f.Name)
			}
			mFolders.AssertExpectations(t)
		})
	}
}

func TestFolderService_RenameToggle(t *testing.T) {
	ctx := context.Background()
	mFolders := new(repoMocks.MockFolderRepository)
	svc := NewFolderService(mFolders, nil, nil, zap.NewNop())

	name := "Projects"
	mFolders.On("Update", ctx, "u1", "f1", model.FolderUpdate{Name: &name}).Return(&model.Folder{ID: "f1", Name: name}, nil)
	f, err := svc.Rename(ctx, "u1", "f1", " Projects ")
	require.NoError(t, err)
	assert.Equal(t, "Projects", f.Name)

	collapsed := false
	mFolders.On("FindByID", ctx, "u1", "f1").Return(&model.Folder{ID: "f1", IsExpanded: true}, nil)
	mFolders.On("Update", ctx, "u1", "f1", model.FolderUpdate{IsExpanded: &collapsed}).Return(&model.Folder{ID: "f1", IsExpanded: false}, nil)
	f, err = svc.Toggle(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.False(t, f.IsExpanded)

	mFolders.On("FindByID", ctx, "u1", "missing").Return(nil, sql.ErrNoRows)
	_, err = svc.Toggle(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	mFolders.On("Update", ctx, "u1", "missing", mock.Anything).Return(nil, sql.ErrNoRows)
	_, err = svc.Rename(ctx, "u1", "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Rename(ctx, "u1", "", "x")
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = svc.Rename(ctx, "", "f1", "x")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestFolderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("prunes workspace", func(t *testing.T) {
		mFolders := new(repoMocks.MockFolderRepository)
		mFiles := new(repoMocks.MockFileRepository)
		mWs := new(repoMocks.MockWorkspaceRepository)
		wsSvc := NewWorkspaceService(mFolders, mFiles, mWs, newMetrics(t), zap.NewNop())
		svc := NewFolderService(mFolders, mFiles, wsSvc, zap.NewNop())

		mFiles.On("ListIDsByFolder", ctx, "u1", "f1").Return([]string{"a", "b"}, nil)
		mFolders.On("Delete", ctx, "u1", "f1").Return(nil)
		mWs.On("Load", ctx, "u1").Return(ws([]string{"c", "a", "b"}, "b", true), nil)
		mWs.On("Save", ctx, mock.MatchedBy(func(w *model.Workspace) bool {
			return assert.ObjectsAreEqual([]string{"c"}, w.OpenFileIDs) && w.Active() == "c"
		})).Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, "u1", "f1"))
		mWs.AssertExpectations(t)
	})

	t.Run("empty folder skips workspace", func(t *testing.T) {
		mFolders := new(repoMocks.MockFolderRepository)
		mFiles := new(repoMocks.MockFileRepository)
		mWs := new(repoMocks.MockWorkspaceRepository)
		wsSvc := NewWorkspaceService(mFolders, mFiles, mWs, newMetrics(t), zap.NewNop())
		svc := NewFolderService(mFolders, mFiles, wsSvc, zap.NewNop())

		mFiles.On("ListIDsByFolder", ctx, "u1", "f1").Return([]string{}, nil)
		mFolders.On("Delete", ctx, "u1", "f1").Return(nil)

		require.NoError(t, svc.Delete(ctx, "u1", "f1"))
		mWs.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
	})

	t.Run("prune failure is logged only", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		mFolders := new(repoMocks.MockFolderRepository)
		mFiles := new(repoMocks.MockFileRepository)
		mWs := new(repoMocks.MockWorkspaceRepository)
		wsSvc := NewWorkspaceService(mFolders, mFiles, mWs, newMetrics(t), zap.NewNop())
		svc := NewFolderService(mFolders, mFiles, wsSvc, zap.New(core))

		mFiles.On("ListIDsByFolder", ctx, "u1", "f1").Return([]string{"a"}, nil)
		mFolders.On("Delete", ctx, "u1", "f1").Return(nil)
		mWs.On("Load", ctx, "u1").Return(nil, errors.New("offline"))

		require.NoError(t, svc.Delete(ctx, "u1", "f1"))
		assert.Equal(t, 1, logs.FilterMessage("workspace prune failed").Len())
	})

	t.Run("missing folder", func(t *testing.T) {
		mFolders := new(repoMocks.MockFolderRepository)
		mFiles := new(repoMocks.MockFileRepository)
		svc := NewFolderService(mFolders, mFiles, nil, zap.NewNop())

		mFiles.On("ListIDsByFolder", ctx, "u1", "nope").Return([]string{}, nil)
		mFolders.On("Delete", ctx, "u1", "nope").Return(sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "u1", "nope"), ErrNotFound)
	})
}

func TestFolderService_List(t *testing.T) {
	ctx := context.Background()
	mFolders := new(repoMocks.MockFolderRepository)
	svc := NewFolderService(mFolders, nil, nil, zap.NewNop())

	mFolders.On("Tree", ctx, "u1").Return(sampleTree(), nil)
	tree, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tree, 2)

	_, err = svc.List(ctx, "")
	assert.ErrorIs(t, err, ErrUserRequired)
}
