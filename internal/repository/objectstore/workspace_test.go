package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todoboard/internal/model"
	"todoboard/internal/storage"
	storeMocks "todoboard/internal/storage/mocks"
)

func TestWorkspaceStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("stored snapshot", func(t *testing.T) {
		ms := new(storeMocks.MockStorage)
		body := io.NopCloser(strings.NewReader(`{"open_file_ids":["a","b"],"active_file_id":"b","sidebar_open":false}`))
		ms.On("Get", ctx, "workspaces/u1.json").Return(body, storage.ObjectInfo{}, nil)

		w, err := NewWorkspaceStore(ms).Load(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", w.UserID)
		assert.Equal(t, []string{"a", "b"}, w.OpenFileIDs)
		assert.Equal(t, "b", w.Active())
		assert.False(t, w.SidebarOpen)
		ms.AssertExpectations(t)
	})

	t.Run("missing snapshot", func(t *testing.T) {
		ms := new(storeMocks.MockStorage)
		ms.On("Get", ctx, "workspaces/u1.json").Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		w, err := NewWorkspaceStore(ms).Load(ctx, "u1")
		assert.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		ms := new(storeMocks.MockStorage)
		ms.On("Get", ctx, "workspaces/u1.json").Return(io.NopCloser(strings.NewReader("{")), storage.ObjectInfo{}, nil)

		_, err := NewWorkspaceStore(ms).Load(ctx, "u1")
		assert.ErrorContains(t, err, "decode workspace")
	})

	t.Run("storage error", func(t *testing.T) {
		ms := new(storeMocks.MockStorage)
		ms.On("Get", ctx, "workspaces/u1.json").Return(nil, storage.ObjectInfo{}, errors.New("timeout"))

		_, err := NewWorkspaceStore(ms).Load(ctx, "u1")
		assert.EqualError(t, err, "get workspace: timeout")
	})
}

func TestWorkspaceStore_Save(t *testing.T) {
	ctx := context.Background()
	ms := new(storeMocks.MockStorage)

	w := model.NewWorkspace("u1")
	w.Open("a")

	ms.On("Put", ctx, "workspaces/u1.json", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.ContentType == "application/json" && o.Size > 0
	})).Return(storage.ObjectInfo{Key: "workspaces/u1.json"}, nil).Once()

	require.NoError(t, NewWorkspaceStore(ms).Save(ctx, w))
	ms.AssertExpectations(t)

	put := ms.Calls[0].Arguments.Get(2).(io.Reader)
	raw, err := io.ReadAll(put)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"open_file_ids":["a"]`)
	assert.Contains(t, string(raw), `"active_file_id":"a"`)
}

func TestWorkspaceStore_Delete(t *testing.T) {
	ctx := context.Background()

	ms := new(storeMocks.MockStorage)
	ms.On("Delete", ctx, "workspaces/u1.json").Return(storage.ErrNotFound).Once()
	assert.NoError(t, NewWorkspaceStore(ms).Delete(ctx, "u1"))

	ms = new(storeMocks.MockStorage)
	ms.On("Delete", ctx, "workspaces/u1.json").Return(errors.New("denied")).Once()
	assert.EqualError(t, NewWorkspaceStore(ms).Delete(ctx, "u1"), "delete workspace: denied")
}

func TestKey(t *testing.T) {
	tests := []struct {
		userID string
		want   string
	}{
		{"u1", "workspaces/u1.json"},
		{"7f1c2a9e-4b1d-4c55-9a53-0b6a4f1e2d3c", "workspaces/7f1c2a9e-4b1d-4c55-9a53-0b6a4f1e2d3c.json"},
		{"../x", "workspaces/..%2Fx.json"},
		{"a/../../b", "workspaces/a%2F..%2F..%2Fb.json"},
		{"..", "workspaces/...json"},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			got := Key(tt.userID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, strings.Count(got, "/"))
		})
	}
}
