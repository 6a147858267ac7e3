package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"todoboard/internal/http/middleware"
	"todoboard/internal/model"
	"todoboard/internal/service"
	serviceMocks "todoboard/internal/service/mocks"
)

const testUser = "user-1"

type testMocks struct {
	folders   *serviceMocks.MockFolderService
	files     *serviceMocks.MockFileService
	todos     *serviceMocks.MockTodoService
	workspace *serviceMocks.MockWorkspaceService
	importer  *serviceMocks.MockImportService
}

func newTestApp(t *testing.T) (*fiber.App, testMocks) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := testMocks{
		folders:   new(serviceMocks.MockFolderService),
		files:     new(serviceMocks.MockFileService),
		todos:     new(serviceMocks.MockTodoService),
		workspace: new(serviceMocks.MockWorkspaceService),
		importer:  new(serviceMocks.MockImportService),
	}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, db, Services{
		Folders:   m.folders,
		Files:     m.files,
		Todos:     m.todos,
		Workspace: m.workspace,
		Import:    m.importer,
	}, func(c *fiber.Ctx) error {
		c.Locals(middleware.UserIDLocalKey, testUser)
		return c.Next()
	})
	return app, m
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFolderRoutes(t *testing.T) {
	id := uuid.NewString()

	t.Run("list", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("List", mock.Anything, testUser).Return(model.Tree{{ID: id, Name: "Work", Files: []model.File{}}}, nil).Once()

		resp := do(t, app, http.MethodGet, "/api/v1/folders", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var tree []model.Folder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&tree))
		require.Len(t, tree, 1)
		assert.Equal(t, "Work", tree[0].Name)
	})

	t.Run("create", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("Create", mock.Anything, testUser, "Work").Return(&model.Folder{ID: id, Name: "Work", IsExpanded: true}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/folders", nameRequest{Name: "Work"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		m.folders.AssertExpectations(t)
	})

	t.Run("create with blank name", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("Create", mock.Anything, testUser, "").Return(nil, service.ErrInvalidName).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/folders", nameRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_NAME", decodeError(t, resp).Error.Code)
	})

	t.Run("create with malformed body", func(t *testing.T) {
		app, _ := newTestApp(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/folders", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})

	t.Run("rename not found", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("Rename", mock.Anything, testUser, id, "x").Return(nil, service.ErrNotFound).Once()

		resp := do(t, app, http.MethodPatch, "/api/v1/folders/"+id, nameRequest{Name: "x"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("toggle", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("Toggle", mock.Anything, testUser, id).Return(&model.Folder{ID: id, IsExpanded: false}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/folders/"+id+"/toggle", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("Delete", mock.Anything, testUser, id).Return(nil).Once()

		resp := do(t, app, http.MethodDelete, "/api/v1/folders/"+id, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		app, m := newTestApp(t)

		resp := do(t, app, http.MethodDelete, "/api/v1/folders/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
		m.folders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("internal error is not leaked", func(t *testing.T) {
		app, m := newTestApp(t)
		m.folders.On("List", mock.Anything, testUser).Return(nil, errors.New("pq: connection refused")).Once()

		resp := do(t, app, http.MethodGet, "/api/v1/folders", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "internal server error", decodeError(t, resp).Error.Message)
	})
}

func TestFileRoutes(t *testing.T) {
	folderID, fileID := uuid.NewString(), uuid.NewString()

	t.Run("create in folder", func(t *testing.T) {
		app, m := newTestApp(t)
		m.files.On("Create", mock.Anything, testUser, folderID, "Sprint").Return(&model.File{ID: fileID, FolderID: folderID, Name: "Sprint"}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/folders/"+folderID+"/files", nameRequest{Name: "Sprint"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var f model.File
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
		assert.Equal(t, folderID, f.FolderID)
	})

	t.Run("get", func(t *testing.T) {
		app, m := newTestApp(t)
		m.files.On("Get", mock.Anything, testUser, fileID).Return(&model.File{ID: fileID, Todos: []model.Todo{{ID: 1, Text: "x"}}}, nil).Once()

		resp := do(t, app, http.MethodGet, "/api/v1/files/"+fileID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rename", func(t *testing.T) {
		app, m := newTestApp(t)
		m.files.On("Rename", mock.Anything, testUser, fileID, "Plans").Return(&model.File{ID: fileID, Name: "Plans"}, nil).Once()

		resp := do(t, app, http.MethodPatch, "/api/v1/files/"+fileID, nameRequest{Name: "Plans"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete missing", func(t *testing.T) {
		app, m := newTestApp(t)
		m.files.On("Delete", mock.Anything, testUser, fileID).Return(service.ErrNotFound).Once()

		resp := do(t, app, http.MethodDelete, "/api/v1/files/"+fileID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTodoRoutes(t *testing.T) {
	fileID := uuid.NewString()

	t.Run("board with query", func(t *testing.T) {
		app, m := newTestApp(t)
		board := service.GroupByStatus(fileID, "docs", []model.Todo{{ID: 1, Text: "docs", Status: model.StatusNew}})
		m.todos.On("Board", mock.Anything, testUser, fileID, "docs").Return(board, nil).Once()

		resp := do(t, app, http.MethodGet, "/api/v1/files/"+fileID+"/board?q=docs", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got service.Board
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, 1, got.Total)
		assert.Len(t, got.Columns, 3)
	})

	t.Run("add", func(t *testing.T) {
		app, m := newTestApp(t)
		m.todos.On("Add", mock.Anything, testUser, fileID, "ship").Return(&model.Todo{ID: 9, Text: "ship", Status: model.StatusNew}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/files/"+fileID+"/todos", textRequest{Text: "ship"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("update text", func(t *testing.T) {
		app, m := newTestApp(t)
		m.todos.On("UpdateText", mock.Anything, testUser, int64(9), "ship it").Return(&model.Todo{ID: 9, Text: "ship it"}, nil).Once()

		resp := do(t, app, http.MethodPatch, "/api/v1/todos/9", textRequest{Text: "ship it"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("toggle", func(t *testing.T) {
		app, m := newTestApp(t)
		m.todos.On("Toggle", mock.Anything, testUser, int64(9)).Return(&model.Todo{ID: 9, Status: model.StatusCompleted, Completed: true}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/todos/9/toggle", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got model.Todo
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.True(t, got.Completed)
	})

	t.Run("set invalid status", func(t *testing.T) {
		app, m := newTestApp(t)
		m.todos.On("SetStatus", mock.Anything, testUser, int64(9), "blocked").Return(nil, service.ErrInvalidStatus).Once()

		resp := do(t, app, http.MethodPut, "/api/v1/todos/9/status", statusRequest{Status: "blocked"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS", decodeError(t, resp).Error.Code)
	})

	t.Run("delete", func(t *testing.T) {
		app, m := newTestApp(t)
		m.todos.On("Delete", mock.Anything, testUser, int64(9)).Return(nil).Once()

		resp := do(t, app, http.MethodDelete, "/api/v1/todos/9", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("invalid todo id", func(t *testing.T) {
		app, _ := newTestApp(t)
		for _, p := range []string{"/api/v1/todos/abc", "/api/v1/todos/0", "/api/v1/todos/-3"} {
			resp := do(t, app, http.MethodDelete, p, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, p)
		}
	})
}

func TestSessionRoutes(t *testing.T) {
	fileID := uuid.NewString()

	t.Run("load", func(t *testing.T) {
		app, m := newTestApp(t)
		m.workspace.On("Load", mock.Anything, testUser).Return(&service.Session{
			Folders:      model.Tree{},
			OpenFiles:    []model.File{{ID: fileID}},
			ActiveFileID: &fileID,
			SidebarOpen:  true,
		}, nil).Once()

		resp := do(t, app, http.MethodGet, "/api/v1/session", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var s service.Session
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		require.NotNil(t, s.ActiveFileID)
		assert.Equal(t, fileID, *s.ActiveFileID)
	})

	t.Run("reset", func(t *testing.T) {
		app, m := newTestApp(t)
		m.workspace.On("Reset", mock.Anything, testUser).Return(nil).Once()

		resp := do(t, app, http.MethodDelete, "/api/v1/session", nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("sidebar", func(t *testing.T) {
		app, m := newTestApp(t)
		m.workspace.On("ToggleSidebar", mock.Anything, testUser).Return(&model.Workspace{SidebarOpen: false, OpenFileIDs: []string{}}, nil).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/session/sidebar", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("open close activate", func(t *testing.T) {
		app, m := newTestApp(t)
		w := model.NewWorkspace(testUser)
		w.Open(fileID)
		m.workspace.On("Open", mock.Anything, testUser, fileID).Return(w, nil).Once()
		m.workspace.On("Close", mock.Anything, testUser, fileID).Return(model.NewWorkspace(testUser), nil).Once()
		m.workspace.On("Activate", mock.Anything, testUser, fileID).Return(nil, service.ErrNotOpen).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/session/open/"+fileID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, app, http.MethodDelete, "/api/v1/session/open/"+fileID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = do(t, app, http.MethodPost, "/api/v1/session/active/"+fileID, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "NOT_OPEN", decodeError(t, resp).Error.Code)
		m.workspace.AssertExpectations(t)
	})
}

func TestImportRoute(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		app, m := newTestApp(t)
		raw := []byte(`{"folders":[]}`)
		m.importer.On("Import", mock.Anything, testUser, raw).Return(&service.ImportResult{
			Folders: map[string]string{}, Files: map[string]string{}, Todos: map[string]int64{},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("schema violation", func(t *testing.T) {
		app, m := newTestApp(t)
		m.importer.On("Import", mock.Anything, testUser, mock.Anything).
			Return(nil, &service.SchemaError{Path: "/folders/0/name", Message: "does not match pattern"}).Once()

		resp := do(t, app, http.MethodPost, "/api/v1/import", map[string]any{"folders": []any{map[string]any{"id": "x", "name": " "}}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_PAYLOAD", body.Error.Code)
		assert.Equal(t, "/folders/0/name: does not match pattern", body.Error.Message)
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Get("/unauthorized", func(c *fiber.Ctx) error { return fiber.ErrUnauthorized })
	app.Get("/limited", func(c *fiber.Ctx) error { return fiber.ErrTooManyRequests })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/unauthorized", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"/limited", http.StatusTooManyRequests, "RATE_LIMITED"},
		{"/boom", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/nowhere", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(middleware.RequestIDHeader, "rid-1")
			resp, _ := app.Test(req)

			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, "rid-1", body.RequestID)
		})
	}
}
