package handler

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// Services are the use cases the API exposes.
type Services struct {
	Folders   service.FolderService
	Files     service.FileService
	Todos     service.TodoService
	Workspace service.WorkspaceService
	Import    service.ImportService
}

// RegisterRoutes attaches the probes and the /api/v1 routes. protect runs in
// front of every /api/v1 route (authentication, rate limiting, timeouts).
func RegisterRoutes(app *fiber.App, db Pinger, svc Services, protect ...fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api/v1", protect...)

	api.Get("/session", GetSession(svc.Workspace))
	api.Delete("/session", ResetSession(svc.Workspace))
	api.Post("/session/sidebar", ToggleSidebar(svc.Workspace))
	api.Post("/session/open/:fileId", OpenFile(svc.Workspace))
	api.Delete("/session/open/:fileId", CloseFile(svc.Workspace))
	api.Post("/session/active/:fileId", ActivateFile(svc.Workspace))

	api.Get("/folders", ListFolders(svc.Folders))
	api.Post("/folders", CreateFolder(svc.Folders))
	api.Patch("/folders/:id", RenameFolder(svc.Folders))
	api.Delete("/folders/:id", DeleteFolder(svc.Folders))
	api.Post("/folders/:id/toggle", ToggleFolder(svc.Folders))
	api.Post("/folders/:id/files", CreateFile(svc.Files))

	api.Get("/files/:id", GetFile(svc.Files))
	api.Patch("/files/:id", RenameFile(svc.Files))
	api.Delete("/files/:id", DeleteFile(svc.Files))
	api.Get("/files/:id/board", GetBoard(svc.Todos))
	api.Post("/files/:id/todos", AddTodo(svc.Todos))

	api.Patch("/todos/:id", UpdateTodo(svc.Todos))
	api.Delete("/todos/:id", DeleteTodo(svc.Todos))
	api.Post("/todos/:id/toggle", ToggleTodo(svc.Todos))
	api.Put("/todos/:id/status", SetTodoStatus(svc.Todos))

	api.Post("/import", ImportTree(svc.Import))
}
