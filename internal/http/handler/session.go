package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// GetSession loads the tree and the reconciled workspace. Clients call it
// after sign-in to restore their tabs.
//
//	@Summary	Load the session
//	@Tags		session
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	service.Session
//	@Router		/api/v1/session [get]
func GetSession(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Load(c.UserContext(), userID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(s)
	}
}

// ResetSession forgets the persisted workspace (sign-out).
//
//	@Summary	Reset the session
//	@Tags		session
//	@Security	BearerAuth
//	@Success	204
//	@Router		/api/v1/session [delete]
func ResetSession(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Reset(c.UserContext(), userID(c)); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ToggleSidebar godoc
//
//	@Summary	Show or hide the sidebar
//	@Tags		session
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.Workspace
//	@Router		/api/v1/session/sidebar [post]
func ToggleSidebar(svc service.WorkspaceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := svc.ToggleSidebar(c.UserContext(), userID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(w)
	}
}

// OpenFile godoc
//
//	@Summary	Open a file as the active tab
//	@Tags		session
//	@Produce	json
//	@Security	BearerAuth
//	@Param		fileId	path		string	true	"file id"
//	@Success	200		{object}	model.Workspace
//	@Failure	404		{object}	errorPayload
//	@Router		/api/v1/session/open/{fileId} [post]
func OpenFile(svc service.WorkspaceService) fiber.Handler {
	return workspaceAction(svc.Open)
}

// CloseFile godoc
//
//	@Summary	Close a tab
//	@Tags		session
//	@Produce	json
//	@Security	BearerAuth
//	@Param		fileId	path		string	true	"file id"
//	@Success	200		{object}	model.Workspace
//	@Router		/api/v1/session/open/{fileId} [delete]
func CloseFile(svc service.WorkspaceService) fiber.Handler {
	return workspaceAction(svc.Close)
}

// ActivateFile godoc
//
//	@Summary	Switch to an open tab
//	@Tags		session
//	@Produce	json
//	@Security	BearerAuth
//	@Param		fileId	path		string	true	"file id"
//	@Success	200		{object}	model.Workspace
//	@Failure	409		{object}	errorPayload
//	@Router		/api/v1/session/active/{fileId} [post]
func ActivateFile(svc service.WorkspaceService) fiber.Handler {
	return workspaceAction(svc.Activate)
}

func workspaceAction[T any](fn func(ctx context.Context, userID, fileID string) (T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileID, ok := uuidParam(c, "fileId")
		if !ok {
			return invalidID(c)
		}
		w, err := fn(c.UserContext(), userID(c), fileID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(w)
	}
}
