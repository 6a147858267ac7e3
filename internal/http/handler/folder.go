package handler

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// ListFolders returns the caller's whole tree.
//
//	@Summary	List folders with files and todos
//	@Tags		folders
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		model.Folder
//	@Router		/api/v1/folders [get]
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tree, err := svc.List(c.UserContext(), userID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(tree)
	}
}

// CreateFolder godoc
//
//	@Summary	Create a folder
//	@Tags		folders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		nameRequest	true	"folder name"
//	@Success	201		{object}	model.Folder
//	@Failure	400		{object}	errorPayload
//	@Router		/api/v1/folders [post]
func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req nameRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		f, err := svc.Create(c.UserContext(), userID(c), req.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// RenameFolder godoc
//
//	@Summary	Rename a folder
//	@Tags		folders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"folder id"
//	@Param		body	body		nameRequest	true	"new name"
//	@Success	200		{object}	model.Folder
//	@Failure	404		{object}	errorPayload
//	@Router		/api/v1/folders/{id} [patch]
func RenameFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req nameRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		f, err := svc.Rename(c.UserContext(), userID(c), id, req.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}

// ToggleFolder flips whether the folder is expanded.
//
//	@Summary	Expand or collapse a folder
//	@Tags		folders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"folder id"
//	@Success	200	{object}	model.Folder
//	@Router		/api/v1/folders/{id}/toggle [post]
func ToggleFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		f, err := svc.Toggle(c.UserContext(), userID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}

// DeleteFolder godoc
//
//	@Summary	Delete a folder with its files and todos
//	@Tags		folders
//	@Security	BearerAuth
//	@Param		id	path	string	true	"folder id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/api/v1/folders/{id} [delete]
func DeleteFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), userID(c), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
