package handler

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// CreateFile godoc
//
//	@Summary	Create a file in a folder
//	@Tags		files
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"folder id"
//	@Param		body	body		nameRequest	true	"file name"
//	@Success	201		{object}	model.File
//	@Failure	404		{object}	errorPayload
//	@Router		/api/v1/folders/{id}/files [post]
func CreateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folderID, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req nameRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		f, err := svc.Create(c.UserContext(), userID(c), folderID, req.Name)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// GetFile godoc
//
//	@Summary	Get a file with its todos
//	@Tags		files
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"file id"
//	@Success	200	{object}	model.File
//	@Failure	404	{object}	errorPayload
//	@Router		/api/v1/files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		f, err := svc.Get(c.UserContext(), userID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(f)
	}
}

// RenameFile godoc
//
//	@Summary	Rename a file
//	@Tags		files
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"file id"
//	@Param		body	body		nameRequest	true	"new name"
//	@Success	200		{object}	model.File
//	@Router		/api/v1/files/{id} [patch]
func RenameFile(svc service.FileService) fiber.Handler {
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

// DeleteFile godoc
//
//	@Summary	Delete a file with its todos
//	@Tags		files
//	@Security	BearerAuth
//	@Param		id	path	string	true	"file id"
//	@Success	204
//	@Router		/api/v1/files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
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
