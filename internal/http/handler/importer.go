package handler

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// ImportTree moves a tree kept on the device before sign-in into the
// store. The body is the local tree; the response maps old ids to new ones.
//
//	@Summary	Import a local tree
//	@Tags		import
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Success	201	{object}	service.ImportResult
//	@Failure	422	{object}	errorPayload
//	@Router		/api/v1/import [post]
func ImportTree(svc service.ImportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := append([]byte(nil), c.Body()...)
		res, err := svc.Import(c.UserContext(), userID(c), body)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
