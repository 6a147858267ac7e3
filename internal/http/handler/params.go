package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"todoboard/internal/http/middleware"
)

type nameRequest struct {
	Name string `json:"name"`
}

type textRequest struct {
	Text string `json:"text"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// uuidParam returns the named path parameter if it is a valid UUID.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func todoIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

func invalidBody(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
}

func userID(c *fiber.Ctx) string {
	return middleware.UserID(c)
}
