package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"todoboard/internal/http/middleware"
	"todoboard/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the error envelope. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// serviceError translates service sentinels into HTTP errors. Anything else
// is reported as an internal error without details.
func serviceError(c *fiber.Ctx, err error) error {
	var schemaErr *service.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_PAYLOAD", schemaErr.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrInvalidName):
		return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "name must not be empty")
	case errors.Is(err, service.ErrInvalidText):
		return writeError(c, fiber.StatusBadRequest, "INVALID_TEXT", "text must not be empty")
	case errors.Is(err, service.ErrInvalidStatus):
		return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "status must be one of new, in-progress, completed")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrNotOpen):
		return writeError(c, fiber.StatusConflict, "NOT_OPEN", "file is not open")
	case errors.Is(err, service.ErrUserRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "invalid or missing bearer token")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "too many requests")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
