package handler

import (
	"github.com/gofiber/fiber/v2"

	"todoboard/internal/service"
)

// GetBoard returns the kanban view of a file, optionally filtered by q.
//
//	@Summary	Kanban board of a file
//	@Tags		todos
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"file id"
//	@Param		q	query		string	false	"case-insensitive text filter"
//	@Success	200	{object}	service.Board
//	@Router		/api/v1/files/{id}/board [get]
func GetBoard(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		b, err := svc.Board(c.UserContext(), userID(c), id, c.Query("q"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(b)
	}
}

// AddTodo godoc
//
//	@Summary	Append a todo to a file
//	@Tags		todos
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string		true	"file id"
//	@Param		body	body		textRequest	true	"todo text"
//	@Success	201		{object}	model.Todo
//	@Router		/api/v1/files/{id}/todos [post]
func AddTodo(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileID, ok := uuidParam(c, "id")
		if !ok {
			return invalidID(c)
		}
		var req textRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		t, err := svc.Add(c.UserContext(), userID(c), fileID, req.Text)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// UpdateTodo edits the text of a todo.
//
//	@Summary	Edit a todo
//	@Tags		todos
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int			true	"todo id"
//	@Param		body	body		textRequest	true	"new text"
//	@Success	200		{object}	model.Todo
//	@Router		/api/v1/todos/{id} [patch]
func UpdateTodo(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := todoIDParam(c)
		if !ok {
			return invalidID(c)
		}
		var req textRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		t, err := svc.UpdateText(c.UserContext(), userID(c), id, req.Text)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(t)
	}
}

// ToggleTodo godoc
//
//	@Summary	Toggle a todo between new and completed
//	@Tags		todos
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"todo id"
//	@Success	200	{object}	model.Todo
//	@Router		/api/v1/todos/{id}/toggle [post]
func ToggleTodo(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := todoIDParam(c)
		if !ok {
			return invalidID(c)
		}
		t, err := svc.Toggle(c.UserContext(), userID(c), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(t)
	}
}

// SetTodoStatus moves a todo to another board column.
//
//	@Summary	Set the status of a todo
//	@Tags		todos
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int				true	"todo id"
//	@Param		body	body		statusRequest	true	"new, in-progress or completed"
//	@Success	200		{object}	model.Todo
//	@Router		/api/v1/todos/{id}/status [put]
func SetTodoStatus(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := todoIDParam(c)
		if !ok {
			return invalidID(c)
		}
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
		t, err := svc.SetStatus(c.UserContext(), userID(c), id, req.Status)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(t)
	}
}

// DeleteTodo godoc
//
//	@Summary	Delete a todo
//	@Tags		todos
//	@Security	BearerAuth
//	@Param		id	path	int	true	"todo id"
//	@Success	204
//	@Router		/api/v1/todos/{id} [delete]
func DeleteTodo(svc service.TodoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := todoIDParam(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), userID(c), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
