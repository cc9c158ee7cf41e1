package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/ports"
)

// TaskTypeHandler serves the task-type registry. Writes are admin-only at the router.
type TaskTypeHandler struct {
	service ports.TaskTypeService
}

func NewTaskTypeHandler(service ports.TaskTypeService) *TaskTypeHandler {
	return &TaskTypeHandler{service: service}
}

// Create handles POST /task-types.
//
// @Summary      Create a task type
// @Tags         task-types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskTypeRequest  true  "Task type"
// @Success      201   {object}  taskTypeResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /task-types [post]
func (h *TaskTypeHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createTaskTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tt, err := h.service.Create(c.Request().Context(), ports.TaskTypeInput{
		CreatedBy:   caller.UserID,
		Name:        req.Name,
		Description: req.Description,
		Fields:      toFieldDefinitions(req.Fields),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskTypeResponse(tt))
}

// List handles GET /task-types.
//
// @Summary      List task types
// @Tags         task-types
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  taskTypeResponse
// @Router       /task-types [get]
func (h *TaskTypeHandler) List(c echo.Context) error {
	types, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]taskTypeResponse, len(types))
	for i, tt := range types {
		out[i] = toTaskTypeResponse(tt)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /task-types/:id.
//
// @Summary      Get a task type
// @Tags         task-types
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task type id"
// @Success      200  {object}  taskTypeResponse
// @Failure      404  {object}  errorResponse
// @Router       /task-types/{id} [get]
func (h *TaskTypeHandler) Get(c echo.Context) error {
	tt, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskTypeResponse(tt))
}

// Update handles PUT /task-types/:id.
//
// @Summary      Update a task type
// @Tags         task-types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Task type id"
// @Param        body  body      updateTaskTypeRequest  true  "Fields to change"
// @Success      200   {object}  taskTypeResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /task-types/{id} [put]
func (h *TaskTypeHandler) Update(c echo.Context) error {
	var req updateTaskTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tt, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.TaskTypePatch{
		Name:        req.Name,
		Description: req.Description,
		Fields:      mapOptional(req.Fields, toFieldDefinitions),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskTypeResponse(tt))
}

// Delete handles DELETE /task-types/:id. Tasks keep their dangling reference.
//
// @Summary      Delete a task type
// @Tags         task-types
// @Security     BearerAuth
// @Param        id  path  string  true  "Task type id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /task-types/{id} [delete]
func (h *TaskTypeHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
