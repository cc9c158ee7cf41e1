package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/ports"
)

type WorkflowHandler struct {
	service ports.WorkflowService
}

func NewWorkflowHandler(service ports.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Create handles POST /workflows.
//
// @Summary      Create a workflow
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createWorkflowRequest  true  "Workflow"
// @Success      201   {object}  workflowResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /workflows [post]
func (h *WorkflowHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createWorkflowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	wf, err := h.service.Create(c.Request().Context(), ports.WorkflowInput{
		CreatedBy:   caller.UserID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toWorkflowResponse(wf))
}

// List handles GET /workflows.
//
// @Summary      List workflows
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   workflowResponse
// @Failure      403  {object}  errorResponse
// @Router       /workflows [get]
func (h *WorkflowHandler) List(c echo.Context) error {
	workflows, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]workflowResponse, len(workflows))
	for i, wf := range workflows {
		out[i] = toWorkflowResponse(wf)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /workflows/:id.
//
// @Summary      Get a workflow
// @Tags         workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Workflow id"
// @Success      200  {object}  workflowResponse
// @Failure      404  {object}  errorResponse
// @Router       /workflows/{id} [get]
func (h *WorkflowHandler) Get(c echo.Context) error {
	wf, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWorkflowResponse(wf))
}

// Update handles PUT /workflows/:id.
//
// @Summary      Update a workflow
// @Tags         workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Workflow id"
// @Param        body  body      updateWorkflowRequest  true  "Fields to change"
// @Success      200   {object}  workflowResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /workflows/{id} [put]
func (h *WorkflowHandler) Update(c echo.Context) error {
	var req updateWorkflowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	wf, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.WorkflowPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWorkflowResponse(wf))
}

// Delete handles DELETE /workflows/:id.
//
// @Summary      Delete a workflow
// @Tags         workflows
// @Security     BearerAuth
// @Param        id  path  string  true  "Workflow id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /workflows/{id} [delete]
func (h *WorkflowHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
