package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/ports"
)

type EmailHandler struct {
	reminders ports.ReminderService
}

func NewEmailHandler(reminders ports.ReminderService) *EmailHandler {
	return &EmailHandler{reminders: reminders}
}

type testEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SendTest handles POST /email/test. Delivery is synchronous so SMTP
// problems surface to the caller.
//
// @Summary      Send a test email
// @Tags         email
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      testEmailRequest  true  "Recipient"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /email/test [post]
func (h *EmailHandler) SendTest(c echo.Context) error {
	var req testEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.reminders.SendTestEmail(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "test email sent to " + req.Email})
}
