package handler

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// uploadField is the multipart field carrying task attachments.
const uploadField = "files"

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Description  Plain users always own and hold the task; workflow, taskType and assignedTo are honoured for admins only.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.CreateTask(c.Request().Context(), toCreateTaskInput(req, caller))
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /tasks.
//
// @Summary      List visible tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Status filter"
// @Param        workflow   query     string  false  "Workflow id"
// @Param        taskType   query     string  false  "Task type id"
// @Param        priority   query     string  false  "Priority filter"
// @Param        favorite   query     bool    false  "Only favorites"
// @Param        adminView  query     bool    false  "Admins: list every task"
// @Param        search     query     string  false  "Substring of title or description"
// @Param        sortBy     query     string  false  "dueDate or priority"
// @Success      200        {object}  listTasksResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var q listTasksQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	views, err := h.service.ListTasks(c.Request().Context(), toListTasksInput(q, caller))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListTasksResponse(views))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetTask(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskViewResponse(view))
}

// Update handles PUT /tasks/:id. Absent keys are left untouched, null clears
// an optional field.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.UpdateTask(c.Request().Context(), toUpdateTaskInput(req, caller, c.Param("id")))
	if err != nil {
		return err
	}

	metrics.TaskUpdatesTotal.WithLabelValues(string(task.Status)).Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Complete handles PATCH /tasks/:id/complete.
//
// @Summary      Mark a task as done
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id}/complete [patch]
func (h *TaskHandler) Complete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	task, err := h.service.CompleteTask(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.TaskUpdatesTotal.WithLabelValues(string(task.Status)).Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Favorite handles PATCH /tasks/:id/favorite.
//
// @Summary      Toggle the favorite flag
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Task id"
// @Param        body  body      favoriteRequest  true  "Favorite flag"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id}/favorite [patch]
func (h *TaskHandler) Favorite(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req favoriteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.MarkFavorite(c.Request().Context(), caller, c.Param("id"), *req.IsFavorite)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Upload handles POST /tasks/:id/files.
//
// @Summary      Attach files to a task
// @Description  CSV files are also parsed into the csvData custom field.
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Task id"
// @Param        files  formData  file    true  "One or more files"
// @Success      200    {object}  taskResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      413    {object}  errorResponse
// @Router       /tasks/{id}/files [post]
func (h *TaskHandler) Upload(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.Invalid("expected a multipart form with field %q", uploadField)
	}

	headers := form.File[uploadField]
	files := make([]ports.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}
		files = append(files, ports.UploadedFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}

	task, err := h.service.UploadFiles(c.Request().Context(), ports.UploadFilesInput{
		Caller: caller,
		TaskID: c.Param("id"),
		Files:  files,
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		kind := "other"
		if isCSVUpload(f.ContentType) {
			kind = "csv"
		}
		metrics.FilesUploadedTotal.WithLabelValues(kind).Inc()
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// ExportCSV handles GET /tasks/export/csv.
//
// @Summary      Export visible tasks as CSV
// @Tags         tasks
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      401  {object}  errorResponse
// @Router       /tasks/export/csv [get]
func (h *TaskHandler) ExportCSV(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	data, err := h.service.ExportCSV(c.Request().Context(), caller)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="tasks.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Report handles GET /tasks/reports/productivity.
//
// @Summary      Productivity report
// @Description  Tasks completed in [from, to]. Dates accept RFC 3339 or YYYY-MM-DD; a plain "to" date covers that whole day.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Window start (default: 30 days before to)"
// @Param        to    query     string  false  "Window end (default: now)"
// @Success      200   {object}  productivityReportResponse
// @Failure      400   {object}  errorResponse
// @Router       /tasks/reports/productivity [get]
func (h *TaskHandler) Report(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	from, err := parseWindowBound(c.QueryParam("from"), false)
	if err != nil {
		return domain.Invalid("from: %s", err.Error())
	}
	to, err := parseWindowBound(c.QueryParam("to"), true)
	if err != nil {
		return domain.Invalid("to: %s", err.Error())
	}

	report, err := h.service.ProductivityReport(c.Request().Context(), caller, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReportResponse(report))
}

// parseWindowBound returns the zero time for an empty value. A date-only
// upper bound is extended to the last instant of that day.
func parseWindowBound(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if upper && len(s) == len(dateOnlyLayout) {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return ts, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isCSVUpload(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/csv" || mediaType == "application/csv"
}
