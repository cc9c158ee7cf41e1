package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func sampleTask() *domain.Task {
	return &domain.Task{
		ID:          "task-1",
		Title:       "Write docs",
		Description: "Document the API",
		Priority:    domain.PriorityHigh,
		DueDate:     time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:      domain.StatusPending,
		CreatedBy:   "user-1",
		AssignedTo:  "user-1",
		CreatedAt:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		Version:     1,
	}
}

func TestTaskHandler_Create(t *testing.T) {
	var got ports.CreateTaskInput
	h := NewTaskHandler(&stubTaskService{
		createFn: func(_ context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
			got = in
			return sampleTask(), nil
		},
	})

	body := `{"title":"Write docs","description":"Document the API","priority":"high","dueDate":"2025-03-12",
		"customFields":[{"fieldName":"severity","fieldKind":"number","value":3}]}`
	c, rec := newContext(http.MethodPost, "/tasks", strings.NewReader(body), echo.MIMEApplicationJSON, &testUser)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Caller != testUser {
		t.Fatalf("caller not forwarded: %+v", got.Caller)
	}
	if !got.DueDate.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("date-only dueDate not parsed: %v", got.DueDate)
	}
	if len(got.CustomFields) != 1 {
		t.Fatalf("custom fields not forwarded: %+v", got.CustomFields)
	}
	if n, ok := got.CustomFields[0].Value.Number(); !ok || n != 3 {
		t.Fatalf("expected numeric value 3, got %v", got.CustomFields[0].Value)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "task-1" || resp["status"] != "pending" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if history, ok := resp["history"].([]any); !ok || len(history) != 0 {
		t.Fatalf("history must render as an empty list: %v", resp["history"])
	}
}

func TestTaskHandler_Create_Validation(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		createFn: func(context.Context, ports.CreateTaskInput) (*domain.Task, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	})

	cases := map[string]string{
		"missing title":    `{"description":"d","priority":"low","dueDate":"2025-03-12"}`,
		"unknown priority": `{"title":"t","description":"d","priority":"urgent","dueDate":"2025-03-12"}`,
		"missing due date": `{"title":"t","description":"d","priority":"low"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/tasks", strings.NewReader(body), echo.MIMEApplicationJSON, &testUser)
			if err := h.Create(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTaskHandler_Create_BadDate(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	body := `{"title":"t","description":"d","priority":"low","dueDate":"next week"}`
	c, _ := newContext(http.MethodPost, "/tasks", strings.NewReader(body), echo.MIMEApplicationJSON, &testUser)

	var he *echo.HTTPError
	if err := h.Create(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTaskHandler_RequiresCaller(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	c, _ := newContext(http.MethodGet, "/tasks", nil, "", nil)

	var he *echo.HTTPError
	if err := h.List(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTaskHandler_Update_AbsentVersusNull(t *testing.T) {
	var got ports.UpdateTaskInput
	h := NewTaskHandler(&stubTaskService{
		updateFn: func(_ context.Context, in ports.UpdateTaskInput) (*domain.Task, error) {
			got = in
			return sampleTask(), nil
		},
	})

	body := `{"title":"Renamed","workflow":null,"dueDate":"2025-04-01T10:00:00Z","customFields":null}`
	c, rec := newContext(http.MethodPut, "/tasks/task-1", strings.NewReader(body), echo.MIMEApplicationJSON, &testAdmin)
	c.SetParamNames("id")
	c.SetParamValues("task-1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.TaskID != "task-1" || got.Caller != testAdmin {
		t.Fatalf("identity not forwarded: %+v", got)
	}
	if !got.Title.Set || got.Title.Null || got.Title.Value != "Renamed" {
		t.Fatalf("title: %+v", got.Title)
	}
	if !got.Workflow.Set || !got.Workflow.Null {
		t.Fatalf("workflow must be an explicit null: %+v", got.Workflow)
	}
	if !got.CustomFields.Set || !got.CustomFields.Null {
		t.Fatalf("customFields must be an explicit null: %+v", got.CustomFields)
	}
	if got.Priority.Set || got.Status.Set || got.AssignedTo.Set {
		t.Fatalf("absent keys must stay unset: %+v", got)
	}
	if !got.DueDate.Set || !got.DueDate.Value.Equal(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("dueDate: %+v", got.DueDate)
	}
}

func TestTaskHandler_Update_PropagatesConflict(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		updateFn: func(context.Context, ports.UpdateTaskInput) (*domain.Task, error) {
			return nil, domain.ErrConflict
		},
	})
	c, _ := newContext(http.MethodPut, "/tasks/task-1", strings.NewReader(`{}`), echo.MIMEApplicationJSON, &testUser)

	if err := h.Update(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestTaskHandler_List_BindsQuery(t *testing.T) {
	var got ports.ListTasksInput
	h := NewTaskHandler(&stubTaskService{
		listFn: func(_ context.Context, in ports.ListTasksInput) ([]*ports.TaskView, error) {
			got = in
			return []*ports.TaskView{{
				Task:     sampleTask(),
				Creator:  &ports.UserSummary{ID: "user-1", Name: "Alice"},
				Assignee: &ports.UserSummary{ID: "user-1", Name: "Alice"},
			}}, nil
		},
	})

	target := "/tasks?status=pending&favorite=true&adminView=true&search=docs&sortBy=dueDate&taskType=type-1"
	c, rec := newContext(http.MethodGet, target, nil, "", &testAdmin)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Status != "pending" || !got.Favorite || !got.AdminView || got.Search != "docs" ||
		got.SortBy != "dueDate" || got.TaskType != "type-1" {
		t.Fatalf("query not bound: %+v", got)
	}

	var resp listTasksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].Refs == nil || resp.Data[0].Refs.Creator.Name != "Alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Data[0].Refs.Workflow != nil {
		t.Fatalf("unresolved workflow must be null")
	}
}

func TestTaskHandler_List_RejectsUnknownSort(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	c, _ := newContext(http.MethodGet, "/tasks?sortBy=title", nil, "", &testUser)

	if err := h.List(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskHandler_Favorite(t *testing.T) {
	var flag bool
	h := NewTaskHandler(&stubTaskService{
		favoriteFn: func(_ context.Context, _ domain.Caller, _ string, favorite bool) (*domain.Task, error) {
			flag = favorite
			task := sampleTask()
			task.IsFavorite = favorite
			return task, nil
		},
	})

	c, rec := newContext(http.MethodPatch, "/tasks/task-1/favorite", strings.NewReader(`{"isFavorite":true}`), echo.MIMEApplicationJSON, &testUser)
	if err := h.Favorite(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !flag || rec.Code != http.StatusOK {
		t.Fatalf("favorite not applied: flag=%v code=%d", flag, rec.Code)
	}

	c, _ = newContext(http.MethodPatch, "/tasks/task-1/favorite", strings.NewReader(`{}`), echo.MIMEApplicationJSON, &testUser)
	if err := h.Favorite(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing flag: expected ErrValidation, got %v", err)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		deleteFn: func(_ context.Context, _ domain.Caller, id string) error {
			if id == "task-2" {
				return domain.ErrForbidden
			}
			return nil
		},
	})

	c, rec := newContext(http.MethodDelete, "/tasks/task-1", nil, "", &testUser)
	c.SetParamNames("id")
	c.SetParamValues("task-1")
	if err := h.Delete(c); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d (%v)", rec.Code, err)
	}

	c, _ = newContext(http.MethodDelete, "/tasks/task-2", nil, "", &testUser)
	c.SetParamNames("id")
	c.SetParamValues("task-2")
	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, contentType := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write([]byte("name,qty\nbolt,4\n"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestTaskHandler_Upload(t *testing.T) {
	var got ports.UploadFilesInput
	h := NewTaskHandler(&stubTaskService{
		uploadFn: func(_ context.Context, in ports.UploadFilesInput) (*domain.Task, error) {
			got = in
			return sampleTask(), nil
		},
	})

	body, contentType := multipartBody(t, map[string]string{"parts.csv": "text/csv"})
	c, rec := newContext(http.MethodPost, "/tasks/task-1/files", body, contentType, &testUser)
	c.SetParamNames("id")
	c.SetParamValues("task-1")

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.TaskID != "task-1" || len(got.Files) != 1 {
		t.Fatalf("unexpected input: %+v", got)
	}
	f := got.Files[0]
	if f.Name != "parts.csv" || f.ContentType != "text/csv" || !strings.HasPrefix(string(f.Data), "name,qty") {
		t.Fatalf("file not forwarded intact: %+v", f)
	}
}

func TestTaskHandler_Upload_NotMultipart(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	c, _ := newContext(http.MethodPost, "/tasks/task-1/files", strings.NewReader(`{}`), echo.MIMEApplicationJSON, &testUser)

	if err := h.Upload(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskHandler_ExportCSV(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		exportFn: func(_ context.Context, caller domain.Caller) ([]byte, error) {
			if caller != testUser {
				t.Fatalf("unexpected caller %+v", caller)
			}
			return []byte("id,title\ntask-1,Write docs\n"), nil
		},
	})

	c, rec := newContext(http.MethodGet, "/tasks/export/csv", nil, "", &testUser)
	if err := h.ExportCSV(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "tasks.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "id,title") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestTaskHandler_Report(t *testing.T) {
	var from, to time.Time
	h := NewTaskHandler(&stubTaskService{
		reportFn: func(_ context.Context, _ domain.Caller, f, tt time.Time) (*ports.ProductivityReport, error) {
			from, to = f, tt
			return &ports.ProductivityReport{
				From:         f,
				To:           tt,
				Completed:    2,
				ByPriority:   map[domain.Priority]int{domain.PriorityHigh: 2},
				AverageHours: 5.5,
			}, nil
		},
	})

	c, rec := newContext(http.MethodGet, "/tasks/reports/productivity?from=2025-03-01&to=2025-03-10", nil, "", &testUser)
	if err := h.Report(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !from.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from: %v", from)
	}
	if !to.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)) {
		t.Fatalf("date-only upper bound must cover the whole day: %v", to)
	}

	var resp productivityReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Completed != 2 || resp.ByPriority["high"] != 2 || resp.AverageHours != 5.5 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Report_DefaultsAndBadInput(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		reportFn: func(_ context.Context, _ domain.Caller, f, tt time.Time) (*ports.ProductivityReport, error) {
			if !f.IsZero() || !tt.IsZero() {
				t.Fatalf("missing bounds must be passed as zero times")
			}
			return &ports.ProductivityReport{}, nil
		},
	})

	c, _ := newContext(http.MethodGet, "/tasks/reports/productivity", nil, "", &testUser)
	if err := h.Report(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	c, _ = newContext(http.MethodGet, "/tasks/reports/productivity?from=yesterday", nil, "", &testUser)
	if err := h.Report(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
