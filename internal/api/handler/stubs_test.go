package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var (
	testUser  = domain.Caller{UserID: "user-1", Role: domain.RoleUser}
	testAdmin = domain.Caller{UserID: "admin-1", Role: domain.RoleAdmin}
)

// newContext builds an echo context with the validator installed and, when
// caller is non-nil, the identity LoadCaller would have set.
func newContext(method, target string, body io.Reader, contentType string, caller *domain.Caller) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != nil {
		c.Set(middleware.KeyUserID, caller.UserID)
		c.Set(middleware.KeyCaller, *caller)
		c.Set(middleware.KeyRole, string(caller.Role))
	}
	return c, rec
}

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubTaskService struct {
	createFn   func(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error)
	getFn      func(ctx context.Context, caller domain.Caller, id string) (*ports.TaskView, error)
	listFn     func(ctx context.Context, in ports.ListTasksInput) ([]*ports.TaskView, error)
	updateFn   func(ctx context.Context, in ports.UpdateTaskInput) (*domain.Task, error)
	completeFn func(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error)
	deleteFn   func(ctx context.Context, caller domain.Caller, id string) error
	uploadFn   func(ctx context.Context, in ports.UploadFilesInput) (*domain.Task, error)
	favoriteFn func(ctx context.Context, caller domain.Caller, id string, favorite bool) (*domain.Task, error)
	exportFn   func(ctx context.Context, caller domain.Caller) ([]byte, error)
	reportFn   func(ctx context.Context, caller domain.Caller, from, to time.Time) (*ports.ProductivityReport, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, in)
}

func (s *stubTaskService) GetTask(ctx context.Context, caller domain.Caller, id string) (*ports.TaskView, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubTaskService) ListTasks(ctx context.Context, in ports.ListTasksInput) ([]*ports.TaskView, error) {
	return s.listFn(ctx, in)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, in ports.UpdateTaskInput) (*domain.Task, error) {
	return s.updateFn(ctx, in)
}

func (s *stubTaskService) CompleteTask(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
	return s.completeFn(ctx, caller, id)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, caller domain.Caller, id string) error {
	return s.deleteFn(ctx, caller, id)
}

func (s *stubTaskService) UploadFiles(ctx context.Context, in ports.UploadFilesInput) (*domain.Task, error) {
	return s.uploadFn(ctx, in)
}

func (s *stubTaskService) MarkFavorite(ctx context.Context, caller domain.Caller, id string, favorite bool) (*domain.Task, error) {
	return s.favoriteFn(ctx, caller, id, favorite)
}

func (s *stubTaskService) ExportCSV(ctx context.Context, caller domain.Caller) ([]byte, error) {
	return s.exportFn(ctx, caller)
}

func (s *stubTaskService) ProductivityReport(ctx context.Context, caller domain.Caller, from, to time.Time) (*ports.ProductivityReport, error) {
	return s.reportFn(ctx, caller, from, to)
}

type stubTaskTypeService struct {
	created ports.TaskTypeInput
	patch   ports.TaskTypePatch
	err     error
}

func (s *stubTaskTypeService) Create(_ context.Context, in ports.TaskTypeInput) (*domain.TaskType, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TaskType{ID: "type-1", Name: in.Name, Fields: in.Fields, CreatedBy: in.CreatedBy}, nil
}

func (s *stubTaskTypeService) Get(_ context.Context, id string) (*domain.TaskType, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TaskType{ID: id, Name: "Bug"}, nil
}

func (s *stubTaskTypeService) List(context.Context) ([]*domain.TaskType, error) {
	return []*domain.TaskType{{ID: "type-1", Name: "Bug"}}, s.err
}

func (s *stubTaskTypeService) Update(_ context.Context, id string, patch ports.TaskTypePatch) (*domain.TaskType, error) {
	s.patch = patch
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TaskType{ID: id, Name: patch.Name.Value}, nil
}

func (s *stubTaskTypeService) Delete(context.Context, string) error { return s.err }

type stubWorkflowService struct {
	patch ports.WorkflowPatch
	err   error
}

func (s *stubWorkflowService) Create(_ context.Context, in ports.WorkflowInput) (*domain.Workflow, error) {
	return &domain.Workflow{ID: "wf-1", Name: in.Name, CreatedBy: in.CreatedBy}, s.err
}

func (s *stubWorkflowService) Get(_ context.Context, id string) (*domain.Workflow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Workflow{ID: id, Name: "Development"}, nil
}

func (s *stubWorkflowService) List(context.Context) ([]*domain.Workflow, error) {
	return nil, s.err
}

func (s *stubWorkflowService) Update(_ context.Context, id string, patch ports.WorkflowPatch) (*domain.Workflow, error) {
	s.patch = patch
	return &domain.Workflow{ID: id, Name: "Renamed"}, s.err
}

func (s *stubWorkflowService) Delete(context.Context, string) error { return s.err }

type stubUserService struct {
	roleID, role string
	err          error
}

func (s *stubUserService) Caller(_ context.Context, id string) (domain.Caller, error) {
	return domain.Caller{UserID: id, Role: domain.RoleUser}, s.err
}

func (s *stubUserService) ListUsers(context.Context) ([]*domain.User, error) {
	return nil, s.err
}

func (s *stubUserService) UpdateRole(_ context.Context, id, role string) (*domain.User, error) {
	s.roleID, s.role = id, role
	if s.err != nil {
		return nil, s.err
	}
	return &domain.User{ID: id, Name: "Bob", Role: domain.Role(role), PasswordHash: "secret-hash"}, nil
}

func (s *stubUserService) EnsureAdmin(context.Context, string, string, string) (*domain.User, error) {
	return nil, s.err
}

type stubReminderService struct {
	sentTo string
	err    error
}

func (s *stubReminderService) Scan(context.Context) (ports.ScanResult, error) {
	return ports.ScanResult{}, s.err
}

func (s *stubReminderService) SendTestEmail(_ context.Context, to string) error {
	s.sentTo = to
	return s.err
}
