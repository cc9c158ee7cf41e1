package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/pkg/optional"
)

// CreateTaskInput carries all data needed to create a task.
type CreateTaskInput struct {
	Caller       domain.Caller
	Title        string
	Description  string
	Priority     string
	DueDate      time.Time
	Workflow     string // admin only
	TaskType     string // admin only
	AssignedTo   string // admin only
	Instructions string
	CustomFields []domain.CustomFieldValue
}

// UpdateTaskInput is a partial update. Only fields with Set=true are applied;
// Null=true overwrites the stored value with its empty form.
type UpdateTaskInput struct {
	Caller       domain.Caller
	TaskID       string
	Title        optional.Value[string]
	Description  optional.Value[string]
	Priority     optional.Value[string]
	DueDate      optional.Value[time.Time]
	Status       optional.Value[string]
	Workflow     optional.Value[string]
	TaskType     optional.Value[string]
	AssignedTo   optional.Value[string]
	Instructions optional.Value[string]
	CustomFields optional.Value[[]domain.CustomFieldValue]
}

// ListTasksInput carries the list endpoint's query parameters.
type ListTasksInput struct {
	Caller    domain.Caller
	AdminView bool
	Status    string
	Workflow  string
	TaskType  string
	Priority  string
	Favorite  bool
	Search    string
	SortBy    string
}

// UploadedFile is one file received from the transport layer.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadFilesInput carries the files to attach to a task.
type UploadFilesInput struct {
	Caller domain.Caller
	TaskID string
	Files  []UploadedFile
}

// UserSummary is the display-friendly form of a referenced user.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}

// WorkflowSummary is the display-friendly form of a referenced workflow.
type WorkflowSummary struct {
	ID   string
	Name string
}

// TaskTypeSummary is the display-friendly form of a referenced task type.
// Fields is only filled for single-task reads.
type TaskTypeSummary struct {
	ID     string
	Name   string
	Fields []domain.FieldDefinition
}

// TaskView is a task with its references resolved. A reference whose target
// no longer exists is left nil while the raw id stays on Task.
type TaskView struct {
	Task        *domain.Task
	Creator     *UserSummary
	Assignee    *UserSummary
	CompletedBy *UserSummary
	Workflow    *WorkflowSummary
	TaskType    *TaskTypeSummary
}

// ProductivityReport summarises tasks completed within a window.
type ProductivityReport struct {
	From         time.Time
	To           time.Time
	Completed    int
	ByPriority   map[domain.Priority]int
	AverageHours float64
}

// TaskService defines the task lifecycle use cases.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetTask(ctx context.Context, caller domain.Caller, id string) (*TaskView, error)
	ListTasks(ctx context.Context, input ListTasksInput) ([]*TaskView, error)
	UpdateTask(ctx context.Context, input UpdateTaskInput) (*domain.Task, error)
	CompleteTask(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error)
	DeleteTask(ctx context.Context, caller domain.Caller, id string) error
	UploadFiles(ctx context.Context, input UploadFilesInput) (*domain.Task, error)
	MarkFavorite(ctx context.Context, caller domain.Caller, id string, favorite bool) (*domain.Task, error)
	ExportCSV(ctx context.Context, caller domain.Caller) ([]byte, error)
	ProductivityReport(ctx context.Context, caller domain.Caller, from, to time.Time) (*ProductivityReport, error)
}
