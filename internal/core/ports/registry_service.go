package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/pkg/optional"
)

// TaskTypeInput creates a task type.
type TaskTypeInput struct {
	CreatedBy   string
	Name        string
	Description string
	Fields      []domain.FieldDefinition
}

// TaskTypePatch partially updates a task type.
type TaskTypePatch struct {
	Name        optional.Value[string]
	Description optional.Value[string]
	Fields      optional.Value[[]domain.FieldDefinition]
}

// WorkflowInput creates a workflow.
type WorkflowInput struct {
	CreatedBy   string
	Name        string
	Description string
}

// WorkflowPatch partially updates a workflow.
type WorkflowPatch struct {
	Name        optional.Value[string]
	Description optional.Value[string]
}

// TaskTypeService manages task-type templates. Role gating happens in the transport layer.
type TaskTypeService interface {
	Create(ctx context.Context, input TaskTypeInput) (*domain.TaskType, error)
	Get(ctx context.Context, id string) (*domain.TaskType, error)
	List(ctx context.Context) ([]*domain.TaskType, error)
	Update(ctx context.Context, id string, patch TaskTypePatch) (*domain.TaskType, error)
	Delete(ctx context.Context, id string) error
}

// WorkflowService manages workflow labels.
type WorkflowService interface {
	Create(ctx context.Context, input WorkflowInput) (*domain.Workflow, error)
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	List(ctx context.Context) ([]*domain.Workflow, error)
	Update(ctx context.Context, id string, patch WorkflowPatch) (*domain.Workflow, error)
	Delete(ctx context.Context, id string) error
}
