package ports

import (
	"context"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// TaskTypeRepository persists task-type templates.
type TaskTypeRepository interface {
	Create(ctx context.Context, tt *domain.TaskType) error
	FindByID(ctx context.Context, id string) (*domain.TaskType, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.TaskType, error)
	List(ctx context.Context) ([]*domain.TaskType, error)
	Update(ctx context.Context, tt *domain.TaskType) error
	Delete(ctx context.Context, id string) error
}

// WorkflowRepository persists workflow labels.
type WorkflowRepository interface {
	Create(ctx context.Context, wf *domain.Workflow) error
	FindByID(ctx context.Context, id string) (*domain.Workflow, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Workflow, error)
	List(ctx context.Context) ([]*domain.Workflow, error)
	Update(ctx context.Context, wf *domain.Workflow) error
	Delete(ctx context.Context, id string) error
}
