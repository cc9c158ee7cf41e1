package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// Sort keys accepted by TaskFilter.SortBy.
const (
	SortByDueDate  = "dueDate"
	SortByPriority = "priority"
)

// TaskFilter carries all query parameters for listing tasks.
type TaskFilter struct {
	VisibleTo    string // non-empty = createdBy OR assignedTo this user
	Status       string
	Workflow     string
	TaskType     string
	Priority     string
	FavoriteOnly bool
	Search       string // case-insensitive substring of title or description
	SortBy       string // "", SortByDueDate or SortByPriority; always ascending
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create inserts t and sets its ID and Version.
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	// Update replaces the stored task only if its version still equals
	// t.Version, returning domain.ErrConflict otherwise. On success t.Version
	// is incremented.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	// FindDueBetween returns tasks in one of statuses with dueDate in [from, to].
	FindDueBetween(ctx context.Context, from, to time.Time, statuses []domain.TaskStatus) ([]*domain.Task, error)
	// FindCompletedBetween returns done tasks with completedAt in [from, to],
	// scoped like TaskFilter.VisibleTo.
	FindCompletedBetween(ctx context.Context, visibleTo string, from, to time.Time) ([]*domain.Task, error)
}
