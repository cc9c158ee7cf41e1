package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/pkg/optional"
)

// TaskDeps groups the collaborators of TaskService.
type TaskDeps struct {
	Tasks     ports.TaskRepository
	Users     ports.UserRepository
	TaskTypes ports.TaskTypeRepository
	Workflows ports.WorkflowRepository
	Blobs     ports.BlobStore
	CSV       ports.CSVCodec
}

type TaskService struct {
	tasks     ports.TaskRepository
	users     ports.UserRepository
	taskTypes ports.TaskTypeRepository
	workflows ports.WorkflowRepository
	blobs     ports.BlobStore
	csv       ports.CSVCodec

	// strictFields validates customFields against the referenced task type.
	strictFields bool
	logger       zerolog.Logger
	now          func() time.Time
}

func NewTaskService(deps TaskDeps, strictFields bool, logger zerolog.Logger) *TaskService {
	return &TaskService{
		tasks:        deps.Tasks,
		users:        deps.Users,
		taskTypes:    deps.TaskTypes,
		workflows:    deps.Workflows,
		blobs:        deps.Blobs,
		csv:          deps.CSV,
		strictFields: strictFields,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateTask creates a task. Admins may assign it and tag it with a workflow
// and task type; plain users always own and hold the task themselves and any
// workflow or task type they send is dropped.
func (s *TaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" || in.Priority == "" || in.DueDate.IsZero() {
		return nil, domain.Invalid("title, description, priority and dueDate are required")
	}
	priority := domain.Priority(in.Priority)
	if !priority.Valid() {
		return nil, domain.Invalid("priority must be one of: low medium high")
	}

	now := s.now().UTC()
	task := &domain.Task{
		Title:        title,
		Description:  description,
		Priority:     priority,
		DueDate:      in.DueDate.UTC(),
		Status:       domain.StatusPending,
		CreatedBy:    in.Caller.UserID,
		CreatedAt:    now,
		Instructions: in.Instructions,
		CustomFields: in.CustomFields,
		Files:        []domain.FileRef{},
		History:      []domain.HistoryEntry{},
	}

	if in.Caller.IsAdmin() {
		if err := s.checkReferences(ctx, in.AssignedTo, in.Workflow, in.TaskType); err != nil {
			return nil, err
		}
		if in.AssignedTo != "" {
			task.Assign(in.AssignedTo, now)
		}
		task.Workflow = in.Workflow
		task.TaskType = in.TaskType
	} else {
		task.Assign(in.Caller.UserID, now)
	}

	if err := s.checkCustomFields(ctx, task.TaskType, task.CustomFields); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("user_id", in.Caller.UserID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("created_by", task.CreatedBy).
		Str("assigned_to", task.AssignedTo).
		Msg("task created")
	return task, nil
}

// GetTask returns one task with its references resolved, task-type fields included.
func (s *TaskService) GetTask(ctx context.Context, caller domain.Caller, id string) (*ports.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccess(task, caller).Read {
		return nil, domain.ErrForbidden
	}
	views, err := s.resolve(ctx, []*domain.Task{task}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListTasks returns the tasks visible to the caller. Admins see every task
// only when they explicitly ask for the admin view.
func (s *TaskService) ListTasks(ctx context.Context, in ports.ListTasksInput) ([]*ports.TaskView, error) {
	switch in.SortBy {
	case "", ports.SortByDueDate, ports.SortByPriority:
	default:
		return nil, domain.Invalid("sortBy must be one of: dueDate priority")
	}

	filter := ports.TaskFilter{
		VisibleTo:    in.Caller.UserID,
		Status:       in.Status,
		Workflow:     in.Workflow,
		TaskType:     in.TaskType,
		Priority:     in.Priority,
		FavoriteOnly: in.Favorite,
		Search:       strings.TrimSpace(in.Search),
		SortBy:       in.SortBy,
	}
	if in.Caller.IsAdmin() && in.AdminView {
		filter.VisibleTo = ""
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return s.resolve(ctx, tasks, false)
}

// UpdateTask applies a partial update. A history entry holding the previous
// state is appended on every successful call, even when nothing changes.
// Permission and validation run before anything is recorded.
func (s *TaskService) UpdateTask(ctx context.Context, in ports.UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	access := domain.CanAccess(task, in.Caller)
	if !access.Write {
		return nil, domain.ErrForbidden
	}
	if err := s.validateUpdate(ctx, task, in, access); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task.RecordHistory(now)
	applyUpdate(task, in, access, now)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task %s: %w", task.ID, err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", in.Caller.UserID).
		Str("status", string(task.Status)).
		Int("history", len(task.History)).
		Msg("task updated")
	return task, nil
}

// CompleteTask moves the task to done on behalf of the caller.
func (s *TaskService) CompleteTask(ctx context.Context, caller domain.Caller, id string) (*domain.Task, error) {
	return s.UpdateTask(ctx, ports.UpdateTaskInput{
		Caller: caller,
		TaskID: id,
		Status: optional.Of(string(domain.StatusDone)),
	})
}

// DeleteTask hard-deletes the task together with its history.
func (s *TaskService) DeleteTask(ctx context.Context, caller domain.Caller, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !domain.CanAccess(task, caller).Write {
		return domain.ErrForbidden
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	s.logger.Info().Str("task_id", id).Str("user_id", caller.UserID).Msg("task deleted")
	return nil
}

// MarkFavorite sets the favorite flag. Favoriting is not versioned.
func (s *TaskService) MarkFavorite(ctx context.Context, caller domain.Caller, id string, favorite bool) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccess(task, caller).Write {
		return nil, domain.ErrForbidden
	}
	task.IsFavorite = favorite
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("mark favorite %s: %w", id, err)
	}
	return task, nil
}

func (s *TaskService) validateUpdate(ctx context.Context, task *domain.Task, in ports.UpdateTaskInput, access domain.Access) error {
	if in.Title.Set && strings.TrimSpace(in.Title.Value) == "" {
		return domain.Invalid("title cannot be empty")
	}
	if in.Description.Set && strings.TrimSpace(in.Description.Value) == "" {
		return domain.Invalid("description cannot be empty")
	}
	if in.Priority.Set && !domain.Priority(in.Priority.Value).Valid() {
		return domain.Invalid("priority must be one of: low medium high")
	}
	if in.DueDate.Set && in.DueDate.Value.IsZero() {
		return domain.Invalid("dueDate cannot be empty")
	}
	if !access.AdminWrite {
		// Users' role-gated fields and out-of-range statuses are ignored, not rejected.
		if in.CustomFields.Set {
			return s.checkCustomFields(ctx, task.TaskType, in.CustomFields.Value)
		}
		return nil
	}

	if in.Status.Set && !domain.TaskStatus(in.Status.Value).Valid() {
		return domain.Invalid("status must be one of: pending in-progress in-review approved rejected done")
	}
	if err := s.checkReferences(ctx, in.AssignedTo.Value, in.Workflow.Value, in.TaskType.Value); err != nil {
		return err
	}
	if in.CustomFields.Set || in.TaskType.Set {
		taskType, fields := task.TaskType, task.CustomFields
		if in.TaskType.Set {
			taskType = in.TaskType.Value
		}
		if in.CustomFields.Set {
			fields = in.CustomFields.Value
		}
		return s.checkCustomFields(ctx, taskType, fields)
	}
	return nil
}

// applyUpdate writes every field present in the input. Null values of
// optional fields clear them.
func applyUpdate(task *domain.Task, in ports.UpdateTaskInput, access domain.Access, now time.Time) {
	if in.Title.Set {
		task.Title = strings.TrimSpace(in.Title.Value)
	}
	if in.Description.Set {
		task.Description = strings.TrimSpace(in.Description.Value)
	}
	if in.Priority.Set {
		task.Priority = domain.Priority(in.Priority.Value)
	}
	if in.DueDate.Set {
		task.DueDate = in.DueDate.Value.UTC()
	}
	if in.Instructions.Set {
		task.Instructions = in.Instructions.Value
	}
	if in.CustomFields.Set {
		task.CustomFields = in.CustomFields.Value
	}

	if access.AdminWrite {
		if in.Workflow.Set {
			task.Workflow = in.Workflow.Value
		}
		if in.TaskType.Set {
			task.TaskType = in.TaskType.Value
		}
		if in.AssignedTo.Set {
			task.Assign(in.AssignedTo.Value, now)
		}
	}

	if in.Status.Set && !in.Status.Null {
		status := domain.TaskStatus(in.Status.Value)
		if status.SettableBy(in.Caller.Role) {
			task.SetStatus(status, in.Caller.UserID, now)
		}
	}
}

// checkReferences verifies that admin-supplied references resolve. Empty ids are skipped.
func (s *TaskService) checkReferences(ctx context.Context, assignedTo, workflow, taskType string) error {
	if assignedTo != "" {
		if _, err := s.users.FindByID(ctx, assignedTo); err != nil {
			return fmt.Errorf("assignee %s: %w", assignedTo, err)
		}
	}
	if workflow != "" {
		if _, err := s.workflows.FindByID(ctx, workflow); err != nil {
			return fmt.Errorf("workflow %s: %w", workflow, err)
		}
	}
	if taskType != "" {
		if _, err := s.taskTypes.FindByID(ctx, taskType); err != nil {
			return fmt.Errorf("task type %s: %w", taskType, err)
		}
	}
	return nil
}

// checkCustomFields enforces the task type's declared fields in strict mode.
// A dangling task type reference is tolerated.
func (s *TaskService) checkCustomFields(ctx context.Context, taskTypeID string, fields []domain.CustomFieldValue) error {
	if !s.strictFields || taskTypeID == "" {
		return nil
	}
	tt, err := s.taskTypes.FindByID(ctx, taskTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskTypeNotFound) {
			return nil
		}
		return fmt.Errorf("load task type %s: %w", taskTypeID, err)
	}
	return tt.ValidateCustomFields(fields)
}
