package handler

import (
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/pkg/optional"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest, caller domain.Caller) ports.CreateTaskInput {
	in := ports.CreateTaskInput{
		Caller:       caller,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Workflow:     req.Workflow,
		TaskType:     req.TaskType,
		AssignedTo:   req.AssignedTo,
		Instructions: req.Instructions,
		CustomFields: toCustomFields(req.CustomFields),
	}
	if req.DueDate != nil {
		in.DueDate = req.DueDate.Time
	}
	return in
}

func toUpdateTaskInput(req updateTaskRequest, caller domain.Caller, id string) ports.UpdateTaskInput {
	return ports.UpdateTaskInput{
		Caller:       caller,
		TaskID:       id,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      mapOptional(req.DueDate, func(t flexTime) time.Time { return t.Time }),
		Status:       req.Status,
		Workflow:     req.Workflow,
		TaskType:     req.TaskType,
		AssignedTo:   req.AssignedTo,
		Instructions: req.Instructions,
		CustomFields: mapOptional(req.CustomFields, toCustomFields),
	}
}

func toListTasksInput(q listTasksQuery, caller domain.Caller) ports.ListTasksInput {
	return ports.ListTasksInput{
		Caller:    caller,
		AdminView: q.AdminView,
		Status:    q.Status,
		Workflow:  q.Workflow,
		TaskType:  q.TaskType,
		Priority:  q.Priority,
		Favorite:  q.Favorite,
		Search:    q.Search,
		SortBy:    q.SortBy,
	}
}

func toCustomFields(in []customFieldRequest) []domain.CustomFieldValue {
	if in == nil {
		return nil
	}
	out := make([]domain.CustomFieldValue, len(in))
	for i, f := range in {
		out[i] = domain.CustomFieldValue{FieldName: f.FieldName, FieldKind: f.FieldKind, Value: f.Value}
	}
	return out
}

// mapOptional converts the payload of v while keeping its presence flags.
func mapOptional[A, B any](v optional.Value[A], f func(A) B) optional.Value[B] {
	out := optional.Value[B]{Set: v.Set, Null: v.Null}
	if v.Set && !v.Null {
		out.Value = f(v.Value)
	}
	return out
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     string(t.Priority),
		DueDate:      t.DueDate.UTC(),
		Status:       string(t.Status),
		TaskType:     t.TaskType,
		Workflow:     t.Workflow,
		CustomFields: t.CustomFields,
		Files:        t.Files,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt.UTC(),
		AssignedTo:   t.AssignedTo,
		AssignedAt:   t.AssignedAt,
		StartTime:    t.StartTime,
		CompletedAt:  t.CompletedAt,
		CompletedBy:  t.CompletedBy,
		IsFavorite:   t.IsFavorite,
		Instructions: t.Instructions,
		History:      t.History,
		Version:      t.Version,
	}
	if resp.CustomFields == nil {
		resp.CustomFields = []domain.CustomFieldValue{}
	}
	if resp.Files == nil {
		resp.Files = []domain.FileRef{}
	}
	if resp.History == nil {
		resp.History = []domain.HistoryEntry{}
	}
	return resp
}

func toTaskViewResponse(v *ports.TaskView) taskResponse {
	resp := toTaskResponse(v.Task)
	resp.Refs = &taskRefsResponse{
		Creator:     toUserRef(v.Creator),
		Assignee:    toUserRef(v.Assignee),
		CompletedBy: toUserRef(v.CompletedBy),
	}
	if v.Workflow != nil {
		resp.Refs.Workflow = &workflowRefResponse{ID: v.Workflow.ID, Name: v.Workflow.Name}
	}
	if v.TaskType != nil {
		resp.Refs.TaskType = &taskTypeRefResponse{ID: v.TaskType.ID, Name: v.TaskType.Name, Fields: v.TaskType.Fields}
	}
	return resp
}

func toUserRef(u *ports.UserSummary) *userRefResponse {
	if u == nil {
		return nil
	}
	return &userRefResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toListTasksResponse(views []*ports.TaskView) listTasksResponse {
	items := make([]taskResponse, len(views))
	for i, v := range views {
		items[i] = toTaskViewResponse(v)
	}
	return listTasksResponse{Data: items, Total: len(items)}
}

func toReportResponse(r *ports.ProductivityReport) productivityReportResponse {
	byPriority := make(map[string]int, len(r.ByPriority))
	for p, n := range r.ByPriority {
		byPriority[string(p)] = n
	}
	return productivityReportResponse{
		From:         r.From.UTC(),
		To:           r.To.UTC(),
		Completed:    r.Completed,
		ByPriority:   byPriority,
		AverageHours: r.AverageHours,
	}
}
