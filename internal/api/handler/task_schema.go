package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/pkg/optional"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// dateOnlyLayout is accepted alongside RFC 3339 wherever the API takes a date.
const dateOnlyLayout = "2006-01-02"

// flexTime decodes either an RFC 3339 timestamp or a plain date (midnight UTC).
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := parseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return ts, nil
}

// --- Request types ---

type customFieldRequest struct {
	FieldName string            `json:"fieldName" validate:"required"`
	FieldKind string            `json:"fieldKind"`
	Value     domain.FieldValue `json:"value"`
}

type createTaskRequest struct {
	Title        string               `json:"title"        validate:"required"`
	Description  string               `json:"description"  validate:"required"`
	Priority     string               `json:"priority"     validate:"required,oneof=low medium high"`
	DueDate      *flexTime            `json:"dueDate"      validate:"required"`
	Workflow     string               `json:"workflow"`
	TaskType     string               `json:"taskType"`
	AssignedTo   string               `json:"assignedTo"`
	Instructions string               `json:"instructions"`
	CustomFields []customFieldRequest `json:"customFields" validate:"dive"`
}

// updateTaskRequest tells an absent key apart from an explicit null.
type updateTaskRequest struct {
	Title        optional.Value[string]               `json:"title"`
	Description  optional.Value[string]               `json:"description"`
	Priority     optional.Value[string]               `json:"priority"`
	DueDate      optional.Value[flexTime]             `json:"dueDate"`
	Status       optional.Value[string]               `json:"status"`
	Workflow     optional.Value[string]               `json:"workflow"`
	TaskType     optional.Value[string]               `json:"taskType"`
	AssignedTo   optional.Value[string]               `json:"assignedTo"`
	Instructions optional.Value[string]               `json:"instructions"`
	CustomFields optional.Value[[]customFieldRequest] `json:"customFields"`
}

type listTasksQuery struct {
	Status    string `query:"status"`
	Workflow  string `query:"workflow"`
	TaskType  string `query:"taskType"`
	Priority  string `query:"priority"`
	Favorite  bool   `query:"favorite"`
	AdminView bool   `query:"adminView"`
	Search    string `query:"search"`
	SortBy    string `query:"sortBy" validate:"omitempty,oneof=dueDate priority"`
}

type favoriteRequest struct {
	IsFavorite *bool `json:"isFavorite" validate:"required"`
}

// --- Response types ---

type userRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type workflowRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type taskTypeRefResponse struct {
	ID     string                   `json:"id"`
	Name   string                   `json:"name"`
	Fields []domain.FieldDefinition `json:"fields,omitempty"`
}

// taskRefsResponse holds resolved references; a dangling one is null.
type taskRefsResponse struct {
	Creator     *userRefResponse     `json:"creator"`
	Assignee    *userRefResponse     `json:"assignee"`
	CompletedBy *userRefResponse     `json:"completedBy"`
	Workflow    *workflowRefResponse `json:"workflow"`
	TaskType    *taskTypeRefResponse `json:"taskType"`
}

type taskResponse struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	Priority     string                    `json:"priority"`
	DueDate      time.Time                 `json:"dueDate"`
	Status       string                    `json:"status"`
	TaskType     string                    `json:"taskType,omitempty"`
	Workflow     string                    `json:"workflow,omitempty"`
	CustomFields []domain.CustomFieldValue `json:"customFields"`
	Files        []domain.FileRef          `json:"files"`
	CreatedBy    string                    `json:"createdBy"`
	CreatedAt    time.Time                 `json:"createdAt"`
	AssignedTo   string                    `json:"assignedTo,omitempty"`
	AssignedAt   *time.Time                `json:"assignedAt,omitempty"`
	StartTime    *time.Time                `json:"startTime,omitempty"`
	CompletedAt  *time.Time                `json:"completedAt,omitempty"`
	CompletedBy  string                    `json:"completedBy,omitempty"`
	IsFavorite   bool                      `json:"isFavorite"`
	Instructions string                    `json:"instructions,omitempty"`
	History      []domain.HistoryEntry     `json:"history"`
	Version      int64                     `json:"version"`
	Refs         *taskRefsResponse         `json:"refs,omitempty"`
}

type listTasksResponse struct {
	Data  []taskResponse `json:"data"`
	Total int            `json:"total"`
}

type productivityReportResponse struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	Completed    int            `json:"completed"`
	ByPriority   map[string]int `json:"byPriority"`
	AverageHours float64        `json:"averageHours"`
}
