package handler

import (
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/pkg/optional"
)

type fieldDefinitionRequest struct {
	Name     string `json:"name"     validate:"required"`
	Kind     string `json:"kind"     validate:"required"`
	Required bool   `json:"required"`
}

type createTaskTypeRequest struct {
	Name        string                   `json:"name"        validate:"required"`
	Description string                   `json:"description"`
	Fields      []fieldDefinitionRequest `json:"fields"      validate:"dive"`
}

type updateTaskTypeRequest struct {
	Name        optional.Value[string]                   `json:"name"`
	Description optional.Value[string]                   `json:"description"`
	Fields      optional.Value[[]fieldDefinitionRequest] `json:"fields"`
}

type taskTypeResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Fields      []domain.FieldDefinition `json:"fields"`
	CreatedBy   string                   `json:"createdBy"`
	CreatedAt   time.Time                `json:"createdAt"`
}

type createWorkflowRequest struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
}

type updateWorkflowRequest struct {
	Name        optional.Value[string] `json:"name"`
	Description optional.Value[string] `json:"description"`
}

type workflowResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toFieldDefinitions(in []fieldDefinitionRequest) []domain.FieldDefinition {
	out := make([]domain.FieldDefinition, len(in))
	for i, f := range in {
		out[i] = domain.FieldDefinition{Name: f.Name, Kind: f.Kind, Required: f.Required}
	}
	return out
}

func toTaskTypeResponse(tt *domain.TaskType) taskTypeResponse {
	fields := tt.Fields
	if fields == nil {
		fields = []domain.FieldDefinition{}
	}
	return taskTypeResponse{
		ID:          tt.ID,
		Name:        tt.Name,
		Description: tt.Description,
		Fields:      fields,
		CreatedBy:   tt.CreatedBy,
		CreatedAt:   tt.CreatedAt.UTC(),
	}
}

func toWorkflowResponse(wf *domain.Workflow) workflowResponse {
	return workflowResponse{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		CreatedBy:   wf.CreatedBy,
		CreatedAt:   wf.CreatedAt.UTC(),
	}
}
