package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

type TaskTypeService struct {
	repo   ports.TaskTypeRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskTypeService(repo ports.TaskTypeRepository, logger zerolog.Logger) *TaskTypeService {
	return &TaskTypeService{repo: repo, logger: logger, now: time.Now}
}

func (s *TaskTypeService) Create(ctx context.Context, in ports.TaskTypeInput) (*domain.TaskType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	fields, err := normalizeFields(in.Fields)
	if err != nil {
		return nil, err
	}

	tt := &domain.TaskType{
		Name:        name,
		Description: in.Description,
		Fields:      fields,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, tt); err != nil {
		return nil, fmt.Errorf("create task type: %w", err)
	}
	s.logger.Info().Str("task_type_id", tt.ID).Str("name", tt.Name).Msg("task type created")
	return tt, nil
}

func (s *TaskTypeService) Get(ctx context.Context, id string) (*domain.TaskType, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskTypeService) List(ctx context.Context) ([]*domain.TaskType, error) {
	return s.repo.List(ctx)
}

// Update applies the fields present in patch. Tasks referencing the type are untouched.
func (s *TaskTypeService) Update(ctx context.Context, id string, patch ports.TaskTypePatch) (*domain.TaskType, error) {
	tt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		tt.Name = name
	}
	if patch.Description.Set {
		tt.Description = patch.Description.Value
	}
	if patch.Fields.Set {
		fields, err := normalizeFields(patch.Fields.Value)
		if err != nil {
			return nil, err
		}
		tt.Fields = fields
	}

	if err := s.repo.Update(ctx, tt); err != nil {
		return nil, fmt.Errorf("update task type %s: %w", id, err)
	}
	s.logger.Info().Str("task_type_id", id).Msg("task type updated")
	return tt, nil
}

// Delete removes the type without touching tasks that still reference it.
func (s *TaskTypeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("task_type_id", id).Msg("task type deleted")
	return nil
}

func normalizeFields(in []domain.FieldDefinition) ([]domain.FieldDefinition, error) {
	out := make([]domain.FieldDefinition, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, f := range in {
		f.Name = strings.TrimSpace(f.Name)
		f.Kind = strings.TrimSpace(f.Kind)
		if f.Name == "" || f.Kind == "" {
			return nil, domain.Invalid("field %d needs a name and a kind", i)
		}
		if f.Name == domain.CSVFieldName {
			return nil, domain.Invalid("field name %q is reserved", f.Name)
		}
		if seen[f.Name] {
			return nil, domain.Invalid("field %q is declared twice", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out, nil
}
