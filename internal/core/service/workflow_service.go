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

type WorkflowService struct {
	repo   ports.WorkflowRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewWorkflowService(repo ports.WorkflowRepository, logger zerolog.Logger) *WorkflowService {
	return &WorkflowService{repo: repo, logger: logger, now: time.Now}
}

func (s *WorkflowService) Create(ctx context.Context, in ports.WorkflowInput) (*domain.Workflow, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name is required")
	}
	wf := &domain.Workflow{
		Name:        name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	s.logger.Info().Str("workflow_id", wf.ID).Str("name", wf.Name).Msg("workflow created")
	return wf, nil
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *WorkflowService) List(ctx context.Context) ([]*domain.Workflow, error) {
	return s.repo.List(ctx)
}

func (s *WorkflowService) Update(ctx context.Context, id string, patch ports.WorkflowPatch) (*domain.Workflow, error) {
	wf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name cannot be empty")
		}
		wf.Name = name
	}
	if patch.Description.Set {
		wf.Description = patch.Description.Value
	}
	if err := s.repo.Update(ctx, wf); err != nil {
		return nil, fmt.Errorf("update workflow %s: %w", id, err)
	}
	return wf, nil
}

func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("workflow_id", id).Msg("workflow deleted")
	return nil
}
