package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/taskmanager/task-api/internal/core/domain"
)

func TestValidator_ReportsJSONNamesTogether(t *testing.T) {
	err := NewValidator().Validate(&createTaskRequest{Priority: "urgent"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{"title is required", "dueDate is required", "priority must be one of: low medium high"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("message %q lacks %q", err.Error(), want)
		}
	}
}

func TestValidator_AcceptsValidPayload(t *testing.T) {
	req := &registerRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
