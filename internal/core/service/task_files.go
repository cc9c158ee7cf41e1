package service

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// UploadFiles stores each file in the blob store and attaches the returned
// references to the task. Rows of any CSV file in the batch replace the
// task's csvData custom field. Every CSV is parsed before the first blob is
// written, so a bad CSV leaves no orphaned uploads.
func (s *TaskService) UploadFiles(ctx context.Context, in ports.UploadFilesInput) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAccess(task, in.Caller).Write {
		return nil, domain.ErrForbidden
	}
	if len(in.Files) == 0 {
		return nil, domain.Invalid("at least one file is required")
	}

	var (
		rows   []map[string]string
		hasCSV bool
	)
	for _, f := range in.Files {
		if !isCSV(f.ContentType) {
			continue
		}
		parsed, err := s.csv.ParseRows(f.Data)
		if err != nil {
			s.logger.Error().Err(err).Str("task_id", task.ID).Str("file", f.Name).Msg("failed to parse csv upload")
			return nil, fmt.Errorf("parse csv %q: %w", f.Name, err)
		}
		rows = append(rows, parsed...)
		hasCSV = true
	}

	refs := make([]domain.FileRef, 0, len(in.Files))
	for _, f := range in.Files {
		ref, err := s.blobs.Put(ctx, ports.BlobObject{Name: f.Name, ContentType: f.ContentType, Data: f.Data})
		if err != nil {
			s.logger.Error().Err(err).Str("task_id", task.ID).Str("file", f.Name).Msg("failed to store file")
			return nil, fmt.Errorf("store file %q: %w", f.Name, err)
		}
		refs = append(refs, ref)
	}

	if hasCSV {
		task.RecordHistory(s.now().UTC())
		task.CustomFields = withCSVRows(task.CustomFields, rows)
	}
	task.Files = append(task.Files, refs...)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("attach files to %s: %w", task.ID, err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Int("files", len(refs)).
		Bool("csv", hasCSV).
		Msg("files attached")
	return task, nil
}

func isCSV(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt == "text/csv" || mt == "application/csv"
}

// withCSVRows drops any previous csvData entry and appends a fresh one.
func withCSVRows(fields []domain.CustomFieldValue, rows []map[string]string) []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, 0, len(fields)+1)
	for _, f := range fields {
		if f.FieldName != domain.CSVFieldName {
			out = append(out, f)
		}
	}
	if rows == nil {
		rows = []map[string]string{}
	}
	return append(out, domain.CustomFieldValue{
		FieldName: domain.CSVFieldName,
		FieldKind: domain.FieldKindCSV,
		Value:     domain.OpaqueValue(rows),
	})
}
