package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskmanager/task-api/internal/core/domain"
)

type customFieldDocument struct {
	FieldName string      `bson:"field_name"`
	FieldKind string      `bson:"field_kind"`
	Value     interface{} `bson:"value"`
}

type fileDocument struct {
	URL          string `bson:"url"`
	OriginalName string `bson:"original_name"`
	MimeType     string `bson:"mime_type"`
}

type snapshotDocument struct {
	Title        string                `bson:"title"`
	Description  string                `bson:"description"`
	Priority     string                `bson:"priority"`
	DueDate      time.Time             `bson:"due_date"`
	Status       string                `bson:"status"`
	Workflow     primitive.ObjectID    `bson:"workflow,omitempty"`
	TaskType     primitive.ObjectID    `bson:"task_type,omitempty"`
	AssignedTo   primitive.ObjectID    `bson:"assigned_to,omitempty"`
	Instructions string                `bson:"instructions,omitempty"`
	CustomFields []customFieldDocument `bson:"custom_fields"`
}

type historyDocument struct {
	UpdatedAt time.Time        `bson:"updated_at"`
	Snapshot  snapshotDocument `bson:"snapshot"`
}

type taskDocument struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty"`
	Title        string                `bson:"title"`
	Description  string                `bson:"description"`
	Priority     string                `bson:"priority"`
	DueDate      time.Time             `bson:"due_date"`
	Status       string                `bson:"status"`
	TaskType     primitive.ObjectID    `bson:"task_type,omitempty"`
	Workflow     primitive.ObjectID    `bson:"workflow,omitempty"`
	CustomFields []customFieldDocument `bson:"custom_fields"`
	Files        []fileDocument        `bson:"files"`
	CreatedBy    primitive.ObjectID    `bson:"created_by"`
	CreatedAt    time.Time             `bson:"created_at"`
	AssignedTo   primitive.ObjectID    `bson:"assigned_to,omitempty"`
	AssignedAt   *time.Time            `bson:"assigned_at,omitempty"`
	StartTime    *time.Time            `bson:"start_time,omitempty"`
	CompletedAt  *time.Time            `bson:"completed_at,omitempty"`
	CompletedBy  primitive.ObjectID    `bson:"completed_by,omitempty"`
	IsFavorite   bool                  `bson:"is_favorite"`
	Instructions string                `bson:"instructions,omitempty"`
	History      []historyDocument     `bson:"history"`
	Version      int64                 `bson:"version"`
}

func toTaskDocument(t *domain.Task) taskDocument {
	doc := taskDocument{
		Title:        t.Title,
		Description:  t.Description,
		Priority:     string(t.Priority),
		DueDate:      t.DueDate,
		Status:       string(t.Status),
		TaskType:     refID(t.TaskType),
		Workflow:     refID(t.Workflow),
		CustomFields: toFieldDocuments(t.CustomFields),
		Files:        make([]fileDocument, 0, len(t.Files)),
		CreatedBy:    refID(t.CreatedBy),
		CreatedAt:    t.CreatedAt,
		AssignedTo:   refID(t.AssignedTo),
		AssignedAt:   t.AssignedAt,
		StartTime:    t.StartTime,
		CompletedAt:  t.CompletedAt,
		CompletedBy:  refID(t.CompletedBy),
		IsFavorite:   t.IsFavorite,
		Instructions: t.Instructions,
		History:      make([]historyDocument, 0, len(t.History)),
		Version:      t.Version,
	}
	if oid, ok := objectID(t.ID); ok {
		doc.ID = oid
	}
	for _, f := range t.Files {
		doc.Files = append(doc.Files, fileDocument{URL: f.URL, OriginalName: f.OriginalName, MimeType: f.MimeType})
	}
	for _, h := range t.History {
		doc.History = append(doc.History, historyDocument{UpdatedAt: h.UpdatedAt, Snapshot: toSnapshotDocument(h.Snapshot)})
	}
	return doc
}

func (d taskDocument) toDomain() *domain.Task {
	t := &domain.Task{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Priority:     domain.Priority(d.Priority),
		DueDate:      d.DueDate.UTC(),
		Status:       domain.TaskStatus(d.Status),
		TaskType:     hexOrEmpty(d.TaskType),
		Workflow:     hexOrEmpty(d.Workflow),
		CustomFields: fromFieldDocuments(d.CustomFields),
		Files:        make([]domain.FileRef, 0, len(d.Files)),
		CreatedBy:    hexOrEmpty(d.CreatedBy),
		CreatedAt:    d.CreatedAt.UTC(),
		AssignedTo:   hexOrEmpty(d.AssignedTo),
		AssignedAt:   utcPtr(d.AssignedAt),
		StartTime:    utcPtr(d.StartTime),
		CompletedAt:  utcPtr(d.CompletedAt),
		CompletedBy:  hexOrEmpty(d.CompletedBy),
		IsFavorite:   d.IsFavorite,
		Instructions: d.Instructions,
		History:      make([]domain.HistoryEntry, 0, len(d.History)),
		Version:      d.Version,
	}
	for _, f := range d.Files {
		t.Files = append(t.Files, domain.FileRef{URL: f.URL, OriginalName: f.OriginalName, MimeType: f.MimeType})
	}
	for _, h := range d.History {
		t.History = append(t.History, domain.HistoryEntry{UpdatedAt: h.UpdatedAt.UTC(), Snapshot: h.Snapshot.toDomain()})
	}
	return t
}

func toSnapshotDocument(s domain.Snapshot) snapshotDocument {
	return snapshotDocument{
		Title:        s.Title,
		Description:  s.Description,
		Priority:     string(s.Priority),
		DueDate:      s.DueDate,
		Status:       string(s.Status),
		Workflow:     refID(s.Workflow),
		TaskType:     refID(s.TaskType),
		AssignedTo:   refID(s.AssignedTo),
		Instructions: s.Instructions,
		CustomFields: toFieldDocuments(s.CustomFields),
	}
}

func (d snapshotDocument) toDomain() domain.Snapshot {
	return domain.Snapshot{
		Title:        d.Title,
		Description:  d.Description,
		Priority:     domain.Priority(d.Priority),
		DueDate:      d.DueDate.UTC(),
		Status:       domain.TaskStatus(d.Status),
		Workflow:     hexOrEmpty(d.Workflow),
		TaskType:     hexOrEmpty(d.TaskType),
		AssignedTo:   hexOrEmpty(d.AssignedTo),
		Instructions: d.Instructions,
		CustomFields: fromFieldDocuments(d.CustomFields),
	}
}

func toFieldDocuments(in []domain.CustomFieldValue) []customFieldDocument {
	out := make([]customFieldDocument, 0, len(in))
	for _, f := range in {
		out = append(out, customFieldDocument{FieldName: f.FieldName, FieldKind: f.FieldKind, Value: f.Value.Interface()})
	}
	return out
}

func fromFieldDocuments(in []customFieldDocument) []domain.CustomFieldValue {
	out := make([]domain.CustomFieldValue, 0, len(in))
	for _, f := range in {
		out = append(out, domain.CustomFieldValue{FieldName: f.FieldName, FieldKind: f.FieldKind, Value: domain.ValueOf(f.Value)})
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
