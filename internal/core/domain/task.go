package domain

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusInReview   TaskStatus = "in-review"
	StatusApproved   TaskStatus = "approved"
	StatusRejected   TaskStatus = "rejected"
	StatusDone       TaskStatus = "done"
)

// userStatuses are the only statuses a plain user may move a task into.
var userStatuses = map[TaskStatus]bool{
	StatusInProgress: true,
	StatusInReview:   true,
	StatusDone:       true,
}

// openStatuses are the statuses the reminder scan treats as "not yet done".
var openStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusInReview, StatusRejected}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusInReview, StatusApproved, StatusRejected, StatusDone:
		return true
	}
	return false
}

// SettableBy reports whether a caller with role may set the status to s.
func (s TaskStatus) SettableBy(role Role) bool {
	if role == RoleAdmin {
		return s.Valid()
	}
	return userStatuses[s]
}

// OpenStatuses returns a copy of the statuses considered not yet done.
func OpenStatuses() []TaskStatus {
	out := make([]TaskStatus, len(openStatuses))
	copy(out, openStatuses)
	return out
}

// Priority is a coarse label; it sorts lexicographically, not by severity.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// FileRef points at a blob held by the external blob store.
type FileRef struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
}

// Snapshot is a copy of a task's versioned fields.
type Snapshot struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Priority     Priority           `json:"priority"`
	DueDate      time.Time          `json:"dueDate"`
	Status       TaskStatus         `json:"status"`
	Workflow     string             `json:"workflow,omitempty"`
	TaskType     string             `json:"taskType,omitempty"`
	AssignedTo   string             `json:"assignedTo,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	CustomFields []CustomFieldValue `json:"customFields"`
}

// HistoryEntry records the state a task had immediately before an update.
type HistoryEntry struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// Task is the core aggregate root.
type Task struct {
	ID           string
	Title        string
	Description  string
	Priority     Priority
	DueDate      time.Time
	Status       TaskStatus
	TaskType     string
	Workflow     string
	CustomFields []CustomFieldValue
	Files        []FileRef
	CreatedBy    string
	CreatedAt    time.Time
	AssignedTo   string
	AssignedAt   *time.Time
	StartTime    *time.Time
	CompletedAt  *time.Time
	CompletedBy  string
	IsFavorite   bool
	Instructions string
	History      []HistoryEntry
	// Version is bumped on every persisted write and checked on the next one.
	Version int64
}

// Snapshot captures the versioned fields of t. Slices are copied so later
// mutations of t do not leak into the snapshot.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		Status:       t.Status,
		Workflow:     t.Workflow,
		TaskType:     t.TaskType,
		AssignedTo:   t.AssignedTo,
		Instructions: t.Instructions,
		CustomFields: cloneFields(t.CustomFields),
	}
}

// RecordHistory appends a snapshot of the current state stamped at now.
func (t *Task) RecordHistory(now time.Time) {
	t.History = append(t.History, HistoryEntry{UpdatedAt: now, Snapshot: t.Snapshot()})
}

// SetStatus moves the task to status on behalf of actor, keeping the
// completion stamps consistent with the new status.
func (t *Task) SetStatus(status TaskStatus, actor string, now time.Time) {
	t.Status = status
	switch status {
	case StatusDone:
		t.CompletedAt = &now
		t.CompletedBy = actor
	default:
		t.CompletedAt = nil
		t.CompletedBy = ""
	}
	if status == StatusInProgress && t.StartTime == nil {
		t.StartTime = &now
	}
}

// Assign sets the assignee and refreshes AssignedAt, even for the same user.
func (t *Task) Assign(userID string, now time.Time) {
	t.AssignedTo = userID
	t.AssignedAt = &now
}

// IsOwner reports whether userID created the task.
func (t *Task) IsOwner(userID string) bool {
	return userID != "" && t.CreatedBy == userID
}

// IsAssignee reports whether userID is the task's assignee.
func (t *Task) IsAssignee(userID string) bool {
	return userID != "" && t.AssignedTo == userID
}

func cloneFields(in []CustomFieldValue) []CustomFieldValue {
	if in == nil {
		return nil
	}
	out := make([]CustomFieldValue, len(in))
	copy(out, in)
	return out
}
