package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// BlobObject is a file handed to the blob store.
type BlobObject struct {
	Name        string
	ContentType string
	Data        []byte
}

// BlobStore persists file content and returns a reference to it.
type BlobStore interface {
	Put(ctx context.Context, obj BlobObject) (domain.FileRef, error)
}

// TaskExportRow is one line of the task CSV export.
type TaskExportRow struct {
	ID          string `csv:"id"`
	Title       string `csv:"title"`
	Description string `csv:"description"`
	Priority    string `csv:"priority"`
	DueDate     string `csv:"dueDate"`
	Status      string `csv:"status"`
	CreatedAt   string `csv:"createdAt"`
	Owner       string `csv:"owner"`
}

// CSVCodec parses uploaded CSV content and serialises task exports.
type CSVCodec interface {
	// ParseRows reads a header row followed by records, one map per record.
	ParseRows(data []byte) ([]map[string]string, error)
	EncodeTasks(rows []TaskExportRow) ([]byte, error)
}

// Notification is an outbound email.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationQueue hands notifications to background senders.
type NotificationQueue interface {
	Enqueue(n Notification)
}

// ReminderLedger remembers which tasks were already reminded on a given day.
type ReminderLedger interface {
	IsDuplicate(ctx context.Context, taskID string, day time.Time) (bool, error)
	Mark(ctx context.Context, taskID string, day time.Time) error
}

// ScanResult summarises one reminder scan.
type ScanResult struct {
	Matched int
	Queued  int
	Skipped int
}

// ReminderService finds tasks nearing their due date and notifies assignees.
type ReminderService interface {
	Scan(ctx context.Context) (ScanResult, error)
	SendTestEmail(ctx context.Context, to string) error
}
