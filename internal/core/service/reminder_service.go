package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const defaultReminderWindow = 24 * time.Hour

// ReminderDeps groups the collaborators of ReminderService. Ledger may be nil.
type ReminderDeps struct {
	Tasks    ports.TaskRepository
	Users    ports.UserRepository
	Ledger   ports.ReminderLedger
	Queue    ports.NotificationQueue
	Notifier ports.Notifier
}

type ReminderService struct {
	tasks    ports.TaskRepository
	users    ports.UserRepository
	ledger   ports.ReminderLedger
	queue    ports.NotificationQueue
	notifier ports.Notifier
	window   time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewReminderService(deps ReminderDeps, window time.Duration, logger zerolog.Logger) *ReminderService {
	if window <= 0 {
		window = defaultReminderWindow
	}
	return &ReminderService{
		tasks:    deps.Tasks,
		users:    deps.Users,
		ledger:   deps.Ledger,
		queue:    deps.Queue,
		notifier: deps.Notifier,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// Scan queues one reminder for every open task due within the window whose
// assignee can be resolved. Sends happen asynchronously and are not retried.
func (s *ReminderService) Scan(ctx context.Context) (ports.ScanResult, error) {
	now := s.now().UTC()
	tasks, err := s.tasks.FindDueBetween(ctx, now, now.Add(s.window), domain.OpenStatuses())
	if err != nil {
		return ports.ScanResult{}, fmt.Errorf("find due tasks: %w", err)
	}

	res := ports.ScanResult{Matched: len(tasks)}
	for _, t := range tasks {
		if t.AssignedTo == "" {
			res.Skipped++
			continue
		}
		user, err := s.users.FindByID(ctx, t.AssignedTo)
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				s.logger.Error().Err(err).Str("task_id", t.ID).Msg("failed to load assignee")
			}
			res.Skipped++
			continue
		}
		if s.alreadySent(ctx, t.ID, now) {
			res.Skipped++
			continue
		}

		s.queue.Enqueue(reminderFor(t, user))
		res.Queued++

		if s.ledger != nil {
			if err := s.ledger.Mark(ctx, t.ID, now); err != nil {
				s.logger.Warn().Err(err).Str("task_id", t.ID).Msg("failed to mark reminder")
			}
		}
	}

	s.logger.Info().
		Int("matched", res.Matched).
		Int("queued", res.Queued).
		Int("skipped", res.Skipped).
		Msg("reminder scan finished")
	return res, nil
}

// alreadySent consults the ledger; ledger failures count as not sent.
func (s *ReminderService) alreadySent(ctx context.Context, taskID string, day time.Time) bool {
	if s.ledger == nil {
		return false
	}
	dup, err := s.ledger.IsDuplicate(ctx, taskID, day)
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", taskID).Msg("reminder ledger unavailable")
		return false
	}
	return dup
}

// SendTestEmail delivers a fixed message synchronously so the caller sees SMTP errors.
func (s *ReminderService) SendTestEmail(ctx context.Context, to string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return domain.Invalid("email is required")
	}
	err := s.notifier.Send(ctx, ports.Notification{
		To:      to,
		Subject: "Test email",
		Body:    "This is a test email sent by the Task Manager API.",
	})
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("failed to send test email")
		return fmt.Errorf("send test email: %w", err)
	}
	s.logger.Info().Str("to", to).Msg("test email sent")
	return nil
}

func reminderFor(t *domain.Task, user *domain.User) ports.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\n", user.Name)
	fmt.Fprintf(&b, "The task %q is due in less than 24 hours.\n\n", t.Title)
	fmt.Fprintf(&b, "Description: %s\n", t.Description)
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	fmt.Fprintf(&b, "Due: %s\n\n", t.DueDate.UTC().Format(time.RFC1123))
	b.WriteString("Don't miss the deadline!")

	return ports.Notification{
		To:      user.Email,
		Subject: fmt.Sprintf("Reminder: task %q is due soon", t.Title),
		Body:    b.String(),
	}
}
