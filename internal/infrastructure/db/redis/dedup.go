package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const ledgerTTL = 36 * time.Hour

// ReminderLedger records which tasks were reminded on a given UTC day.
// Key format: reminder:<task_id>:<yyyy-mm-dd>
type ReminderLedger struct {
	client *redis.Client
}

// NewReminderLedger creates a ReminderLedger wrapping the given Redis client.
func NewReminderLedger(client *redis.Client) *ReminderLedger {
	return &ReminderLedger{client: client}
}

// IsDuplicate reports whether a reminder for taskID already went out on day.
func (l *ReminderLedger) IsDuplicate(ctx context.Context, taskID string, day time.Time) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(taskID, day)).Result()
	if err != nil {
		return false, fmt.Errorf("reminder ledger check: %w", err)
	}
	return n > 0, nil
}

// Mark records the reminder; the key outlives the day it names.
func (l *ReminderLedger) Mark(ctx context.Context, taskID string, day time.Time) error {
	if err := l.client.Set(ctx, ledgerKey(taskID, day), "1", ledgerTTL).Err(); err != nil {
		return fmt.Errorf("reminder ledger mark: %w", err)
	}
	return nil
}

func ledgerKey(taskID string, day time.Time) string {
	return fmt.Sprintf("reminder:%s:%s", taskID, day.UTC().Format("2006-01-02"))
}
