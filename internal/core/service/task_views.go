package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const (
	defaultReportWindow = 30 * 24 * time.Hour
	exportTimeLayout    = time.RFC3339
)

// resolve batch-loads every referenced user, workflow and task type so a
// list costs a fixed number of lookups regardless of its length.
func (s *TaskService) resolve(ctx context.Context, tasks []*domain.Task, withFields bool) ([]*ports.TaskView, error) {
	userIDs := newIDSet()
	workflowIDs := newIDSet()
	typeIDs := newIDSet()
	for _, t := range tasks {
		userIDs.add(t.CreatedBy)
		userIDs.add(t.AssignedTo)
		userIDs.add(t.CompletedBy)
		workflowIDs.add(t.Workflow)
		typeIDs.add(t.TaskType)
	}

	users := map[string]*domain.User{}
	if len(userIDs.ids) > 0 {
		found, err := s.users.FindByIDs(ctx, userIDs.ids)
		if err != nil {
			return nil, fmt.Errorf("resolve users: %w", err)
		}
		users = found
	}
	workflows := map[string]*domain.Workflow{}
	if len(workflowIDs.ids) > 0 {
		found, err := s.workflows.FindByIDs(ctx, workflowIDs.ids)
		if err != nil {
			return nil, fmt.Errorf("resolve workflows: %w", err)
		}
		workflows = found
	}
	types := map[string]*domain.TaskType{}
	if len(typeIDs.ids) > 0 {
		found, err := s.taskTypes.FindByIDs(ctx, typeIDs.ids)
		if err != nil {
			return nil, fmt.Errorf("resolve task types: %w", err)
		}
		types = found
	}

	views := make([]*ports.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := &ports.TaskView{
			Task:        t,
			Creator:     userSummary(users[t.CreatedBy]),
			Assignee:    userSummary(users[t.AssignedTo]),
			CompletedBy: userSummary(users[t.CompletedBy]),
		}
		if wf := workflows[t.Workflow]; wf != nil {
			v.Workflow = &ports.WorkflowSummary{ID: wf.ID, Name: wf.Name}
		}
		if tt := types[t.TaskType]; tt != nil {
			v.TaskType = &ports.TaskTypeSummary{ID: tt.ID, Name: tt.Name}
			if withFields {
				v.TaskType.Fields = tt.Fields
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func userSummary(u *domain.User) *ports.UserSummary {
	if u == nil {
		return nil
	}
	return &ports.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ExportCSV renders the tasks the caller created or holds as CSV.
func (s *TaskService) ExportCSV(ctx context.Context, caller domain.Caller) ([]byte, error) {
	tasks, err := s.tasks.List(ctx, ports.TaskFilter{VisibleTo: caller.UserID, SortBy: ports.SortByDueDate})
	if err != nil {
		return nil, fmt.Errorf("list tasks for export: %w", err)
	}

	owners := newIDSet()
	for _, t := range tasks {
		owners.add(t.CreatedBy)
	}
	users := map[string]*domain.User{}
	if len(owners.ids) > 0 {
		if users, err = s.users.FindByIDs(ctx, owners.ids); err != nil {
			return nil, fmt.Errorf("resolve owners: %w", err)
		}
	}

	rows := make([]ports.TaskExportRow, 0, len(tasks))
	for _, t := range tasks {
		owner := t.CreatedBy
		if u := users[t.CreatedBy]; u != nil {
			owner = u.Name
		}
		rows = append(rows, ports.TaskExportRow{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    string(t.Priority),
			DueDate:     t.DueDate.UTC().Format(exportTimeLayout),
			Status:      string(t.Status),
			CreatedAt:   t.CreatedAt.UTC().Format(exportTimeLayout),
			Owner:       owner,
		})
	}

	out, err := s.csv.EncodeTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	s.logger.Info().Str("user_id", caller.UserID).Int("rows", len(rows)).Msg("tasks exported")
	return out, nil
}

// ProductivityReport counts the tasks completed in [from, to]. A zero to means
// now and a zero from means thirty days before to. Admins see every task.
func (s *TaskService) ProductivityReport(ctx context.Context, caller domain.Caller, from, to time.Time) (*ports.ProductivityReport, error) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultReportWindow)
	}
	if from.After(to) {
		return nil, domain.Invalid("from must not be after to")
	}

	visibleTo := caller.UserID
	if caller.IsAdmin() {
		visibleTo = ""
	}
	tasks, err := s.tasks.FindCompletedBetween(ctx, visibleTo, from, to)
	if err != nil {
		return nil, fmt.Errorf("load completed tasks: %w", err)
	}

	report := &ports.ProductivityReport{
		From:       from,
		To:         to,
		Completed:  len(tasks),
		ByPriority: map[domain.Priority]int{},
	}
	var hours float64
	var timed int
	for _, t := range tasks {
		report.ByPriority[t.Priority]++
		if t.CompletedAt == nil {
			continue
		}
		start := t.CreatedAt
		if t.StartTime != nil {
			start = *t.StartTime
		}
		if d := t.CompletedAt.Sub(start); d >= 0 {
			hours += d.Hours()
			timed++
		}
	}
	if timed > 0 {
		report.AverageHours = hours / float64(timed)
	}
	return report, nil
}

// idSet collects distinct non-empty ids in insertion order.
type idSet struct {
	seen map[string]bool
	ids  []string
}

func newIDSet() *idSet { return &idSet{seen: map[string]bool{}} }

func (s *idSet) add(id string) {
	if id == "" || s.seen[id] {
		return
	}
	s.seen[id] = true
	s.ids = append(s.ids, id)
}
