package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

type stubTaskRepo struct {
	tasks     map[string]*domain.Task
	seq       int
	updates   int
	updateErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	clone.CustomFields = append([]domain.CustomFieldValue(nil), t.CustomFields...)
	clone.Files = append([]domain.FileRef(nil), t.Files...)
	clone.History = append([]domain.HistoryEntry(nil), t.History...)
	return &clone
}

// put stores t as-is, bypassing the service; handy for seeding.
func (r *stubTaskRepo) put(t *domain.Task) *domain.Task {
	if t.ID == "" {
		r.seq++
		t.ID = fmt.Sprintf("task-%d", r.seq)
	}
	r.tasks[t.ID] = cloneTask(t)
	return t
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.seq++
	t.ID = fmt.Sprintf("task-%d", r.seq)
	t.Version = 1
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.tasks {
		if f.VisibleTo != "" && t.CreatedBy != f.VisibleTo && t.AssignedTo != f.VisibleTo {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Workflow != "" && t.Workflow != f.Workflow {
			continue
		}
		if f.TaskType != "" && t.TaskType != f.TaskType {
			continue
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			continue
		}
		if f.FavoriteOnly && !t.IsFavorite {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
				continue
			}
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		switch f.SortBy {
		case ports.SortByDueDate:
			return out[i].DueDate.Before(out[j].DueDate)
		case ports.SortByPriority:
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.tasks[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if stored.Version != t.Version {
		return domain.ErrConflict
	}
	t.Version++
	r.updates++
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) FindDueBetween(_ context.Context, from, to time.Time, statuses []domain.TaskStatus) ([]*domain.Task, error) {
	open := make(map[domain.TaskStatus]bool, len(statuses))
	for _, s := range statuses {
		open[s] = true
	}
	var out []*domain.Task
	for _, t := range r.tasks {
		if !open[t.Status] || t.DueDate.Before(from) || t.DueDate.After(to) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubTaskRepo) FindCompletedBetween(_ context.Context, visibleTo string, from, to time.Time) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.Status != domain.StatusDone || t.CompletedAt == nil {
			continue
		}
		if visibleTo != "" && t.CreatedBy != visibleTo && t.AssignedTo != visibleTo {
			continue
		}
		if t.CompletedAt.Before(from) || t.CompletedAt.After(to) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Registries
// ---------------------------------------------------------------------------

type stubTaskTypeRepo struct {
	types map[string]*domain.TaskType
	seq   int
}

func newStubTaskTypeRepo(types ...*domain.TaskType) *stubTaskTypeRepo {
	r := &stubTaskTypeRepo{types: make(map[string]*domain.TaskType)}
	for _, tt := range types {
		clone := *tt
		r.types[tt.ID] = &clone
	}
	return r
}

func (r *stubTaskTypeRepo) Create(_ context.Context, tt *domain.TaskType) error {
	r.seq++
	tt.ID = fmt.Sprintf("type-%d", r.seq)
	clone := *tt
	r.types[tt.ID] = &clone
	return nil
}

func (r *stubTaskTypeRepo) FindByID(_ context.Context, id string) (*domain.TaskType, error) {
	tt, ok := r.types[id]
	if !ok {
		return nil, domain.ErrTaskTypeNotFound
	}
	clone := *tt
	return &clone, nil
}

func (r *stubTaskTypeRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.TaskType, error) {
	out := make(map[string]*domain.TaskType)
	for _, id := range ids {
		if tt, ok := r.types[id]; ok {
			clone := *tt
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubTaskTypeRepo) List(_ context.Context) ([]*domain.TaskType, error) {
	out := make([]*domain.TaskType, 0, len(r.types))
	for _, tt := range r.types {
		clone := *tt
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubTaskTypeRepo) Update(_ context.Context, tt *domain.TaskType) error {
	if _, ok := r.types[tt.ID]; !ok {
		return domain.ErrTaskTypeNotFound
	}
	clone := *tt
	r.types[tt.ID] = &clone
	return nil
}

func (r *stubTaskTypeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.types[id]; !ok {
		return domain.ErrTaskTypeNotFound
	}
	delete(r.types, id)
	return nil
}

type stubWorkflowRepo struct {
	workflows map[string]*domain.Workflow
	seq       int
}

func newStubWorkflowRepo(wfs ...*domain.Workflow) *stubWorkflowRepo {
	r := &stubWorkflowRepo{workflows: make(map[string]*domain.Workflow)}
	for _, wf := range wfs {
		clone := *wf
		r.workflows[wf.ID] = &clone
	}
	return r
}

func (r *stubWorkflowRepo) Create(_ context.Context, wf *domain.Workflow) error {
	r.seq++
	wf.ID = fmt.Sprintf("wf-%d", r.seq)
	clone := *wf
	r.workflows[wf.ID] = &clone
	return nil
}

func (r *stubWorkflowRepo) FindByID(_ context.Context, id string) (*domain.Workflow, error) {
	wf, ok := r.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	clone := *wf
	return &clone, nil
}

func (r *stubWorkflowRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.Workflow, error) {
	out := make(map[string]*domain.Workflow)
	for _, id := range ids {
		if wf, ok := r.workflows[id]; ok {
			clone := *wf
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubWorkflowRepo) List(_ context.Context) ([]*domain.Workflow, error) {
	out := make([]*domain.Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		clone := *wf
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubWorkflowRepo) Update(_ context.Context, wf *domain.Workflow) error {
	if _, ok := r.workflows[wf.ID]; !ok {
		return domain.ErrWorkflowNotFound
	}
	clone := *wf
	r.workflows[wf.ID] = &clone
	return nil
}

func (r *stubWorkflowRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.workflows[id]; !ok {
		return domain.ErrWorkflowNotFound
	}
	delete(r.workflows, id)
	return nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubBlobStore struct {
	puts []ports.BlobObject
	err  error
}

func (b *stubBlobStore) Put(_ context.Context, obj ports.BlobObject) (domain.FileRef, error) {
	if b.err != nil {
		return domain.FileRef{}, b.err
	}
	b.puts = append(b.puts, obj)
	return domain.FileRef{
		URL:          "https://blobs.example.com/" + obj.Name,
		OriginalName: obj.Name,
		MimeType:     obj.ContentType,
	}, nil
}

// stubCSV splits on newlines and commas; "!bad" content fails to parse.
type stubCSV struct {
	exported []ports.TaskExportRow
}

func (c *stubCSV) ParseRows(data []byte) ([]map[string]string, error) {
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "!bad") {
		return nil, errors.New("malformed csv")
	}
	lines := strings.Split(text, "\n")
	header := strings.Split(lines[0], ",")
	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCSV) EncodeTasks(rows []ports.TaskExportRow) ([]byte, error) {
	c.exported = rows
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,%s\n", r.ID, r.Title, r.Owner)
	}
	return []byte(b.String()), nil
}

type stubQueue struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (q *stubQueue) Enqueue(n ports.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
}

type stubNotifier struct {
	sent []ports.Notification
	err  error
}

func (n *stubNotifier) Send(_ context.Context, msg ports.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type stubLedger struct {
	marked map[string]bool
	err    error
}

func newStubLedger() *stubLedger {
	return &stubLedger{marked: make(map[string]bool)}
}

func ledgerKey(taskID string, day time.Time) string {
	return taskID + ":" + day.UTC().Format("2006-01-02")
}

func (l *stubLedger) IsDuplicate(_ context.Context, taskID string, day time.Time) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.marked[ledgerKey(taskID, day)], nil
}

func (l *stubLedger) Mark(_ context.Context, taskID string, day time.Time) error {
	if l.err != nil {
		return l.err
	}
	l.marked[ledgerKey(taskID, day)] = true
	return nil
}
