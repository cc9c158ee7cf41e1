package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

// Create inserts a new task document at version 1.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	t.Version = 1
	doc := toTaskDocument(t)
	doc.ID = primitive.NilObjectID
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// List applies the filter. Without SortBy, newest tasks come first.
func (r *TaskRepository) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	filter := bson.M{}
	var and []bson.M
	if f.VisibleTo != "" {
		and = append(and, visibleTo(f.VisibleTo))
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Workflow != "" {
		filter["workflow"] = refID(f.Workflow)
	}
	if f.TaskType != "" {
		filter["task_type"] = refID(f.TaskType)
	}
	if f.FavoriteOnly {
		filter["is_favorite"] = true
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
		}})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch f.SortBy {
	case ports.SortByDueDate:
		sort = bson.D{{Key: "due_date", Value: 1}}
	case ports.SortByPriority:
		sort = bson.D{{Key: "priority", Value: 1}}
	}
	return r.find(ctx, filter, options.Find().SetSort(sort))
}

// Update replaces the document only if the stored version matches t.Version.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	oid, ok := objectID(t.ID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toTaskDocument(t)
	doc.Version = t.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid, "version": t.Version}, doc)
	if err != nil {
		return fmt.Errorf("replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("count task: %w", err)
		}
		if n == 0 {
			return domain.ErrTaskNotFound
		}
		return domain.ErrConflict
	}
	t.Version = doc.Version
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) FindDueBetween(ctx context.Context, from, to time.Time, statuses []domain.TaskStatus) ([]*domain.Task, error) {
	in := make(bson.A, 0, len(statuses))
	for _, s := range statuses {
		in = append(in, string(s))
	}
	filter := bson.M{
		"status":   bson.M{"$in": in},
		"due_date": bson.M{"$gte": from, "$lte": to},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
}

func (r *TaskRepository) FindCompletedBetween(ctx context.Context, visible string, from, to time.Time) ([]*domain.Task, error) {
	filter := bson.M{
		"status":       string(domain.StatusDone),
		"completed_at": bson.M{"$gte": from, "$lte": to},
	}
	if visible != "" {
		filter["$or"] = visibleTo(visible)["$or"]
	}
	return r.find(ctx, filter, nil)
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

// EnsureIndexes creates the indexes backing visibility, filtering and the reminder scan.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "completed_at", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func visibleTo(userID string) bson.M {
	oid := refID(userID)
	return bson.M{"$or": bson.A{
		bson.M{"created_by": oid},
		bson.M{"assigned_to": oid},
	}}
}
