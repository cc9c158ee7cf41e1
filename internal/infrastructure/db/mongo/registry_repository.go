package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmanager/task-api/internal/core/domain"
)

const (
	collectionTaskTypes = "task_types"
	collectionWorkflows = "workflows"
)

// ---------------------------------------------------------------------------
// Task types
// ---------------------------------------------------------------------------

type TaskTypeRepository struct {
	col *mongo.Collection
}

func NewTaskTypeRepository(db *mongo.Database) *TaskTypeRepository {
	return &TaskTypeRepository{col: db.Collection(collectionTaskTypes)}
}

type fieldDefinitionDocument struct {
	Name     string `bson:"name"`
	Kind     string `bson:"kind"`
	Required bool   `bson:"required"`
}

type taskTypeDocument struct {
	ID          primitive.ObjectID        `bson:"_id,omitempty"`
	Name        string                    `bson:"name"`
	Description string                    `bson:"description,omitempty"`
	Fields      []fieldDefinitionDocument `bson:"fields"`
	CreatedBy   primitive.ObjectID        `bson:"created_by,omitempty"`
	CreatedAt   time.Time                 `bson:"created_at"`
}

func toTaskTypeDocument(tt *domain.TaskType) taskTypeDocument {
	doc := taskTypeDocument{
		Name:        tt.Name,
		Description: tt.Description,
		Fields:      make([]fieldDefinitionDocument, 0, len(tt.Fields)),
		CreatedBy:   refID(tt.CreatedBy),
		CreatedAt:   tt.CreatedAt,
	}
	for _, f := range tt.Fields {
		doc.Fields = append(doc.Fields, fieldDefinitionDocument{Name: f.Name, Kind: f.Kind, Required: f.Required})
	}
	return doc
}

func (d taskTypeDocument) toDomain() *domain.TaskType {
	tt := &domain.TaskType{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Fields:      make([]domain.FieldDefinition, 0, len(d.Fields)),
		CreatedBy:   hexOrEmpty(d.CreatedBy),
		CreatedAt:   d.CreatedAt.UTC(),
	}
	for _, f := range d.Fields {
		tt.Fields = append(tt.Fields, domain.FieldDefinition{Name: f.Name, Kind: f.Kind, Required: f.Required})
	}
	return tt
}

func (r *TaskTypeRepository) Create(ctx context.Context, tt *domain.TaskType) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toTaskTypeDocument(tt))
	if err != nil {
		return fmt.Errorf("insert task type: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tt.ID = oid.Hex()
	}
	return nil
}

func (r *TaskTypeRepository) FindByID(ctx context.Context, id string) (*domain.TaskType, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrTaskTypeNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskTypeDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskTypeNotFound
		}
		return nil, fmt.Errorf("find task type: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskTypeRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.TaskType, error) {
	out := make(map[string]*domain.TaskType, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	types, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, tt := range types {
		out[tt.ID] = tt
	}
	return out, nil
}

func (r *TaskTypeRepository) List(ctx context.Context) ([]*domain.TaskType, error) {
	return r.find(ctx, bson.M{})
}

func (r *TaskTypeRepository) find(ctx context.Context, filter bson.M) ([]*domain.TaskType, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find task types: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskTypeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode task types: %w", err)
	}
	out := make([]*domain.TaskType, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TaskTypeRepository) Update(ctx context.Context, tt *domain.TaskType) error {
	oid, ok := objectID(tt.ID)
	if !ok {
		return domain.ErrTaskTypeNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toTaskTypeDocument(tt)
	doc.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("replace task type: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskTypeNotFound
	}
	return nil
}

func (r *TaskTypeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrTaskTypeNotFound)
}

// ---------------------------------------------------------------------------
// Workflows
// ---------------------------------------------------------------------------

type WorkflowRepository struct {
	col *mongo.Collection
}

func NewWorkflowRepository(db *mongo.Database) *WorkflowRepository {
	return &WorkflowRepository{col: db.Collection(collectionWorkflows)}
}

type workflowDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d workflowDocument) toDomain() *domain.Workflow {
	return &domain.Workflow{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedBy:   hexOrEmpty(d.CreatedBy),
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (r *WorkflowRepository) Create(ctx context.Context, wf *domain.Workflow) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, workflowDocument{
		Name:        wf.Name,
		Description: wf.Description,
		CreatedBy:   refID(wf.CreatedBy),
		CreatedAt:   wf.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		wf.ID = oid.Hex()
	}
	return nil
}

func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*domain.Workflow, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc workflowDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *WorkflowRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*domain.Workflow, error) {
	out := make(map[string]*domain.Workflow, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	wfs, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	for _, wf := range wfs {
		out[wf.ID] = wf
	}
	return out, nil
}

func (r *WorkflowRepository) List(ctx context.Context) ([]*domain.Workflow, error) {
	return r.find(ctx, bson.M{})
}

func (r *WorkflowRepository) find(ctx context.Context, filter bson.M) ([]*domain.Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find workflows: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []workflowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode workflows: %w", err)
	}
	out := make([]*domain.Workflow, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *WorkflowRepository) Update(ctx context.Context, wf *domain.Workflow) error {
	oid, ok := objectID(wf.ID)
	if !ok {
		return domain.ErrWorkflowNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        wf.Name,
		"description": wf.Description,
	}})
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrWorkflowNotFound
	}
	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id, domain.ErrWorkflowNotFound)
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string, notFound error) error {
	oid, ok := objectID(id)
	if !ok {
		return notFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return notFound
	}
	return nil
}
