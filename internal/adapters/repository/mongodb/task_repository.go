package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDocument struct {
	ID        string    `bson:"_id"`
	Title     string    `bson:"title"`
	Status    string    `bson:"status"`
	Owner     string    `bson:"owner"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`

	// BSON dates only keep milliseconds; listing sorts on this instead.
	CreatedNanos int64 `bson:"created_ns"`
}

func newTaskDocument(task *domain.Task) taskDocument {
	return taskDocument{
		ID:        task.ID.String(),
		Title:     task.Title,
		Status:    string(task.Status),
		Owner:     task.Owner.String(),
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,

		CreatedNanos: task.CreatedAt.UnixNano(),
	}
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", d.Owner, err)
	}
	return &domain.Task{
		ID:        id,
		Title:     d.Title,
		Status:    domain.TaskStatus(d.Status),
		Owner:     owner,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type taskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) ports.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

func (r *taskRepository) Save(ctx context.Context, task *domain.Task) error {
	if _, err := r.coll.InsertOne(ctx, newTaskDocument(task)); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.toDomain()
}

func (r *taskRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_ns", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner": owner.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	update := bson.M{"$set": bson.M{
		"title":      task.Title,
		"status":     string(task.Status),
		"updated_at": task.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": task.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
