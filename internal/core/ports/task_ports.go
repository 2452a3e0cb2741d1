package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

// TaskRepository misses return domain.ErrTaskNotFound.
// ListByOwner returns tasks oldest first.
type TaskRepository interface {
	Save(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateTaskInput fields are optional; nil leaves the field untouched.
type UpdateTaskInput struct {
	Status *string
	Title  *string
}

type TaskService interface {
	CreateTask(ctx context.Context, userID uuid.UUID, title string) (*domain.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}
