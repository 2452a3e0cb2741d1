// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

// DB holds users and tasks behind a single mutex. Values are copied in and
// out so callers never share memory with the store.
type DB struct {
	mu sync.Mutex

	users        map[uuid.UUID]domain.User
	usersByEmail map[string]uuid.UUID

	tasks     map[uuid.UUID]domain.Task
	taskOrder []uuid.UUID
}

func New() *DB {
	return &DB{
		users:        make(map[uuid.UUID]domain.User),
		usersByEmail: make(map[string]uuid.UUID),
		tasks:        make(map[uuid.UUID]domain.Task),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)
var _ ports.TaskRepository = (*TaskRepository)(nil)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.usersByEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	r.db.users[user.ID] = *user
	r.db.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, ok := r.db.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.db.users[id]
	return &user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Save(_ context.Context, task *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.tasks[task.ID]; !exists {
		r.db.taskOrder = append(r.db.taskOrder, task.ID)
	}
	r.db.tasks[task.ID] = *task
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	task, ok := r.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

// ListByOwner walks insertion order, which is creation order for tasks
// created through the service.
func (r *TaskRepository) ListByOwner(_ context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	tasks := []*domain.Task{}
	for _, id := range r.db.taskOrder {
		task := r.db.tasks[id]
		if task.Owner == owner {
			tasks = append(tasks, &task)
		}
	}
	return tasks, nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.db.tasks[task.ID] = *task
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.db.tasks, id)
	for i, taskID := range r.db.taskOrder {
		if taskID == id {
			r.db.taskOrder = append(r.db.taskOrder[:i], r.db.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}
