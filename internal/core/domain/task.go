package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ParseTaskStatus accepts only the two known statuses.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusCompleted:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("%w: status must be %q or %q", ErrValidation, TaskStatusPending, TaskStatusCompleted)
	}
}

func (s TaskStatus) Toggled() TaskStatus {
	if s == TaskStatusCompleted {
		return TaskStatusPending
	}
	return TaskStatusCompleted
}

type Task struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Status    TaskStatus `json:"status"`
	Owner     uuid.UUID  `json:"owner"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.Owner == userID
}
