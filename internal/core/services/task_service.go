package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

type taskService struct {
	repo ports.TaskRepository
	now  func() time.Time
}

func NewTaskService(repo ports.TaskRepository) ports.TaskService {
	return &taskService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *taskService) CreateTask(ctx context.Context, userID uuid.UUID, title string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	now := s.now()
	task := &domain.Task{
		ID:        uuid.New(),
		Title:     title,
		Status:    domain.TaskStatusPending,
		Owner:     userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *taskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, input ports.UpdateTaskInput) (*domain.Task, error) {
	if input.Status == nil && input.Title == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status, err := domain.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
		}
		task.Title = title
	}
	task.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ownedTask hides tasks of other users behind ErrTaskNotFound.
func (s *taskService) ownedTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if !task.OwnedBy(userID) {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}
