package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

type mockUserRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	createFn     func(ctx context.Context, user *domain.User) error
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

type mockTaskRepo struct {
	saveFn        func(ctx context.Context, task *domain.Task) error
	getByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByOwnerFn func(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)
	updateFn      func(ctx context.Context, task *domain.Task) error
	deleteFn      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Save(ctx context.Context, task *domain.Task) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrTaskNotFound
}

func (m *mockTaskRepo) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, owner)
	}
	return nil, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
