package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(New())

	user := &domain.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	_, err = repo.GetByEmail(ctx, "Ada@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	dup := &domain.User{ID: uuid.New(), Name: "Other", Email: "ada@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailTaken)

	got, err = repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserRepository_ConcurrentDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(New())

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(ctx, &domain.User{ID: uuid.New(), Email: "race@example.com"})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrEmailTaken)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(New())
	owner, other := uuid.New(), uuid.New()
	now := time.Now()

	first := &domain.Task{ID: uuid.New(), Title: "first", Status: domain.TaskStatusPending, Owner: owner, CreatedAt: now}
	second := &domain.Task{ID: uuid.New(), Title: "second", Status: domain.TaskStatusPending, Owner: owner, CreatedAt: now.Add(time.Second)}
	foreign := &domain.Task{ID: uuid.New(), Title: "foreign", Status: domain.TaskStatusPending, Owner: other, CreatedAt: now}
	for _, task := range []*domain.Task{first, foreign, second} {
		require.NoError(t, repo.Save(ctx, task))
	}

	tasks, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)

	// returned values are copies
	tasks[0].Title = "mutated"
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	got.Status = domain.TaskStatusCompleted
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	assert.ErrorIs(t, repo.Update(ctx, &domain.Task{ID: uuid.New()}), domain.ErrTaskNotFound)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domain.ErrTaskNotFound)

	tasks, err = repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "second", tasks[0].Title)

	tasks, err = repo.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
