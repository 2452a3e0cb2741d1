package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

func TestTaskFlow(t *testing.T) {
	forEachStore(t, func(t *testing.T, app *TestApp) {
		token := app.register(t, "Alice", "alice@example.com", "hunter22").Token

		resp := app.do(t, http.MethodPost, "/api/tasks", token, map[string]string{"title": "Buy milk"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		task := decode[domain.Task](t, resp)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, domain.TaskStatusPending, task.Status)

		resp = app.do(t, http.MethodPost, "/api/tasks", token, map[string]string{"title": "Walk dog"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = app.do(t, http.MethodGet, "/api/tasks", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		tasks := decode[[]domain.Task](t, resp)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Buy milk", tasks[0].Title)
		assert.Equal(t, "Walk dog", tasks[1].Title)

		path := "/api/tasks/" + task.ID.String()
		for _, status := range []domain.TaskStatus{domain.TaskStatusCompleted, domain.TaskStatusPending} {
			resp = app.do(t, http.MethodPut, path, token, map[string]string{"status": string(status)})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, status, decode[domain.Task](t, resp).Status)
		}

		resp = app.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = app.do(t, http.MethodGet, "/api/tasks", token, nil)
		tasks = decode[[]domain.Task](t, resp)
		require.Len(t, tasks, 1)
		assert.NotEqual(t, task.ID, tasks[0].ID)

		resp = app.do(t, http.MethodDelete, path, token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTasks_OwnerScoping(t *testing.T) {
	forEachStore(t, func(t *testing.T, app *TestApp) {
		alice := app.register(t, "Alice", "alice@example.com", "hunter22").Token
		bob := app.register(t, "Bob", "bob@example.com", "hunter22").Token

		resp := app.do(t, http.MethodPost, "/api/tasks", alice, map[string]string{"title": "Private"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		path := "/api/tasks/" + decode[domain.Task](t, resp).ID.String()

		resp = app.do(t, http.MethodGet, "/api/tasks", bob, nil)
		assert.Empty(t, decode[[]domain.Task](t, resp))

		resp = app.do(t, http.MethodPut, path, bob, map[string]string{"status": "completed"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = app.do(t, http.MethodDelete, path, bob, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTasks_Unauthorized(t *testing.T) {
	forEachStore(t, func(t *testing.T, app *TestApp) {
		resp := app.do(t, http.MethodGet, "/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = app.do(t, http.MethodPost, "/api/tasks", "garbage", map[string]string{"title": "x"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPostgresListByOwner_SameTimestampKeepsInsertionOrder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupPostgresApp(t)
	defer app.Teardown(t)

	owner, _ := createUserAndToken(t, app.DB)
	tasks := repo.NewTaskRepository(app.DB)
	ctx := context.Background()

	createdAt := time.Now().UTC().Truncate(time.Microsecond)
	var want []uuid.UUID
	for i := 0; i < 20; i++ {
		task := &domain.Task{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("task %d", i),
			Status:    domain.TaskStatusPending,
			Owner:     owner,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		require.NoError(t, tasks.Save(ctx, task))
		want = append(want, task.ID)
	}

	listed, err := tasks.ListByOwner(ctx, owner)
	require.NoError(t, err)

	got := make([]uuid.UUID, 0, len(listed))
	for _, task := range listed {
		got = append(got, task.ID)
	}
	assert.Equal(t, want, got)
}
