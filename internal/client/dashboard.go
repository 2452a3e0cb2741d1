package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
)

const StatusAll = "all"

// DashboardView holds the caller's full task list plus local search and
// status filters. Every mutation re-fetches the list from the server.
type DashboardView struct {
	Tasks        []domain.Task
	Title        string
	Search       string
	StatusFilter string
	Error        string

	api     *API
	session *Session
	nav     Navigator
}

func NewDashboardView(api *API, session *Session, nav Navigator) *DashboardView {
	return &DashboardView{
		StatusFilter: StatusAll,
		api:          api,
		session:      session,
		nav:          nav,
	}
}

// User is the logged-in user shown in the header, nil when unknown.
func (v *DashboardView) User() *domain.PublicUser {
	return v.session.Snapshot().User
}

func (v *DashboardView) Load(ctx context.Context) error {
	tasks, err := v.api.ListTasks(ctx)
	if err != nil {
		v.Error = ErrorMessage(err, "Failed to load tasks")
		return err
	}
	v.Tasks = tasks
	v.Error = ""
	return nil
}

// Create adds a task titled v.Title. Blank titles are ignored without a
// request; the title field is cleared on success.
func (v *DashboardView) Create(ctx context.Context) error {
	if strings.TrimSpace(v.Title) == "" {
		return nil
	}
	if _, err := v.api.CreateTask(ctx, v.Title); err != nil {
		v.Error = ErrorMessage(err, "Failed to create task")
		return err
	}
	v.Title = ""
	return v.Load(ctx)
}

func (v *DashboardView) Toggle(ctx context.Context, task domain.Task) error {
	if _, err := v.api.UpdateTaskStatus(ctx, task.ID, task.Status.Toggled()); err != nil {
		v.Error = ErrorMessage(err, "Failed to update task")
		return err
	}
	return v.Load(ctx)
}

func (v *DashboardView) Delete(ctx context.Context, id uuid.UUID) error {
	if err := v.api.DeleteTask(ctx, id); err != nil {
		v.Error = ErrorMessage(err, "Failed to delete task")
		return err
	}
	return v.Load(ctx)
}

// Visible returns the tasks matching both the search text and the status
// filter, in list order.
func (v *DashboardView) Visible() []domain.Task {
	out := make([]domain.Task, 0, len(v.Tasks))
	for _, t := range v.Tasks {
		if !containsFold(t.Title, v.Search) {
			continue
		}
		if v.StatusFilter != "" && v.StatusFilter != StatusAll && string(t.Status) != v.StatusFilter {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (v *DashboardView) Logout() error {
	err := v.session.Logout()
	v.Tasks = nil
	v.nav.Navigate(RouteLogin)
	return err
}
