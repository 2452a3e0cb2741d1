package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpadapter "github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/tasks/internal/core/domain"
	"github.com/vncsmyrnk/tasks/internal/core/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := memory.New()
	userRepo := memory.NewUserRepository(db)
	authService := services.NewAuthService(
		userRepo,
		services.NewPasswordHasher(bcrypt.MinCost),
		services.NewTokenManager(services.TokenConfig{Secret: "client-secret", Issuer: "tasks-test"}),
	)

	handler := httpadapter.NewHandler(httpadapter.Handlers{
		Auth: httpadapter.NewAuthHandler(authService, logger),
		User: httpadapter.NewUserHandler(services.NewUserService(userRepo), logger),
		Task: httpadapter.NewTaskHandler(services.NewTaskService(memory.NewTaskRepository(db)), logger),
	}, httpadapter.Options{AuthService: authService, Logger: logger})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) last() string {
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type harness struct {
	srv     *httptest.Server
	store   TokenStore
	session *Session
	api     *API
	nav     *recordingNavigator
}

func newHarness(t *testing.T, srv *httptest.Server, store TokenStore) *harness {
	t.Helper()
	session := NewSession(store)
	return &harness{
		srv:     srv,
		store:   store,
		session: session,
		api:     NewAPI(srv.URL, session, WithHTTPClient(srv.Client())),
		nav:     &recordingNavigator{},
	}
}

func (h *harness) register(t *testing.T, name, email, password string) {
	t.Helper()
	view := NewRegisterView(h.api, h.session, h.nav)
	view.Name, view.Email, view.Password = name, email, password
	require.NoError(t, view.Submit(context.Background()))
}

func TestRegisterView_LogsInAndNavigates(t *testing.T) {
	h := newHarness(t, newTestServer(t), &MemoryTokenStore{})

	h.register(t, "Alice", "alice@example.com", "hunter22")

	snap := h.session.Snapshot()
	assert.NotEmpty(t, snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Alice", snap.User.Name)
	assert.Equal(t, RouteDashboard, h.nav.last())

	stored, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Token, stored)
}

func TestRegisterView_DuplicateEmailKeepsFields(t *testing.T) {
	srv := newTestServer(t)
	newHarness(t, srv, &MemoryTokenStore{}).register(t, "Alice", "alice@example.com", "hunter22")

	h := newHarness(t, srv, &MemoryTokenStore{})
	view := NewRegisterView(h.api, h.session, h.nav)
	view.Name, view.Email, view.Password = "Alice Again", "alice@example.com", "other"

	err := view.Submit(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "email already registered", view.Error)
	assert.Equal(t, "Alice Again", view.Name)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Empty(t, h.session.Token())
	assert.Empty(t, h.nav.routes)
}

func TestLoginView(t *testing.T) {
	srv := newTestServer(t)
	newHarness(t, srv, &MemoryTokenStore{}).register(t, "Alice", "alice@example.com", "hunter22")

	t.Run("wrong password", func(t *testing.T) {
		h := newHarness(t, srv, &MemoryTokenStore{})
		view := NewLoginView(h.api, h.session, h.nav)
		view.Email, view.Password = "alice@example.com", "wrong"

		require.Error(t, view.Submit(context.Background()))
		assert.Equal(t, "invalid email or password", view.Error)
		assert.Equal(t, "wrong", view.Password)
		assert.Empty(t, h.session.Token())
	})

	t.Run("success", func(t *testing.T) {
		h := newHarness(t, srv, &MemoryTokenStore{})
		view := NewLoginView(h.api, h.session, h.nav)
		view.Email, view.Password = "alice@example.com", "hunter22"

		require.NoError(t, view.Submit(context.Background()))
		assert.Empty(t, view.Error)
		assert.NotEmpty(t, h.session.Token())
		assert.Equal(t, RouteDashboard, h.nav.last())
	})
}

func TestLoginView_UnreachableServerUsesFallback(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	session := NewSession(&MemoryTokenStore{})
	view := NewLoginView(NewAPI(url, session), session, &recordingNavigator{})
	view.Email, view.Password = "alice@example.com", "hunter22"

	require.Error(t, view.Submit(context.Background()))
	assert.Equal(t, "Login failed", view.Error)
}

func TestDashboard_FilterFollowsToggle(t *testing.T) {
	h := newHarness(t, newTestServer(t), &MemoryTokenStore{})
	h.register(t, "Alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	dash := NewDashboardView(h.api, h.session, h.nav)
	require.NoError(t, dash.Load(ctx))
	assert.Empty(t, dash.Tasks)

	dash.Title = "Buy milk"
	require.NoError(t, dash.Create(ctx))
	assert.Empty(t, dash.Title)
	require.Len(t, dash.Tasks, 1)
	assert.Equal(t, "Buy milk", dash.Tasks[0].Title)
	assert.Equal(t, domain.TaskStatusPending, dash.Tasks[0].Status)

	dash.StatusFilter = string(domain.TaskStatusCompleted)
	dash.Search = "MILK"
	assert.Empty(t, dash.Visible())

	require.NoError(t, dash.Toggle(ctx, dash.Tasks[0]))
	visible := dash.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Buy milk", visible[0].Title)

	require.NoError(t, dash.Toggle(ctx, dash.Tasks[0]))
	assert.Equal(t, domain.TaskStatusPending, dash.Tasks[0].Status)
	assert.Empty(t, dash.Visible())
}

func TestDashboard_CreateBlankAndDelete(t *testing.T) {
	h := newHarness(t, newTestServer(t), &MemoryTokenStore{})
	h.register(t, "Alice", "alice@example.com", "hunter22")
	ctx := context.Background()

	dash := NewDashboardView(h.api, h.session, h.nav)
	dash.Title = "   "
	require.NoError(t, dash.Create(ctx))
	assert.Equal(t, "   ", dash.Title)
	assert.Empty(t, dash.Tasks)

	dash.Title = "Walk dog"
	require.NoError(t, dash.Create(ctx))
	require.Len(t, dash.Tasks, 1)
	id := dash.Tasks[0].ID

	require.NoError(t, dash.Delete(ctx, id))
	assert.Empty(t, dash.Tasks)

	err := dash.Delete(ctx, id)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "task not found", dash.Error)
}

func TestDashboard_Logout(t *testing.T) {
	h := newHarness(t, newTestServer(t), &MemoryTokenStore{})
	h.register(t, "Alice", "alice@example.com", "hunter22")

	dash := NewDashboardView(h.api, h.session, h.nav)
	require.NotNil(t, dash.User())

	require.NoError(t, dash.Logout())

	assert.Equal(t, RouteLogin, h.nav.last())
	assert.Equal(t, GateRedirectLogin, h.session.Gate())
	stored, err := h.store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)

	err = dash.Load(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSession_RestoreValidToken(t *testing.T) {
	srv := newTestServer(t)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "tasks", "token.json"))
	newHarness(t, srv, store).register(t, "Alice", "alice@example.com", "hunter22")

	h := newHarness(t, srv, store)
	assert.Equal(t, GateLoading, h.session.Gate())

	var seen []State
	unsubscribe := h.session.Subscribe(func(s State) { seen = append(seen, s) })
	defer unsubscribe()

	require.NoError(t, h.session.Restore(context.Background(), h.api))

	snap := h.session.Snapshot()
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice@example.com", snap.User.Email)
	assert.Equal(t, GateAllow, h.session.Gate())

	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[len(seen)-1].Loading)
}

func TestSession_RestoreInvalidTokenClearsIt(t *testing.T) {
	srv := newTestServer(t)
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save("not-a-real-token"))

	h := newHarness(t, srv, store)
	err := h.session.Restore(context.Background(), h.api)

	require.Error(t, err)
	assert.Equal(t, GateRedirectLogin, h.session.Gate())
	stored, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, stored)
}

func TestSession_RestoreKeepsTokenWhenServerUnreachable(t *testing.T) {
	srv := newTestServer(t)
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	newHarness(t, srv, store).register(t, "Alice", "alice@example.com", "hunter22")
	saved, err := store.Load()
	require.NoError(t, err)
	require.NotEmpty(t, saved)

	h := newHarness(t, srv, store)
	srv.Close()

	err = h.session.Restore(context.Background(), h.api)

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	stored, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Equal(t, saved, stored)
	assert.False(t, h.session.Snapshot().Loading)
	assert.Equal(t, saved, h.session.Token())
}

type failingClearStore struct {
	MemoryTokenStore
}

func (s *failingClearStore) Clear() error {
	return assert.AnError
}

func TestSession_RestoreReportsClearFailure(t *testing.T) {
	store := &failingClearStore{}
	require.NoError(t, store.Save("not-a-real-token"))

	h := newHarness(t, newTestServer(t), store)
	err := h.session.Restore(context.Background(), h.api)

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, GateRedirectLogin, h.session.Gate())
}

func TestSession_RestoreWithoutToken(t *testing.T) {
	h := newHarness(t, newTestServer(t), &MemoryTokenStore{})

	require.NoError(t, h.session.Restore(context.Background(), h.api))
	assert.Equal(t, GateRedirectLogin, h.session.Gate())
}

func TestSession_SubscribeAndUnsubscribe(t *testing.T) {
	session := NewSession(&MemoryTokenStore{})

	var calls int
	unsubscribe := session.Subscribe(func(State) { calls++ })

	require.NoError(t, session.Login("tok", domain.PublicUser{Name: "Alice"}))
	assert.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, session.Logout())
	assert.Equal(t, 1, calls)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	session := NewSession(&MemoryTokenStore{})
	require.NoError(t, session.Login("tok", domain.PublicUser{Name: "Alice"}))

	snap := session.Snapshot()
	snap.User.Name = "Mallory"

	assert.Equal(t, "Alice", session.Snapshot().User.Name)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileTokenStore(path)

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewFileTokenStore(path).Load()
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", ErrorMessage(&APIError{StatusCode: 400, Message: "boom"}, "fallback"))
	assert.Equal(t, "fallback", ErrorMessage(&APIError{StatusCode: 400}, "fallback"))
	assert.Equal(t, "fallback", ErrorMessage(assert.AnError, "fallback"))
}
