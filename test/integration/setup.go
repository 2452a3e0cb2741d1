package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/mongodb"
	repo "github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
	"github.com/vncsmyrnk/tasks/internal/core/services"
)

const (
	testSecret = "test-secret"
	testIssuer = "tasks-test"
)

type TestApp struct {
	DB        *sql.DB
	Server    *httptest.Server
	Client    *http.Client
	Container testcontainers.Container
	closeFn   func(context.Context) error
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupMongoContainer(ctx context.Context) (testcontainers.Container, string, error) {
	mongoContainer, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		return nil, "", fmt.Errorf("failed to start mongo container: %w", err)
	}

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		return nil, "", err
	}

	return mongoContainer, uri, nil
}

func newRouter(users ports.UserRepository, tasks ports.TaskRepository) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	authSvc := services.NewAuthService(
		users,
		services.NewPasswordHasher(bcrypt.MinCost),
		services.NewTokenManager(services.TokenConfig{Secret: testSecret, Issuer: testIssuer}),
	)

	return handler.NewHandler(handler.Handlers{
		Auth: handler.NewAuthHandler(authSvc, logger),
		User: handler.NewUserHandler(services.NewUserService(users), logger),
		Task: handler.NewTaskHandler(services.NewTaskService(tasks), logger),
	}, handler.Options{
		AuthService:    authSvc,
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})
}

func setupPostgresApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL)
	require.NoError(t, err)

	require.NoError(t, repo.Migrate(ctx, db))
	// Running twice must be harmless.
	require.NoError(t, repo.Migrate(ctx, db))

	server := httptest.NewServer(newRouter(repo.NewUserRepository(db), repo.NewTaskRepository(db)))

	return &TestApp{
		DB:        db,
		Server:    server,
		Client:    server.Client(),
		Container: dbContainer,
		closeFn:   func(context.Context) error { return db.Close() },
	}
}

func setupMongoApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, uri, err := setupMongoContainer(ctx)
	require.NoError(t, err)

	client, err := mongodb.Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("tasks_test")
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))

	server := httptest.NewServer(newRouter(mongodb.NewUserRepository(db), mongodb.NewTaskRepository(db)))

	return &TestApp{
		Server:    server,
		Client:    server.Client(),
		Container: container,
		closeFn:   client.Disconnect,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	if err := app.closeFn(context.Background()); err != nil {
		t.Logf("failed to close store: %v", err)
	}
	if err := app.Container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// forEachStore runs fn against a fresh app on every persistent store.
func forEachStore(t *testing.T, fn func(t *testing.T, app *TestApp)) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stores := []struct {
		name  string
		setup func(*testing.T) *TestApp
	}{
		{"postgres", setupPostgresApp},
		{"mongo", setupMongoApp},
	}

	for _, store := range stores {
		t.Run(store.name, func(t *testing.T) {
			app := store.setup(t)
			defer app.Teardown(t)
			fn(t, app)
		})
	}
}

func (app *TestApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (app *TestApp) register(t *testing.T, name, email, password string) ports.AuthResult {
	t.Helper()
	resp := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[ports.AuthResult](t, resp)
}

// createUserAndToken inserts a user directly and mints a token for it
// outside the service, the way another instance sharing the secret would.
func createUserAndToken(t *testing.T, db *sql.DB) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := db.Exec("INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4)", userID, email, name, "x")
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iss": testIssuer,
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return userID, signedToken
}
