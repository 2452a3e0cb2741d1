package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vncsmyrnk/tasks/internal/adapters/handler/http"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/mongodb"
	"github.com/vncsmyrnk/tasks/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/tasks/internal/config"
	"github.com/vncsmyrnk/tasks/internal/core/ports"
	"github.com/vncsmyrnk/tasks/internal/core/services"
)

//	@title			Tasks API
//	@version		1.0
//	@description	Accounts and personal task lists behind bearer tokens.
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

type repositories struct {
	users ports.UserRepository
	tasks ports.TaskRepository
	close func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize store: %v", err)
	}

	authService := services.NewAuthService(
		repos.users,
		services.NewPasswordHasher(cfg.BcryptCost),
		services.NewTokenManager(services.TokenConfig{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.TokenTTL,
		}),
	)
	userService := services.NewUserService(repos.users)
	taskService := services.NewTaskService(repos.tasks)

	handler := http.NewHandler(http.Handlers{
		Auth: http.NewAuthHandler(authService, logger),
		User: http.NewUserHandler(userService, logger),
		Task: http.NewTaskHandler(taskService, logger),
	}, http.Options{
		AuthService:    authService,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	server := &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "store": cfg.StoreDriver}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	if err := repos.close(shutdownCtx); err != nil {
		logger.Errorf("Failed to close store: %v", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("Connected to postgres")
		return &repositories{
			users: postgres.NewUserRepository(db),
			tasks: postgres.NewTaskRepository(db),
			close: func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.WithField("database", cfg.MongoDatabase).Info("Connected to mongo")
		return &repositories{
			users: mongodb.NewUserRepository(db),
			tasks: mongodb.NewTaskRepository(db),
			close: client.Disconnect,
		}, nil

	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		db := memory.New()
		return &repositories{
			users: memory.NewUserRepository(db),
			tasks: memory.NewTaskRepository(db),
			close: func(context.Context) error { return nil },
		}, nil
	}
}
