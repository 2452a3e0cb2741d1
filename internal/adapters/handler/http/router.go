package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vncsmyrnk/tasks/internal/core/ports"

	_ "github.com/vncsmyrnk/tasks/docs"
)

type Handlers struct {
	Auth *AuthHandler
	User *UserHandler
	Task *TaskHandler
}

type Options struct {
	AuthService    ports.AuthService
	AllowedOrigins []string
	Logger         logrus.FieldLogger
}

func NewHandler(h Handlers, opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/", health)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(RequireAuth(opts.AuthService)).Get("/me", h.User.GetMe)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(RequireAuth(opts.AuthService))
			r.Get("/", h.Task.ListTasks)
			r.Post("/", h.Task.CreateTask)
			r.Put("/{id}", h.Task.UpdateTask)
			r.Delete("/{id}", h.Task.DeleteTask)
		})
	})

	return r
}

// health godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "API is running"})
}
