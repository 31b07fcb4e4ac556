package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-todo-list/internal/handler"
	"go-todo-list/internal/metrics"
	"go-todo-list/internal/middleware"
	"go-todo-list/internal/model"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	// Metrics is optional; /metrics is only mounted when it is set.
	Metrics *metrics.Metrics
}

type Handlers struct {
	Auth   *handler.AuthHandler
	Todo   *handler.TodoHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
	Docs   *handler.DocsHandler
}

func New(opts Options, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.CORS(opts.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/", h.Health.Banner)
	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if h.Docs != nil {
		r.Get("/openapi.yaml", h.Docs.OpenAPI)
		r.Get("/swagger", h.Docs.SwaggerUI)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(opts.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(authMiddleware.RequireBearer).Get("/me", h.Auth.Me)
		})

		api.Route("/todos", func(todos chi.Router) {
			todos.Use(authMiddleware.RequireAuth)
			todos.Get("/", h.Todo.List)
			todos.Post("/", h.Todo.Create)
			todos.Put("/{id}", h.Todo.Update)
			todos.Delete("/{id}", h.Todo.Delete)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))
			admin.Get("/users", h.Admin.ListUsers)
			admin.Patch("/users/{id}/role", h.Admin.ChangeRole)
			admin.Get("/todos", h.Admin.ListTodos)
		})
	})

	return r
}
