package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/task-tracker-api/internal/api"
	apiMiddleware "github.com/phrazzld/task-tracker-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.RequestID(app.logger))
	r.Use(apiMiddleware.Logging)
	r.Use(apiMiddleware.Metrics(app.metrics))
	r.Use(chimw.Recoverer)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	// A nil *sql.DB must not reach the handler as a non-nil Pinger.
	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	opsHandler := api.NewOpsHandler(pinger, app.metrics, app.config.Server.Version, app.logger)

	r.Route(app.config.Server.APIPrefix, func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Get("/ops/health", opsHandler.Health)
		r.Get("/ops/metrics", opsHandler.Metrics)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.Post("/bulk/transition", taskHandler.BulkTransition)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Patch("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)
					r.Delete("/force", taskHandler.ForceDeleteTask)
					r.Post("/assign", taskHandler.AssignTask)
					r.Post("/transition", taskHandler.TransitionTask)
				})
			})
		})
	})

	return r
}
