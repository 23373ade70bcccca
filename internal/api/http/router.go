package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Queues         *handlers.QueuesHandler
	Tickets        *handlers.TicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	users.Post("/login", cfg.Users.Login)
	users.Post("/register", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Users.Register)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
	users.Get("/", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Users.List)

	queues := app.Group("/queues", cfg.AuthMiddleware.Handle)
	queues.Post("/", cfg.Queues.Create)
	queues.Get("/", cfg.Queues.List)
	queues.Get("/:id", cfg.Queues.Get)
	queues.Put("/:id", cfg.Queues.Update)
	queues.Delete("/:id", cfg.Queues.Delete)
	queues.Get("/:id/stats", cfg.Queues.Stats)
	queues.Get("/:id/tickets", cfg.Queues.Tickets)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Enqueue)
	tickets.Post("/next", cfg.Tickets.CallNext)
	tickets.Get("/:id/messages", cfg.Tickets.Messages)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
	tickets.Post("/:id/serve", cfg.Tickets.Serve)

	app.Get("/dashboard", cfg.Dashboard.Overview)
}
