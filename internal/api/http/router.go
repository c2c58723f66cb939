package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gridpulse/streetlight-dispatch/internal/api/http/handlers"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Workers        *handlers.WorkersHandler
	Assets         *handlers.AssetsHandler
	Tickets        *handlers.TicketsHandler
	Tasks          *handlers.TasksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Workers.Register)
	authGroup.Post("/login", cfg.Workers.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	workers := protected.Group("/workers")
	workers.Get("/me", cfg.Workers.Me)
	workers.Get("/linemen", auth.RequireAdmin(), cfg.Workers.ListLinemen)

	protected.Put("/location", cfg.Workers.UpdateLocation)

	assets := protected.Group("/assets")
	assets.Post("", auth.RequireAdmin(), cfg.Assets.Register)
	assets.Get("", cfg.Assets.List)
	assets.Get("/:id", cfg.Assets.Get)
	assets.Patch("/:id/status", cfg.Assets.UpdateStatus)

	tickets := protected.Group("/tickets", auth.RequireAdmin())
	tickets.Get("", cfg.Tickets.List)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Get("/:id/history", cfg.Tickets.History)

	tasks := protected.Group("/tasks")
	tasks.Get("/nearby", auth.RequireLineman(), cfg.Tasks.Nearby)
	tasks.Get("/mine", auth.RequireLineman(), cfg.Tasks.Mine)
	tasks.Post("/:id/claim", auth.RequireLineman(), cfg.Tasks.Claim)
	tasks.Post("/:id/resolve", auth.RequireRole(domain.WorkerRoleLineman, domain.WorkerRoleAdmin), cfg.Tasks.Resolve)
}
