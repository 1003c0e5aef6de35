package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/campus-kit/complaint-service/internal/api/http/handlers"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AdminUsers     *handlers.AdminUsersHandler
	Reference      *handlers.ReferenceHandler
	Complaints     *handlers.ComplaintsHandler
	Coordinator    *handlers.CoordinatorHandler
	Worker         *handlers.WorkerHandler
	Dashboards     *handlers.DashboardsHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Each role gets its own route group gated
// on an exact role match; there is no privilege hierarchy between groups.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/email/verify", cfg.Auth.VerifyEmail)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	app.Get("/", cfg.AuthMiddleware.Handle, cfg.Auth.Home)

	// Complaint submission and tracking require a verified account.
	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireVerified())
	complaints.Post("/", cfg.Complaints.Submit)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Post("/track", cfg.Complaints.Track)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Get("/:id/image", cfg.Complaints.Image)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/dashboard", cfg.Dashboards.Admin)
	admin.Get("/users", cfg.AdminUsers.ListUsers)
	admin.Post("/users", cfg.AdminUsers.CreateUser)
	admin.Put("/users/:id", cfg.AdminUsers.UpdateUser)
	admin.Delete("/users/:id", cfg.AdminUsers.DeleteUser)
	admin.Post("/users/:id/reset-password", cfg.AdminUsers.ResetPassword)
	admin.Get("/campuses", cfg.Reference.ListCampuses)
	admin.Post("/campuses", cfg.Reference.CreateCampus)
	admin.Put("/campuses/:id", cfg.Reference.UpdateCampus)
	admin.Get("/complaint-types", cfg.Reference.ListComplaintTypes)
	admin.Post("/complaint-types", cfg.Reference.CreateComplaintType)
	admin.Put("/complaint-types/:id", cfg.Reference.UpdateComplaintType)

	vp := app.Group("/vp", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleVP))
	vp.Get("/dashboard", cfg.Dashboards.Oversight)
	vp.Post("/complaints/:id/verify", cfg.Coordinator.Verify)

	director := app.Group("/director", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleDirector))
	director.Get("/dashboard", cfg.Dashboards.Oversight)

	coordinator := app.Group("/coordinator", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleCoordinator))
	coordinator.Get("/dashboard", cfg.Dashboards.Coordinator)
	coordinator.Post("/complaints/:id/assign", cfg.Coordinator.AssignWorker)
	coordinator.Post("/complaints/:id/status", cfg.Coordinator.UpdateStatus)
	coordinator.Post("/complaints/:id/verify", cfg.Coordinator.Verify)

	worker := app.Group("/worker", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleWorker))
	worker.Get("/dashboard", cfg.Dashboards.Worker)
	worker.Post("/complaints/:id/status", cfg.Worker.UpdateStatus)
	worker.Post("/complaints/:id/progress", cfg.Worker.AddProgressUpdate)

	complainer := app.Group("/complainer", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleComplainer))
	complainer.Get("/dashboard", cfg.Dashboards.Complainer)
}
