package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Time           *handlers.TimeHandler
	Dashboard      *handlers.DashboardHandler
	Admin          *handlers.AdminHandler
	Assets         *handlers.AssetsHandler
	Knowledge      *handlers.KnowledgeHandler
	Expenses       *handlers.ExpensesHandler
	Reports        *handlers.ReportsHandler
	Search         *handlers.SearchHandler
	AuthMiddleware *auth.AuthMiddleware
	Enforcer       *auth.Enforcer
	Registry       *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authed := cfg.AuthMiddleware.Handle
	protectedAuth := authGroup.Group("", authed, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Auth.ChangePassword)
	protectedAuth.Get("/me", cfg.Auth.Me)

	need := func(resource, action string) fiber.Handler {
		return auth.RequirePermission(cfg.Enforcer, resource, action)
	}

	app.Get("/lookups", authed, need(auth.ResourceLookup, auth.ActionRead), cfg.Admin.Lookups)

	tickets := app.Group("/tickets", authed)
	tickets.Get("/", need(auth.ResourceTicket, auth.ActionRead), cfg.Tickets.ListTickets)
	tickets.Post("/", need(auth.ResourceTicket, auth.ActionCreate), cfg.Tickets.CreateTicket)
	tickets.Get("/:id", need(auth.ResourceTicket, auth.ActionRead), cfg.Tickets.GetTicket)
	tickets.Patch("/:id", need(auth.ResourceTicket, auth.ActionUpdate), cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", need(auth.ResourceTicket, auth.ActionDelete), cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/status", need(auth.ResourceTicket, auth.ActionStatus), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", need(auth.ResourceTicket, auth.ActionAssign), cfg.Tickets.Assign)

	tickets.Get("/:id/comments", need(auth.ResourceComment, auth.ActionRead), cfg.Comments.List)
	tickets.Post("/:id/comments", need(auth.ResourceComment, auth.ActionCreate), cfg.Comments.Create)

	tickets.Get("/:id/time", need(auth.ResourceTime, auth.ActionRead), cfg.Time.List)
	tickets.Post("/:id/time", need(auth.ResourceTime, auth.ActionCreate), cfg.Time.AddManual)
	tickets.Post("/:id/time/start", need(auth.ResourceTime, auth.ActionCreate), cfg.Time.Start)
	tickets.Post("/:id/time/stop", need(auth.ResourceTime, auth.ActionUpdate), cfg.Time.Stop)

	tickets.Get("/:id/assets", need(auth.ResourceAsset, auth.ActionRead), cfg.Assets.TicketAssets)
	tickets.Post("/:id/assets", need(auth.ResourceAsset, auth.ActionUpdate), cfg.Assets.Link)
	tickets.Delete("/:id/assets/:assetId", need(auth.ResourceAsset, auth.ActionUpdate), cfg.Assets.Unlink)

	tickets.Post("/:id/expenses", need(auth.ResourceExpense, auth.ActionCreate), cfg.Expenses.Add)

	timeEntries := app.Group("/time", authed)
	timeEntries.Get("/", need(auth.ResourceTime, auth.ActionRead), cfg.Reports.WorkLog)
	timeEntries.Patch("/:id", need(auth.ResourceTime, auth.ActionUpdate), cfg.Time.Update)
	timeEntries.Delete("/:id", need(auth.ResourceTime, auth.ActionUpdate), cfg.Time.Delete)

	expenses := app.Group("/expenses", authed)
	expenses.Get("/", need(auth.ResourceExpense, auth.ActionRead), cfg.Expenses.List)
	expenses.Patch("/:id", need(auth.ResourceExpense, auth.ActionUpdate), cfg.Expenses.Update)
	expenses.Delete("/:id", need(auth.ResourceExpense, auth.ActionUpdate), cfg.Expenses.Delete)

	assets := app.Group("/assets", authed)
	assets.Get("/", need(auth.ResourceAsset, auth.ActionRead), cfg.Assets.List)
	assets.Post("/", need(auth.ResourceAsset, auth.ActionCreate), cfg.Assets.Create)
	assets.Get("/:id", need(auth.ResourceAsset, auth.ActionRead), cfg.Assets.Get)
	assets.Patch("/:id", need(auth.ResourceAsset, auth.ActionUpdate), cfg.Assets.Update)
	assets.Delete("/:id", need(auth.ResourceAsset, auth.ActionDelete), cfg.Assets.Delete)
	assets.Post("/:id/assign", need(auth.ResourceAsset, auth.ActionUpdate), cfg.Assets.Assign)

	kb := app.Group("/kb", authed)
	kb.Get("/", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.Index)
	kb.Get("/search", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.Search)
	kb.Get("/categories", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.ListCategories)
	kb.Post("/categories", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.CreateCategory)
	kb.Get("/categories/:id", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.GetCategory)
	kb.Patch("/categories/:id", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.UpdateCategory)
	kb.Delete("/categories/:id", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.DeleteCategory)
	kb.Get("/articles", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.ListArticles)
	kb.Post("/articles", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.CreateArticle)
	kb.Get("/articles/:id", need(auth.ResourceKnowledge, auth.ActionRead), cfg.Knowledge.GetArticle)
	kb.Patch("/articles/:id", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.UpdateArticle)
	kb.Delete("/articles/:id", need(auth.ResourceKnowledge, auth.ActionManage), cfg.Knowledge.DeleteArticle)

	app.Get("/reports/time-expenses", authed, need(auth.ResourceReport, auth.ActionRead), cfg.Reports.TimeAndExpenses)
	app.Get("/search", authed, need(auth.ResourceSearch, auth.ActionRead), cfg.Search.Search)
	app.Get("/dashboard", authed, need(auth.ResourceDashboard, auth.ActionRead), cfg.Dashboard.Summary)

	admin := app.Group("/admin", authed, need(auth.ResourceAdmin, auth.ActionManage))
	admin.Get("/priorities", cfg.Admin.ListPriorities)
	admin.Post("/priorities", cfg.Admin.CreatePriority)
	admin.Patch("/priorities/:id", cfg.Admin.UpdatePriority)
	admin.Get("/statuses", cfg.Admin.ListStatuses)
	admin.Post("/statuses", cfg.Admin.CreateStatus)
	admin.Patch("/statuses/:id", cfg.Admin.UpdateStatus)
	admin.Get("/types", cfg.Admin.ListTypes)
	admin.Post("/types", cfg.Admin.CreateType)
	admin.Patch("/types/:id", cfg.Admin.UpdateType)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Patch("/users/:id", cfg.Admin.UpdateUser)
	admin.Post("/users/:id/reset-password", cfg.Admin.ResetPassword)
	admin.Get("/settings", cfg.Admin.GetSettings)
	admin.Put("/settings", cfg.Admin.UpdateSettings)
	admin.Put("/settings/notifications/:event", cfg.Admin.UpdateNotification)
	admin.Post("/settings/reload", cfg.Admin.ReloadSettings)
}
