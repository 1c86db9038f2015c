// Package app assembles the services and HTTP server from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mail"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/settings"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// Options are the runtime collaborators the container does not create itself.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	Store  repository.Store
	// Redis is optional; without it settings changes stay local to this instance.
	Redis  *redis.Client
	Checks []handlers.Check
	Sender mail.Sender
	Clock  service.Clock
}

// Container holds the wired application.
type Container struct {
	HTTP     *fiber.App
	Settings *settings.Store
	Worker   *worker.NotificationWorker
	Listener *worker.SettingsListener
	Auth     *service.AuthService
	Metrics  *observability.Metrics
}

// New wires every service and registers the HTTP routes. The settings snapshot is loaded before returning.
func New(ctx context.Context, opts Options) (*Container, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics()
	snapshot := settings.NewStore(opts.Store, logger)
	if err := snapshot.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	sender := opts.Sender
	if sender == nil {
		sender = mail.NewSender(cfg.Notification, logger)
	}
	notifications := worker.NewNotificationWorker(sender, logger, metrics, cfg.Notification.QueueSize)

	broadcaster := settings.NoopBroadcaster()
	var listener *worker.SettingsListener
	if opts.Redis != nil {
		broadcaster = settings.NewRedisBroadcaster(opts.Redis, cfg.Redis.SettingsChannel)
		listener = worker.NewSettingsListener(opts.Redis, cfg.Redis.SettingsChannel, snapshot, logger)
	}

	deps := service.Dependencies{
		Store:      opts.Store,
		Dispatcher: events.NewInMemoryDispatcher(),
		Enforcer:   enforcer,
		Settings:   snapshot,
		Metrics:    metrics,
		Logger:     logger,
		Clock:      opts.Clock,
	}
	service.NewNotificationService(deps, notifications).RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(deps, tokens, cfg.Auth.BcryptCost)
	adminService := service.NewAdminService(deps, broadcaster, cfg.Auth.BcryptCost)

	server := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(server, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, opts.Checks...),
		Auth:   handlers.NewAuthHandler(authService),
		Tickets: handlers.NewTicketsHandler(
			service.NewTicketService(deps),
			service.NewTransitionService(deps),
			service.NewAssignmentService(deps),
		),
		Comments:       handlers.NewCommentsHandler(service.NewCommentService(deps)),
		Time:           handlers.NewTimeHandler(service.NewTimeEntryService(deps)),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(deps)),
		Admin:          handlers.NewAdminHandler(adminService),
		Assets:         handlers.NewAssetsHandler(service.NewAssetService(deps)),
		Knowledge:      handlers.NewKnowledgeHandler(service.NewKnowledgeService(deps)),
		Expenses:       handlers.NewExpensesHandler(service.NewExpenseService(deps)),
		Reports:        handlers.NewReportsHandler(service.NewReportService(deps)),
		Search:         handlers.NewSearchHandler(service.NewSearchService(deps)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, opts.Store),
		Enforcer:       enforcer,
		Registry:       metrics.Registry,
	})

	return &Container{
		HTTP:     server,
		Settings: snapshot,
		Worker:   notifications,
		Listener: listener,
		Auth:     authService,
		Metrics:  metrics,
	}, nil
}
