package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/app"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the helpdesk API. Without POSTGRES_DSN the server runs on a seeded in-memory store.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var (
		store  repository.Store
		checks []handlers.Check
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				return err
			}
		}
		store = repository.NewPostgresStore(pool)
		checks = append(checks, handlers.Check{Name: "postgres", Ping: pg.Ping})
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.NewSeededStore()
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()
	checks = append(checks, handlers.Check{Name: "redis", Ping: rdb.CheckSettingsChannel})

	container, err := app.New(ctx, app.Options{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Redis:  rdb.Client,
		Checks: checks,
	})
	if err != nil {
		return err
	}

	if err := container.Auth.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	container.Worker.Start(workerCtx)
	if container.Listener != nil {
		go func() {
			if err := container.Listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("settings listener stopped", zap.Error(err))
			}
		}()
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- container.HTTP.Listen(cfg.App.Addr())
	}()

	select {
	case err = <-listenErr:
		logger.Error("http server stopped", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	if shutdownErr := container.HTTP.Shutdown(); shutdownErr != nil {
		logger.Warn("http shutdown", zap.Error(shutdownErr))
	}
	cancelWorkers()
	container.Worker.Wait()
	return err
}
