package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		newMigrationCommand("up", "Apply all pending migrations", (*persistence.Migrator).Up),
		newMigrationCommand("down", "Roll back the latest migration", (*persistence.Migrator).Down),
		newMigrationCommand("status", "Show migration status", (*persistence.Migrator).Status),
	)
	return cmd
}

func newMigrationCommand(use, short string, op func(*persistence.Migrator, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cfg.Postgres.DSN == "" {
				return errors.New("POSTGRES_DSN is required for migrations")
			}
			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return err
			}
			defer pg.Close()

			migrator, err := persistence.NewMigrator(pg.PoolHandle(), logger)
			if err != nil {
				return err
			}
			return op(migrator, ctx)
		},
	}
}
