package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded schema migrations with goose.
type Migrator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewMigrator binds goose to the embedded migration files.
func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Migrator{pool: pool, logger: logger}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(db *sql.DB) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

// Down rolls back the latest migration.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(db *sql.DB) error {
		return goose.DownContext(ctx, db, migrationsDir)
	})
}

// Status prints the state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	return m.run(ctx, "status", func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

func (m *Migrator) run(ctx context.Context, op string, fn func(*sql.DB) error) error {
	if m.pool == nil {
		m.logger.Warn("no postgres pool available; skipping migrations", zap.String("op", op))
		return nil
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	if err := fn(db); err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	m.logger.Info("migrations complete", zap.String("op", op), zap.Int64("version", version))
	return nil
}

// RunMigrations applies pending migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	return migrator.Up(ctx)
}
