package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories. WithinTx runs fn against a store bound to a single
// transaction; fn returning an error rolls every write back.
type Store interface {
	Tickets() TicketRepository
	Comments() CommentRepository
	Lookups() LookupRepository
	Users() UserRepository
	TimeEntries() TimeEntryRepository
	Settings() SettingRepository
	Assets() AssetRepository
	Knowledge() KnowledgeRepository
	Expenses() ExpenseRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewPostgresStore returns a Store backed by the pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Tickets() TicketRepository        { return NewTicketRepository(s.db) }
func (s *pgStore) Comments() CommentRepository      { return NewCommentRepository(s.db) }
func (s *pgStore) Lookups() LookupRepository        { return NewLookupRepository(s.db) }
func (s *pgStore) Users() UserRepository            { return NewUserRepository(s.db) }
func (s *pgStore) TimeEntries() TimeEntryRepository { return NewTimeEntryRepository(s.db) }
func (s *pgStore) Settings() SettingRepository      { return NewSettingRepository(s.db) }
func (s *pgStore) Assets() AssetRepository          { return NewAssetRepository(s.db) }
func (s *pgStore) Knowledge() KnowledgeRepository   { return NewKnowledgeRepository(s.db) }
func (s *pgStore) Expenses() ExpenseRepository      { return NewExpenseRepository(s.db) }

func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if tx, ok := s.db.(pgx.Tx); ok {
		return fn(&pgStore{pool: s.pool, db: tx})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&pgStore{pool: s.pool, db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// checkIDs reports pgx.ErrNoRows for any id that is not a UUID. Every primary key is a
// uuid column, so such an id cannot match a row and would otherwise fail the cast.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return pgx.ErrNoRows
		}
	}
	return nil
}

func expectOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
