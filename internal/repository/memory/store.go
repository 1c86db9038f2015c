// Package memory is an in-process implementation of repository.Store.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type state struct {
	tickets       map[string]domain.Ticket
	comments      map[string]domain.TicketComment
	statuses      map[string]domain.TicketStatus
	priorities    map[string]domain.TicketPriority
	types         map[string]domain.TicketType
	users         map[string]domain.User
	timeEntries   map[string]domain.TimeEntry
	settings      map[string]domain.Setting
	notifications map[string]domain.NotificationSetting
	assets        map[string]domain.Asset
	ticketAssets  map[assetLink]struct{}
	categories    map[string]domain.KBCategory
	articles      map[string]domain.KBArticle
	expenses      map[string]domain.Expense
	commentSeq    map[string]int64
	nextNumber    int64
	seq           int64
}

func newState() *state {
	return &state{
		tickets:       map[string]domain.Ticket{},
		comments:      map[string]domain.TicketComment{},
		statuses:      map[string]domain.TicketStatus{},
		priorities:    map[string]domain.TicketPriority{},
		types:         map[string]domain.TicketType{},
		users:         map[string]domain.User{},
		timeEntries:   map[string]domain.TimeEntry{},
		settings:      map[string]domain.Setting{},
		notifications: map[string]domain.NotificationSetting{},
		assets:        map[string]domain.Asset{},
		ticketAssets:  map[assetLink]struct{}{},
		categories:    map[string]domain.KBCategory{},
		articles:      map[string]domain.KBArticle{},
		expenses:      map[string]domain.Expense{},
		commentSeq:    map[string]int64{},
	}
}

func (s *state) clone() *state {
	return &state{
		tickets:       maps.Clone(s.tickets),
		comments:      maps.Clone(s.comments),
		statuses:      maps.Clone(s.statuses),
		priorities:    maps.Clone(s.priorities),
		types:         maps.Clone(s.types),
		users:         maps.Clone(s.users),
		timeEntries:   maps.Clone(s.timeEntries),
		settings:      maps.Clone(s.settings),
		notifications: maps.Clone(s.notifications),
		assets:        maps.Clone(s.assets),
		ticketAssets:  maps.Clone(s.ticketAssets),
		categories:    maps.Clone(s.categories),
		articles:      maps.Clone(s.articles),
		expenses:      maps.Clone(s.expenses),
		commentSeq:    maps.Clone(s.commentSeq),
		nextNumber:    s.nextNumber,
		seq:           s.seq,
	}
}

// next returns a strictly increasing sequence used to order rows inserted at the same instant.
func (s *state) next() int64 {
	s.seq++
	return s.seq
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// Store keeps every table in maps guarded by one mutex. Transactions hold the mutex for
// their whole duration and restore a snapshot when fn fails.
type Store struct {
	mu   *sync.Mutex
	lock sync.Locker
	root **state
}

// NewStore returns an empty store.
func NewStore() *Store {
	mu := &sync.Mutex{}
	st := newState()
	return &Store{mu: mu, lock: mu, root: &st}
}

func (s *Store) db() *state { return *s.root }

func (s *Store) Tickets() repository.TicketRepository        { return &ticketRepo{s} }
func (s *Store) Comments() repository.CommentRepository      { return &commentRepo{s} }
func (s *Store) Lookups() repository.LookupRepository        { return &lookupRepo{s} }
func (s *Store) Users() repository.UserRepository            { return &userRepo{s} }
func (s *Store) TimeEntries() repository.TimeEntryRepository { return &timeEntryRepo{s} }
func (s *Store) Settings() repository.SettingRepository      { return &settingRepo{s} }
func (s *Store) Assets() repository.AssetRepository          { return &assetRepo{s} }
func (s *Store) Knowledge() repository.KnowledgeRepository   { return &knowledgeRepo{s} }
func (s *Store) Expenses() repository.ExpenseRepository      { return &expenseRepo{s} }

// WithinTx runs fn with exclusive access to the store.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, inTx := s.lock.(noopLocker); inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := (*s.root).clone()
	tx := &Store{mu: s.mu, lock: noopLocker{}, root: s.root}
	if err := fn(tx); err != nil {
		*s.root = snapshot
		return err
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}
