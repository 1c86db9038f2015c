package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/settings"
)

var fixedNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	deps     Dependencies
	events   *eventRecorder
	admin    *domain.User
	agent    *domain.User
	user     *domain.User
	now      time.Time
	statuses map[string]string
	prios    map[string]string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewSeededStore()
	enforcer, err := auth.NewEnforcer()
	require.NoError(t, err)
	snap := settings.NewStore(store, zap.NewNop())
	require.NoError(t, snap.Reload(ctx))

	f := &fixture{
		store:    store,
		events:   &eventRecorder{},
		now:      fixedNow,
		statuses: map[string]string{},
		prios:    map[string]string{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeTicketEvents(dispatcher, f.events.record)
	f.deps = Dependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Enforcer:   enforcer,
		Settings:   snap,
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
		Clock:      func() time.Time { return f.now },
	}

	f.admin = f.addUser(t, "root", domain.RoleAdministrator)
	f.agent = f.addUser(t, "agent", domain.RoleAgent)
	f.user = f.addUser(t, "alice", domain.RoleUser)

	statuses, err := store.Lookups().ListStatuses(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		f.statuses[s.Name] = s.ID
	}
	priorities, err := store.Lookups().ListPriorities(ctx)
	require.NoError(t, err)
	for _, p := range priorities {
		f.prios[p.Name] = p.ID
	}
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("password123", 4)
	require.NoError(t, err)
	u := &domain.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) createTicket(t *testing.T, priority string) *TicketView {
	t.Helper()
	view, err := NewTicketService(f.deps).CreateTicket(context.Background(), f.user, TicketCreateInput{
		Subject:    "VPN is down",
		PriorityID: f.prios[priority],
	})
	require.NoError(t, err)
	return view
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}
