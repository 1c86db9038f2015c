// Package settings holds the loaded configuration snapshot of the settings tables.
package settings

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

const defaultTicketIDFormat = "HD-{id:06d}"

var idPlaceholder = regexp.MustCompile(`\{id(?::0?(\d+)d)?\}`)

// Snapshot is an immutable view of the settings and notification settings tables.
type Snapshot struct {
	Values        map[string]domain.Setting
	Notifications map[string]domain.NotificationSetting
	LoadedAt      time.Time
}

// Value returns the setting value or fallback when unset.
func (s *Snapshot) Value(key, fallback string) string {
	if s == nil {
		return fallback
	}
	if v, ok := s.Values[key]; ok && v.Value != "" {
		return v.Value
	}
	return fallback
}

// Notification returns the notification setting for an event type.
func (s *Snapshot) Notification(eventType string) (domain.NotificationSetting, bool) {
	if s == nil {
		return domain.NotificationSetting{}, false
	}
	n, ok := s.Notifications[eventType]
	return n, ok
}

// FormatTicketKey renders a ticket number with the ticket_id_format setting, e.g. HD-{id:06d}.
func (s *Snapshot) FormatTicketKey(number int64) string {
	return FormatTicketKey(s.Value(domain.SettingTicketIDFormat, defaultTicketIDFormat), number)
}

// FormatTicketKey applies pattern to number. A pattern without a placeholder gets the number appended.
func FormatTicketKey(pattern string, number int64) string {
	if !idPlaceholder.MatchString(pattern) {
		return pattern + strconv.FormatInt(number, 10)
	}
	return idPlaceholder.ReplaceAllStringFunc(pattern, func(m string) string {
		sub := idPlaceholder.FindStringSubmatch(m)
		width, _ := strconv.Atoi(sub[1])
		return fmt.Sprintf("%0*d", width, number)
	})
}

// Store swaps snapshots on explicit reload. Readers never hit the database.
type Store struct {
	repo    func() repository.SettingRepository
	logger  *zap.Logger
	current atomic.Pointer[Snapshot]
	clock   func() time.Time
}

// NewStore returns a store with an empty snapshot; call Reload before serving.
func NewStore(store repository.Store, logger *zap.Logger) *Store {
	s := &Store{repo: store.Settings, logger: logger, clock: time.Now}
	s.current.Store(&Snapshot{
		Values:        map[string]domain.Setting{},
		Notifications: map[string]domain.NotificationSetting{},
	})
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload reads both tables once and replaces the snapshot.
func (s *Store) Reload(ctx context.Context) error {
	values, err := s.repo().List(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	notifications, err := s.repo().ListNotifications(ctx)
	if err != nil {
		return fmt.Errorf("load notification settings: %w", err)
	}

	snap := &Snapshot{
		Values:        make(map[string]domain.Setting, len(values)),
		Notifications: make(map[string]domain.NotificationSetting, len(notifications)),
		LoadedAt:      s.clock().UTC(),
	}
	for _, v := range values {
		snap.Values[v.Key] = v
	}
	for _, n := range notifications {
		snap.Notifications[n.EventType] = n
	}
	s.current.Store(snap)
	s.logger.Info("settings reloaded", zap.Int("settings", len(values)), zap.Int("notifications", len(notifications)))
	return nil
}
