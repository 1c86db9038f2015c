package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type settingRepo struct {
	s *Store
}

func (r *settingRepo) List(_ context.Context) ([]domain.Setting, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.Setting, 0, len(r.s.db().settings))
	for _, s := range r.s.db().settings {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (r *settingRepo) Upsert(_ context.Context, setting domain.Setting) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if existing, ok := st.settings[setting.Key]; ok && setting.Description == "" {
		setting.Description = existing.Description
	}
	st.settings[setting.Key] = setting
	return nil
}

func (r *settingRepo) ListNotifications(_ context.Context) ([]domain.NotificationSetting, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.NotificationSetting, 0, len(r.s.db().notifications))
	for _, s := range r.s.db().notifications {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EventType < result[j].EventType })
	return result, nil
}

func (r *settingRepo) UpsertNotification(_ context.Context, setting domain.NotificationSetting) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	r.s.db().notifications[setting.EventType] = setting
	return nil
}
