package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SettingRepository reads and writes the general and notification settings tables.
type SettingRepository interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Upsert(ctx context.Context, setting domain.Setting) error
	ListNotifications(ctx context.Context) ([]domain.NotificationSetting, error)
	UpsertNotification(ctx context.Context, setting domain.NotificationSetting) error
}

type settingRepository struct {
	db Querier
}

// NewSettingRepository returns a Postgres-backed implementation.
func NewSettingRepository(db Querier) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, description FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Description); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *settingRepository) Upsert(ctx context.Context, setting domain.Setting) error {
	const query = `
        INSERT INTO settings (key, value, description) VALUES ($1,$2,$3)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value,
            description=CASE WHEN EXCLUDED.description='' THEN settings.description ELSE EXCLUDED.description END`
	_, err := r.db.Exec(ctx, query, setting.Key, setting.Value, setting.Description)
	return err
}

func (r *settingRepository) ListNotifications(ctx context.Context) ([]domain.NotificationSetting, error) {
	rows, err := r.db.Query(ctx, `SELECT event_type, is_enabled, recipients FROM notification_settings ORDER BY event_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationSetting
	for rows.Next() {
		var s domain.NotificationSetting
		if err := rows.Scan(&s.EventType, &s.IsEnabled, &s.Recipients); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *settingRepository) UpsertNotification(ctx context.Context, setting domain.NotificationSetting) error {
	const query = `
        INSERT INTO notification_settings (event_type, is_enabled, recipients) VALUES ($1,$2,$3)
        ON CONFLICT (event_type) DO UPDATE SET is_enabled=EXCLUDED.is_enabled, recipients=EXCLUDED.recipients`
	_, err := r.db.Exec(ctx, query, setting.EventType, setting.IsEnabled, setting.Recipients)
	return err
}
