package domain

// Well-known setting keys.
const (
	SettingAppName             = "app_name"
	SettingCompanyName         = "company_name"
	SettingTicketIDFormat      = "ticket_id_format"
	SettingSLAWarningThreshold = "sla_warning_threshold"
)

// Setting is a key/value configuration row.
type Setting struct {
	Key         string
	Value       string
	Description string
}

// NotificationSetting controls who hears about an event type.
type NotificationSetting struct {
	EventType  string
	IsEnabled  bool
	Recipients string
}
