package memory

import "github.com/spec-kit/helpdesk-service/internal/domain"

func minutes(v int) *int { return &v }

// NewSeededStore returns a store holding the same defaults the SQL migrations insert.
func NewSeededStore() *Store {
	s := NewStore()
	st := s.db()

	for _, status := range []domain.TicketStatus{
		{Name: "New", Description: "Newly created ticket", Color: "#3b82f6", IsDefault: true},
		{Name: "In Progress", Description: "Work has started", Color: "#f59e0b"},
		{Name: "Waiting on Customer", Description: "Awaiting information from the requester", Color: "#8b5cf6"},
		{Name: "Resolved", Description: "The issue has been resolved", Color: "#10b981", IsClosed: true},
		{Name: "Closed", Description: "The ticket is closed", Color: "#6b7280", IsClosed: true},
	} {
		status.ID = newID()
		st.statuses[status.ID] = status
	}

	for _, priority := range []domain.TicketPriority{
		{Name: "Low", Description: "Minor issue", Color: "#6b7280", SLAResponseTime: minutes(1440), SLAResolutionTime: minutes(10080)},
		{Name: "Medium", Description: "Normal priority", Color: "#3b82f6", IsDefault: true, SLAResponseTime: minutes(480), SLAResolutionTime: minutes(2880)},
		{Name: "High", Description: "Significant impact", Color: "#f59e0b", SLAResponseTime: minutes(240), SLAResolutionTime: minutes(1440)},
		{Name: "Critical", Description: "Service down", Color: "#ef4444", SLAResponseTime: minutes(60), SLAResolutionTime: minutes(480)},
	} {
		priority.ID = newID()
		st.priorities[priority.ID] = priority
	}

	for _, ticketType := range []domain.TicketType{
		{Name: "Incident", Description: "Something is broken", IsDefault: true},
		{Name: "Service Request", Description: "A request for something new"},
		{Name: "Problem", Description: "Root cause of recurring incidents"},
		{Name: "Change Request", Description: "A planned change"},
	} {
		ticketType.ID = newID()
		st.types[ticketType.ID] = ticketType
	}

	for _, n := range []domain.NotificationSetting{
		{EventType: "new_ticket", IsEnabled: true, Recipients: "all_agents"},
		{EventType: "ticket_assigned", IsEnabled: true, Recipients: "assigned_agent"},
		{EventType: "ticket_updated", IsEnabled: true, Recipients: "creator,assigned_agent"},
		{EventType: "ticket_comment", IsEnabled: true, Recipients: "creator,assigned_agent"},
		{EventType: "ticket_resolved", IsEnabled: true, Recipients: "creator,requester"},
		{EventType: "sla_warning", IsEnabled: true, Recipients: "assigned_agent,admin"},
		{EventType: "sla_breach", IsEnabled: true, Recipients: "assigned_agent,admin"},
	} {
		st.notifications[n.EventType] = n
	}

	for _, setting := range []domain.Setting{
		{Key: domain.SettingAppName, Value: "Helpdesk", Description: "Application name"},
		{Key: domain.SettingCompanyName, Value: "My Company", Description: "Company name"},
		{Key: domain.SettingTicketIDFormat, Value: "HD-{id:06d}", Description: "Display format for ticket numbers"},
		{Key: domain.SettingSLAWarningThreshold, Value: "80", Description: "Percentage of SLA time elapsed before a warning"},
	} {
		st.settings[setting.Key] = setting
	}
	return s
}
