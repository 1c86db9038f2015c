package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
)

const (
	recentTicketLimit = 10
	volumeDays        = 7
)

// DashboardService computes staff overview counters from the ticket set on each read.
type DashboardService struct {
	base
}

// NewDashboardService constructs the service.
func NewDashboardService(deps Dependencies) *DashboardService {
	return &DashboardService{base: newBase(deps)}
}

// NamedCount is a counter keyed by a lookup row.
type NamedCount struct {
	ID    string
	Name  string
	Count int
}

// DailyCount is the number of tickets created on one UTC day.
type DailyCount struct {
	Date  time.Time
	Count int
}

// Dashboard aggregates ticket counters.
type Dashboard struct {
	Total      int
	Open       int
	Mine       int
	Unassigned int
	Overdue    int
	Breached   int
	AtRisk     int
	ByStatus   []NamedCount
	ByPriority []NamedCount
	Recent     []TicketView
	Volume     []DailyCount

	TotalAssets       int
	AssignedAssets    int
	PublishedArticles int
}

// Summary returns counters for viewer. Tickets are counted open when they are not terminal.
func (s *DashboardService) Summary(ctx context.Context, viewer *domain.User) (*Dashboard, error) {
	if err := s.authorize(viewer, auth.ResourceDashboard, auth.ActionRead); err != nil {
		return nil, err
	}
	tickets, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, s.storageError("list tickets", err)
	}
	statuses, err := s.store.Lookups().ListStatuses(ctx)
	if err != nil {
		return nil, s.storageError("list statuses", err)
	}
	priorities, err := s.store.Lookups().ListPriorities(ctx)
	if err != nil {
		return nil, s.storageError("list priorities", err)
	}

	now := s.now()
	statusCounts := map[string]int{}
	priorityCounts := map[string]int{}
	today := now.Truncate(24 * time.Hour)
	firstDay := today.AddDate(0, 0, -(volumeDays - 1))
	volume := make([]DailyCount, volumeDays)
	for i := range volume {
		volume[i].Date = firstDay.AddDate(0, 0, i)
	}

	d := &Dashboard{Total: len(tickets)}
	for i := range tickets {
		t := &tickets[i]
		closed := t.IsClosed()
		statusCounts[t.StatusID]++
		priorityCounts[t.PriorityID]++

		if !closed {
			d.Open++
			if t.AssigneeID == nil {
				d.Unassigned++
			} else if *t.AssigneeID == viewer.ID {
				d.Mine++
			}
		}
		if sla.IsOverdue(t, closed, now) {
			d.Overdue++
		}
		if sla.IsBreached(t, closed, now) {
			d.Breached++
		}
		if sla.IsAtRisk(t, closed, now) {
			d.AtRisk++
		}
		created := t.CreatedAt.UTC().Truncate(24 * time.Hour)
		if !created.Before(firstDay) && !created.After(today) {
			volume[int(created.Sub(firstDay)/(24*time.Hour))].Count++
		}
	}

	for _, st := range statuses {
		d.ByStatus = append(d.ByStatus, NamedCount{ID: st.ID, Name: st.Name, Count: statusCounts[st.ID]})
	}
	for _, p := range priorities {
		d.ByPriority = append(d.ByPriority, NamedCount{ID: p.ID, Name: p.Name, Count: priorityCounts[p.ID]})
	}
	d.Volume = volume

	assets, err := s.store.Assets().List(ctx, repository.AssetFilter{})
	if err != nil {
		return nil, s.storageError("list assets", err)
	}
	d.TotalAssets = len(assets)
	for _, a := range assets {
		if a.AssignedToID != nil {
			d.AssignedAssets++
		}
	}
	if d.PublishedArticles, err = s.store.Knowledge().CountArticles(ctx, repository.ArticleFilter{PublishedOnly: true}); err != nil {
		return nil, s.storageError("count articles", err)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	for i := 0; i < len(tickets) && i < recentTicketLimit; i++ {
		d.Recent = append(d.Recent, s.view(&tickets[i], now))
	}
	return d, nil
}
