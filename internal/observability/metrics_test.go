package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 20*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")
	m.TicketCreated()
	m.StatusChanged("Resolved", true)
	m.FirstResponse(true)
	m.FirstResponse(false)
	m.ArticleViewed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/tickets/:id", "GET", "NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("Resolved", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.firstResponses.WithLabelValues("met")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.firstResponses.WithLabelValues("missed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.articleViews))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.TicketCreated()
		m.StatusChanged("x", false)
		m.FirstResponse(true)
		m.NotificationSent("new_ticket", "sent")
		m.ArticleViewed()
	})
}
