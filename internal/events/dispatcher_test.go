package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	calls := 0
	boom := errors.New("boom")

	d.Subscribe(EventTicketComment, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventTicketComment, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventNewTicket, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketComment})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketResolved}))
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		panic("nil recipient")
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "t1"})
	assert.ErrorContains(t, err, "ticket_assigned on ticket t1: handler panicked: nil recipient")
	assert.True(t, delivered)
}

func TestSubscribeTicketEvents(t *testing.T) {
	d := NewInMemoryDispatcher()
	seen := map[EventType]int{}
	SubscribeTicketEvents(d, func(_ context.Context, e Event) error {
		seen[e.Type]++
		return nil
	})
	for _, et := range TicketEvents {
		assert.NoError(t, d.Publish(context.Background(), Event{Type: et}))
	}
	assert.Len(t, seen, len(TicketEvents))
}
