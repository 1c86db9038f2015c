package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/mail"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// ErrQueueFull is returned by Enqueue when the buffer is saturated.
var ErrQueueFull = errors.New("notification queue full")

// NotificationWorker drains queued messages into a mail.Sender on one goroutine.
type NotificationWorker struct {
	sender  mail.Sender
	logger  *zap.Logger
	metrics *observability.Metrics
	queue   chan mail.Message
	wg      sync.WaitGroup
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(sender mail.Sender, logger *zap.Logger, metrics *observability.Metrics, size int) *NotificationWorker {
	if size <= 0 {
		size = 64
	}
	return &NotificationWorker{
		sender:  sender,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan mail.Message, size),
	}
}

// Enqueue hands a message to the worker without blocking.
func (w *NotificationWorker) Enqueue(msg mail.Message) error {
	select {
	case w.queue <- msg:
		return nil
	default:
		w.metrics.NotificationSent(msg.Event, "dropped")
		return ErrQueueFull
	}
}

// Start runs the delivery loop until ctx is cancelled. Queued messages are flushed before exit.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case msg := <-w.queue:
				w.deliver(ctx, msg)
			case <-ctx.Done():
				w.drain()
				return
			}
		}
	}()
}

// Wait blocks until the delivery loop has exited.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case msg := <-w.queue:
			w.deliver(context.Background(), msg)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, msg mail.Message) {
	if err := w.sender.Send(ctx, msg); err != nil {
		w.metrics.NotificationSent(msg.Event, "failed")
		w.logger.Error("notification delivery failed", zap.String("event", msg.Event), zap.Strings("to", msg.To), zap.Error(err))
		return
	}
	w.metrics.NotificationSent(msg.Event, "sent")
}
