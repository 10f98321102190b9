package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"virtualevents/internal/domain"
	"virtualevents/internal/metrics"
)

// DispatcherConfig sizes the notification worker pool.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher delivers notifications on a pool of workers fed by a bounded queue. A failed or panicking
// delivery only affects its own recipient.
type Dispatcher struct {
	email       domain.EmailService
	logger      *slog.Logger
	workers     int
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Notification
}

var _ domain.NotificationDispatcher = (*Dispatcher)(nil)

// NewDispatcher returns a Dispatcher. Call Run to start the workers.
func NewDispatcher(email domain.EmailService, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		email:       email,
		logger:      logger,
		workers:     cfg.Workers,
		sendTimeout: cfg.SendTimeout,
		queue:       make(chan domain.Notification, cfg.QueueSize),
	}
}

// Dispatch enqueues notifications without blocking. When the queue is full, or the dispatcher is
// closed, the notification is dropped and counted.
func (d *Dispatcher) Dispatch(notifications ...domain.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, n := range notifications {
		if d.closed {
			d.drop(n, "dispatcher closed")
			continue
		}
		select {
		case d.queue <- n:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
		default:
			d.drop(n, "queue full")
		}
	}
}

// Run starts the workers and blocks until Close has been called and the queue is drained, or ctx is
// cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for range d.workers {
		g.Go(func() error {
			for {
				select {
				case n, ok := <-d.queue:
					if !ok {
						return nil
					}
					metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
					d.deliver(ctx, n)
				case <-ctx.Done():
					return nil
				}
			}
		})
	}
	return g.Wait()
}

// Close stops intake. Workers finish the notifications already queued and Run returns.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.safeSend(ctx, &n)
	metrics.NotificationSendDuration.WithLabelValues(n.Kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(n.Kind, "failed").Inc()
		d.logger.ErrorContext(ctx, "notification delivery failed",
			"kind", n.Kind, "to", n.Email, "event_id", n.EventID, "err", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "sent").Inc()
}

func (d *Dispatcher) safeSend(ctx context.Context, n *domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending: %v", r)
		}
	}()
	return d.email.SendNotification(ctx, n)
}

func (d *Dispatcher) drop(n domain.Notification, reason string) {
	metrics.NotificationsTotal.WithLabelValues(n.Kind, "dropped").Inc()
	d.logger.Warn("notification dropped", "reason", reason, "kind", n.Kind, "to", n.Email, "event_id", n.EventID)
}
