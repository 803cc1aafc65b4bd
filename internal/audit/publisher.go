package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrPublisherClosed is returned by Emit after Close.
var ErrPublisherClosed = errors.New("audit publisher closed")

var (
	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dingauth_audit_events_dropped_total",
		Help: "Audit events discarded because the async buffer was full",
	}, []string{"action"})
	eventsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dingauth_audit_events_failed_total",
		Help: "Audit events the store rejected",
	}, []string{"action"})
)

// Publisher writes login audit events to a Store. With an async buffer the
// caller never waits on the store; overflow is dropped and counted.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	queue  chan Event
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer enables background delivery through a queue of size events.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit stamps the event time when unset and delivers it.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if p.queue == nil {
		return p.write(ctx, event)
	}

	select {
	case p.queue <- event:
	default:
		eventsDropped.WithLabelValues(string(event.Action)).Inc()
		p.logger.WarnContext(ctx, "audit queue full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
	return nil
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	err := p.store.Append(ctx, event)
	if err != nil {
		eventsFailed.WithLabelValues(string(event.Action)).Inc()
	}
	return err
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		if err := p.write(context.Background(), event); err != nil {
			p.logger.Error("audit store rejected event",
				"error", err,
				"action", event.Action,
				"request_id", event.RequestID,
			)
		}
	}
}

// Close rejects further events and waits for queued ones to be written.
// It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.queue != nil {
		close(p.queue)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}
