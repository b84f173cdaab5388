package commands

import (
	"context"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"
)

const outcomeOK = "ok"

// Option customizes the collaborators shared by all command handlers.
type Option func(*runtime)

// WithLogger sets the logger. Handlers log bus and release problems that do not fail the command.
func WithLogger(l logger.Logger) Option {
	return func(r *runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the collectors that count command outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *runtime) {
		r.metrics = m
	}
}

// WithClock replaces time.Now. Tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *runtime) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStoreTimeout bounds each command, including its store round-trips, to d.
// Expired commands fail with an Unavailable error. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(r *runtime) {
		r.timeout = d
	}
}

// runtime carries what every handler needs besides its unit of work.
type runtime struct {
	bus     ports.NotificationBus
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	timeout time.Duration
}

func newRuntime(bus ports.NotificationBus, opts ...Option) runtime {
	r := runtime{
		bus: bus,
		log: logger.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.bus == nil {
		r.bus = discardBus{}
	}
	return r
}

func (r runtime) clock() time.Time {
	return r.now().UTC()
}

func (r runtime) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r runtime) publish(ctx context.Context, name events.Name, payload any, at time.Time, topics ...events.Topic) {
	r.bus.Publish(ctx, events.New(name, payload, at), topics...)
}

// observe records the outcome of command and logs unexpected failures.
func (r runtime) observe(command string, err error) {
	if err == nil {
		r.metrics.CommandExecuted(command, outcomeOK)
		return
	}

	kind := errs.KindOf(err)
	r.metrics.CommandExecuted(command, kind.String())
	if kind == errs.KindInternal || kind == errs.KindUnavailable {
		r.log.Error("command failed", logger.String("command", command), logger.Error(err))
	}
}

type discardBus struct{}

func (discardBus) Publish(context.Context, events.Event, ...events.Topic) {}
