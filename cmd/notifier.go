package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Notifier owns the NotificationBus stack: the in-process hub, the optional Redis relay to
// other instances, and the optional AMQP export.
type Notifier struct {
	Hub      *notify.Hub
	bus      ports.NotificationBus
	redis    *redis.Client
	relay    *notify.RedisRelay
	exporter *notify.AMQPExporter
	log      logger.Logger
	wg       sync.WaitGroup
}

// NewNotifier builds the bus. Redis and AMQP are skipped when their URLs are empty.
func NewNotifier(ctx context.Context, cfg Config, log logger.Logger, m *metrics.Metrics) (*Notifier, error) {
	n := &Notifier{
		Hub: notify.NewHub(log, m),
		log: log.With(logger.Component("notifier")),
	}

	fanout := notify.Fanout{n.Hub}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		n.redis = redis.NewClient(opts)
		n.relay = notify.NewRedisRelay(n.redis, n.Hub, log, m, notify.WithRelayChannel(cfg.RedisChannel))
		// The relay delivers locally as well.
		fanout[0] = n.relay
	}
	if cfg.AMQPURL != "" {
		exporter, err := notify.DialAMQPExporter(ctx, cfg.AMQPURL, cfg.AMQPAddress, log, m)
		if err != nil {
			_ = n.closeRedis()
			return nil, fmt.Errorf("dial AMQP: %w", err)
		}
		n.exporter = exporter
		fanout = append(fanout, exporter)
	}

	n.bus = fanout
	return n, nil
}

func (n *Notifier) Bus() ports.NotificationBus {
	return n.bus
}

// Start runs the relay subscriber and the export loop until ctx ends.
func (n *Notifier) Start(ctx context.Context) {
	if n.relay != nil {
		n.run(ctx, "redis relay", n.relay.Run)
	}
	if n.exporter != nil {
		n.run(ctx, "amqp exporter", n.exporter.Run)
	}
}

func (n *Notifier) run(ctx context.Context, name string, fn func(context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := fn(ctx); err != nil {
			n.log.Error("bus worker stopped", logger.String("worker", name), logger.Error(err))
		}
	}()
}

// Close waits for the workers started by Start, whose ctx must already be done, and
// releases the connections.
func (n *Notifier) Close(ctx context.Context) error {
	n.wg.Wait()

	var err error
	if n.exporter != nil {
		err = n.exporter.Close(ctx)
	}
	return errors.Join(err, n.closeRedis())
}

func (n *Notifier) closeRedis() error {
	if n.redis == nil {
		return nil
	}
	return n.redis.Close()
}
