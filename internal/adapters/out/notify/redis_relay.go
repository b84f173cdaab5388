package notify

import (
	"context"
	"encoding/json"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRelayChannel is the Redis pub/sub channel shared by all instances.
const DefaultRelayChannel = "dispatch:events"

const relayPublishTimeout = 2 * time.Second

// relayMessage is what travels over Redis. Frame is the envelope exactly as local
// subscribers receive it.
type relayMessage struct {
	Origin string          `json:"origin"`
	Event  events.Name     `json:"event"`
	Topics []string        `json:"topics"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay delivers to the local hub and forwards the frame to the other instances,
// whose Run loops hand it to their own hubs.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	origin  string
	local   *Hub
	log     logger.Logger
	metrics *metrics.Metrics
}

type RelayOption func(*RedisRelay)

func WithRelayChannel(channel string) RelayOption {
	return func(r *RedisRelay) {
		if channel != "" {
			r.channel = channel
		}
	}
}

func NewRedisRelay(client redis.UniversalClient, local *Hub, log logger.Logger, m *metrics.Metrics, opts ...RelayOption) *RedisRelay {
	r := &RedisRelay{
		client:  client,
		channel: DefaultRelayChannel,
		origin:  uuid.NewString(),
		local:   local,
		log:     log.With(logger.Component("notify.redis_relay")),
		metrics: m,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Origin identifies this instance on the relay channel.
func (r *RedisRelay) Origin() string {
	return r.origin
}

func (r *RedisRelay) Publish(ctx context.Context, event events.Event, topics ...events.Topic) {
	frame, err := event.Encode()
	if err != nil {
		r.log.Error("failed to encode event", logger.String("event", string(event.Name)), logger.Error(err))
		r.metrics.Delivery(string(event.Name), metrics.DeliveryDropped)
		return
	}
	r.local.Deliver(event.Name, frame, topics)

	msg := relayMessage{
		Origin: r.origin,
		Event:  event.Name,
		Topics: make([]string, 0, len(topics)),
		Frame:  frame,
	}
	for _, t := range topics {
		msg.Topics = append(msg.Topics, t.String())
	}
	body, err := json.Marshal(msg)
	if err != nil {
		r.log.Error("failed to marshal relay message", logger.Error(err))
		r.metrics.Delivery(string(event.Name), metrics.DeliveryRelayFailed)
		return
	}

	// The request that raised the event may already be finishing.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), relayPublishTimeout)
	defer cancel()

	if err := r.client.Publish(pubCtx, r.channel, body).Err(); err != nil {
		r.log.Warn("failed to relay event",
			logger.String("event", string(event.Name)), logger.String("channel", r.channel), logger.Error(err))
		r.metrics.Delivery(string(event.Name), metrics.DeliveryRelayFailed)
	}
}

// Run subscribes to the relay channel and delivers frames raised on other instances until
// ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close() //nolint:errcheck

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	r.log.Info("relay subscribed", logger.String("channel", r.channel), logger.String("origin", r.origin))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload)
		}
	}
}

// handle returns the number of local deliveries made for payload.
func (r *RedisRelay) handle(payload string) int {
	var msg relayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.log.Warn("discarding malformed relay message", logger.Error(err))
		return 0
	}
	if msg.Origin == r.origin {
		return 0
	}

	topics := make([]events.Topic, 0, len(msg.Topics))
	for _, s := range msg.Topics {
		t, err := events.ParseTopic(s)
		if err != nil {
			r.log.Warn("discarding relay topic", logger.String("topic", s), logger.Error(err))
			continue
		}
		topics = append(topics, t)
	}
	return r.local.Deliver(msg.Event, msg.Frame, topics)
}
