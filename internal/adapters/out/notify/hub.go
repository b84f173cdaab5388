// Package notify implements the NotificationBus: an in-process topic hub that live
// websocket connections subscribe to, a Redis relay that fans hub deliveries out to every
// server instance, and an AMQP exporter for downstream consumers.
package notify

import (
	"context"
	"sync"

	"dispatch/internal/core/application/events"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"
)

// DefaultBufferSize is the number of frames a slow subscriber may lag behind before
// further frames are dropped for it.
const DefaultBufferSize = 64

// Subscription receives the encoded frames published on its topics.
type Subscription struct {
	id     uint64
	topics []events.Topic
	frames chan []byte
	hub    *Hub
	once   sync.Once
}

// Frames is closed when the subscription is closed.
func (s *Subscription) Frames() <-chan []byte {
	return s.frames
}

func (s *Subscription) Topics() []events.Topic {
	return s.topics
}

// Close detaches the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub routes frames to the subscriptions of this process.
type Hub struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[events.Topic]map[uint64]*Subscription

	bufferSize int
	log        logger.Logger
	metrics    *metrics.Metrics
}

type HubOption func(*Hub)

func WithBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func NewHub(log logger.Logger, m *metrics.Metrics, opts ...HubOption) *Hub {
	h := &Hub{
		topics:     make(map[events.Topic]map[uint64]*Subscription),
		bufferSize: DefaultBufferSize,
		log:        log.With(logger.Component("notify.hub")),
		metrics:    m,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscription on topics. Duplicate topics are collapsed.
func (h *Hub) Subscribe(topics ...events.Topic) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		frames: make(chan []byte, h.bufferSize),
		hub:    h,
	}

	for _, t := range topics {
		subs, ok := h.topics[t]
		if !ok {
			subs = make(map[uint64]*Subscription)
			h.topics[t] = subs
		}
		if _, dup := subs[sub.id]; dup {
			continue
		}
		subs[sub.id] = sub
		sub.topics = append(sub.topics, t)
	}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range sub.topics {
		subs := h.topics[t]
		delete(subs, sub.id)
		if len(subs) == 0 {
			delete(h.topics, t)
		}
	}
	close(sub.frames)
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic events.Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish encodes the event once and delivers it to local subscribers.
func (h *Hub) Publish(_ context.Context, event events.Event, topics ...events.Topic) {
	frame, err := event.Encode()
	if err != nil {
		h.log.Error("failed to encode event", logger.String("event", string(event.Name)), logger.Error(err))
		h.metrics.Delivery(string(event.Name), metrics.DeliveryDropped)
		return
	}
	h.Deliver(event.Name, frame, topics)
}

// Deliver hands an already encoded frame to every subscription listening on at least one
// of topics, once per subscription. A full subscriber buffer drops the frame for that
// subscriber only. It returns the number of subscriptions that received the frame.
func (h *Hub) Deliver(name events.Name, frame []byte, topics []events.Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uint64]struct{})
	delivered := 0
	for _, t := range topics {
		for id, sub := range h.topics[t] {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			select {
			case sub.frames <- frame:
				delivered++
				h.metrics.Delivery(string(name), metrics.DeliveryDelivered)
			default:
				h.log.Warn("subscriber buffer full, dropping frame",
					logger.String("event", string(name)), logger.String("topic", t.String()))
				h.metrics.Delivery(string(name), metrics.DeliveryDropped)
			}
		}
	}
	return delivered
}
