package notify

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/ports"
)

// Fanout publishes every event to each bus in turn.
type Fanout []ports.NotificationBus

func (f Fanout) Publish(ctx context.Context, event events.Event, topics ...events.Topic) {
	for _, bus := range f {
		if bus != nil {
			bus.Publish(ctx, event, topics...)
		}
	}
}
