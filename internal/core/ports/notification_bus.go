package ports

import (
	"context"

	"dispatch/internal/core/application/events"
)

// NotificationBus delivers events to live subscribers of the given topics.
//
// Publish is fire-and-forget: it never fails the caller. Implementations log and count
// delivery problems. A subscriber listening on several of the topics receives the event once.
type NotificationBus interface {
	Publish(ctx context.Context, event events.Event, topics ...events.Topic)
}
