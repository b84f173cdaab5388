// Package events defines the notifications published on the NotificationBus: event names,
// the topic addressing scheme, the wire envelope and the payload shapes.
package events

import (
	"encoding/json"
	"time"
)

// Name identifies an event on the wire.
type Name string

const (
	OrderCreated       Name = "order.created"
	OrderAssigned      Name = "order.assigned"
	OrderStatusChanged Name = "order.status_changed"
	OrderCancelled     Name = "order.cancelled"
	OrderUpdated       Name = "order.updated"
	OrderDeleted       Name = "order.deleted"

	DriverOnline              Name = "driver.online"
	DriverOffline             Name = "driver.offline"
	DriverAvailabilityChanged Name = "driver.availability_changed"
	DriverLocationUpdate      Name = "driver.location_update"

	DashboardStatsUpdate Name = "dashboard.stats_update"
)

// Event is a named payload stamped with the time it happened.
type Event struct {
	Name       Name
	Payload    any
	OccurredAt time.Time
}

func New(name Name, payload any, occurredAt time.Time) Event {
	return Event{Name: name, Payload: payload, OccurredAt: occurredAt}
}

// Envelope is the JSON frame delivered to subscribers.
type Envelope struct {
	Event     Name            `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Encode renders the event as an Envelope frame.
func (e Event) Encode() ([]byte, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.Name, Payload: payload, Timestamp: e.OccurredAt.UTC()})
}

// DecodeEnvelope parses a frame produced by Encode.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
