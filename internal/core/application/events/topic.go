package events

import (
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// TopicKind is the first segment of a topic address.
type TopicKind string

const (
	AdminsKind    TopicKind = "admins"
	BroadcastKind TopicKind = "broadcast"
	DriverKind    TopicKind = "driver"
	BookingKind   TopicKind = "booking"
)

// Topic addresses a group of subscribers: "admins", "broadcast", "driver:<uuid>" or
// "booking:<bookingId>".
type Topic struct {
	Kind TopicKind
	ID   string
}

func Admins() Topic {
	return Topic{Kind: AdminsKind}
}

func Broadcast() Topic {
	return Topic{Kind: BroadcastKind}
}

func Driver(id kernel.UUID) Topic {
	return Topic{Kind: DriverKind, ID: id.String()}
}

func Booking(id order.BookingID) Topic {
	return Topic{Kind: BookingKind, ID: id.String()}
}

func (t Topic) String() string {
	if t.ID == "" {
		return string(t.Kind)
	}
	return string(t.Kind) + ":" + t.ID
}

// ParseTopic is the inverse of Topic.String.
func ParseTopic(s string) (Topic, error) {
	kind, id, _ := strings.Cut(s, ":")

	switch TopicKind(kind) {
	case AdminsKind, BroadcastKind:
		if id != "" {
			return Topic{}, errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("%q takes no id", kind))
		}
		return Topic{Kind: TopicKind(kind)}, nil
	case DriverKind:
		driverID, err := kernel.UUIDFromString(id)
		if err != nil {
			return Topic{}, errs.NewValueIsInvalidErrorWithCause("topic", err)
		}
		return Driver(driverID), nil
	case BookingKind:
		bookingID, err := order.ParseBookingID(id)
		if err != nil {
			return Topic{}, errs.NewValueIsInvalidErrorWithCause("topic", err)
		}
		return Booking(bookingID), nil
	default:
		return Topic{}, errs.NewValueIsInvalidErrorWithCause("topic", fmt.Errorf("unknown topic %q", s))
	}
}

// OrderTopics returns the standard audience of an order event: admins, broadcast, the
// booking channel and, when a driver is attached, the driver channel.
func OrderTopics(o *order.Order) []Topic {
	topics := []Topic{Admins(), Broadcast(), Booking(o.BookingID())}
	if id := o.DriverID(); id != nil {
		topics = append(topics, Driver(*id))
	}
	return topics
}
