package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func deleted(orderID string) events.Event {
	return events.New(events.OrderDeleted, events.OrderDeletedPayload{OrderID: orderID, BookingID: "BK1ABCD"}, at)
}

func receive(t *testing.T, sub *notify.Subscription) events.Envelope {
	t.Helper()
	select {
	case frame, ok := <-sub.Frames():
		require.True(t, ok, "subscription closed")
		env, err := events.DecodeEnvelope(frame)
		require.NoError(t, err)
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return events.Envelope{}
	}
}

func assertNothing(t *testing.T, sub *notify.Subscription) {
	t.Helper()
	select {
	case frame := <-sub.Frames():
		t.Fatalf("unexpected frame %s", frame)
	default:
	}
}

func TestHub_PublishRoutesByTopic(t *testing.T) {
	hub := notify.NewHub(logger.NewNop(), nil)
	driverA, driverB := kernel.NewUUID(), kernel.NewUUID()

	admin := hub.Subscribe(events.Admins(), events.Broadcast())
	a := hub.Subscribe(events.Driver(driverA), events.Broadcast())
	b := hub.Subscribe(events.Driver(driverB))

	hub.Publish(t.Context(), deleted("o-1"), events.Admins(), events.Broadcast(), events.Driver(driverA))

	env := receive(t, admin)
	assert.Equal(t, events.OrderDeleted, env.Event)
	assert.JSONEq(t, `{"orderId":"o-1","bookingId":"BK1ABCD"}`, string(env.Payload))
	assert.True(t, at.Equal(env.Timestamp))

	receive(t, a)
	assertNothing(t, admin)
	assertNothing(t, a)
	assertNothing(t, b)
}

func TestHub_DriverTopicWithoutSubscriberIsNoop(t *testing.T) {
	hub := notify.NewHub(logger.NewNop(), nil)

	frame, err := deleted("o-2").Encode()
	require.NoError(t, err)

	n := hub.Deliver(events.OrderDeleted, frame, []events.Topic{events.Driver(kernel.NewUUID())})

	assert.Zero(t, n)
}

func TestHub_FullBufferDropsForThatSubscriberOnly(t *testing.T) {
	hub := notify.NewHub(logger.NewNop(), nil, notify.WithBufferSize(1))
	slow := hub.Subscribe(events.Admins())
	fast := hub.Subscribe(events.Admins())

	frame, err := deleted("o-3").Encode()
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Deliver(events.OrderDeleted, frame, []events.Topic{events.Admins()}))
	receive(t, fast)

	assert.Equal(t, 1, hub.Deliver(events.OrderDeleted, frame, []events.Topic{events.Admins()}))
	receive(t, fast)
	receive(t, slow)
	assertNothing(t, slow)
}

func TestSubscription_Close(t *testing.T) {
	hub := notify.NewHub(logger.NewNop(), nil)
	sub := hub.Subscribe(events.Admins(), events.Admins(), events.Broadcast())
	require.Len(t, sub.Topics(), 2)
	require.Equal(t, 1, hub.Subscribers(events.Admins()))

	sub.Close()
	sub.Close()

	_, ok := <-sub.Frames()
	assert.False(t, ok)
	assert.Zero(t, hub.Subscribers(events.Admins()))
	assert.Zero(t, hub.Subscribers(events.Broadcast()))

	hub.Publish(t.Context(), deleted("o-4"), events.Admins())
}

func TestHub_ConcurrentPublishAndClose(t *testing.T) {
	hub := notify.NewHub(logger.NewNop(), nil, notify.WithBufferSize(4))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		sub := hub.Subscribe(events.Broadcast())
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				hub.Publish(t.Context(), deleted("o-5"), events.Broadcast())
			}
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.Subscribers(events.Broadcast()))
}

type recordingBus struct {
	mu    sync.Mutex
	names []events.Name
}

func (b *recordingBus) Publish(_ context.Context, event events.Event, _ ...events.Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names = append(b.names, event.Name)
}

func TestFanout_Publish(t *testing.T) {
	first, second := &recordingBus{}, &recordingBus{}

	notify.Fanout{first, nil, second}.Publish(t.Context(), deleted("o-6"), events.Admins())

	assert.Equal(t, []events.Name{events.OrderDeleted}, first.names)
	assert.Equal(t, []events.Name{events.OrderDeleted}, second.names)
}
