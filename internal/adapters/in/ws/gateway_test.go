package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// presence records the commands issued by driver sockets.
type presence struct {
	mu           sync.Mutex
	connected    []string
	disconnected chan string
	locations    []kernel.GeoPoint
	available    []bool
	statuses     []order.Status
	orders       map[kernel.UUID]views.OrderView
	connectErr   error
}

func newPresence() *presence {
	return &presence{disconnected: make(chan string, 4), orders: map[kernel.UUID]views.OrderView{}}
}

// assign registers an order held by driverID, or by nobody when driverID is nil.
func (p *presence) assign(driverID *kernel.UUID) kernel.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := kernel.NewUUID()
	view := views.OrderView{ID: id.String(), Status: "assigned"}
	if driverID != nil {
		s := driverID.String()
		view.DriverID = &s
	}
	p.orders[id] = view
	return id
}

func (p *presence) recordedStatuses() []order.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]order.Status(nil), p.statuses...)
}

func (p *presence) handlers() ws.DriverPresence {
	return ws.DriverPresence{
		Connect: httpin.HandlerFunc[commands.ConnectDriverCommand, views.DriverView](
			func(_ context.Context, cmd commands.ConnectDriverCommand) (views.DriverView, error) {
				p.mu.Lock()
				defer p.mu.Unlock()
				if p.connectErr != nil {
					return views.DriverView{}, p.connectErr
				}
				p.connected = append(p.connected, cmd.ConnectionID())
				return views.DriverView{ID: cmd.DriverID().String(), IsOnline: true}, nil
			}),
		Disconnect: httpin.HandlerFunc[commands.DisconnectDriverCommand, bool](
			func(_ context.Context, cmd commands.DisconnectDriverCommand) (bool, error) {
				p.disconnected <- cmd.ConnectionID()
				return true, nil
			}),
		UpdateLocation: httpin.HandlerFunc[commands.UpdateDriverLocationCommand, views.DriverView](
			func(_ context.Context, cmd commands.UpdateDriverLocationCommand) (views.DriverView, error) {
				p.mu.Lock()
				defer p.mu.Unlock()
				p.locations = append(p.locations, cmd.Point())
				return views.DriverView{ID: cmd.DriverID().String()}, nil
			}),
		SetAvailability: httpin.HandlerFunc[commands.SetDriverAvailabilityCommand, views.DriverView](
			func(_ context.Context, cmd commands.SetDriverAvailabilityCommand) (views.DriverView, error) {
				if cmd.Available() {
					return views.DriverView{}, errs.NewConflictError("Driver has an active order")
				}
				p.mu.Lock()
				defer p.mu.Unlock()
				p.available = append(p.available, cmd.Available())
				return views.DriverView{ID: cmd.DriverID().String()}, nil
			}),
		GetOrder: httpin.HandlerFunc[queries.GetOrderQuery, views.OrderView](
			func(_ context.Context, query queries.GetOrderQuery) (views.OrderView, error) {
				p.mu.Lock()
				defer p.mu.Unlock()
				view, ok := p.orders[query.OrderID()]
				if !ok {
					return views.OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID())
				}
				return view, nil
			}),
		UpdateOrderStatus: httpin.HandlerFunc[commands.UpdateOrderStatusCommand, views.OrderView](
			func(_ context.Context, cmd commands.UpdateOrderStatusCommand) (views.OrderView, error) {
				p.mu.Lock()
				defer p.mu.Unlock()
				p.statuses = append(p.statuses, cmd.Status())
				view := p.orders[cmd.OrderID()]
				view.Status = cmd.Status().String()
				return view, nil
			}),
	}
}

type fixture struct {
	t        *testing.T
	hub      *notify.Hub
	auth     httpin.Authenticator
	presence *presence
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		hub:      notify.NewHub(logger.NewNop(), nil),
		auth:     httpin.NewAuthenticator("ws-secret"),
		presence: newPresence(),
	}

	e := echo.New()
	e.HTTPErrorHandler = httpin.ErrorHandler(logger.NewNop())
	ws.NewGateway(f.hub, f.presence.handlers(), f.auth).Register(e)

	f.server = httptest.NewServer(e)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) token(id kernel.UUID, role httpin.Role) string {
	f.t.Helper()
	token, err := f.auth.IssueToken(id, role, time.Hour)
	require.NoError(f.t, err)
	return token
}

func (f *fixture) dial(path string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, nil)
}

func (f *fixture) mustDial(path string) *websocket.Conn {
	f.t.Helper()
	conn, _, err := f.dial(path)
	require.NoError(f.t, err)
	f.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitSubscribed blocks until the gateway has subscribed the socket to topic.
func (f *fixture) waitSubscribed(topic events.Topic, n int) {
	f.t.Helper()
	require.Eventually(f.t, func() bool { return f.hub.Subscribers(topic) == n }, time.Second, 5*time.Millisecond)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := events.DecodeEnvelope(frame)
	require.NoError(t, err)
	return env
}

func deleted() events.Event {
	return events.New(events.OrderDeleted, events.OrderDeletedPayload{OrderID: "o-1", BookingID: "BK1ABCD"}, time.Now())
}

func TestAdminSocket(t *testing.T) {
	f := newFixture(t)

	_, resp, err := f.dial("/ws/admin")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = f.dial("/ws/admin?token=" + f.token(kernel.NewUUID(), httpin.RoleDriver))
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := f.mustDial("/ws/admin?token=" + f.token(kernel.NewUUID(), httpin.RoleAdmin))
	f.waitSubscribed(events.Admins(), 1)

	f.hub.Publish(t.Context(), deleted(), events.Admins(), events.Broadcast())

	env := readEnvelope(t, conn)
	assert.Equal(t, events.OrderDeleted, env.Event)
	assert.JSONEq(t, `{"orderId":"o-1","bookingId":"BK1ABCD"}`, string(env.Payload))
}

func TestBookingSocket(t *testing.T) {
	f := newFixture(t)
	bookingID, err := order.NewBookingID(time.Now())
	require.NoError(t, err)

	_, resp, err := f.dial("/ws/bookings/not-a-booking")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	conn := f.mustDial("/ws/bookings/" + bookingID.String())
	f.waitSubscribed(events.Booking(bookingID), 1)

	f.hub.Publish(t.Context(), deleted(), events.Admins())
	f.hub.Publish(t.Context(), deleted(), events.Booking(bookingID))

	env := readEnvelope(t, conn)
	assert.Equal(t, events.OrderDeleted, env.Event)
}

func TestDriverSocket_Lifecycle(t *testing.T) {
	f := newFixture(t)
	driverID := kernel.NewUUID()
	path := "/ws/drivers/" + driverID.String() + "?token=" + f.token(driverID, httpin.RoleDriver)

	_, resp, err := f.dial("/ws/drivers/" + kernel.NewUUID().String() + "?token=" + f.token(driverID, httpin.RoleDriver))
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := f.mustDial(path)
	f.waitSubscribed(events.Driver(driverID), 1)

	var connectionID string
	require.Eventually(t, func() bool {
		f.presence.mu.Lock()
		defer f.presence.mu.Unlock()
		if len(f.presence.connected) != 1 {
			return false
		}
		connectionID = f.presence.connected[0]
		return true
	}, time.Second, 5*time.Millisecond)

	t.Run("location update", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event":   "driver.location_update",
			"payload": map[string]any{"latitude": 12.9352, "longitude": 77.6245},
		}))

		require.Eventually(t, func() bool {
			f.presence.mu.Lock()
			defer f.presence.mu.Unlock()
			return len(f.presence.locations) == 1
		}, time.Second, 5*time.Millisecond)
		f.presence.mu.Lock()
		assert.InDelta(t, 77.6245, f.presence.locations[0].Lng(), 1e-9)
		f.presence.mu.Unlock()
	})

	t.Run("rejected availability is answered with an error", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"event":   "driver.availability_update",
			"payload": map[string]any{"isAvailable": true},
		}))

		env := readEnvelope(t, conn)
		assert.Equal(t, ws.ErrorReply, env.Event)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "conflict", payload["kind"])
		assert.Equal(t, "driver.availability_update", payload["event"])
		assert.Equal(t, "Driver has an active order", payload["message"])
	})

	t.Run("unknown and malformed messages", func(t *testing.T) {
		require.NoError(t, conn.WriteJSON(map[string]any{"event": "driver.teleport", "payload": map[string]any{}}))
		env := readEnvelope(t, conn)
		assert.Equal(t, ws.ErrorReply, env.Event)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
		env = readEnvelope(t, conn)
		assert.Equal(t, ws.ErrorReply, env.Event)

		require.NoError(t, conn.WriteJSON(map[string]any{"event": "driver.location_update", "payload": map[string]any{}}))
		env = readEnvelope(t, conn)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "validation", payload["kind"])
	})

	t.Run("accept and reject booking", func(t *testing.T) {
		held := f.presence.assign(&driverID)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event":   "driver.accept_booking",
			"payload": map[string]any{"orderId": held.String()},
		}))
		require.Eventually(t, func() bool { return len(f.presence.recordedStatuses()) == 1 }, time.Second, 5*time.Millisecond)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event":   "driver.reject_booking",
			"payload": map[string]any{"orderId": held.String(), "reason": "too far"},
		}))
		require.Eventually(t, func() bool { return len(f.presence.recordedStatuses()) == 2 }, time.Second, 5*time.Millisecond)

		assert.Equal(t, []order.Status{order.Accepted, order.Pending}, f.presence.recordedStatuses())
	})

	t.Run("booking answers need an order held by the driver", func(t *testing.T) {
		other := kernel.NewUUID()
		testCases := []struct {
			name    string
			event   string
			payload map[string]any
			kind    string
		}{
			{"foreign order", "driver.accept_booking", map[string]any{"orderId": f.presence.assign(&other).String()}, "conflict"},
			{"unassigned order", "driver.reject_booking", map[string]any{"orderId": f.presence.assign(nil).String()}, "conflict"},
			{"unknown order", "driver.accept_booking", map[string]any{"orderId": kernel.NewUUID().String()}, "not_found"},
			{"missing order id", "driver.reject_booking", map[string]any{}, "validation"},
			{"malformed order id", "driver.accept_booking", map[string]any{"orderId": "nope"}, "validation"},
		}

		for _, tc := range testCases {
			require.NoError(t, conn.WriteJSON(map[string]any{"event": tc.event, "payload": tc.payload}))

			env := readEnvelope(t, conn)
			assert.Equal(t, ws.ErrorReply, env.Event, tc.name)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(env.Payload, &payload))
			assert.Equal(t, tc.kind, payload["kind"], tc.name)
			assert.Equal(t, tc.event, payload["event"], tc.name)
		}
		assert.Len(t, f.presence.recordedStatuses(), 2)
	})

	t.Run("driver topic events are streamed", func(t *testing.T) {
		f.hub.Publish(t.Context(), deleted(), events.Driver(driverID))

		env := readEnvelope(t, conn)
		assert.Equal(t, events.OrderDeleted, env.Event)
	})

	require.NoError(t, conn.Close())

	select {
	case got := <-f.presence.disconnected:
		assert.Equal(t, connectionID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect was not recorded")
	}
	f.waitSubscribed(events.Driver(driverID), 0)
}

func TestDriverSocket_ConnectFailureClosesSocket(t *testing.T) {
	f := newFixture(t)
	driverID := kernel.NewUUID()
	f.presence.connectErr = errs.NewObjectNotFoundError("driver", driverID)

	conn := f.mustDial("/ws/drivers/" + driverID.String() + "?token=" + f.token(driverID, httpin.RoleDriver))

	env := readEnvelope(t, conn)
	assert.Equal(t, ws.ErrorReply, env.Event)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "not_found", payload["kind"])

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	select {
	case <-f.presence.disconnected:
		t.Fatal("a rejected socket must not disconnect the driver")
	case <-time.After(100 * time.Millisecond):
	}
}
