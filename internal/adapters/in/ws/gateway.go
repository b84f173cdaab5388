// Package ws is the live channel: websocket endpoints that stream NotificationBus topics to
// admins, drivers and booking trackers, and that turn driver socket lifecycles into presence
// commands.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Inbound driver messages and the reply sent when one fails.
const (
	LocationUpdate     = events.DriverLocationUpdate
	AvailabilityUpdate events.Name = "driver.availability_update"
	AcceptBooking      events.Name = "driver.accept_booking"
	RejectBooking      events.Name = "driver.reject_booking"
	ErrorReply         events.Name = "error"
)

const presenceTimeout = 10 * time.Second

// Subscriber is the part of notify.Hub the gateway needs.
type Subscriber interface {
	Subscribe(topics ...events.Topic) *notify.Subscription
}

// DriverPresence holds the use cases driven by driver sockets. GetOrder and
// UpdateOrderStatus back the accept and reject booking messages.
type DriverPresence struct {
	Connect           httpin.Handler[commands.ConnectDriverCommand, views.DriverView]
	Disconnect        httpin.Handler[commands.DisconnectDriverCommand, bool]
	UpdateLocation    httpin.Handler[commands.UpdateDriverLocationCommand, views.DriverView]
	SetAvailability   httpin.Handler[commands.SetDriverAvailabilityCommand, views.DriverView]
	GetOrder          httpin.Handler[queries.GetOrderQuery, views.OrderView]
	UpdateOrderStatus httpin.Handler[commands.UpdateOrderStatusCommand, views.OrderView]
}

type Gateway struct {
	hub      Subscriber
	presence DriverPresence
	auth     httpin.Authenticator
	upgrader websocket.Upgrader
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Gateway)

func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithCheckOrigin restricts which browser origins may open sockets. All origins are
// accepted by default since every socket except booking tracking carries a token.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(g *Gateway) {
		g.upgrader.CheckOrigin = check
	}
}

func NewGateway(hub Subscriber, presence DriverPresence, auth httpin.Authenticator, opts ...Option) *Gateway {
	g := &Gateway{
		hub:      hub,
		presence: presence,
		auth:     auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("ws"))
	return g
}

// Register mounts the socket endpoints on e.
func (g *Gateway) Register(e *echo.Echo) {
	group := e.Group("/ws")
	group.GET("/admin", g.Admin, g.auth.Middleware(), httpin.RequireRole(httpin.RoleAdmin))
	group.GET("/drivers/:id", g.Driver, g.auth.Middleware(), httpin.RequireRole(httpin.RoleDriver))
	group.GET("/bookings/:bookingId", g.Booking)
}

// Admin streams the admins and broadcast topics.
func (g *Gateway) Admin(c echo.Context) error {
	return g.serve(c, "admin", []events.Topic{events.Admins(), events.Broadcast()}, nil, nil, nil)
}

// Booking streams one booking's events. The booking id is the capability.
func (g *Gateway) Booking(c echo.Context) error {
	bookingID, err := order.ParseBookingID(c.Param("bookingId"))
	if err != nil {
		return err
	}
	return g.serve(c, "booking", []events.Topic{events.Booking(bookingID)}, nil, nil, nil)
}

// Driver streams the driver's own topic and broadcast. Opening the socket brings the driver
// online; closing it takes the driver offline unless a newer socket replaced this one.
func (g *Gateway) Driver(c echo.Context) error {
	driverID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return err
	}
	if identity, _ := httpin.IdentityFrom(c); !identity.ID.IsEqual(driverID) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	connectionID := uuid.NewString()
	log := g.log.With(logger.String("driverId", driverID.String()), logger.String("connectionId", connectionID))

	open := func(ctx context.Context) error {
		cmd, err := commands.NewConnectDriverCommand(driverID, connectionID)
		if err != nil {
			return err
		}
		_, err = g.presence.Connect.Handle(ctx, cmd)
		return err
	}

	onClose := func(ctx context.Context) {
		cmd, err := commands.NewDisconnectDriverCommand(driverID, connectionID)
		if err != nil {
			log.Error("failed to build disconnect", logger.Error(err))
			return
		}
		applied, err := g.presence.Disconnect.Handle(ctx, cmd)
		if err != nil {
			log.Warn("failed to record disconnect", logger.Error(err))
			return
		}
		if !applied {
			log.Debug("stale disconnect ignored")
		}
	}

	s := &driverSession{gateway: g, driverID: driverID, log: log}
	return g.serve(c, "driver", []events.Topic{events.Driver(driverID), events.Broadcast()}, open, onClose, s)
}

type openFunc func(ctx context.Context) error

type closeFunc func(ctx context.Context)

// serve upgrades the request and pumps frames until either side goes away. session, when
// set, handles inbound messages.
func (g *Gateway) serve(
	c echo.Context,
	role string,
	topics []events.Topic,
	open openFunc,
	onClose closeFunc,
	session *driverSession,
) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the request.
		g.log.Debug("websocket upgrade failed", logger.Error(err))
		return nil
	}

	cl := newClient(conn, g.hub.Subscribe(topics...))
	go cl.writePump()

	g.metrics.ConnectionOpened(role)
	defer g.metrics.ConnectionClosed(role)

	ctx := context.WithoutCancel(c.Request().Context())
	if open != nil {
		openCtx, cancel := context.WithTimeout(ctx, presenceTimeout)
		err := open(openCtx)
		cancel()
		if err != nil {
			g.log.Warn("rejecting socket", logger.String("role", role), logger.Error(err))
			cl.reply(g.errorFrame("", err))
			cl.close()
			return nil
		}
	}

	var handle func([]byte)
	if session != nil {
		handle = func(message []byte) {
			if frame := session.handle(ctx, message); frame != nil {
				cl.reply(frame)
			}
		}
	}
	cl.readPump(handle)

	if onClose != nil {
		closeCtx, cancel := context.WithTimeout(ctx, presenceTimeout)
		onClose(closeCtx)
		cancel()
	}
	cl.close()
	return nil
}

type errorPayload struct {
	Event   events.Name `json:"event,omitempty"`
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
}

func (g *Gateway) errorFrame(name events.Name, err error) []byte {
	payload := errorPayload{Event: name, Kind: errs.KindOf(err).String(), Message: err.Error()}
	if errs.KindOf(err) == errs.KindInternal {
		payload.Message = "Internal server error"
	}
	frame, encErr := events.New(ErrorReply, payload, g.now()).Encode()
	if encErr != nil {
		g.log.Error("failed to encode error reply", logger.Error(encErr))
		return nil
	}
	return frame
}

// driverSession applies the messages a driver sends over its socket.
type driverSession struct {
	gateway  *Gateway
	driverID kernel.UUID
	log      logger.Logger
}

type locationMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type availabilityMessage struct {
	IsAvailable *bool `json:"isAvailable"`
}

type bookingMessage struct {
	OrderID string `json:"orderId"`
}

var errUnknownMessage = errs.NewValueIsInvalidError("event")

// handle returns an error reply for a failed message and nil otherwise. Successful updates
// reach the driver through its topic like any other event.
func (s *driverSession) handle(ctx context.Context, message []byte) []byte {
	env, err := events.DecodeEnvelope(message)
	if err != nil {
		return s.gateway.errorFrame("", errs.NewValueIsInvalidErrorWithCause("message", err))
	}

	cmdCtx, cancel := context.WithTimeout(ctx, presenceTimeout)
	defer cancel()

	switch env.Event {
	case LocationUpdate:
		err = s.updateLocation(cmdCtx, env.Payload)
	case AvailabilityUpdate:
		err = s.setAvailability(cmdCtx, env.Payload)
	case AcceptBooking:
		err = s.answerBooking(cmdCtx, env.Payload, order.Accepted)
	case RejectBooking:
		err = s.answerBooking(cmdCtx, env.Payload, order.Pending)
	default:
		err = errUnknownMessage
	}
	if err != nil {
		s.log.Debug("driver message rejected", logger.String("event", string(env.Event)), logger.Error(err))
		return s.gateway.errorFrame(env.Event, err)
	}
	return nil
}

func (s *driverSession) updateLocation(ctx context.Context, raw json.RawMessage) error {
	var msg locationMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	if msg.Latitude == nil || msg.Longitude == nil {
		return errors.Join(
			requiredIfNil("latitude", msg.Latitude == nil),
			requiredIfNil("longitude", msg.Longitude == nil),
		)
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(s.driverID, *msg.Latitude, *msg.Longitude)
	if err != nil {
		return err
	}
	_, err = s.gateway.presence.UpdateLocation.Handle(ctx, cmd)
	return err
}

func (s *driverSession) setAvailability(ctx context.Context, raw json.RawMessage) error {
	var msg availabilityMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	if msg.IsAvailable == nil {
		return errs.NewValueIsRequiredError("isAvailable")
	}

	cmd, err := commands.NewSetDriverAvailabilityCommand(s.driverID, *msg.IsAvailable)
	if err != nil {
		return err
	}
	_, err = s.gateway.presence.SetAvailability.Handle(ctx, cmd)
	return err
}

// answerBooking moves an order assigned to this driver to status. Rejecting puts the order
// back to pending, which releases the driver.
func (s *driverSession) answerBooking(ctx context.Context, raw json.RawMessage, status order.Status) error {
	var msg bookingMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	if msg.OrderID == "" {
		return errs.NewValueIsRequiredError("orderId")
	}
	orderID, err := kernel.UUIDFromString(msg.OrderID)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return err
	}
	current, err := s.gateway.presence.GetOrder.Handle(ctx, query)
	if err != nil {
		return err
	}
	if current.DriverID == nil || *current.DriverID != s.driverID.String() {
		return errs.NewConflictError("Order is not assigned to this driver")
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, status.String())
	if err != nil {
		return err
	}
	_, err = s.gateway.presence.UpdateOrderStatus.Handle(ctx, cmd)
	return err
}

func requiredIfNil(name string, missing bool) error {
	if missing {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
