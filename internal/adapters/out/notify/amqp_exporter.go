package notify

import (
	"context"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/Azure/go-amqp"
)

const (
	DefaultExportAddress = "/queues/dispatch.events"
	defaultExportBuffer  = 256
	exportSendTimeout    = 5 * time.Second
)

type messageSender interface {
	Send(ctx context.Context, msg *amqp.Message, opts *amqp.SendOptions) error
}

type exportItem struct {
	event events.Name
	frame []byte
}

// AMQPExporter copies every envelope to an AMQP 1.0 queue. Publish only enqueues; Run
// drains the queue. A full queue or a failed send loses the frame for export only.
type AMQPExporter struct {
	sender  messageSender
	queue   chan exportItem
	closers []func(context.Context) error
	log     logger.Logger
	metrics *metrics.Metrics
}

// DialAMQPExporter connects to the broker at url and opens a sender on address.
func DialAMQPExporter(ctx context.Context, url, address string, log logger.Logger, m *metrics.Metrics) (*AMQPExporter, error) {
	if address == "" {
		address = DefaultExportAddress
	}

	conn, err := amqp.Dial(ctx, url, &amqp.ConnOptions{IdleTimeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}
	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sender, err := session.NewSender(ctx, address, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	e := newAMQPExporter(sender, defaultExportBuffer, log, m)
	e.closers = []func(context.Context) error{
		sender.Close,
		session.Close,
		func(context.Context) error { return conn.Close() },
	}
	return e, nil
}

func newAMQPExporter(sender messageSender, buffer int, log logger.Logger, m *metrics.Metrics) *AMQPExporter {
	return &AMQPExporter{
		sender:  sender,
		queue:   make(chan exportItem, buffer),
		log:     log.With(logger.Component("notify.amqp_exporter")),
		metrics: m,
	}
}

func (e *AMQPExporter) Publish(_ context.Context, event events.Event, _ ...events.Topic) {
	frame, err := event.Encode()
	if err != nil {
		e.log.Error("failed to encode event", logger.String("event", string(event.Name)), logger.Error(err))
		e.metrics.Delivery(string(event.Name), metrics.DeliveryExportFail)
		return
	}

	select {
	case e.queue <- exportItem{event: event.Name, frame: frame}:
	default:
		e.log.Warn("export queue full, dropping frame", logger.String("event", string(event.Name)))
		e.metrics.Delivery(string(event.Name), metrics.DeliveryExportFail)
	}
}

// Run sends queued frames until ctx is done.
func (e *AMQPExporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case item := <-e.queue:
			e.send(ctx, item)
		}
	}
}

func (e *AMQPExporter) send(ctx context.Context, item exportItem) {
	sendCtx, cancel := context.WithTimeout(ctx, exportSendTimeout)
	defer cancel()

	subject := string(item.event)
	contentType := "application/json"
	msg := &amqp.Message{
		Data: [][]byte{item.frame},
		Properties: &amqp.MessageProperties{
			ContentType: &contentType,
			Subject:     &subject,
		},
	}

	if err := e.sender.Send(sendCtx, msg, nil); err != nil {
		e.log.Warn("failed to export event", logger.String("event", subject), logger.Error(err))
		e.metrics.Delivery(subject, metrics.DeliveryExportFail)
	}
}

// Close releases the sender, session and connection.
func (e *AMQPExporter) Close(ctx context.Context) error {
	var first error
	for _, c := range e.closers {
		if err := c(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
