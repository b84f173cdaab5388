// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dispatch"

// Delivery outcomes recorded by the notification bus.
const (
	DeliveryDelivered   = "delivered"
	DeliveryDropped     = "dropped"
	DeliveryRelayFailed = "relay_failed"
	DeliveryExportFail  = "export_failed"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing,
// which keeps unit tests free of registry setup.
type Metrics struct {
	commands        *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	busDeliveries   *prometheus.CounterVec
	liveConnections *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Executed commands by name and outcome kind.",
		}, []string{"command", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		busDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_deliveries_total",
			Help:      "Notification bus deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
		liveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_connections",
			Help:      "Open websocket connections by role.",
		}, []string{"role"}),
	}

	reg.MustRegister(m.commands, m.httpRequests, m.httpDuration, m.busDeliveries, m.liveConnections)
	return m
}

// CommandExecuted records a command outcome ("ok" or an errs.Kind name).
func (m *Metrics) CommandExecuted(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// Delivery records a bus delivery outcome for an event.
func (m *Metrics) Delivery(event, outcome string) {
	if m == nil {
		return
	}
	m.busDeliveries.WithLabelValues(event, outcome).Inc()
}

// ConnectionOpened increments the live connection gauge for role.
func (m *Metrics) ConnectionOpened(role string) {
	if m == nil {
		return
	}
	m.liveConnections.WithLabelValues(role).Inc()
}

// ConnectionClosed decrements the live connection gauge for role.
func (m *Metrics) ConnectionClosed(role string) {
	if m == nil {
		return
	}
	m.liveConnections.WithLabelValues(role).Dec()
}
