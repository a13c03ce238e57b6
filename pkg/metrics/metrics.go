package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsetrack_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsetrack_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// EventsRecorded counts activity events accepted into the stream by kind
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsetrack_activity_events_recorded_total",
			Help: "Total number of activity events recorded",
		},
		[]string{"kind"},
	)

	// EventsDeleted counts activity events removed by the retention sweep
	EventsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsetrack_activity_events_deleted_total",
			Help: "Total number of activity events deleted by retention cleanup",
		},
	)

	// WebSocketConnections tracks currently open realtime connections
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsetrack_websocket_connections",
			Help: "Number of currently connected websocket clients",
		},
	)

	// WebSocketMessages counts inbound realtime messages by type
	WebSocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsetrack_websocket_messages_total",
			Help: "Total number of websocket messages received",
		},
		[]string{"type"},
	)

	// BroadcastsSent counts fan-out messages pushed to subscribers by channel kind
	BroadcastsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsetrack_broadcasts_sent_total",
			Help: "Total number of broadcast messages sent to websocket clients",
		},
		[]string{"event"},
	)
)

// Handler returns the Prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
