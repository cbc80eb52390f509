// Package metrics holds the Prometheus collectors shared by the daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Language identification
	Detections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_language_detections_total",
			Help: "Total number of language classifications",
		},
		[]string{"language", "source"}, // source: recognition, query, api, grpc
	)

	// Recognition sessions
	RecognitionSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_recognition_sessions_total",
			Help: "Total number of recognition sessions by outcome",
		},
		[]string{"mode", "outcome"}, // mode: auto, fixed; outcome: result, error, cancelled, no_result, unavailable
	)

	FallbackPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_recognition_fallback_passes_total",
			Help: "Total number of second recognition passes by outcome",
		},
		[]string{"outcome"}, // improved, kept, timeout, error, ended, unavailable
	)

	// Assistant queries
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_queries_total",
			Help: "Total number of assistant queries",
		},
		[]string{"backend", "mode"}, // mode: ai, demo, error_fallback
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krishivoice_query_duration_seconds",
			Help:    "Assistant query duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
		},
		[]string{"backend"},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krishivoice_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WebSocket bridge
	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "krishivoice_websocket_active_connections",
			Help: "Number of active recognition bridge connections",
		},
	)

	WebsocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // sent, received
	)

	// gRPC and MQTT
	GRPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	MQTTMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krishivoice_mqtt_messages_total",
			Help: "Total number of MQTT messages",
		},
		[]string{"direction"},
	)
)
