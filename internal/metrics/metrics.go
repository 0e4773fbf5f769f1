package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roleta_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Room metrics
	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleta_rooms_active",
			Help: "Rooms currently in the registry",
		},
	)

	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_rooms_created_total",
			Help: "Total rooms created",
		},
		[]string{"room_type"}, // "public" or "private"
	)

	RoomsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roleta_rooms_reaped_total",
			Help: "Total rooms removed by the idle reaper",
		},
	)

	ReaperSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roleta_reaper_sweeps_total",
			Help: "Total reaper sweeps",
		},
	)

	// Signaling metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roleta_connections_active",
			Help: "WebSocket connections currently joined to a room",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roleta_messages_relayed_total",
			Help: "Total signaling and chat envelopes relayed between participants",
		},
	)

	JoinsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_joins_rejected_total",
			Help: "Total join attempts rejected before entering a room",
		},
		[]string{"reason"},
	)
)
