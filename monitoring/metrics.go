package monitoring

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total registrations created per event",
		},
		[]string{"event_id"},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifications_total",
			Help: "Ticket verification attempts per event and outcome",
		},
		[]string{"event_id", "status"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_deliveries_total",
			Help: "Ticket notification dispatches per channel and outcome",
		},
		[]string{"channel", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request handling duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"method", "status"},
	)
)

// TrackRegistration records a created registration.
func TrackRegistration(eventID string) {
	registrationsTotal.WithLabelValues(eventID).Inc()
}

// TrackVerification records a verification attempt outcome
// ("verified", "conflict", "not_found").
func TrackVerification(eventID, status string) {
	verificationsTotal.WithLabelValues(eventID, status).Inc()
}

// TrackDelivery records a notification dispatch outcome.
func TrackDelivery(channel, status string) {
	deliveriesTotal.WithLabelValues(channel, status).Inc()
}

// ObserveRequest records one handled HTTP request.
func ObserveRequest(method, status string, duration time.Duration) {
	requestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// Serve exposes /metrics on its own port, away from the public API.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics server listening", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
