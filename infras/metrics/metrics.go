package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aspen"

// Booking outcome labels.
const (
	OutcomeCreated      = "created"
	OutcomeRejected     = "rejected"
	OutcomeConfirmed    = "confirmed"
	OutcomePaymentFail  = "payment_failed"
	OutcomeCheckedIn    = "checked_in"
	OutcomeCheckedOut   = "checked_out"
	OutcomeCanceled     = "canceled"
	OutcomeNoShow       = "no_show"
	OutcomeExpired      = "expired"
	OutcomeNotification = "notified"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	BookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_events_total", Help: "Booking lifecycle outcomes."},
		[]string{"outcome"},
	)
	SweptBookings = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "expired_bookings_deleted_total", Help: "Unpaid holds removed by the sweeper."},
	)
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry registers every collector once and returns the shared registry.
func InitRegistry() *prometheus.Registry {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, BookingEvents, SweptBookings)
	})

	return registry
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveBooking(outcome string) {
	BookingEvents.WithLabelValues(outcome).Inc()
}

func ObserveSweep(deleted int) {
	SweptBookings.Add(float64(deleted))
}
