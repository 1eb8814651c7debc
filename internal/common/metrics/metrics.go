// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowin_api_requests_total",
			Help: "Total number of booking API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cowin_api_request_duration_seconds",
			Help:    "Duration of booking API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SlotsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowin_slots_found_total",
			Help: "Total number of viable sessions found per location",
		},
		[]string{"location"},
	)

	Alerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowin_alerts_total",
			Help: "Total number of alerts sent per channel and result",
		},
		[]string{"channel", "result"},
	)

	BookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowin_booking_attempts_total",
			Help: "Total number of booking attempts by result",
		},
		[]string{"result"},
	)
)
