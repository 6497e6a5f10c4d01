package booking

import (
	"github.com/bissquit/hotel-booking/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = metrics.Namespace

var (
	bookingAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bookings",
			Name:      "attempts_total",
			Help:      "Booking attempts by final state",
		},
		[]string{"state"},
	)

	bookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bookings",
			Name:      "rejected_total",
			Help:      "Rejected booking attempts by error kind",
		},
		[]string{"reason"},
	)

	bookingsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Cancelled bookings by who cancelled them",
		},
		[]string{"by"},
	)

	codeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bookings",
			Name:      "confirmation_code_collisions_total",
			Help:      "Generated confirmation codes that were already issued",
		},
	)
)

func recordAttempt(state string) {
	bookingAttempts.WithLabelValues(state).Inc()
}

func recordRejection(reason string) {
	bookingRejections.WithLabelValues(reason).Inc()
}

func recordCancelled(byAdmin bool) {
	by := "owner"
	if byAdmin {
		by = "admin"
	}
	bookingsCancelled.WithLabelValues(by).Inc()
}

func recordCodeCollision() {
	codeCollisions.Inc()
}
