package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by resulting status.",
		},
		[]string{"status"},
	)

	sweeperRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "sweeper_runs_total",
			Help:      "Expiry sweeper runs by outcome.",
		},
		[]string{"outcome"},
	)

	sweeperExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "sweeper_expired_bookings_total",
			Help:      "Bookings transitioned to expired by the sweeper.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingTransitions, sweeperRuns, sweeperExpired)
	})
}

// IncBookingTransition increments the transition counter for a status label.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// IncSweeperRun increments the run counter with outcome "ok" or "failed".
func IncSweeperRun(outcome string) {
	sweeperRuns.WithLabelValues(outcome).Inc()
}

// AddSweeperExpired adds the number of bookings expired in one run.
func AddSweeperExpired(n int) {
	sweeperExpired.Add(float64(n))
}
