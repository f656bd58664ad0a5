package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Booking metrics
	SelectionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_selection_outcomes_total",
			Help: "Total number of per-date selection changes by shift mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	SessionsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_sessions_opened_total",
			Help: "Total number of booking sessions opened",
		},
	)

	BookingsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_submitted_total",
			Help: "Total number of bookings submitted",
		},
	)

	BookingAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_amount_cents",
			Help:    "Grand total of submitted bookings in cents",
			Buckets: []float64{10000, 50000, 100000, 250000, 500000, 1000000, 2500000, 5000000},
		},
	)

	// Event metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published",
		},
		[]string{"event_type", "status"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Redis metrics
	RedisOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)

	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Error metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "component"},
	)
)

// RecordSelection records per-date outcomes of one interaction
func RecordSelection(mode string, applied, skipped int) {
	if applied > 0 {
		SelectionOutcomes.WithLabelValues(mode, "applied").Add(float64(applied))
	}
	if skipped > 0 {
		SelectionOutcomes.WithLabelValues(mode, "skipped").Add(float64(skipped))
	}
}

// RecordSessionOpened records a new booking session
func RecordSessionOpened() {
	SessionsOpened.Inc()
}

// RecordBookingSubmitted records a submitted booking
func RecordBookingSubmitted(grandTotalCents int64) {
	BookingsSubmitted.Inc()
	BookingAmount.Observe(float64(grandTotalCents))
}

// RecordEventPublished records an event publication attempt
func RecordEventPublished(eventType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(eventType, status).Inc()
}

// RecordDatabaseQuery records a database query
func RecordDatabaseQuery(operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRedisOperation records a Redis operation
func RecordRedisOperation(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RedisOperationsTotal.WithLabelValues(operation, status).Inc()
	RedisOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError records an error
// RecordBreakerState exports a circuit breaker state (0 closed, 1 open, 2 half-open)
func RecordBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordError(errorType, component string) {
	ErrorsTotal.WithLabelValues(errorType, component).Inc()
}
