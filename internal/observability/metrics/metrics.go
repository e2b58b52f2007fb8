package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/salon-booking/internal/booking"
)

// BookingMetrics exposes counters/histograms for the booking wizard.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	submitDuration   *prometheus.HistogramVec
	stepTransitions  *prometheus.CounterVec
	fetchFailures    *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"outcome"}),
		submitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "submit_duration_seconds",
			Help:      "Latency of booking submissions to the platform",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		stepTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "step_transitions_total",
			Help:      "Wizard navigation attempts",
		}, []string{"from", "direction", "moved"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "fetch_failures_total",
			Help:      "Catalog fetches that failed",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.submitDuration, m.stepTransitions, m.fetchFailures)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	if seconds > 0 {
		m.submitDuration.WithLabelValues(outcome).Observe(seconds)
	}
}

func (m *BookingMetrics) ObserveStep(from booking.Step, direction string, moved bool) {
	if m == nil {
		return
	}
	m.stepTransitions.WithLabelValues(string(from), direction, strconv.FormatBool(moved)).Inc()
}

func (m *BookingMetrics) ObserveFetchFailure(source string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(source).Inc()
}

var _ booking.SubmitObserver = (*BookingMetrics)(nil)
