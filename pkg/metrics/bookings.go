package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics counts booking lifecycle activity.
type BookingMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings placed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_total",
		Help: "Applied booking lifecycle actions.",
	}, []string{"action", "from", "to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_transitions_rejected_total",
		Help: "Booking lifecycle actions refused by the state machine.",
	}, []string{"action", "from"})
	reg.MustRegister(created, transitions, rejected)
	return &BookingMetrics{
		created:     created,
		transitions: transitions,
		rejected:    rejected,
	}
}

func (m *BookingMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *BookingMetrics) IncTransition(action, from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *BookingMetrics) IncRejectedTransition(action, from string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(action), normalizeLabel(from)).Inc()
}
