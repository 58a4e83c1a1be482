package acquisition

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failover causes.
const (
	CauseTimeout = "timeout"
	CauseError   = "error"
	CauseClosed  = "closed"
)

// OutcomeComplete labels sessions that produced a setlist. Failures use their reason.
const OutcomeComplete = "complete"

// Metrics holds the acquisition collectors.
type Metrics struct {
	Sessions  prometheus.Counter
	Outcomes  *prometheus.CounterVec
	Failovers *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "setlistify_acquisition_sessions_total",
			Help: "Total number of acquisition sessions started",
		}),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setlistify_acquisition_outcomes_total",
				Help: "Terminal outcomes of acquisition sessions",
			},
			[]string{"outcome"},
		),
		Failovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setlistify_acquisition_failovers_total",
				Help: "Switches from the push transport to the pull transport",
			},
			[]string{"cause"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "setlistify_acquisition_duration_seconds",
				Help:    "Time from session start to terminal outcome",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"transport"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Sessions, m.Outcomes, m.Failovers, m.Duration)
	}
	return m
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.Sessions.Inc()
}

func (m *Metrics) failedOver(cause string) {
	if m == nil {
		return
	}
	m.Failovers.WithLabelValues(cause).Inc()
}

func (m *Metrics) finished(outcome, transport string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
	if transport != "" {
		m.Duration.WithLabelValues(transport).Observe(elapsed.Seconds())
	}
}
