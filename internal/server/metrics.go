package server

// #region imports
import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #endregion

// #region metrics

// Metrics holds the Prometheus instruments for the HTTP layer.
type Metrics struct {
	TurnsTotal     *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
	UIEventsTotal  *prometheus.CounterVec
	FSMTransitions *prometheus.CounterVec
}

// NewMetrics registers all instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carscout",
			Name:      "turns_total",
			Help:      "Completed conversation turns by classified intent.",
		}, []string{"intent"}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carscout",
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn processing latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		UIEventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carscout",
			Name:      "ui_events_total",
			Help:      "Reported UI failure events by type.",
		}, []string{"type"}),
		FSMTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carscout",
			Name:      "ui_mode_transitions_total",
			Help:      "UI mode state machine transitions.",
		}, []string{"from", "to"}),
	}
}

// #endregion metrics
