package uihealth

import "time"

// #region config

// AggregatorConfig tunes the rolling-window health judgment.
type AggregatorConfig struct {
	ObservationWindow time.Duration
	DegradedThreshold float64
	CriticalThreshold float64
	SeverityWeights   map[EventType]float64
}

// DefaultAggregatorConfig returns the production thresholds: a five-minute
// window, degraded at weight 1, critical at weight 2.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		ObservationWindow: 5 * time.Minute,
		DegradedThreshold: 1,
		CriticalThreshold: 2,
		SeverityWeights: map[EventType]float64{
			EventResultsNotVisible: 2,
			EventInputObstructed:   2,
			EventLayoutOverflow:    1,
			EventImageError:        1,
			EventRenderStall:       1,
		},
	}
}

// #endregion config

// #region aggregator

// Aggregator accumulates weighted UI failure events in a rolling time
// window. mode is a deterministic, monotone function of the weighted sum of
// non-expired events; because pruning is time-based, the mode decays back to
// NORMAL from elapsed time alone; recovery needs no explicit reset.
type Aggregator struct {
	config  AggregatorConfig
	history []Event
	now     func() time.Time
}

// NewAggregator creates an aggregator with the given configuration.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.ObservationWindow <= 0 {
		config.ObservationWindow = 5 * time.Minute
	}
	if config.SeverityWeights == nil {
		config.SeverityWeights = DefaultAggregatorConfig().SeverityWeights
	}
	return &Aggregator{config: config, now: time.Now}
}

// SetClock replaces the time source. Test hook.
func (a *Aggregator) SetClock(now func() time.Time) { a.now = now }

// Ingest appends new events (zero timestamps default to now), prunes entries
// older than the observation window, and derives the current status.
func (a *Aggregator) Ingest(events []Event) Status {
	now := a.now()

	for _, e := range events {
		if e.TS.IsZero() {
			e.TS = now
		}
		a.history = append(a.history, e)
	}

	// Append + prune-by-age + reduce, kept explicit so the pruning semantics
	// stay exact and testable.
	cutoff := now.Add(-a.config.ObservationWindow)
	kept := a.history[:0]
	for _, e := range a.history {
		if e.TS.After(cutoff) {
			kept = append(kept, e)
		}
	}
	a.history = kept

	var sum float64
	for _, e := range a.history {
		w, ok := a.config.SeverityWeights[e.Type]
		if !ok {
			w = 1
		}
		sum += w
	}

	mode := HealthNormal
	switch {
	case sum >= a.config.CriticalThreshold:
		mode = HealthCritical
	case sum >= a.config.DegradedThreshold:
		mode = HealthDegraded
	}

	return Status{
		Mode:       mode,
		RenderMode: renderModeFor(mode),
		Severity:   severityFor(mode),
	}
}

// HistoryLen reports the number of non-expired events after the last ingest.
func (a *Aggregator) HistoryLen() int { return len(a.history) }

// #endregion aggregator

// #region derivations

func renderModeFor(mode HealthLevel) RenderMode {
	switch mode {
	case HealthCritical:
		return RenderTextOnly
	case HealthDegraded:
		return RenderCompact
	default:
		return RenderFull
	}
}

func severityFor(mode HealthLevel) Severity {
	switch mode {
	case HealthCritical:
		return SeverityCritical
	case HealthDegraded:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// #endregion derivations
