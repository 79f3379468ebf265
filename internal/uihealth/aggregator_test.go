package uihealth

import (
	"testing"
	"time"
)

func TestAggregatorNormalWhenEmpty(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig())
	status := a.Ingest(nil)
	if status.Mode != HealthNormal {
		t.Fatalf("want NORMAL, got %s", status.Mode)
	}
	if status.RenderMode != RenderFull || status.Severity != SeverityInfo {
		t.Fatalf("status: %+v", status)
	}
}

func TestAggregatorSingleLightEventDegrades(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig())
	status := a.Ingest([]Event{{Type: EventImageError}})
	// Weight 1 meets the degraded threshold but not the critical one.
	if status.Mode != HealthDegraded {
		t.Fatalf("want DEGRADED, got %s", status.Mode)
	}
	if status.RenderMode != RenderCompact || status.Severity != SeverityWarning {
		t.Fatalf("status: %+v", status)
	}
}

func TestAggregatorHeavyEventGoesCritical(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig())
	// RESULTS_NOT_VISIBLE alone weighs 2, which is the critical threshold.
	status := a.Ingest([]Event{{Type: EventResultsNotVisible}})
	if status.Mode != HealthCritical {
		t.Fatalf("want CRITICAL, got %s", status.Mode)
	}
	if status.RenderMode != RenderTextOnly || status.Severity != SeverityCritical {
		t.Fatalf("status: %+v", status)
	}
}

func TestAggregatorWeightedSum(t *testing.T) {
	cfg := DefaultAggregatorConfig()
	cfg.DegradedThreshold = 1
	cfg.CriticalThreshold = 3
	a := NewAggregator(cfg)

	status := a.Ingest([]Event{{Type: EventLayoutOverflow}})
	if status.Mode != HealthDegraded {
		t.Fatalf("after one light event: want DEGRADED, got %s", status.Mode)
	}

	status = a.Ingest([]Event{{Type: EventInputObstructed}})
	// 1 + 2 = 3 meets the critical threshold.
	if status.Mode != HealthCritical {
		t.Fatalf("after heavy event: want CRITICAL, got %s", status.Mode)
	}
}

func TestAggregatorUnknownEventWeighsOne(t *testing.T) {
	a := NewAggregator(DefaultAggregatorConfig())
	status := a.Ingest([]Event{{Type: EventType("SOMETHING_NEW")}})
	if status.Mode != HealthDegraded {
		t.Fatalf("unknown type should weigh 1: got %s", status.Mode)
	}
}

func TestAggregatorTimeDecay(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	a := NewAggregator(DefaultAggregatorConfig())
	a.SetClock(func() time.Time { return now })

	status := a.Ingest([]Event{{Type: EventResultsNotVisible}})
	if status.Mode != HealthCritical {
		t.Fatalf("want CRITICAL, got %s", status.Mode)
	}
	if a.HistoryLen() != 1 {
		t.Fatalf("history: %d", a.HistoryLen())
	}

	// Six minutes later the event has aged out of the five-minute window:
	// the mode self-heals without any explicit reset.
	now = base.Add(6 * time.Minute)
	status = a.Ingest(nil)
	if status.Mode != HealthNormal {
		t.Fatalf("want NORMAL after decay, got %s", status.Mode)
	}
	if a.HistoryLen() != 0 {
		t.Fatalf("expired events not pruned: %d", a.HistoryLen())
	}
}

func TestAggregatorZeroTimestampDefaultsToNow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	a := NewAggregator(DefaultAggregatorConfig())
	a.SetClock(func() time.Time { return now })

	a.Ingest([]Event{{Type: EventRenderStall}})
	now = base.Add(4 * time.Minute)
	if status := a.Ingest(nil); status.Mode != HealthDegraded {
		t.Fatalf("event should still be in window: %s", status.Mode)
	}
}

func TestAggregatorKeepsExplicitTimestamps(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAggregator(DefaultAggregatorConfig())
	a.SetClock(func() time.Time { return base })

	// Already older than the window at ingest time: pruned immediately.
	stale := Event{Type: EventRenderStall, TS: base.Add(-10 * time.Minute)}
	status := a.Ingest([]Event{stale})
	if status.Mode != HealthNormal {
		t.Fatalf("stale event must not count: %s", status.Mode)
	}
	if a.HistoryLen() != 0 {
		t.Fatalf("stale event retained: %d", a.HistoryLen())
	}
}
