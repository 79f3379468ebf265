package uihealth

import "time"

// #region snapshot

// Rect is a DOM bounding rectangle in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top returns the rect's top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the rect's bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Insets are safe-area insets reported by the client.
type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// TouchTarget is one measured interactive element.
type TouchTarget struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Positions is the minimal sub-object retained from the previous snapshot
// for shift detection.
type Positions struct {
	InputY float64 `json:"inputY"`
	NavY   float64 `json:"navY"`
	ChatY  float64 `json:"chatY"`
}

// Snapshot is one raw layout measurement from the client. Element keys are
// "main", "input", "nav", "chat"; a missing key means the element was not
// found in the DOM.
type Snapshot struct {
	Elements             map[string]*Rect `json:"elements"`
	ViewportHeight       float64          `json:"viewportHeight"`
	ViewportWidth        float64          `json:"viewportWidth"`
	VisualViewportHeight float64          `json:"visualViewportHeight"`
	Visibility           map[string]bool  `json:"visibility"`
	FocusableInput       bool             `json:"focusableInput"`
	SafeArea             Insets           `json:"safeAreaInsets"`
	ViewportScale        float64          `json:"viewportScale"`
	TouchTargets         []TouchTarget    `json:"touchTargets"`
	NavVisible           bool             `json:"navVisible"`
	Positions            Positions        `json:"positions"`
}

// #endregion snapshot

// #region flags

// Flags is the UI state recomputed fully on each health tick.
type Flags struct {
	UIBroken                bool      `json:"uiBroken"`
	LayoutShiftDetected     bool      `json:"layoutShiftDetected"`
	InputNotReachable       bool      `json:"inputNotReachable"`
	ViewportObstructed      bool      `json:"viewportObstructed"`
	KeyboardOverlayBlocking bool      `json:"keyboardOverlayBlocking"`
	Issues                  []string  `json:"issues"`
	LastCheck               time.Time `json:"lastCheck"`
}

// Evaluation pairs the computed flags with the positions to retain for the
// next tick's shift check.
type Evaluation struct {
	State     Flags     `json:"state"`
	Positions Positions `json:"snapshot"`
}

// #endregion flags

// #region health-status

// HealthLevel is the aggregate judgment over the rolling event window.
type HealthLevel string

const (
	HealthNormal   HealthLevel = "NORMAL"
	HealthDegraded HealthLevel = "DEGRADED"
	HealthCritical HealthLevel = "CRITICAL"
)

// RenderMode is the rendering contract recommended to the client.
type RenderMode string

const (
	RenderFull     RenderMode = "full"
	RenderCompact  RenderMode = "compact"
	RenderTextOnly RenderMode = "text-only"
)

// Severity accompanies a health status for banner styling.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Status is the aggregator's output for one ingest call.
type Status struct {
	Mode       HealthLevel `json:"mode"`
	RenderMode RenderMode  `json:"renderMode"`
	Severity   Severity    `json:"severity"`
}

// #endregion health-status

// #region events

// EventType identifies one discrete UI failure event.
type EventType string

const (
	EventResultsNotVisible EventType = "RESULTS_NOT_VISIBLE"
	EventInputObstructed   EventType = "INPUT_OBSTRUCTED"
	EventLayoutOverflow    EventType = "LAYOUT_OVERFLOW"
	EventImageError        EventType = "IMAGE_ERROR"
	EventRenderStall       EventType = "RENDER_STALL"
)

// Event is one reported UI failure with an optional timestamp
// (zero = time of ingest).
type Event struct {
	Type EventType `json:"type"`
	TS   time.Time `json:"ts,omitempty"`
}

// #endregion events
