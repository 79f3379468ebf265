package uihealth

// #region ui-mode

// UIMode is the three-state rendering mode the client must honor.
type UIMode string

const (
	UIModeNormal          UIMode = "NORMAL"
	UIModeDegradedVisuals UIMode = "DEGRADED_VISUALS"
	UIModeError           UIMode = "ERROR"
)

// ServerHealth is the remote health signal as the client sees it.
type ServerHealth struct {
	DegradedMode   bool   `json:"degraded_mode"`
	RenderTextOnly bool   `json:"render_text_only"`
	Severity       string `json:"severity"` // "info" | "warning" | "error"
}

// TickInput is the explicit signal tuple fed to the FSM each reconciliation
// tick: both sources arrive together so the transition function stays a pure
// reducer rather than two independently-mutating variables.
type TickInput struct {
	Server ServerHealth `json:"serverHealth"`
	Local  Flags        `json:"localFlags"`
}

// Transition reports one FSM step.
type Transition struct {
	Previous UIMode `json:"previous"`
	Next     UIMode `json:"next"`
	Changed  bool   `json:"changed"`
}

// #endregion ui-mode

// #region machine

// Machine reconciles local snapshot flags with server-reported health into
// one UI mode. Only NORMAL, DEGRADED_VISUALS, and ERROR are reachable; there
// is no recovery delay; a single clean tick drops ERROR straight to NORMAL.
type Machine struct {
	current UIMode
}

// NewMachine starts in NORMAL.
func NewMachine() *Machine {
	return &Machine{current: UIModeNormal}
}

// Current returns the machine's present mode.
func (m *Machine) Current() UIMode { return m.current }

// Next runs one reconciliation tick. Priority order, first match wins:
//  1. critical local flag or server severity "error" → ERROR
//  2. server degraded/text-only or any local issue    → DEGRADED_VISUALS
//  3. otherwise                                       → NORMAL
//
// Changed is true exactly when the mode moved; callers emit a transition
// event once per actual change, never on unchanged ticks.
func (m *Machine) Next(in TickInput) Transition {
	prev := m.current
	next := decide(in)
	m.current = next
	return Transition{Previous: prev, Next: next, Changed: next != prev}
}

// decide is the pure transition function.
func decide(in TickInput) UIMode {
	if in.Local.InputNotReachable || in.Local.KeyboardOverlayBlocking || in.Local.UIBroken ||
		in.Server.Severity == "error" {
		return UIModeError
	}
	if in.Server.DegradedMode || in.Server.RenderTextOnly || len(in.Local.Issues) > 0 {
		return UIModeDegradedVisuals
	}
	return UIModeNormal
}

// #endregion machine

// #region render-contract

// RenderContract is the minimal triple the rendering layer must honor.
type RenderContract struct {
	RenderTextOnly bool `json:"renderTextOnly"`
	DegradedMode   bool `json:"degradedMode"`
	ShowBanner     bool `json:"showBanner"`
}

// ContractFor derives the rendering contract from a UI mode.
func ContractFor(mode UIMode) RenderContract {
	switch mode {
	case UIModeError:
		return RenderContract{RenderTextOnly: true, DegradedMode: true, ShowBanner: true}
	case UIModeDegradedVisuals:
		return RenderContract{DegradedMode: true, ShowBanner: true}
	default:
		return RenderContract{}
	}
}

// RecoveryActions are the fixed user-facing actions offered in ERROR mode.
func RecoveryActions() []string {
	return []string{"reload", "scroll-to-input", "zoom-reset", "close-keyboard"}
}

// #endregion render-contract
