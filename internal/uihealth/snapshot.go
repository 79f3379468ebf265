package uihealth

// #region imports
import (
	"fmt"
	"math"
	"time"
)

// #endregion

// #region thresholds

const (
	navRequiredBelowPx   = 768.0 // nav is only required on narrow viewports
	minInputHeightPx     = 40.0
	minTouchTargetPx     = 44.0
	navBottomGapPx       = 4.0
	keyboardHeightDropPx = 150.0
	zoomDriftTolerance   = 0.05
	positionShiftPx      = 40.0
	minUsableWidthPx     = 88.0
)

// #endregion thresholds

// #region evaluate

// EvaluateSnapshot compares the current layout measurement against the
// previous tick's positions and produces the full flag set. Pure and
// deterministic; re-run on every health tick and on resize/scroll.
//
// Every check runs unconditionally, without short-circuiting, so issues
// accumulates every applicable message and flags OR-accumulate within the
// tick. A nil snapshot is treated as "everything missing".
func EvaluateSnapshot(current *Snapshot, previous Positions) Evaluation {
	var f Flags
	f.LastCheck = time.Now()

	if current == nil {
		current = &Snapshot{}
	}
	snap := *current

	navExpected := checkRequiredElements(&f, snap)
	checkVisibility(&f, snap, navExpected)
	checkInputReachability(&f, snap)
	checkNavObstruction(&f, snap, navExpected)
	checkKeyboardOverlay(&f, snap)
	checkZoomDrift(&f, snap)
	checkPositionShift(&f, snap, previous)
	checkTouchTargets(&f, snap, navExpected)
	checkZeroHeight(&f, snap)
	checkNarrowViewport(&f, snap)
	checkSafeArea(&f, snap)

	return Evaluation{State: f, Positions: currentPositions(snap)}
}

// #endregion evaluate

// #region required-elements

// checkRequiredElements flags missing containers. main, input, and chat are
// always required; nav only below the mobile breakpoint. A missing nav is
// logged but does not force uiBroken; desktop layouts legitimately lack it.
func checkRequiredElements(f *Flags, snap Snapshot) (navExpected bool) {
	navExpected = snap.ViewportWidth < navRequiredBelowPx

	for _, name := range []string{"main", "input", "chat"} {
		if snap.Elements[name] == nil {
			f.UIBroken = true
			f.Issues = append(f.Issues, fmt.Sprintf("required element missing: %s", name))
		}
	}
	if navExpected && snap.Elements["nav"] == nil {
		f.Issues = append(f.Issues, "nav missing on narrow viewport")
	}
	return navExpected
}

func checkVisibility(f *Flags, snap Snapshot, navExpected bool) {
	for _, name := range []string{"main", "input", "chat"} {
		if snap.Elements[name] != nil && !snap.Visibility[name] {
			f.UIBroken = true
			f.Issues = append(f.Issues, fmt.Sprintf("element not visible: %s", name))
		}
	}
	if navExpected && snap.Elements["nav"] != nil && !snap.Visibility["nav"] {
		f.Issues = append(f.Issues, "nav not visible on narrow viewport")
	}
}

// #endregion required-elements

// #region input-reachability

func checkInputReachability(f *Flags, snap Snapshot) {
	input := snap.Elements["input"]
	if input == nil {
		return
	}
	if !snap.FocusableInput {
		f.InputNotReachable = true
		f.Issues = append(f.Issues, "input is not focusable")
	}
	effectiveHeight := snap.VisualViewportHeight
	if effectiveHeight == 0 {
		effectiveHeight = snap.ViewportHeight
	}
	if input.Top() < 0 || input.Bottom() > effectiveHeight {
		f.InputNotReachable = true
		f.Issues = append(f.Issues, "input outside the effective viewport")
	}
	// Sub-44px touch target: issue only, no flag.
	if input.Height > 0 && input.Height < minInputHeightPx {
		f.Issues = append(f.Issues, fmt.Sprintf("input height %.0fpx below touch minimum", input.Height))
	}
}

// #endregion input-reachability

// #region nav-obstruction

// checkNavObstruction only applies when nav is expected and visible: the nav
// bar sitting flush against the visual viewport bottom (inside the safe
// area) means it covers the input row.
func checkNavObstruction(f *Flags, snap Snapshot, navExpected bool) {
	nav := snap.Elements["nav"]
	if !navExpected || nav == nil || !snap.NavVisible {
		return
	}
	effectiveBottom := snap.VisualViewportHeight - snap.SafeArea.Bottom
	if effectiveBottom <= 0 {
		effectiveBottom = snap.ViewportHeight - snap.SafeArea.Bottom
	}
	if math.Abs(nav.Bottom()-effectiveBottom) <= navBottomGapPx {
		f.ViewportObstructed = true
		f.Issues = append(f.Issues, "bottom nav obstructs the visual viewport edge")
	}
}

// #endregion nav-obstruction

// #region keyboard-overlay

func checkKeyboardOverlay(f *Flags, snap Snapshot) {
	input := snap.Elements["input"]
	if input == nil || snap.VisualViewportHeight == 0 {
		return
	}
	keyboardHeight := snap.ViewportHeight - snap.VisualViewportHeight
	if keyboardHeight > keyboardHeightDropPx && input.Bottom() > snap.VisualViewportHeight {
		f.KeyboardOverlayBlocking = true
		f.Issues = append(f.Issues, "software keyboard covers the input")
	}
}

// #endregion keyboard-overlay

// #region zoom-and-shift

func checkZoomDrift(f *Flags, snap Snapshot) {
	if snap.ViewportScale == 0 {
		return
	}
	if math.Abs(snap.ViewportScale-1) > zoomDriftTolerance {
		f.LayoutShiftDetected = true
		f.Issues = append(f.Issues, fmt.Sprintf("viewport scale drifted to %.2f", snap.ViewportScale))
	}
}

// checkPositionShift compares this tick's element positions against the
// previous tick. Input and nav are checked independently; the first nav hit
// wins so one jump is not double-flagged.
func checkPositionShift(f *Flags, snap Snapshot, previous Positions) {
	if previous == (Positions{}) {
		return
	}
	cur := currentPositions(snap)
	if snap.Elements["input"] != nil && math.Abs(cur.InputY-previous.InputY) > positionShiftPx {
		f.LayoutShiftDetected = true
		f.Issues = append(f.Issues, "input position shifted")
	}
	if snap.Elements["nav"] != nil && math.Abs(cur.NavY-previous.NavY) > positionShiftPx {
		if !f.LayoutShiftDetected {
			f.LayoutShiftDetected = true
		}
		f.Issues = append(f.Issues, "nav position shifted")
	}
}

// #endregion zoom-and-shift

// #region touch-targets

func checkTouchTargets(f *Flags, snap Snapshot, navExpected bool) {
	if !navExpected || !snap.NavVisible {
		return
	}
	for _, t := range snap.TouchTargets {
		if t.Width < minTouchTargetPx || t.Height < minTouchTargetPx {
			f.Issues = append(f.Issues, fmt.Sprintf("touch target %q under %.0fx%.0fpx", t.Name, minTouchTargetPx, minTouchTargetPx))
		}
	}
}

// #endregion touch-targets

// #region containment

func checkZeroHeight(f *Flags, snap Snapshot) {
	for _, name := range []string{"main", "chat"} {
		if el := snap.Elements[name]; el != nil && el.Height == 0 {
			f.UIBroken = true
			f.Issues = append(f.Issues, fmt.Sprintf("containment bug: %s height is 0", name))
		}
	}
}

func checkNarrowViewport(f *Flags, snap Snapshot) {
	if snap.Elements["input"] != nil && snap.ViewportWidth > 0 && snap.ViewportWidth < minUsableWidthPx {
		f.ViewportObstructed = true
		f.Issues = append(f.Issues, fmt.Sprintf("viewport width %.0fpx too narrow for input", snap.ViewportWidth))
	}
}

func checkSafeArea(f *Flags, snap Snapshot) {
	chat := snap.Elements["chat"]
	if chat == nil || snap.SafeArea.Bottom <= 0 || snap.ViewportHeight == 0 {
		return
	}
	safeBottom := snap.ViewportHeight - snap.SafeArea.Bottom
	if chat.Bottom() > safeBottom {
		f.ViewportObstructed = true
		f.Issues = append(f.Issues, "chat intrudes into the bottom safe area")
	}
}

// #endregion containment

// #region helpers

func currentPositions(snap Snapshot) Positions {
	var p Positions
	if el := snap.Elements["input"]; el != nil {
		p.InputY = el.Y
	}
	if el := snap.Elements["nav"]; el != nil {
		p.NavY = el.Y
	}
	if el := snap.Elements["chat"]; el != nil {
		p.ChatY = el.Y
	}
	return p
}

// #endregion helpers
