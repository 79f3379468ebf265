package server

// #region imports
import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"carscout/internal/config"
	"carscout/internal/uihealth"
)

// #endregion

// #region registry

// clientHealth is the per-session UI health pipeline: the rolling event
// aggregator, the mode machine, and the element positions retained for the
// next shift check. The mutex serializes report ticks for one session; the
// client fires un-debounced bursts on resize and scroll, so overlapping
// reports are the normal case, not an edge case.
type clientHealth struct {
	mu       sync.Mutex
	agg      *uihealth.Aggregator
	machine  *uihealth.Machine
	previous uihealth.Positions
}

type healthRegistry struct {
	mu       sync.Mutex
	sessions map[string]*clientHealth
	aggCfg   uihealth.AggregatorConfig
}

func newHealthRegistry(cfg config.Config) *healthRegistry {
	aggCfg := uihealth.DefaultAggregatorConfig()
	aggCfg.ObservationWindow = cfg.HealthWindow
	aggCfg.DegradedThreshold = float64(cfg.DegradedThreshold)
	aggCfg.CriticalThreshold = float64(cfg.CriticalThreshold)
	return &healthRegistry{
		sessions: make(map[string]*clientHealth),
		aggCfg:   aggCfg,
	}
}

func (r *healthRegistry) get(sessionID string) *clientHealth {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.sessions[sessionID]
	if !ok {
		ch = &clientHealth{
			agg:     uihealth.NewAggregator(r.aggCfg),
			machine: uihealth.NewMachine(),
		}
		r.sessions[sessionID] = ch
	}
	return ch
}

// #endregion registry

// #region ui-report

type uiReportRequest struct {
	SessionID    string                 `json:"sessionId"`
	Snapshot     *uihealth.Snapshot     `json:"snapshot"`
	Events       []uihealth.Event       `json:"events"`
	ServerHealth *uihealth.ServerHealth `json:"serverHealth"`
}

type uiReportResponse struct {
	SessionID       string                  `json:"sessionId"`
	Flags           uihealth.Flags          `json:"flags"`
	Status          uihealth.Status         `json:"status"`
	Transition      uihealth.Transition     `json:"transition"`
	Contract        uihealth.RenderContract `json:"renderContract"`
	RecoveryActions []string                `json:"recoveryActions,omitempty"`
}

// handleUIReport ingests one client health report: snapshot flags, failure
// events, and optionally the backend health the client last saw. The response
// carries the mode transition and the rendering contract the client must
// honor from now on.
func (s *Server) handleUIReport(w http.ResponseWriter, r *http.Request) {
	var req uiReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	ch := s.health.get(sid)

	// One report tick at a time per session: positions, event history, and
	// the mode machine advance together or not at all.
	ch.mu.Lock()
	eval := uihealth.EvaluateSnapshot(req.Snapshot, ch.previous)
	ch.previous = eval.Positions

	status := ch.agg.Ingest(req.Events)
	serverHealth := serverHealthFor(req.ServerHealth, status)
	transition := ch.machine.Next(uihealth.TickInput{
		Server: serverHealth,
		Local:  eval.State,
	})
	ch.mu.Unlock()

	for _, e := range req.Events {
		s.metrics.UIEventsTotal.WithLabelValues(string(e.Type)).Inc()
	}
	if err := s.store.RecordUIEvents(sid, req.Events); err != nil {
		log.Printf("[HTTP] ui event persistence failed session=%s: %v", sid, err)
	}
	if transition.Changed {
		s.metrics.FSMTransitions.WithLabelValues(string(transition.Previous), string(transition.Next)).Inc()
		log.Printf("[HTTP] ui mode session=%s %s -> %s", sid, transition.Previous, transition.Next)
	}

	resp := uiReportResponse{
		SessionID:  sid,
		Flags:      eval.State,
		Status:     status,
		Transition: transition,
		Contract:   uihealth.ContractFor(transition.Next),
	}
	if transition.Next == uihealth.UIModeError {
		resp.RecoveryActions = uihealth.RecoveryActions()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// serverHealthFor prefers the health the client actually observed; absent
// that, the aggregate event window stands in for the backend signal.
func serverHealthFor(reported *uihealth.ServerHealth, status uihealth.Status) uihealth.ServerHealth {
	if reported != nil {
		return *reported
	}
	sh := uihealth.ServerHealth{
		DegradedMode:   status.Mode != uihealth.HealthNormal,
		RenderTextOnly: status.RenderMode == uihealth.RenderTextOnly,
		Severity:       "info",
	}
	switch status.Mode {
	case uihealth.HealthCritical:
		sh.Severity = "error"
	case uihealth.HealthDegraded:
		sh.Severity = "warning"
	}
	return sh
}

// #endregion ui-report

// #region ui-health

type uiHealthResponse struct {
	SessionID string                  `json:"sessionId"`
	Mode      uihealth.UIMode         `json:"uiMode"`
	Contract  uihealth.RenderContract `json:"renderContract"`
	Events    int                     `json:"eventsInWindow"`
}

func (s *Server) handleUIHealth(w http.ResponseWriter, r *http.Request) {
	sid := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sid == "" {
		s.writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	ch := s.health.get(sid)
	ch.mu.Lock()
	mode := ch.machine.Current()
	events := ch.agg.HistoryLen()
	ch.mu.Unlock()
	s.writeJSON(w, http.StatusOK, uiHealthResponse{
		SessionID: sid,
		Mode:      mode,
		Contract:  uihealth.ContractFor(mode),
		Events:    events,
	})
}

// #endregion ui-health
