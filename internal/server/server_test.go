package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carscout/internal/config"
	"carscout/internal/offers"
	"carscout/internal/orchestrator"
	"carscout/internal/routing"
	"carscout/internal/session"
	"carscout/internal/uihealth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "carscout_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	catalog := offers.NewCatalog([]offers.Offer{
		{ID: "tiguan", Title: "VW Tiguan", Brand: "volkswagen", Category: "suv", Fuel: "diesel", PriceEUR: 38900, UseCases: []string{"familie"}},
	})
	orch := orchestrator.New(store, catalog, routing.NewPolicy(routing.DefaultConfig()), nil, nil)

	cfg := config.Config{
		AllowedOrigin:     "*",
		HealthWindow:      5 * time.Minute,
		DegradedThreshold: 1,
		CriticalThreshold: 2,
	}
	return NewServer(cfg, orch, store, prometheus.NewRegistry())
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatAssignsSessionID(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv, "/api/chat", map[string]string{"message": "ich suche einen suv"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Session-Id"))

	var res orchestrator.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "PREFERENCE_CHANGE", string(res.Intent.Label))
	assert.Len(t, res.Offers, 1)
}

func TestChatKeepsProvidedSessionID(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv, "/api/chat", map[string]string{"sessionId": "fixed", "message": "hallo ich suche was"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fixed", rec.Header().Get("X-Session-Id"))
}

func TestChatRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUIReportRequiresSessionID(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv, "/api/ui/report", map[string]interface{}{"events": []interface{}{}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUIReportBrokenSnapshotGoesError(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv, "/api/ui/report", map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  map[string]interface{}{"elements": map[string]interface{}{}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res uiReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Flags.UIBroken)
	assert.Equal(t, uihealth.UIModeError, res.Transition.Next)
	assert.True(t, res.Contract.RenderTextOnly)
	assert.NotEmpty(t, res.RecoveryActions)
}

func TestUIReportCriticalEventsDegradeRendering(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv, "/api/ui/report", map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  healthyTestSnapshot(),
		"events":    []map[string]string{{"type": "RESULTS_NOT_VISIBLE"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res uiReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uihealth.HealthCritical, res.Status.Mode)
	assert.Equal(t, uihealth.RenderTextOnly, res.Status.RenderMode)
	// Aggregate criticality maps to server severity "error", which the FSM
	// treats as ERROR.
	assert.Equal(t, uihealth.UIModeError, res.Transition.Next)
}

func TestUIReportCleanTickRecovers(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/api/ui/report", map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  map[string]interface{}{"elements": map[string]interface{}{}},
	})

	rec := postJSON(t, srv, "/api/ui/report", map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  healthyTestSnapshot(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res uiReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uihealth.UIModeNormal, res.Transition.Next)
	assert.True(t, res.Transition.Changed)
}

func TestUIHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/api/ui/report", map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  map[string]interface{}{"elements": map[string]interface{}{}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ui/health?sessionId=s1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res uiHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uihealth.UIModeError, res.Mode)
	assert.True(t, res.Contract.DegradedMode)
}

func TestUIReportConcurrentBursts(t *testing.T) {
	// Un-debounced resize/scroll bursts hit the endpoint in parallel for the
	// same session; every report must land without corrupting the shared
	// aggregator, machine, or position state.
	srv := newTestServer(t)
	raw, err := json.Marshal(map[string]interface{}{
		"sessionId": "s1",
		"snapshot":  healthyTestSnapshot(),
		"events":    []map[string]string{{"type": "IMAGE_ERROR"}},
	})
	require.NoError(t, err)

	const workers, reports = 8, 25
	codes := make(chan int, workers*reports)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < reports; i++ {
				req := httptest.NewRequest(http.MethodPost, "/api/ui/report", bytes.NewReader(raw))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				srv.Router().ServeHTTP(rec, req)
				codes <- rec.Code
			}
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	// Every ingested event must be accounted for, none lost to interleaving.
	req := httptest.NewRequest(http.MethodGet, "/api/ui/health?sessionId=s1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res uiHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, workers*reports, res.Events)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/api/chat", map[string]string{"message": "ich suche einen suv"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "carscout_turns_total")
}

// healthyTestSnapshot mirrors a well-behaved narrow-viewport layout as the
// client would report it.
func healthyTestSnapshot() map[string]interface{} {
	return map[string]interface{}{
		"elements": map[string]interface{}{
			"main":  map[string]float64{"x": 0, "y": 0, "width": 390, "height": 600},
			"chat":  map[string]float64{"x": 0, "y": 60, "width": 390, "height": 400},
			"input": map[string]float64{"x": 0, "y": 500, "width": 390, "height": 48},
			"nav":   map[string]float64{"x": 0, "y": 560, "width": 390, "height": 30},
		},
		"viewportHeight":       600,
		"viewportWidth":        390,
		"visualViewportHeight": 600,
		"visibility":           map[string]bool{"main": true, "chat": true, "input": true, "nav": true},
		"focusableInput":       true,
		"viewportScale":        1,
		"navVisible":           true,
	}
}
