package server

// #region imports
import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carscout/internal/config"
	"carscout/internal/orchestrator"
	"carscout/internal/session"
)

// #endregion

// #region server

const turnTimeout = 30 * time.Second

// Server exposes the conversation pipeline and the UI health endpoints.
type Server struct {
	router  *chi.Mux
	orch    *orchestrator.Orchestrator
	store   *session.Store
	cfg     config.Config
	metrics *Metrics
	health  *healthRegistry
}

// NewServer wires routes, CORS, and metrics. The registry doubles as the
// registerer for the instruments and the gatherer for /metrics.
func NewServer(cfg config.Config, orch *orchestrator.Orchestrator, store *session.Store, reg *prometheus.Registry) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Session-Id"},
		MaxAge:         300,
	}))

	s := &Server{
		router:  r,
		orch:    orch,
		store:   store,
		cfg:     cfg,
		metrics: NewMetrics(reg),
		health:  newHealthRegistry(cfg),
	}
	s.routes(reg)
	return s
}

func (s *Server) routes(reg *prometheus.Registry) {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/ui/report", s.handleUIReport)
	s.router.Get("/api/ui/health", s.handleUIHealth)
}

// Router returns the mounted handler.
func (s *Server) Router() http.Handler { return s.router }

// #endregion server

// #region chat

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		sid = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	started := time.Now()
	result, err := s.orch.RunTurn(ctx, sid, req.Message)
	if err != nil {
		log.Printf("[HTTP] turn failed session=%s: %v", sid, err)
		s.writeError(w, http.StatusInternalServerError, "turn processing failed")
		return
	}
	s.metrics.TurnsTotal.WithLabelValues(string(result.Intent.Label)).Inc()
	s.metrics.TurnDuration.Observe(time.Since(started).Seconds())

	w.Header().Set("X-Session-Id", sid)
	s.writeJSON(w, http.StatusOK, result)
}

// #endregion chat

// #region plumbing

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// #endregion plumbing
