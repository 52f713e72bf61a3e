package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sjsage522/promowatch/logger"
	"sjsage522/promowatch/services/store"
)

// Runner triggers an immediate check cycle
type Runner interface {
	TriggerRun()
}

// Server exposes the admin HTTP API: target listing, stored state and
// history, and a manual run trigger.
type Server struct {
	store   store.StateStore
	targets []string
	token   string
	runner  Runner
	log     *logger.Logger
}

// NewServer creates a new admin API server
func NewServer(stateStore store.StateStore, targets []string, token string, runner Runner) *Server {
	return &Server{
		store:   stateStore,
		targets: targets,
		token:   token,
		runner:  runner,
		log:     logger.ForAdmin(),
	}
}

// Router builds the HTTP handler. The health endpoint is open; everything
// under /api requires the bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/targets", s.listTargets)
		r.Get("/targets/{name}/state", s.targetState)
		r.Get("/targets/{name}/history", s.targetHistory)
		r.Post("/run", s.triggerRun)
	})

	return r
}

// authenticate requires "Authorization: Bearer <token>". An empty configured
// token disables the API entirely.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			writeError(w, http.StatusServiceUnavailable, "admin token not configured")
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token != s.token {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"targets": s.targets})
}

func (s *Server) targetState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.knownTarget(name) {
		writeError(w, http.StatusNotFound, "unknown target")
		return
	}

	snapshot, err := s.store.CurrentSnapshot(r.Context(), name)
	if errors.Is(err, store.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "target has no stored snapshot yet")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("target", name).Msg("Failed to load snapshot")
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) targetHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !s.knownTarget(name) {
		writeError(w, http.StatusNotFound, "unknown target")
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	entries, err := s.store.History(r.Context(), name, limit)
	if err != nil {
		s.log.Error().Err(err).Str("target", name).Msg("Failed to load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"target": name, "entries": entries})
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	s.runner.TriggerRun()
	s.log.Info().Msg("Manual check cycle triggered")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}

func (s *Server) knownTarget(name string) bool {
	for _, target := range s.targets {
		if target == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
