// Package server exposes the ops HTTP endpoint: liveness, credential
// status and a manual report trigger.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/athlogic/salesbot/report"
	"github.com/athlogic/salesbot/token"
)

type Server struct {
	tokens *token.Manager
	runner *report.Runner
}

// New builds the ops router.
func New(tokens *token.Manager, runner *report.Runner) http.Handler {
	s := &Server{tokens: tokens, runner: runner}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/status", s.status)
	r.Post("/report/run", s.runReport)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	State    token.State `json:"state"`
	IssuedAt *time.Time  `json:"issued_at,omitempty"`
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	state, issuedAt := s.tokens.Status()
	resp := statusResponse{State: state}
	if !issuedAt.IsZero() {
		resp.IssuedAt = &issuedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runReport(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Run(r.Context(), time.Now(), "manual"); err != nil {
		log.Error().Err(err).Msg("manual report cycle failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode ops response")
	}
}
