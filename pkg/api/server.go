// Package api translates session and history state into the HTTP
// surface: status, pairing image, live event stream, recent messages
// and outbound sends.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"wabridge/pkg/events"
	"wabridge/pkg/history"
	"wabridge/pkg/session"
)

// Server holds the collaborators the handlers read from.
type Server struct {
	session  *session.Manager
	history  *history.Store
	registry *events.Registry
}

func NewServer(sm *session.Manager, hist *history.Store, reg *events.Registry) *Server {
	return &Server{session: sm, history: hist, registry: reg}
}

// Routes returns the router for the public HTTP surface.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/qr.png", s.handleQR).Methods(http.MethodGet)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/messages", s.handleMessages).Methods(http.MethodGet)
	r.HandleFunc("/send", s.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
