package api

import (
	"net/http"

	"wabridge/pkg/logger"
)

// handleEvents is the long-lived event stream: one subscriber per
// connection, unregistered exactly once when the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan []byte, 16)
	id := s.registry.Subscribe(ch)
	defer s.registry.Unsubscribe(id)

	for {
		select {
		case <-r.Context().Done():
			logger.Debug("event_stream_closed", "id", id)
			return
		case frame := <-ch:
			if _, err := w.Write(frame); err != nil {
				logger.Debug("event_stream_write_failed", "id", id, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
