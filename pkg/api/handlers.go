package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"wabridge/pkg/history"
	"wabridge/pkg/logger"
	"wabridge/pkg/models"
	"wabridge/pkg/session"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Status()
	var me *models.Identity
	if snap.Connected {
		me = snap.Identity
	}
	writeJSON(w, http.StatusOK, struct {
		Connected bool             `json:"connected"`
		Me        *models.Identity `json:"me"`
		HasQR     bool             `json:"hasQR"`
	}{Connected: snap.Connected, Me: me, HasQR: snap.HasPendingPairing()})
}

// handleQR renders the current pairing payload as a PNG on every call.
// 204 when no pairing is pending.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Status()
	if !snap.HasPendingPairing() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	png, err := qrcode.Encode(snap.PairingPayload, qrcode.Medium, 256)
	if err != nil {
		logger.Error("qr_render_failed", "error", err)
		http.Error(w, `{"error":"render_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleMessages lists recent history, newest last. Invalid or missing
// limits fall back to the default; everything is clamped to capacity.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if n, err := strconv.Atoi(limStr); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.history.Recent(limit))
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.To == "" || req.Message == "" {
		http.Error(w, `{"error":"missing to or message"}`, http.StatusBadRequest)
		return
	}

	id, jid, err := s.session.SendText(r.Context(), req.To, req.Message)
	switch {
	case errors.Is(err, session.ErrInvalidRecipient):
		http.Error(w, `{"error":"invalid_recipient"}`, http.StatusBadRequest)
		return
	case errors.Is(err, session.ErrNotReady):
		http.Error(w, `{"error":"socket_not_ready"}`, http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, `{"error":"send_failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
		To string `json:"to"`
	}{OK: true, ID: id, To: jid})
}
