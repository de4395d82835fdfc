// Package webhook forwards inbound-message events to one configured
// external URL. Delivery is fire-and-forget: one attempt, no retry, and
// failures never reach the inbound-message pipeline.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"wabridge/pkg/logger"
	"wabridge/pkg/models"
	"wabridge/pkg/telemetry"
)

// Notifier posts message records to a destination URL. A zero URL
// disables it entirely.
type Notifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// New builds a notifier. rps <= 0 disables throttling. The default
// http.Client is used deliberately: no timeout beyond the transport
// default, matching the single best-effort attempt semantics.
func New(url string, rps float64, burst int) *Notifier {
	var lim *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Notifier{url: url, client: http.DefaultClient, limiter: lim}
}

// Enabled reports whether a destination URL is configured.
func (n *Notifier) Enabled() bool { return n != nil && n.url != "" }

// Notify issues a single asynchronous delivery attempt for rec. Over-
// limit deliveries are dropped. Never blocks the caller beyond JSON
// marshaling.
func (n *Notifier) Notify(rec models.MessageRecord) {
	if !n.Enabled() {
		return
	}
	if n.limiter != nil && !n.limiter.Allow() {
		telemetry.WebhookDeliveries.WithLabelValues("throttled").Inc()
		logger.Warn("webhook_throttled", "id", rec.ID)
		return
	}
	body, err := json.Marshal(rec)
	if err != nil {
		telemetry.WebhookDeliveries.WithLabelValues("error").Inc()
		logger.Error("webhook_marshal_failed", "id", rec.ID, "error", err)
		return
	}
	go n.deliver(rec.ID, body)
}

func (n *Notifier) deliver(id string, body []byte) {
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		telemetry.WebhookDeliveries.WithLabelValues("error").Inc()
		logger.Error("webhook_delivery_failed", "id", id, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		telemetry.WebhookDeliveries.WithLabelValues("error").Inc()
		logger.Warn("webhook_rejected", "id", id, "status", resp.StatusCode)
		return
	}
	telemetry.WebhookDeliveries.WithLabelValues("ok").Inc()
	logger.Debug("webhook_delivered", "id", id, "status", resp.StatusCode)
}
