package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Low-overhead process counters exposed at /metrics. Registration happens
// at package init against the default registry so every component can
// record without wiring a registry handle through constructors.

var (
	MessagesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabridge_messages_stored_total",
		Help: "Inbound messages appended to the in-memory history.",
	})
	MessagesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabridge_messages_evicted_total",
		Help: "History records evicted to respect the capacity bound.",
	})
	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wabridge_events_broadcast_total",
		Help: "Events fanned out to live subscribers, by event type.",
	}, []string{"type"})
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wabridge_subscribers",
		Help: "Currently registered event-stream subscribers.",
	})
	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabridge_subscribers_dropped_total",
		Help: "Subscribers removed because their channel stopped accepting writes.",
	})
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wabridge_webhook_deliveries_total",
		Help: "Webhook delivery attempts by result (ok, error, throttled).",
	}, []string{"result"})
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wabridge_reconnects_total",
		Help: "Automatic session re-entries after a retryable disconnect.",
	})
	GroupCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wabridge_group_cache_entries",
		Help: "Entries currently held by the group metadata cache, expired included.",
	})
)
