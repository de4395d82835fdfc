// Package events multicasts typed session events to live event-stream
// subscribers. Delivery is best-effort per subscriber: one stalled or
// dead channel never blocks the others, and late joiners see no replay.
package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"wabridge/pkg/logger"
	"wabridge/pkg/telemetry"
)

// Event types carried over the stream.
const (
	TypeHello   = "hello"
	TypeQR      = "qr"
	TypeStatus  = "status"
	TypeMessage = "message"
)

// Event is one typed payload fanned out to every subscriber.
type Event struct {
	Type string
	Data any
}

// Encode renders the event in text/event-stream framing. The same bytes
// go to every subscriber so each event is serialized exactly once.
func (e Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	return []byte("event: " + e.Type + "\ndata: " + string(b) + "\n\n"), nil
}

type subscriber struct {
	id string
	ch chan []byte
}

// Registry tracks subscribers in registration order.
type Registry struct {
	mu   sync.Mutex
	subs []subscriber
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers ch and immediately queues a hello acknowledgement
// on it. The returned handle is passed to Unsubscribe on stream close.
func (r *Registry) Subscribe(ch chan []byte) string {
	id := uuid.NewString()
	hello, err := Event{Type: TypeHello, Data: map[string]bool{"ok": true}}.Encode()
	if err == nil {
		select {
		case ch <- hello:
		default:
		}
	}
	r.mu.Lock()
	r.subs = append(r.subs, subscriber{id: id, ch: ch})
	n := len(r.subs)
	r.mu.Unlock()
	telemetry.Subscribers.Set(float64(n))
	logger.Debug("subscriber_registered", "id", id, "total", n)
	return id
}

// Unsubscribe removes the subscriber with the given handle. Idempotent.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			break
		}
	}
	n := len(r.subs)
	r.mu.Unlock()
	telemetry.Subscribers.Set(float64(n))
}

// Count returns the number of registered subscribers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Broadcast delivers the event to every current subscriber in
// registration order. A subscriber whose channel does not accept the
// write is dropped; the failure never reaches the caller.
func (r *Registry) Broadcast(e Event) {
	payload, err := e.Encode()
	if err != nil {
		logger.Error("broadcast_encode_failed", "type", e.Type, "error", err)
		return
	}

	r.mu.Lock()
	snapshot := make([]subscriber, len(r.subs))
	copy(snapshot, r.subs)
	r.mu.Unlock()

	var dead []string
	for _, s := range snapshot {
		select {
		case s.ch <- payload:
		default:
			dead = append(dead, s.id)
		}
	}
	for _, id := range dead {
		r.Unsubscribe(id)
		telemetry.SubscribersDropped.Inc()
		logger.Warn("subscriber_dropped", "id", id, "type", e.Type)
	}
	telemetry.EventsBroadcast.WithLabelValues(e.Type).Inc()
}
