// Package session owns the connection lifecycle: it drains the
// transport's event stream in a single consumer goroutine, drives the
// pairing/open/closed state machine, feeds the message history, fans
// events out to subscribers and dispatches webhook notifications.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"wabridge/pkg/events"
	"wabridge/pkg/groupcache"
	"wabridge/pkg/history"
	"wabridge/pkg/logger"
	"wabridge/pkg/models"
	"wabridge/pkg/telemetry"
	"wabridge/pkg/transport"
	"wabridge/pkg/webhook"
)

// State of the underlying transport connection.
type State int

const (
	StateInitializing State = iota
	StateAwaitingPairing
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAwaitingPairing:
		return "awaiting_pairing"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Snapshot is an immutable view of the current connection state. At most
// one of PairingPayload and Identity is ever set.
type Snapshot struct {
	State                State
	Connected            bool
	Identity             *models.Identity
	PairingPayload       string
	LastDisconnectReason string
}

// HasPendingPairing reports whether a pairing code is current and
// unconsumed.
func (s Snapshot) HasPendingPairing() bool { return s.PairingPayload != "" }

// Options wires a Manager to its collaborators.
type Options struct {
	Factory        transport.Factory
	Creds          transport.CredentialStore
	History        *history.Store
	Registry       *events.Registry
	Groups         *groupcache.Cache
	Webhook        *webhook.Notifier
	ReconnectDelay time.Duration
}

// Manager is the single writer of connection state. All transitions run
// on one event-loop goroutine; HTTP goroutines only read snapshots and
// call SendText against the current transport handle.
type Manager struct {
	mu       sync.RWMutex
	state    State
	pairing  string
	identity *models.Identity
	reason   string
	tr       transport.Transport

	factory        transport.Factory
	creds          transport.CredentialStore
	history        *history.Store
	registry       *events.Registry
	groups         *groupcache.Cache
	webhook        *webhook.Notifier
	reconnectDelay time.Duration

	credq chan []byte
}

func New(opts Options) *Manager {
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Manager{
		state:          StateInitializing,
		factory:        opts.Factory,
		creds:          opts.Creds,
		history:        opts.History,
		registry:       opts.Registry,
		groups:         opts.Groups,
		webhook:        opts.Webhook,
		reconnectDelay: delay,
		credq:          make(chan []byte, 64),
	}
}

// Start opens the first session and launches the event loop. A failure
// here is fatal to the caller: no server should accept traffic on a
// partially-initialized session.
func (m *Manager) Start(ctx context.Context) error {
	go m.credWorker(ctx)
	t, err := m.startSession(ctx)
	if err != nil {
		return err
	}
	go m.run(ctx, t)
	return nil
}

// startSession builds a fresh transport and overwrites the previous
// handle. Last writer wins: the old handle is discarded, not closed,
// so a stale session can never race the new one.
func (m *Manager) startSession(ctx context.Context) (transport.Transport, error) {
	t, err := m.factory(m.creds, m.hooks())
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.tr = t
	m.state = StateInitializing
	m.pairing = ""
	m.identity = nil
	m.mu.Unlock()
	if err := t.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("session_started")
	return t, nil
}

func (m *Manager) hooks() transport.Hooks {
	return transport.Hooks{
		ResolveMessageByID:   m.MessageForRehydration,
		ResolveGroupMetadata: m.groups.Get,
	}
}

// run is the single consumer of transport events. Handling an event to
// completion before reading the next one gives the ordering and
// atomicity guarantees for free.
func (m *Manager) run(ctx context.Context, t transport.Transport) {
	for {
		select {
		case <-ctx.Done():
			_ = t.Close()
			return
		case ev, ok := <-t.Events():
			if !ok {
				logger.Warn("transport_event_stream_closed")
				return
			}
			if next := m.handle(ctx, ev); next != nil {
				t = next
			}
		}
	}
}

// handle applies one event. It returns a non-nil transport when a
// reconnect replaced the session.
func (m *Manager) handle(ctx context.Context, ev transport.Event) transport.Transport {
	switch ev.Kind {
	case transport.EventPairing:
		m.mu.Lock()
		m.state = StateAwaitingPairing
		m.pairing = ev.Pairing
		m.identity = nil
		m.mu.Unlock()
		logger.Info("pairing_payload_received")
		m.registry.Broadcast(events.Event{Type: events.TypeQR, Data: map[string]bool{"hasQR": true}})

	case transport.EventOpened:
		me := ev.Identity
		m.mu.Lock()
		m.state = StateOpen
		m.identity = &me
		m.pairing = ""
		m.mu.Unlock()
		logger.Info("connection_opened", "jid", me.JID)
		m.registry.Broadcast(events.Event{Type: events.TypeStatus, Data: map[string]any{
			"connected": true,
			"me":        me,
		}})

	case transport.EventClosed:
		m.mu.Lock()
		m.state = StateClosed
		m.reason = ev.Reason
		m.identity = nil
		m.pairing = ""
		m.mu.Unlock()
		logger.Warn("connection_closed", "reason", ev.Reason)
		m.registry.Broadcast(events.Event{Type: events.TypeStatus, Data: map[string]any{
			"connected": false,
			"reason":    ev.Reason,
		}})
		if ev.Reason != transport.ReasonLoggedOut {
			return m.reconnect(ctx)
		}
		logger.Info("session_logged_out")

	case transport.EventMessages:
		if ev.MessageKind != transport.MessagesNotify {
			logger.Debug("history_replay_ignored", "count", len(ev.Messages))
			return nil
		}
		for _, msg := range ev.Messages {
			rec := models.MessageRecord{
				ID:         msg.ID,
				ChatJID:    msg.ChatJID,
				FromMe:     msg.FromMe,
				SenderName: msg.SenderName,
				TS:         msg.TS,
				Text:       models.ExtractText(msg.Payload),
				Raw:        msg.Payload,
			}
			// append happens-before the broadcast of this record
			m.history.Append(rec)
			m.registry.Broadcast(events.Event{Type: events.TypeMessage, Data: rec})
			m.webhook.Notify(rec)
		}

	case transport.EventGroups:
		for _, g := range ev.Groups {
			m.groups.Set(g.JID, g)
		}
		logger.Debug("group_metadata_cached", "count", len(ev.Groups))

	case transport.EventCredentials:
		// ordered hand-off to the persistence worker; a slow disk queues
		// later events behind the channel, never reorders them
		select {
		case m.credq <- ev.Credentials:
		case <-ctx.Done():
		}
	}
	return nil
}

// reconnect re-enters the machine after a retryable disconnect. Running
// inline on the event loop guarantees at most one attempt in flight.
// A failed attempt leaves the session Closed with no further automatic
// retry for that failure.
func (m *Manager) reconnect(ctx context.Context) transport.Transport {
	select {
	case <-time.After(m.reconnectDelay):
	case <-ctx.Done():
		return nil
	}
	telemetry.Reconnects.Inc()
	logger.Info("session_reconnecting")
	t, err := m.startSession(ctx)
	if err != nil {
		logger.Error("reconnect_failed", "error", err)
		m.mu.Lock()
		m.state = StateClosed
		m.mu.Unlock()
		return nil
	}
	return t
}

// credWorker persists credential updates sequentially in arrival order.
func (m *Manager) credWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case blob := <-m.credq:
			if m.creds == nil {
				continue
			}
			if err := m.creds.Save(blob); err != nil {
				logger.Error("credential_persist_failed", "error", err)
				continue
			}
			logger.Debug("credentials_persisted", "bytes", len(blob))
		}
	}
}

// Status returns an immutable snapshot of the connection state. Never
// blocks on I/O.
func (m *Manager) Status() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{
		State:                m.state,
		Connected:            m.state == StateOpen,
		PairingPayload:       m.pairing,
		LastDisconnectReason: m.reason,
	}
	if m.identity != nil {
		me := *m.identity
		snap.Identity = &me
	}
	return snap
}

// SendText normalizes the recipient and delegates to the transport.
// Returns the transport-assigned message id and the qualified JID the
// message was routed to.
func (m *Manager) SendText(ctx context.Context, to, body string) (id, jid string, err error) {
	jid, err = NormalizeJID(to)
	if err != nil {
		return "", "", err
	}
	m.mu.RLock()
	t := m.tr
	open := m.state == StateOpen
	m.mu.RUnlock()
	if !open || t == nil {
		return "", jid, ErrNotReady
	}
	id, err = t.SendText(ctx, jid, body)
	if err != nil {
		logger.Error("send_failed", "to", jid, "error", err)
		return "", jid, err
	}
	logger.Info("message_sent", "to", jid, "id", id)
	return id, jid, nil
}

// MessageForRehydration returns the raw payload stored under id. Absence
// is acceptable to the transport, so it is not an error.
func (m *Manager) MessageForRehydration(id string) (json.RawMessage, bool) {
	rec, ok := m.history.Lookup(id)
	if !ok {
		return nil, false
	}
	return rec.Raw, true
}
