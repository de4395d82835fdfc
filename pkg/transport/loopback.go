package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"wabridge/pkg/logger"
	"wabridge/pkg/models"
)

// defaultFactory is swapped out by the real client at init time via
// Register. When nothing registers, NewDefault falls back to the
// loopback transport so the bridge stays runnable for local development.
var (
	factoryMu      sync.Mutex
	defaultFactory Factory
)

// Register installs the concrete transport factory. The production
// client calls this from its init; last registration wins.
func Register(f Factory) {
	factoryMu.Lock()
	defaultFactory = f
	factoryMu.Unlock()
}

// NewDefault builds a transport from the registered factory, or a
// loopback instance when no real client is linked in.
func NewDefault(creds CredentialStore, hooks Hooks) (Transport, error) {
	factoryMu.Lock()
	f := defaultFactory
	factoryMu.Unlock()
	if f != nil {
		return f(creds, hooks)
	}
	logger.Warn("no transport registered, using loopback")
	return NewLoopback(creds)
}

// Loopback is a self-contained transport for development and demos. It
// pairs immediately, opens the session, and echoes every sent message
// back as an inbound notify so the full history/SSE/webhook path runs
// without a real upstream.
type Loopback struct {
	ch     chan Event
	creds  CredentialStore
	seq    atomic.Int64
	closed atomic.Bool
}

func NewLoopback(creds CredentialStore) (*Loopback, error) {
	return &Loopback{ch: make(chan Event, 32), creds: creds}, nil
}

func (l *Loopback) Start(ctx context.Context) error {
	blob, err := l.creds.Load()
	if err != nil {
		return err
	}
	go func() {
		if blob == nil {
			l.emit(Event{Kind: EventPairing, Pairing: "loopback-pairing-" + time.Now().Format("150405")})
			time.Sleep(100 * time.Millisecond)
			l.emit(Event{Kind: EventCredentials, Credentials: []byte(`{"device":"loopback"}`)})
		}
		l.emit(Event{Kind: EventOpened, Identity: models.Identity{JID: "0@s.whatsapp.net", Name: "loopback"}})
	}()
	return nil
}

func (l *Loopback) Events() <-chan Event { return l.ch }

func (l *Loopback) SendText(ctx context.Context, jid, body string) (string, error) {
	id := fmt.Sprintf("loop-%d", l.seq.Add(1))
	payload, _ := json.Marshal(map[string]string{"conversation": body})
	l.emit(Event{
		Kind:        EventMessages,
		MessageKind: MessagesNotify,
		Messages: []Message{{
			ID:      "echo-" + id,
			ChatJID: jid,
			TS:      time.Now().Unix(),
			Payload: payload,
		}},
	})
	return id, nil
}

func (l *Loopback) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		l.emit(Event{Kind: EventClosed, Reason: ReasonConnectionLost})
	}
	return nil
}

func (l *Loopback) emit(ev Event) {
	select {
	case l.ch <- ev:
	default:
		logger.Warn("loopback event dropped", "kind", ev.Kind)
	}
}
