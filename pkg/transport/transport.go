// Package transport defines the boundary to the external messaging
// library that owns protocol framing, key management, pairing-code
// generation and the network socket. The core only drains its event
// stream and calls its send/pull hooks; nothing protocol-specific leaks
// past this package.
package transport

import (
	"context"
	"encoding/json"

	"wabridge/pkg/models"
)

// EventKind discriminates the events a transport emits.
type EventKind int

const (
	EventPairing EventKind = iota + 1
	EventOpened
	EventClosed
	EventMessages
	EventGroups
	EventCredentials
)

// Message kinds for EventMessages batches. Only notify batches represent
// newly arrived messages; append batches are historical replays.
const (
	MessagesNotify = "notify"
	MessagesAppend = "append"
)

// Close reason codes. LoggedOut is the one reason that suppresses the
// automatic session re-entry.
const (
	ReasonLoggedOut        = "logged_out"
	ReasonConnectionLost   = "connection_lost"
	ReasonConnectionFailed = "connection_failure"
)

// Message is one raw inbound message in a batch. Payload stays opaque to
// the core; only text extraction reads into it.
type Message struct {
	ID         string
	ChatJID    string
	FromMe     bool
	SenderName string
	TS         int64
	Payload    json.RawMessage
}

// Event is a single typed emission from the transport. Exactly the
// fields relevant to its Kind are set.
type Event struct {
	Kind        EventKind
	Pairing     string // EventPairing: raw pairing payload
	Identity    models.Identity
	Reason      string // EventClosed
	MessageKind string // EventMessages: MessagesNotify or MessagesAppend
	Messages    []Message
	Groups      []models.GroupMetadata
	Credentials []byte // EventCredentials: opaque updated blob
}

// Hooks are the pull callbacks a transport may invoke against the core.
// Absence is acceptable for both: the transport treats a false return as
// "not available", never as an error.
type Hooks struct {
	ResolveMessageByID   func(id string) (json.RawMessage, bool)
	ResolveGroupMetadata func(jid string) (models.GroupMetadata, bool)
}

// Transport is one live protocol session. A new instance is created per
// connection attempt; instances are never restarted.
type Transport interface {
	// Start begins the connection handshake. Events start flowing on
	// Events() once Start returns successfully.
	Start(ctx context.Context) error
	// Events is the session's event stream. The channel closes when the
	// session is torn down.
	Events() <-chan Event
	// SendText sends a text body to a qualified JID and returns the
	// transport-assigned message id.
	SendText(ctx context.Context, jid, body string) (string, error)
	// Close releases the socket. Idempotent.
	Close() error
}

// Factory builds a fresh Transport for one connection attempt, wired to
// stored credentials and the core's pull hooks.
type Factory func(creds CredentialStore, hooks Hooks) (Transport, error)

// CredentialStore persists the opaque pairing secrets between runs. The
// blob format belongs to the transport; the core never inspects it.
type CredentialStore interface {
	// Load returns the stored blob, or nil when none exists yet.
	Load() ([]byte, error)
	// Save overwrites the stored blob.
	Save(blob []byte) error
}
