package models

// Identity describes the authenticated account behind an open session.
type Identity struct {
	JID  string `json:"jid"`
	Name string `json:"name,omitempty"`
}

// GroupMetadata is the last-known metadata blob for a group chat as
// pushed by the transport. Subject/participant details stay opaque to
// the core; only the JID is interpreted (as the cache key).
type GroupMetadata struct {
	JID          string `json:"jid"`
	Subject      string `json:"subject,omitempty"`
	Participants int    `json:"participants,omitempty"`
}
