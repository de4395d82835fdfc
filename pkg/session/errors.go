package session

import "errors"

var (
	// ErrNotReady means no authenticated session is open.
	ErrNotReady = errors.New("no open session")
	// ErrInvalidRecipient means the recipient could not be normalized
	// into a routable JID.
	ErrInvalidRecipient = errors.New("invalid recipient")
)
