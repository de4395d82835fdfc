package session

import (
	"fmt"
	"strings"
)

// DefaultUserServer is the direct-message domain suffix.
const DefaultUserServer = "s.whatsapp.net"

// NormalizeJID turns a user-supplied recipient into a routable JID. A
// value containing "@" is treated as already qualified and passed
// through; anything else is stripped to digits and qualified as a
// direct-message identifier. An empty digit result is ErrInvalidRecipient.
func NormalizeJID(to string) (string, error) {
	to = strings.TrimSpace(to)
	if strings.Contains(to, "@") {
		return to, nil
	}
	var b strings.Builder
	for _, r := range to {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	return b.String() + "@" + DefaultUserServer, nil
}
