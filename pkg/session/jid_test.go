package session

import (
	"errors"
	"testing"
)

func TestNormalizeJID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{"1234567890", "1234567890@" + DefaultUserServer, false},
		{"+1 (555) 123-4567", "15551234567@" + DefaultUserServer, false},
		{"group@g.us", "group@g.us", false},
		{"already@s.whatsapp.net", "already@s.whatsapp.net", false},
		{"abc", "", true},
		{"", "", true},
		{"  42 ", "42@" + DefaultUserServer, false},
	}
	for _, c := range cases {
		got, err := NormalizeJID(c.in)
		if c.err {
			if !errors.Is(err, ErrInvalidRecipient) {
				t.Fatalf("NormalizeJID(%q) err = %v, want ErrInvalidRecipient", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeJID(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("NormalizeJID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
