package events

import (
	"strings"
	"testing"
)

func drainHello(t *testing.T, ch chan []byte) {
	t.Helper()
	select {
	case b := <-ch:
		if !strings.HasPrefix(string(b), "event: hello\n") {
			t.Fatalf("first frame is not hello: %q", b)
		}
	default:
		t.Fatal("no hello acknowledgement queued on subscribe")
	}
}

func TestBroadcastReachesAllSubscribersInOrder(t *testing.T) {
	r := NewRegistry()
	chans := make([]chan []byte, 3)
	for i := range chans {
		chans[i] = make(chan []byte, 16)
		r.Subscribe(chans[i])
		drainHello(t, chans[i])
	}

	for i := 0; i < 5; i++ {
		r.Broadcast(Event{Type: TypeMessage, Data: map[string]int{"n": i}})
	}

	for ci, ch := range chans {
		for i := 0; i < 5; i++ {
			select {
			case b := <-ch:
				if !strings.Contains(string(b), `"n":`+string(rune('0'+i))) {
					t.Fatalf("subscriber %d event %d out of order: %q", ci, i, b)
				}
			default:
				t.Fatalf("subscriber %d missing event %d", ci, i)
			}
		}
	}
}

func TestSlowSubscriberIsDroppedWithoutAffectingOthers(t *testing.T) {
	r := NewRegistry()
	slow := make(chan []byte) // unbuffered, nobody reads: every write fails
	fast := make(chan []byte, 16)
	r.Subscribe(slow)
	r.Subscribe(fast)
	drainHello(t, fast)

	r.Broadcast(Event{Type: TypeStatus, Data: map[string]bool{"connected": true}})
	if r.Count() != 1 {
		t.Fatalf("slow subscriber should have been dropped, count=%d", r.Count())
	}
	select {
	case b := <-fast:
		if !strings.HasPrefix(string(b), "event: status\n") {
			t.Fatalf("fast subscriber got wrong frame: %q", b)
		}
	default:
		t.Fatal("fast subscriber got nothing")
	}

	// next broadcast must still reach the survivor
	r.Broadcast(Event{Type: TypeStatus, Data: map[string]bool{"connected": false}})
	select {
	case <-fast:
	default:
		t.Fatal("survivor missed the follow-up broadcast")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	r := NewRegistry()
	ch := make(chan []byte, 4)
	id := r.Subscribe(ch)
	r.Unsubscribe(id)
	r.Unsubscribe(id)
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, count=%d", r.Count())
	}
}

func TestUnsubscribeMidBroadcastDoesNotDisturbRemaining(t *testing.T) {
	r := NewRegistry()
	a := make(chan []byte, 16)
	b := make(chan []byte, 16)
	idA := r.Subscribe(a)
	r.Subscribe(b)
	drainHello(t, a)
	drainHello(t, b)

	r.Unsubscribe(idA)
	r.Broadcast(Event{Type: TypeQR, Data: map[string]bool{"hasQR": true}})

	select {
	case <-a:
		t.Fatal("unsubscribed channel received a broadcast")
	default:
	}
	select {
	case <-b:
	default:
		t.Fatal("remaining subscriber missed the broadcast")
	}
}

func TestEncodeFraming(t *testing.T) {
	b, err := Event{Type: TypeHello, Data: map[string]bool{"ok": true}}.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "event: hello\ndata: {\"ok\":true}\n\n"
	if string(b) != want {
		t.Fatalf("frame = %q, want %q", b, want)
	}
}
