package hub

import (
	"encoding/json"
	"testing"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	h := NewHub()
	a := make(Client, 1)
	b := make(Client, 1)
	h.Subscribe(AdminChannel, a)
	h.Subscribe(AdminChannel, b)

	h.Broadcast(AdminChannel, Event{Type: EventGameImported, Payload: map[string]string{"title": "Azul"}})

	for _, c := range []Client{a, b} {
		var got Event
		if err := json.Unmarshal(<-c, &got); err != nil {
			t.Fatal(err)
		}
		if got.Type != EventGameImported {
			t.Errorf("Type = %q", got.Type)
		}
	}
}

func TestBroadcastSkipsFullQueues(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe(AdminChannel, c)

	h.Broadcast(AdminChannel, Event{Type: "first"})
	h.Broadcast(AdminChannel, Event{Type: "second"})

	var got Event
	_ = json.Unmarshal(<-c, &got)
	if got.Type != "first" {
		t.Errorf("Type = %q, want first", got.Type)
	}
	select {
	case extra := <-c:
		t.Errorf("unexpected queued event %s", extra)
	default:
	}
}

func TestUnsubscribeClosesAndCleansUp(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe(AdminChannel, c)
	h.Unsubscribe(AdminChannel, c)

	if _, open := <-c; open {
		t.Error("client channel not closed")
	}
	if n := h.Subscribers(AdminChannel); n != 0 {
		t.Errorf("Subscribers = %d", n)
	}
	// Unsubscribing twice must not panic on a closed channel.
	h.Unsubscribe(AdminChannel, c)
	h.Broadcast(AdminChannel, Event{Type: "nobody"})
}
