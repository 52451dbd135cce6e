package events

import (
	"testing"
)

func TestEventHub_PublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	if got := h.Subscribers(); got != 1 {
		t.Fatalf("Subscribers() = %d, want 1", got)
	}

	h.Publish(UISOC, UISOCEvent{From: 50, To: 49, SOC: 45})

	ev := <-ch
	if ev.Name != UISOC {
		t.Errorf("Name = %q, want %q", ev.Name, UISOC)
	}
	p, err := DecodeAs[UISOCEvent](ev)
	if err != nil {
		t.Fatalf("DecodeAs() error = %v", err)
	}
	if p.From != 50 || p.To != 49 || p.SOC != 45 {
		t.Errorf("DecodeAs() = %+v", p)
	}

	h.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Errorf("channel still open after Unsubscribe")
	}
	// Unsubscribing twice must not panic.
	h.Unsubscribe(ch)
}

func TestEventHub_DropsWhenFull(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	for i := 0; i < cap(ch)+5; i++ {
		h.Publish(State, StateEvent{From: "CC", To: "ERROR"})
	}
	if got := len(ch); got != cap(ch) {
		t.Errorf("len(ch) = %d, want %d", got, cap(ch))
	}
}

func TestEventHub_NilIsNoop(t *testing.T) {
	var h *EventHub
	h.Publish(Shutdown, ShutdownEvent{TemperatureC: 61})
}

func TestDecodeAs_Empty(t *testing.T) {
	v, err := DecodeAs[GuardEvent](Event{Name: Guard})
	if err != nil || v != (GuardEvent{}) {
		t.Errorf("DecodeAs(empty) = %+v, %v", v, err)
	}
}
