package realtime

import "testing"

func TestPublishDeliversToAllListeners(t *testing.T) {
	h := NewHub[int]()
	id1, ch1 := h.Register()
	id2, ch2 := h.Register()
	defer h.Unregister(id1)
	defer h.Unregister(id2)

	h.Publish(7)

	if v := <-ch1; v != 7 {
		t.Errorf("listener 1 got %d", v)
	}
	if v := <-ch2; v != 7 {
		t.Errorf("listener 2 got %d", v)
	}
}

func TestPublishKeepsLatestForSlowListener(t *testing.T) {
	h := NewHub[string]()
	id, ch := h.Register()
	defer h.Unregister(id)

	h.Publish("loading")
	h.Publish("results")
	h.Publish("appended")

	if v := <-ch; v != "appended" {
		t.Fatalf("expected latest value, got %q", v)
	}
	select {
	case v := <-ch:
		t.Fatalf("expected no more pending values, got %q", v)
	default:
	}
}

func TestUnregisterClosesChannel(t *testing.T) {
	h := NewHub[int]()
	id, ch := h.Register()
	if h.Size() != 1 {
		t.Fatalf("expected 1 listener, got %d", h.Size())
	}

	h.Unregister(id)
	h.Unregister(id)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	if h.Size() != 0 {
		t.Fatalf("expected 0 listeners, got %d", h.Size())
	}

	// Publishing with no listeners is a no-op.
	h.Publish(1)
}

func TestClose(t *testing.T) {
	h := NewHub[int]()
	_, ch1 := h.Register()
	_, ch2 := h.Register()

	h.Close()

	for i, ch := range []<-chan int{ch1, ch2} {
		if _, ok := <-ch; ok {
			t.Errorf("listener %d still open", i)
		}
	}
}
