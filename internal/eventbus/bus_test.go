package eventbus

import "testing"

func TestPublishFanoutAndDrop(t *testing.T) {
	t.Parallel()
	b := New()
	a, unsubA := b.Subscribe(1)
	c, unsubC := b.Subscribe(4)
	defer unsubC()

	b.Publish(Event{Type: RunStarted, Data: RunData{UserID: 1}})
	b.Publish(Event{Type: RunFinished})

	if e := <-a; e.Type != RunStarted || e.Time.IsZero() {
		t.Fatalf("first event = %+v", e)
	}
	if got := b.Dropped(); got != 1 {
		t.Fatalf("Dropped = %d, want 1", got)
	}
	if e := <-c; e.Type != RunStarted {
		t.Fatalf("c first = %+v", e)
	}
	if e := <-c; e.Type != RunFinished {
		t.Fatalf("c second = %+v", e)
	}

	unsubA()
	unsubA()
	if _, ok := <-a; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	b.Publish(Event{Type: RunCycle})
}
