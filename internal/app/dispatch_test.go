package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/mapcollab/boardd/internal/app"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatcherDeliversToBoard(t *testing.T) {
	p := newPresence()
	a, b := &fakeConn{}, &fakeConn{}
	join(t, p, "conn-a", "b1", "u1", a)
	join(t, p, "conn-b", "b2", "u2", b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := app.NewDispatcher(p, 8)
	go d.Run(ctx)

	if !d.Enqueue(app.BroadcastJob{Board: "b1", Event: map[string]string{"type": "pin_created"}}) {
		t.Fatal("Enqueue refused with room in the queue")
	}

	waitFor(t, time.Second, func() bool {
		types := a.eventTypes(t)
		return len(types) > 0 && types[len(types)-1] == "pin_created"
	})
	for _, e := range b.eventTypes(t) {
		if e == "pin_created" {
			t.Error("job for b1 reached a b2 member")
		}
	}

	// Empty board id fans out everywhere.
	d.Enqueue(app.BroadcastJob{Event: map[string]string{"type": "pins_cleared"}})
	waitFor(t, time.Second, func() bool {
		ta, tb := a.eventTypes(t), b.eventTypes(t)
		return len(ta) > 0 && ta[len(ta)-1] == "pins_cleared" &&
			len(tb) > 0 && tb[len(tb)-1] == "pins_cleared"
	})
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	p := newPresence()
	d := app.NewDispatcher(p, 2) // worker not running

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			d.Enqueue(app.BroadcastJob{Board: "b1", Event: map[string]string{"type": "pin_created"}})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
