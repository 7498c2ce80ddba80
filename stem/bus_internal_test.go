package stem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worshipkit/stemdeck"
)

func TestStartCancelledWhileWaitingForTheBus(t *testing.T) {
	b, err := NewBus(1000, 32)
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	s := b.Add("bass", make(stemdeck.AudioBuffer, 1000))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.mu.Lock()
	done := make(chan error, 1)
	go func() { done <- b.StartAll(ctx, []stemdeck.Media{s}) }()
	time.Sleep(10 * time.Millisecond) // let the start block on the bus lock
	cancel()
	s.paused = true
	b.mu.Unlock()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("StartAll returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("StartAll did not return")
	}
	if !s.Paused() {
		t.Errorf("stem was unpaused by a cancelled start")
	}
}
