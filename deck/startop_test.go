package deck_test

import (
	"context"
	"errors"
	"testing"

	"github.com/worshipkit/stemdeck"
	"github.com/worshipkit/stemdeck/deck"
)

type rejectingBatch struct{ calls int }

func (b *rejectingBatch) StartAll(ctx context.Context, media []stemdeck.Media) error {
	b.calls++
	return stemdeck.ErrPlaybackRejected
}

func TestStartOpBatch(t *testing.T) {
	media := []*fakeMedia{newFakeMedia(10), newFakeMedia(10)}
	op := &deck.StartOp{Media: []stemdeck.Media{media[0], media[1]}}
	res := op.Run(context.Background())
	if res.BatchErr != nil || res.Sequential {
		t.Fatalf("result = %+v, want batch success", res)
	}
	for i, m := range media {
		if m.Paused() {
			t.Errorf("media %d not started", i)
		}
	}
}

func TestStartOpFallsBackToSequential(t *testing.T) {
	refusing := newFakeMedia(10)
	refusing.playErr = stemdeck.ErrPlaybackRejected
	cancelled := newFakeMedia(10)
	cancelled.playErr = stemdeck.ErrAborted
	ok := newFakeMedia(10)
	batch := &rejectingBatch{}
	op := &deck.StartOp{Media: []stemdeck.Media{refusing, cancelled, ok}, Batch: batch}
	res := op.Run(context.Background())
	if batch.calls != 1 || !errors.Is(res.BatchErr, stemdeck.ErrPlaybackRejected) {
		t.Fatalf("batch not attempted first: %+v", res)
	}
	if !res.Sequential || len(res.Errs) != 3 {
		t.Fatalf("sequential phase did not run: %+v", res)
	}
	if ok.Paused() {
		t.Errorf("a refusing track kept the others from starting")
	}
	f := res.Failures()
	if len(f) != 1 || !errors.Is(f[0], stemdeck.ErrPlaybackRejected) {
		t.Errorf("failures = %v, want only the rejection", f)
	}
}

func TestStartOpCancelled(t *testing.T) {
	m := newFakeMedia(10)
	m.block = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := (&deck.StartOp{Media: []stemdeck.Media{m}}).Run(ctx)
	if !stemdeck.IsCancellation(res.BatchErr) || res.Sequential {
		t.Fatalf("result = %+v, want a cancelled batch and no sequential phase", res)
	}
	if len(res.Failures()) != 0 {
		t.Errorf("cancellation reported as a failure")
	}
}
