package deck

import (
	"context"

	"github.com/worshipkit/stemdeck"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// StartOp starts a group of media in two phases: first all of them at
	// once, and if that is rejected, one by one so that a single refusing
	// track does not keep the others silent.
	StartOp struct {
		Media []stemdeck.Media
		// Batch, when set, starts the media together. Otherwise the media are
		// started concurrently and the batch fails if any of them fails.
		Batch stemdeck.BatchStarter
	}

	StartResult struct {
		BatchErr   error
		Sequential bool
		Errs       []error // per media, only when the sequential phase ran
	}
)

func (o *StartOp) Run(ctx context.Context) StartResult {
	err := o.attemptBatch(ctx)
	if err == nil {
		return StartResult{}
	}
	res := StartResult{BatchErr: err}
	if ctx.Err() != nil {
		return res
	}
	res.Sequential = true
	res.Errs = o.attemptSequential(ctx)
	return res
}

func (o *StartOp) attemptBatch(ctx context.Context) error {
	if o.Batch != nil {
		return o.Batch.StartAll(ctx, o.Media)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range o.Media {
		g.Go(func() error { return m.Play(gctx) })
	}
	return g.Wait()
}

func (o *StartOp) attemptSequential(ctx context.Context) []error {
	errs := make([]error, len(o.Media))
	for i, m := range o.Media {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		errs[i] = m.Play(ctx)
	}
	return errs
}

// Failures returns the per-track errors worth reporting. Cancellations are
// expected whenever playback is paused or stopped mid-start and are left out.
func (r StartResult) Failures() []error {
	var ret []error
	for _, err := range r.Errs {
		if err != nil && !stemdeck.IsCancellation(err) {
			ret = append(ret, err)
		}
	}
	return ret
}

// issueStart runs a StartOp for media in the background. Its result comes
// back through the broker, and is dropped if playback was paused or stopped
// in the meantime.
func (e *Engine) issueStart(media []stemdeck.Media) {
	if len(media) == 0 {
		return
	}
	ctx, cancel := context.WithCancel(e.ctx)
	e.startCancels = append(e.startCancels, cancel)
	op := &StartOp{Media: media}
	if b, ok := e.loader.(stemdeck.BatchStarter); ok {
		op.Batch = b
	}
	epoch := e.startEpoch
	go func() {
		defer cancel()
		res := op.Run(ctx)
		select {
		case e.broker.ToEngine <- MsgToEngine{Data: startResultMsg{generation: epoch, result: res}}:
		case <-e.ctx.Done():
		}
	}()
}

// cancelStarts cancels every outstanding start operation. Their results,
// should they still arrive, are ignored.
func (e *Engine) cancelStarts() {
	for _, c := range e.startCancels {
		c()
	}
	e.startCancels = e.startCancels[:0]
	e.startEpoch++
	e.startPending = false
}

func (e *Engine) handleStartResult(m startResultMsg) {
	if m.generation != e.startEpoch {
		return
	}
	r := m.result
	if r.BatchErr == nil {
		return
	}
	if !stemdeck.IsCancellation(r.BatchErr) {
		e.log.Debug("batch start rejected, starting tracks one by one", zap.Error(r.BatchErr))
	}
	for _, err := range r.Failures() {
		e.log.Warn("track failed to start", zap.Error(err))
	}
}
