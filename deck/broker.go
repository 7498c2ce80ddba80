package deck

import (
	"time"

	"github.com/worshipkit/stemdeck"
)

type (
	// Broker is the message bus between the goroutine owning the Engine and
	// everyone else: loaders reporting progress, start operations reporting
	// their outcome, preference file watchers and user interfaces sending
	// commands. All messages end up in the ToEngine channel, which the engine
	// drains at the beginning of every tick, so the engine state is only ever
	// touched by one goroutine.
	//
	// For closing the engine goroutine, the broker has two channels:
	// CloseEngine and FinishedEngine. CloseEngine has a capacity of 1, so you
	// can always send an empty message (struct{}{}) to it without blocking. If
	// the channel is already full, someone else has already requested the
	// closure. FinishedEngine is closed when Run has returned. Wait for it
	// with a timeout to avoid deadlocks:
	//
	//	select {
	//	case <-broker.FinishedEngine:
	//	case <-time.After(3 * time.Second):
	//	}
	Broker struct {
		ToEngine chan MsgToEngine

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}
	}

	// MsgToEngine is a message sent to the engine. Data is one of the
	// message types below, a Preferences value, a ConnectionQuality value, or
	// a func() that gets executed in the engine goroutine.
	MsgToEngine struct {
		Data any
	}

	loadProgressMsg struct {
		index    int
		progress float64
	}

	loadDoneMsg struct {
		index int
		media stemdeck.Media
		err   error
	}

	startResultMsg struct {
		generation int
		result     StartResult
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan MsgToEngine, 1024),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
	}
}

// Do queues f to be executed in the engine goroutine. It returns false if
// the queue is full.
func (b *Broker) Do(f func()) bool {
	return TrySend(b.ToEngine, MsgToEngine{Data: f})
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
