// Package deck is a multitrack stem player engine: it loads a set of stems,
// starts them together, keeps them in sync through play, pause, seek and
// loop, resolves volume/mute/solo into per-track gains and meters every
// track.
//
// The engine is driven by Tick, from a single goroutine. Everything outside
// that goroutine talks to it through a Broker.
package deck
