package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/worshipkit/stemdeck"
)

type (
	// Renderer fills buffers with the next frames of audio. *stem.Bus is one.
	Renderer interface {
		Render(buf stemdeck.AudioBuffer)
	}

	// Output pulls audio from a Renderer and plays it on the default device.
	Output struct {
		context *oto.Context
		player  *oto.Player
	}

	rendererReader struct {
		mu       sync.Mutex
		renderer Renderer
		buf      stemdeck.AudioBuffer
	}
)

const bytesPerFrame = 8 // two float32 channels

const otoBufferSize = 50 * time.Millisecond

// Open creates the audio context and starts pulling from r. There can be
// only one Output per process.
func Open(r Renderer, sampleRate int) (*Output, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	player := context.NewPlayer(&rendererReader{renderer: r})
	player.Play()
	return &Output{context: context, player: player}, nil
}

// Err returns the error of the audio context or player, if any.
func (o *Output) Err() error {
	if err := o.context.Err(); err != nil {
		return err
	}
	return o.player.Err()
}

// Close stops pulling audio and suspends the device. The player itself is
// released by the garbage collector.
func (o *Output) Close() error {
	o.player.Pause()
	if err := o.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (r *rendererReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frames := len(p) / bytesPerFrame
	if cap(r.buf) < frames {
		r.buf = make(stemdeck.AudioBuffer, frames)
	}
	r.buf = r.buf[:frames]
	r.renderer.Render(r.buf)
	return len(AudioBufferToFloat32LE(r.buf, p[:0])), nil
}
