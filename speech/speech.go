// Package speech provides transcription and text-to-speech for the assistant.
//
// Information Hiding:
// - Provider API details hidden behind Transcriber and Synthesizer
// - Audio playback process management hidden behind Player
//
// Synthesis is split into Speak (start) and Playback (wait/stop) so a reply
// can be cut off mid-sentence: stopping a playback is how interruption
// reaches the speakers.
package speech

import (
	"context"
	"sync"
)

// Transcriber converts a WAV utterance to text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Playback is one in-flight utterance being spoken.
type Playback interface {
	// Wait blocks until the utterance finishes playing, is stopped, or the
	// context ends.
	Wait(ctx context.Context) error

	// Stop cuts the audio immediately. Idempotent.
	Stop()
}

// Synthesizer speaks text aloud.
type Synthesizer interface {
	// Speak starts speaking and returns a handle to the playback.
	Speak(ctx context.Context, text string) (Playback, error)

	// Close releases provider resources.
	Close() error
}

// donePlayback is the shared Playback implementation: a done channel plus
// an idempotent stop.
type donePlayback struct {
	done     chan struct{}
	stopOnce sync.Once
	stop     func()

	mu  sync.Mutex
	err error
}

func newDonePlayback(stop func()) *donePlayback {
	return &donePlayback{
		done: make(chan struct{}),
		stop: stop,
	}
}

// finish marks the playback complete, recording an error if any.
func (p *donePlayback) finish(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

func (p *donePlayback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *donePlayback) Stop() {
	p.stopOnce.Do(p.stop)
}
