// Package audio provides microphone capture and utterance segmentation.
//
// Information Hiding:
// - Capture backend selection hidden behind the Capture interface
// - Voice activity detection hidden in the listener
// - Frame sizing and sample format hidden from consumers
package audio

import (
	"context"
	"errors"
)

// SampleRate is the capture sample rate in Hz. 16kHz mono PCM16 is what
// speech models expect.
const SampleRate = 16000

// FrameSamples is the number of samples per frame (30ms at 16kHz).
const FrameSamples = 480

// Frame is one chunk of captured audio.
type Frame struct {
	// Samples holds signed 16-bit mono PCM.
	Samples []int16
}

// Capture produces a stream of audio frames from a microphone.
type Capture interface {
	// Start begins capturing. Frames arrive on the returned channel until
	// the context ends or Stop is called, after which the channel closes.
	Start(ctx context.Context) (<-chan Frame, error)

	// Stop ends the capture session. Safe to call more than once.
	Stop()
}

// ErrNoSpeech is returned when listening times out before any speech is
// detected.
var ErrNoSpeech = errors.New("audio: no speech detected")

// ErrCaptureClosed is returned when the capture stream ends mid-listen.
var ErrCaptureClosed = errors.New("audio: capture stream closed")
