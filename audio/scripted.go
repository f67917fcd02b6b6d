// Scripted capture for tests.

package audio

import (
	"context"
	"sync"
)

// ScriptedCapture replays a fixed sequence of frames. Exported so other
// packages' tests can drive voice flows without a microphone.
type ScriptedCapture struct {
	frames []Frame

	mu      sync.Mutex
	stopped chan struct{}
	starts  int
}

// NewScriptedCapture creates a capture that will replay the given frames.
func NewScriptedCapture(frames ...Frame) *ScriptedCapture {
	return &ScriptedCapture{frames: frames}
}

// VoicedFrame builds a frame whose energy clears the default threshold.
func VoicedFrame() Frame {
	samples := make([]int16, FrameSamples)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 8000
		} else {
			samples[i] = -8000
		}
	}
	return Frame{Samples: samples}
}

// SilentFrame builds an all-zero frame.
func SilentFrame() Frame {
	return Frame{Samples: make([]int16, FrameSamples)}
}

// Start replays the scripted frames and then closes the channel.
func (s *ScriptedCapture) Start(ctx context.Context) (<-chan Frame, error) {
	s.mu.Lock()
	s.stopped = make(chan struct{})
	s.starts++
	stopped := s.stopped
	s.mu.Unlock()

	out := make(chan Frame)
	go func() {
		defer close(out)
		for _, frame := range s.frames {
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			case <-stopped:
				return
			}
		}
	}()
	return out, nil
}

// Stop ends the replay.
func (s *ScriptedCapture) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped != nil {
		select {
		case <-s.stopped:
		default:
			close(s.stopped)
		}
	}
}

// Starts returns how many capture sessions were begun.
func (s *ScriptedCapture) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Verify ScriptedCapture implements Capture
var _ Capture = (*ScriptedCapture)(nil)
