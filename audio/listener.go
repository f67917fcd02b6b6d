// Utterance segmentation over a capture stream.
//
// Information Hiding:
// - Silence tracking and timeout bookkeeping hidden
//
// The listener waits for speech, then collects frames until the speaker
// pauses long enough. Both windows are driven by frame durations rather
// than wall-clock timers, so scripted captures behave identically in tests.

package audio

import (
	"context"
	"time"
)

// Listening windows. Speech must start within ListenTimeout; once started,
// SilenceTimeout of quiet ends the utterance. FollowUpListenTimeout is the
// shorter window used right after a spoken reply, when the user either
// answers promptly or has walked away.
const (
	SilenceTimeout        = 2 * time.Second
	ListenTimeout         = 5 * time.Second
	FollowUpListenTimeout = 3 * time.Second
)

// Listener segments one utterance at a time out of a capture stream.
type Listener struct {
	capture        Capture
	threshold      float64
	silenceTimeout time.Duration
	listenTimeout  time.Duration
}

// NewListener creates a listener with the default windows.
func NewListener(capture Capture) *Listener {
	return &Listener{
		capture:        capture,
		threshold:      DefaultVoiceThreshold,
		silenceTimeout: SilenceTimeout,
		listenTimeout:  ListenTimeout,
	}
}

// WithThreshold overrides the voice activity threshold.
func (l *Listener) WithThreshold(threshold float64) *Listener {
	l.threshold = threshold
	return l
}

// WithTimeouts overrides the silence and listen windows.
func (l *Listener) WithTimeouts(silence, listen time.Duration) *Listener {
	l.silenceTimeout = silence
	l.listenTimeout = listen
	return l
}

// Listen captures one utterance and returns its samples. It returns
// ErrNoSpeech if nothing is said within the listen window, and ctx.Err()
// if the context ends first. The capture is stopped before returning, so
// each call is a complete listening session.
func (l *Listener) Listen(ctx context.Context) ([]int16, error) {
	frames, err := l.capture.Start(ctx)
	if err != nil {
		return nil, err
	}
	defer l.capture.Stop()

	frameDuration := time.Duration(FrameSamples) * time.Second / SampleRate

	var (
		utterance []int16
		speaking  bool
		quiet     time.Duration
		waited    time.Duration
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				if speaking {
					return utterance, nil
				}
				return nil, ErrCaptureClosed
			}

			voiced := voiceActive(frame.Samples, l.threshold)

			if !speaking {
				if voiced {
					speaking = true
					quiet = 0
					utterance = append(utterance, frame.Samples...)
					continue
				}
				waited += frameDuration
				if waited >= l.listenTimeout {
					return nil, ErrNoSpeech
				}
				continue
			}

			utterance = append(utterance, frame.Samples...)
			if voiced {
				quiet = 0
				continue
			}
			quiet += frameDuration
			if quiet >= l.silenceTimeout {
				return utterance, nil
			}
		}
	}
}
