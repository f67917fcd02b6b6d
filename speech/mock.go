// Mocks for tests.
//
// Exported so other packages' tests can drive voice flows without audio
// hardware or network. Methods can be customized via function fields.

package speech

import (
	"context"
	"sync"
	"time"
)

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// MockSynthesizer implements Synthesizer for testing.
type MockSynthesizer struct {
	// SpeakFunc is called when Speak is invoked. If nil, an instantly
	// finished playback is returned.
	SpeakFunc func(ctx context.Context, text string) (Playback, error)

	mu    sync.Mutex
	calls []MockCall
}

// NewMockSynthesizer creates a mock whose playbacks finish immediately.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Speak calls SpeakFunc and records the call.
func (m *MockSynthesizer) Speak(ctx context.Context, text string) (Playback, error) {
	m.recordCall("Speak", text)
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text)
	}
	done := newDonePlayback(func() {})
	done.finish(nil)
	return done, nil
}

// Close records the call and returns nil.
func (m *MockSynthesizer) Close() error {
	m.recordCall("Close", "")
	return nil
}

// recordCall adds a call to the tracking list.
func (m *MockSynthesizer) recordCall(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (m *MockSynthesizer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// SpokenTexts returns the text of every Speak call in order.
func (m *MockSynthesizer) SpokenTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, c := range m.calls {
		if c.Method == "Speak" {
			texts = append(texts, c.Text)
		}
	}
	return texts
}

// Reset clears all recorded calls.
func (m *MockSynthesizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// ManualPlayback is a Playback finished explicitly by the test.
type ManualPlayback struct {
	*donePlayback
	stopped   chan struct{}
	finishOne sync.Once
}

// NewManualPlayback creates a playback that stays in flight until Finish
// or Stop is called.
func NewManualPlayback() *ManualPlayback {
	p := &ManualPlayback{stopped: make(chan struct{})}
	p.donePlayback = newDonePlayback(func() {
		close(p.stopped)
		p.finishOne.Do(func() { p.donePlayback.finish(nil) })
	})
	return p
}

// Finish completes the playback as if the audio ran to its end.
func (p *ManualPlayback) Finish() {
	p.finishOne.Do(func() { p.donePlayback.finish(nil) })
}

// Stopped reports whether Stop was called.
func (p *ManualPlayback) Stopped() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}

// MockTranscriber implements Transcriber with scripted texts.
type MockTranscriber struct {
	// TranscribeFunc, when set, replaces the scripted behavior.
	TranscribeFunc func(ctx context.Context, wav []byte) (string, error)

	mu    sync.Mutex
	texts []string
	idx   int
	err   error
}

// NewMockTranscriber creates a transcriber returning the given texts in
// order; the last one repeats.
func NewMockTranscriber(texts ...string) *MockTranscriber {
	return &MockTranscriber{texts: texts}
}

// WithError makes every transcription fail with err.
func (m *MockTranscriber) WithError(err error) *MockTranscriber {
	m.err = err
	return m
}

// Transcribe returns the next scripted text.
func (m *MockTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, wav)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if len(m.texts) == 0 {
		return "", nil
	}
	i := m.idx
	if i >= len(m.texts) {
		i = len(m.texts) - 1
	}
	m.idx++
	return m.texts[i], nil
}

// Verify mocks implement their interfaces
var (
	_ Synthesizer = (*MockSynthesizer)(nil)
	_ Playback    = (*ManualPlayback)(nil)
	_ Transcriber = (*MockTranscriber)(nil)
)
