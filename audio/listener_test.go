package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// frameDur matches the listener's per-frame accounting.
const frameDur = time.Duration(FrameSamples) * time.Second / SampleRate

func repeat(frame Frame, n int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = frame
	}
	return frames
}

func framesFor(d time.Duration, frame Frame) []Frame {
	n := int(d/frameDur) + 1
	return repeat(frame, n)
}

func TestListenerSegmentsUtterance(t *testing.T) {
	var script []Frame
	script = append(script, repeat(SilentFrame(), 3)...)
	script = append(script, repeat(VoicedFrame(), 10)...)
	script = append(script, framesFor(SilenceTimeout, SilentFrame())...)
	script = append(script, repeat(VoicedFrame(), 50)...) // past the silence window, never read

	capture := NewScriptedCapture(script...)
	listener := NewListener(capture)

	samples, err := listener.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	if len(samples) == 0 {
		t.Fatal("expected captured samples")
	}

	// 10 voiced frames plus the silence tail, but not the trailing speech.
	maxExpected := (10 + int(SilenceTimeout/frameDur) + 1) * FrameSamples
	if len(samples) > maxExpected {
		t.Errorf("utterance kept reading past the silence window: %d samples", len(samples))
	}
}

func TestListenerNoSpeechTimeout(t *testing.T) {
	capture := NewScriptedCapture(framesFor(ListenTimeout+time.Second, SilentFrame())...)
	listener := NewListener(capture)

	_, err := listener.Listen(context.Background())
	if !errors.Is(err, ErrNoSpeech) {
		t.Errorf("expected ErrNoSpeech, got %v", err)
	}
}

func TestListenerShortPausesDoNotEndUtterance(t *testing.T) {
	pause := framesFor(SilenceTimeout/4, SilentFrame())

	var script []Frame
	script = append(script, repeat(VoicedFrame(), 5)...)
	script = append(script, pause...)
	script = append(script, repeat(VoicedFrame(), 5)...)
	script = append(script, framesFor(SilenceTimeout, SilentFrame())...)

	capture := NewScriptedCapture(script...)
	listener := NewListener(capture)

	samples, err := listener.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	// Both bursts plus the pause must be present.
	minExpected := (10 + len(pause)) * FrameSamples
	if len(samples) < minExpected {
		t.Errorf("short pause ended the utterance early: %d samples, want >= %d", len(samples), minExpected)
	}
}

func TestListenerStreamEndMidSpeech(t *testing.T) {
	capture := NewScriptedCapture(repeat(VoicedFrame(), 5)...)
	listener := NewListener(capture)

	samples, err := listener.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	if len(samples) != 5*FrameSamples {
		t.Errorf("got %d samples, want %d", len(samples), 5*FrameSamples)
	}
}

func TestListenerStreamEndBeforeSpeech(t *testing.T) {
	capture := NewScriptedCapture(repeat(SilentFrame(), 2)...)
	listener := NewListener(capture)

	_, err := listener.Listen(context.Background())
	if !errors.Is(err, ErrCaptureClosed) {
		t.Errorf("expected ErrCaptureClosed, got %v", err)
	}
}

func TestListenerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	capture := NewScriptedCapture(repeat(VoicedFrame(), 100)...)
	listener := NewListener(capture)

	_, err := listener.Listen(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestVoiceActive(t *testing.T) {
	if voiceActive(SilentFrame().Samples, DefaultVoiceThreshold) {
		t.Error("silence should not be voiced")
	}
	if !voiceActive(VoicedFrame().Samples, DefaultVoiceThreshold) {
		t.Error("loud frame should be voiced")
	}
	if voiceActive(nil, DefaultVoiceThreshold) {
		t.Error("empty frame should not be voiced")
	}
}
