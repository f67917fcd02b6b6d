package tools

import (
	"context"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/voxahq/voxa/llm"
)

type fakeScreen struct {
	width, height int
}

func (s *fakeScreen) Capture(ctx context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, s.width, s.height)), nil
}

type fakeVision struct {
	*llm.FakeProvider
	description string
	lastPrompt  string
	lastPNGSize int
}

func (v *fakeVision) DescribeImage(ctx context.Context, req llm.ImageRequest) (string, error) {
	v.lastPrompt = req.Prompt
	v.lastPNGSize = len(req.PNG)
	return v.description, nil
}

func TestScreenToolDescribes(t *testing.T) {
	vision := &fakeVision{FakeProvider: llm.NewFakeProvider(), description: "a terminal window"}
	tool := NewScreenTool(&fakeScreen{width: 800, height: 600}, vision)

	result, err := tool.Execute(context.Background(), EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("execution failed: %v", result.Error)
	}
	if result.Output != "a terminal window" {
		t.Errorf("got %q", result.Output)
	}
	if vision.lastPNGSize == 0 {
		t.Error("vision model should receive PNG bytes")
	}
}

func TestScreenToolQuestionReachesPrompt(t *testing.T) {
	vision := &fakeVision{FakeProvider: llm.NewFakeProvider(), description: "yes"}
	tool := NewScreenTool(&fakeScreen{width: 800, height: 600}, vision)

	args, _ := json.Marshal(map[string]string{"question": "is the build green"})
	if _, err := tool.Execute(context.Background(), args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(vision.lastPrompt, "is the build green") {
		t.Errorf("question missing from prompt: %q", vision.lastPrompt)
	}
}

func TestScreenToolRejectsTinyCapture(t *testing.T) {
	vision := &fakeVision{FakeProvider: llm.NewFakeProvider(), description: "unused"}
	tool := NewScreenTool(&fakeScreen{width: 10, height: 10}, vision)

	result, err := tool.Execute(context.Background(), EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("tiny capture should be rejected")
	}
	if vision.lastPNGSize != 0 {
		t.Error("vision model should not be called for a rejected capture")
	}
}

func TestScreenToolHidesWindowAroundCapture(t *testing.T) {
	vision := &fakeVision{FakeProvider: llm.NewFakeProvider(), description: "ok"}
	tool := NewScreenTool(&fakeScreen{width: 800, height: 600}, vision)

	var order []string
	tool.OnBeforeCapture = func() { order = append(order, "hide") }
	tool.OnAfterCapture = func() { order = append(order, "restore") }

	if _, err := tool.Execute(context.Background(), EmptyArgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "hide" || order[1] != "restore" {
		t.Errorf("hooks out of order: %v", order)
	}
}

func TestDownscalePreservesAspectRatio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2560, 1440))
	scaled := downscale(img, 1280)

	bounds := scaled.Bounds()
	if bounds.Dx() != 1280 {
		t.Errorf("width = %d, want 1280", bounds.Dx())
	}
	if bounds.Dy() != 720 {
		t.Errorf("height = %d, want 720", bounds.Dy())
	}

	small := image.NewRGBA(image.Rect(0, 0, 640, 480))
	if got := downscale(small, 1280); got != small {
		t.Error("images under the limit should pass through unchanged")
	}
}
