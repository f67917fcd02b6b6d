// Screen Description Tool.
//
// Information Hiding:
// - Capture backend selection hidden behind the Screen interface
// - Image downscaling and encoding hidden
// - Vision model invocation hidden
//
// The flow is: hide our own window, capture, restore, sanity-check the
// capture, downscale, and hand the PNG to a vision-capable model. The
// window hooks exist so the assistant never describes itself.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"runtime"

	"github.com/voxahq/voxa/llm"
)

// minCaptureDim rejects captures that are too small to describe, which
// usually means the capture backend grabbed a collapsed or hidden window.
const minCaptureDim = 64

// maxCaptureWidth bounds the image sent to the vision model.
const maxCaptureWidth = 1280

// Screen captures the current display contents.
type Screen interface {
	Capture(ctx context.Context) (image.Image, error)
}

// ScreenTool describes what is currently on screen using a vision model.
type ScreenTool struct {
	BaseTool
	screen Screen
	vision llm.VisionProvider

	// OnBeforeCapture and OnAfterCapture, when set, hide and restore the
	// assistant's own window around the capture.
	OnBeforeCapture func()
	OnAfterCapture  func()
}

// NewScreenTool creates a screen description tool.
func NewScreenTool(screen Screen, vision llm.VisionProvider) *ScreenTool {
	return &ScreenTool{screen: screen, vision: vision}
}

// Metadata returns the tool metadata.
func (t *ScreenTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "describe_screen",
		Description: "Look at the screen and describe what is visible",
		Parameters: []ToolParameter{
			{
				Name:        "question",
				ParamType:   "string",
				Description: "What the user wants to know about the screen",
				Required:    false,
			},
		},
	}
}

type screenArgs struct {
	Question string `json:"question"`
}

// Execute captures and describes the screen.
func (t *ScreenTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a screenArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}

	if t.OnBeforeCapture != nil {
		t.OnBeforeCapture()
	}
	img, err := t.screen.Capture(ctx)
	if t.OnAfterCapture != nil {
		t.OnAfterCapture()
	}
	if err != nil {
		return FailureResult(fmt.Errorf("screen capture failed: %w", err)), nil
	}

	bounds := img.Bounds()
	if bounds.Dx() < minCaptureDim || bounds.Dy() < minCaptureDim {
		return FailureResultf("capture too small to describe (%dx%d)", bounds.Dx(), bounds.Dy()), nil
	}

	scaled := downscale(img, maxCaptureWidth)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return FailureResult(fmt.Errorf("failed to encode capture: %w", err)), nil
	}

	prompt := "Describe what is shown on this screen, concisely."
	if a.Question != "" {
		prompt = fmt.Sprintf("Looking at this screen, answer: %s", a.Question)
	}

	description, err := t.vision.DescribeImage(ctx, llm.ImageRequest{
		PNG:    buf.Bytes(),
		Prompt: prompt,
	})
	if err != nil {
		return FailureResult(fmt.Errorf("vision model failed: %w", err)), nil
	}

	return SuccessResult(description), nil
}

// downscale resizes the image so its width is at most maxWidth, preserving
// aspect ratio. Nearest-neighbor is plenty for a vision model input.
func downscale(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if width <= maxWidth {
		return img
	}

	scale := float64(maxWidth) / float64(width)
	height := int(float64(bounds.Dy()) * scale)
	out := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	for y := 0; y < height; y++ {
		srcY := bounds.Min.Y + int(float64(y)/scale)
		for x := 0; x < maxWidth; x++ {
			srcX := bounds.Min.X + int(float64(x)/scale)
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}

// CommandScreen captures the screen by shelling out to the platform's
// screenshot utility (screencapture on macOS, grim or scrot on Linux).
type CommandScreen struct {
	goos string
}

// NewCommandScreen creates a capture backend for the current platform.
func NewCommandScreen() *CommandScreen {
	return &CommandScreen{goos: runtime.GOOS}
}

// Capture takes a screenshot and decodes it.
func (s *CommandScreen) Capture(ctx context.Context) (image.Image, error) {
	tmp, err := os.CreateTemp("", "voxa-screen-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	candidates, err := s.commands(path)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, candidate := range candidates {
		cmd := exec.CommandContext(ctx, candidate[0], candidate[1:]...)
		if err := cmd.Run(); err != nil {
			lastErr = err
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture: %w", err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode capture: %w", err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("screen capture failed: %w", lastErr)
}

func (s *CommandScreen) commands(path string) ([][]string, error) {
	switch s.goos {
	case "darwin":
		return [][]string{{"screencapture", "-x", path}}, nil
	case "linux":
		return [][]string{
			{"grim", path},
			{"scrot", "--overwrite", path},
		}, nil
	default:
		return nil, fmt.Errorf("screen capture is not supported on %s", s.goos)
	}
}

// Verify implementations
var _ Screen = (*CommandScreen)(nil)
