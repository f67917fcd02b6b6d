// Microphone capture by shelling out to the platform recorder.
//
// Information Hiding:
// - Recorder command selection hidden
// - Raw PCM framing hidden
//
// arecord (ALSA) or sox's rec stream raw little-endian PCM16 to stdout;
// frames are sliced off that stream. No cgo audio binding needed.

package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"github.com/voxahq/voxa/internal/log"
)

// CommandCapture records from the default microphone via an external
// recorder process.
type CommandCapture struct {
	goos string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandCapture creates a capture backend for the current platform.
func NewCommandCapture() *CommandCapture {
	return &CommandCapture{goos: runtime.GOOS}
}

// Start launches the recorder and begins framing its output.
func (c *CommandCapture) Start(ctx context.Context) (<-chan Frame, error) {
	argv, err := c.command()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open recorder pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start recorder '%s': %w", argv[0], err)
	}

	frames := make(chan Frame)
	go func() {
		defer close(frames)
		defer cmd.Wait()

		raw := make([]byte, FrameSamples*2)
		for {
			if _, err := io.ReadFull(stdout, raw); err != nil {
				if ctx.Err() == nil && err != io.EOF {
					log.Warn("recorder stream ended", "error", err)
				}
				return
			}

			samples := make([]int16, FrameSamples)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
			}

			select {
			case frames <- Frame{Samples: samples}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

// Stop ends the capture session.
func (c *CommandCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *CommandCapture) command() ([]string, error) {
	rate := fmt.Sprintf("%d", SampleRate)
	switch c.goos {
	case "linux":
		return []string{"arecord", "--quiet", "--format=S16_LE", "--rate=" + rate, "--channels=1", "--file-type=raw"}, nil
	case "darwin":
		return []string{"rec", "-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-r", rate, "-c", "1", "-"}, nil
	default:
		return nil, fmt.Errorf("microphone capture is not supported on %s", c.goos)
	}
}

// Verify CommandCapture implements Capture
var _ Capture = (*CommandCapture)(nil)
