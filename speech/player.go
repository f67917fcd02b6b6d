// Audio playback by shelling out to the platform player.
//
// Information Hiding:
// - Player command selection hidden
// - Process lifecycle hidden
//
// Audio bytes are piped to the player's stdin, so synthesized audio never
// touches disk. Stop kills the process, which is how a reply gets cut off
// mid-sentence.

package speech

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
)

// Player plays an audio byte stream.
type Player interface {
	// Play starts playing the stream and returns a Playback handle.
	Play(ctx context.Context, audio io.Reader) (Playback, error)
}

// CommandPlayer plays audio through an external process (ffplay or mpv).
type CommandPlayer struct {
	goos string
}

// NewCommandPlayer creates a player for the current platform.
func NewCommandPlayer() *CommandPlayer {
	return &CommandPlayer{goos: runtime.GOOS}
}

// Play pipes the stream into the first available player command.
func (p *CommandPlayer) Play(ctx context.Context, audio io.Reader) (Playback, error) {
	candidates := [][]string{
		{"ffplay", "-autoexit", "-nodisp", "-loglevel", "quiet", "-"},
		{"mpv", "--no-terminal", "--no-video", "-"},
	}

	var cmd *exec.Cmd
	for _, candidate := range candidates {
		if _, err := exec.LookPath(candidate[0]); err != nil {
			continue
		}
		cmd = exec.CommandContext(ctx, candidate[0], candidate[1:]...)
		break
	}
	if cmd == nil {
		return nil, ErrNoPlayer
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open player pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player: %w", err)
	}

	var stopMu sync.Mutex
	stopped := false
	playback := newDonePlayback(func() {
		stopMu.Lock()
		stopped = true
		stopMu.Unlock()
		stdin.Close()
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	})

	go func() {
		_, copyErr := io.Copy(stdin, audio)
		stdin.Close()
		waitErr := cmd.Wait()

		stopMu.Lock()
		wasStopped := stopped
		stopMu.Unlock()
		if wasStopped {
			// A killed player is not a failure.
			playback.finish(nil)
			return
		}
		if copyErr != nil {
			playback.finish(fmt.Errorf("playback stream failed: %w", copyErr))
			return
		}
		playback.finish(waitErr)
	}()

	return playback, nil
}

// Verify CommandPlayer implements Player
var _ Player = (*CommandPlayer)(nil)
