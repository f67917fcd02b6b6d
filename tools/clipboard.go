// Clipboard Tool.
//
// Information Hiding:
// - Platform clipboard command selection hidden
//
// Reads go through the platform's clipboard utility (pbpaste on macOS,
// xclip or wl-paste on Linux) rather than a cgo binding.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ClipboardTool reads the current clipboard contents.
type ClipboardTool struct {
	BaseTool
	goos string
}

// NewClipboardTool creates a new clipboard tool.
func NewClipboardTool() *ClipboardTool {
	return &ClipboardTool{goos: runtime.GOOS}
}

// Metadata returns the tool metadata.
func (t *ClipboardTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_clipboard",
		Description: "Read the current contents of the clipboard",
		Parameters:  nil,
	}
}

// Execute reads the clipboard.
func (t *ClipboardTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	candidates, err := t.commands()
	if err != nil {
		return FailureResult(err), nil
	}

	var lastErr error
	for _, candidate := range candidates {
		cmd := exec.CommandContext(ctx, candidate[0], candidate[1:]...)
		output, err := cmd.Output()
		if err != nil {
			lastErr = err
			continue
		}
		text := strings.TrimRight(string(output), "\n")
		if text == "" {
			return SuccessResult("The clipboard is empty"), nil
		}
		return SuccessResult(text), nil
	}

	return FailureResult(fmt.Errorf("failed to read clipboard: %w", lastErr)), nil
}

// commands returns the candidate clipboard readers for the platform.
func (t *ClipboardTool) commands() ([][]string, error) {
	switch t.goos {
	case "darwin":
		return [][]string{{"pbpaste"}}, nil
	case "linux":
		return [][]string{
			{"wl-paste", "--no-newline"},
			{"xclip", "-selection", "clipboard", "-o"},
			{"xsel", "--clipboard", "--output"},
		}, nil
	default:
		return nil, fmt.Errorf("clipboard access is not supported on %s", t.goos)
	}
}
