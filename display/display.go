// Package display renders the conversation to the user.
//
// Information Hiding:
// - Rendering target (terminal, window, nothing) hidden behind Sink
//
// Hide and Restore exist for the screen tool: the assistant's own window
// is taken off screen before a capture so it never describes itself.
package display

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/voxahq/voxa/model"
)

// Sink renders conversation output.
type Sink interface {
	// ShowMessage renders one conversation message.
	ShowMessage(msg model.Message)

	// ShowStatus renders a transient status line (listening, thinking...).
	ShowStatus(status string)

	// Hide takes the display off screen; Restore brings it back.
	Hide()
	Restore()
}

// Terminal renders the conversation to a writer, stdout by default.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	hidden bool
}

// NewTerminal creates a terminal sink writing to stdout.
func NewTerminal() *Terminal {
	return &Terminal{out: os.Stdout}
}

// NewTerminalWriter creates a terminal sink writing to w.
func NewTerminalWriter(w io.Writer) *Terminal {
	return &Terminal{out: w}
}

// ShowMessage renders one conversation message with a role prefix.
func (t *Terminal) ShowMessage(msg model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden {
		return
	}

	switch msg.Role {
	case model.RoleUser:
		fmt.Fprintf(t.out, "you> %s\n", msg.Content)
	case model.RoleAssistant:
		fmt.Fprintf(t.out, "voxa> %s\n", msg.Content)
	case model.RoleToolData:
		fmt.Fprintf(t.out, "  [data] %s\n", msg.Content)
	default:
		fmt.Fprintf(t.out, "%s> %s\n", msg.Role, msg.Content)
	}
}

// ShowStatus renders a transient status line.
func (t *Terminal) ShowStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hidden {
		return
	}
	fmt.Fprintf(t.out, "  (%s)\n", status)
}

// Hide suppresses output until Restore.
func (t *Terminal) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden = true
}

// Restore resumes output.
func (t *Terminal) Restore() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hidden = false
}

// Nop discards all output; used when the assistant runs voice-only.
type Nop struct{}

// NewNop creates a sink that renders nothing.
func NewNop() *Nop { return &Nop{} }

func (*Nop) ShowMessage(model.Message) {}
func (*Nop) ShowStatus(string)        {}
func (*Nop) Hide()                    {}
func (*Nop) Restore()                 {}

// Verify implementations
var (
	_ Sink = (*Terminal)(nil)
	_ Sink = (*Nop)(nil)
)
