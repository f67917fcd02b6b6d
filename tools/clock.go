// Current Time Tool.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TimeTool reports the current local date and time. It takes no parameters,
// so the pipeline skips argument extraction for it.
type TimeTool struct {
	BaseTool
	now func() time.Time
}

// NewTimeTool creates a new time tool.
func NewTimeTool() *TimeTool {
	return &TimeTool{now: time.Now}
}

// WithClock overrides the clock (used in tests).
func (t *TimeTool) WithClock(now func() time.Time) *TimeTool {
	t.now = now
	return t
}

// Metadata returns the tool metadata.
func (t *TimeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_current_time",
		Description: "Get the current date and time",
		Parameters:  nil,
	}
}

// Execute returns the current time, formatted for reading aloud.
func (t *TimeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	now := t.now()
	return SuccessResult(fmt.Sprintf("It is %s on %s",
		now.Format("3:04 PM"), now.Format("Monday, January 2, 2006"))), nil
}
