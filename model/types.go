// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"time"
)

// RecordingState is the interaction state machine's current phase.
// Transitions happen only inside the orchestrator's state lock.
type RecordingState int

const (
	// StateIdle means not recording, waiting for activation.
	StateIdle RecordingState = iota
	// StateListening means actively recording, detecting speech.
	StateListening
	// StateProcessing means a pipeline turn is in flight.
	StateProcessing
)

// String returns the state name for logging and display.
func (s RecordingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// InteractionMode selects voice or text interaction. Independent of
// RecordingState; switching mid-turn is permitted only when idle.
type InteractionMode int

const (
	// ModeVoice is spoken input and output.
	ModeVoice InteractionMode = iota
	// ModeChat is typed input and displayed output.
	ModeChat
)

// String returns the mode name.
func (m InteractionMode) String() string {
	switch m {
	case ModeVoice:
		return "voice"
	case ModeChat:
		return "chat"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Role tags a conversation message by its author.
// RoleToolData is distinguished: the responder sees tool results as
// context, but the user-facing transcript never shows this role.
type Role int

const (
	// RoleSystem is the system prompt.
	RoleSystem Role = iota
	// RoleUser is organic user input (spoken or typed).
	RoleUser
	// RoleAssistant is the assistant's reply.
	RoleAssistant
	// RoleToolData carries a tool result injected for the responder.
	RoleToolData
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleToolData:
		return "tool-data"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ParseRole parses a stored role name back into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return RoleSystem, nil
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	case "tool-data":
		return RoleToolData, nil
	default:
		return 0, fmt.Errorf("unknown role: %q", s)
	}
}

// Message is one entry in a conversation history.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolDataMessage creates a tool-data message.
func ToolDataMessage(content string) Message {
	return Message{Role: RoleToolData, Content: content}
}

// ToolInvocation records one tool call within a turn. It lives only for
// the duration of that turn; nothing beyond the event log persists it.
type ToolInvocation struct {
	Tool     string
	Args     map[string]any
	Output   string
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the tool produced a usable result.
func (t ToolInvocation) Succeeded() bool {
	return t.Err == nil
}

// EventEntry is one line in the bounded diagnostics log.
type EventEntry struct {
	Time    time.Time
	Level   string
	Summary string
}

// String formats the entry the way the diagnostics view shows it.
func (e EventEntry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Time.Format("15:04:05"), e.Level, e.Summary)
}
