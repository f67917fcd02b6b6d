// Conversation history.
//
// Information Hiding:
// - Trimming policy hidden
// - Mapping from conversation roles to provider wire roles hidden
//
// The history keeps the conversational record including tool-data
// messages. Providers have no tool-data role, so when the history is
// rendered for the responder each tool-data message becomes a user
// message carrying a [DATA] marker. The system prompt is held apart from
// the record and never trimmed.

package assistant

import (
	"github.com/voxahq/voxa/llm"
	"github.com/voxahq/voxa/model"
)

// MaxHistoryMessages is the number of conversation messages retained;
// older messages are trimmed oldest-first.
const MaxHistoryMessages = 20

// History is the conversation record for the active profile.
// Not thread-safe on its own; the assistant serializes access.
type History struct {
	system   string
	messages []model.Message
	max      int
}

// NewHistory creates an empty history with the default retention.
func NewHistory() *History {
	return &History{max: MaxHistoryMessages}
}

// WithMax overrides the retention limit.
func (h *History) WithMax(max int) *History {
	h.max = max
	return h
}

// SetSystem sets the system prompt. It lives outside the trimmed record.
func (h *History) SetSystem(prompt string) {
	h.system = prompt
}

// Replace swaps the record wholesale, e.g. on profile switch. Stored
// system messages are folded into the system prompt rather than the
// record.
func (h *History) Replace(messages []model.Message) {
	h.messages = nil
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			h.system = msg.Content
			continue
		}
		h.messages = append(h.messages, msg)
	}
	h.trim()
}

// Append adds messages to the record and trims.
func (h *History) Append(messages ...model.Message) {
	h.messages = append(h.messages, messages...)
	h.trim()
}

func (h *History) trim() {
	if h.max > 0 && len(h.messages) > h.max {
		h.messages = h.messages[len(h.messages)-h.max:]
	}
}

// Len returns the number of messages in the record.
func (h *History) Len() int {
	return len(h.messages)
}

// LastReplyUsedTool reports whether the most recent committed exchange
// carried tool data. The classifier uses it to bias follow-up questions
// away from redundant tool calls.
func (h *History) LastReplyUsedTool() bool {
	for i := len(h.messages) - 1; i >= 0; i-- {
		switch h.messages[i].Role {
		case model.RoleToolData:
			return true
		case model.RoleUser:
			return false
		}
	}
	return false
}

// Snapshot returns a copy of the record, for persistence and display.
func (h *History) Snapshot() []model.Message {
	out := make([]model.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// ForResponder renders the history as provider messages: the system
// prompt, then the record with tool-data recast as marked user messages.
// Extra messages are appended after the record without being committed
// to it, which is how a turn shows the responder its pending utterance
// and tool output before deciding to keep them.
func (h *History) ForResponder(extra ...model.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(h.messages)+len(extra)+1)
	if h.system != "" {
		out = append(out, llm.SystemMessage(h.system))
	}
	for _, msg := range h.messages {
		out = append(out, renderMessage(msg))
	}
	for _, msg := range extra {
		out = append(out, renderMessage(msg))
	}
	return out
}

// renderMessage maps one conversation message to a provider message.
// Every role is handled explicitly so adding a role forces a decision
// here.
func renderMessage(msg model.Message) llm.ChatMessage {
	switch msg.Role {
	case model.RoleSystem:
		return llm.SystemMessage(msg.Content)
	case model.RoleUser:
		return llm.UserMessage(msg.Content)
	case model.RoleAssistant:
		return llm.AssistantMessage(msg.Content)
	case model.RoleToolData:
		return llm.UserMessage("[DATA] " + msg.Content)
	default:
		// Unreachable for messages built through the model package.
		return llm.UserMessage(msg.Content)
	}
}
