// Intent classification: decides whether an utterance needs a tool.
//
// Information Hiding:
// - Prompt construction hidden from callers
// - Output normalization hidden (models decorate labels with punctuation,
//   quotes, or explanations)
//
// Classification runs on the fast model tier and fails safe: any error or
// unrecognized label routes the turn to plain conversation.

package tools

import (
	"context"
	"strings"

	"github.com/voxahq/voxa/internal/log"
	"github.com/voxahq/voxa/llm"
)

// NoTool is the classifier verdict for utterances that need no tool.
const NoTool = "none"

// Classifier routes an utterance to a tool name or NoTool.
type Classifier struct {
	client   *llm.Client
	registry *Registry
}

// NewClassifier creates a classifier over the given registry.
func NewClassifier(client *llm.Client, registry *Registry) *Classifier {
	return &Classifier{client: client, registry: registry}
}

// Classify returns the name of the tool the utterance calls for, or NoTool.
// The verdict is always a registered tool name or NoTool; it never errors,
// because a misrouted turn degrades to conversation rather than failing.
// hadToolData says whether the previous reply was already built on tool
// output; the prompt uses it to bias follow-up questions toward NoTool.
func (c *Classifier) Classify(ctx context.Context, utterance string, hadToolData bool) string {
	names := c.registry.Names()
	if len(names) == 0 {
		return NoTool
	}

	messages := []llm.ChatMessage{
		llm.SystemMessage(c.buildPrompt(names, hadToolData)),
		llm.UserMessage(utterance),
	}

	raw, err := c.client.Chat(ctx, llm.TierFast, messages)
	if err != nil {
		log.Warn("intent classification failed, falling back to conversation", "error", err)
		return NoTool
	}

	verdict := normalizeLabel(raw)
	if verdict == NoTool {
		return NoTool
	}
	if !c.registry.Has(verdict) {
		log.Debug("classifier returned unknown label", "label", verdict)
		return NoTool
	}
	return verdict
}

// buildPrompt renders the classification instruction with the tool catalog
// and a hint about the previous turn.
func (c *Classifier) buildPrompt(names []string, hadToolData bool) string {
	var b strings.Builder
	b.WriteString("You are an intent classifier for a voice assistant. ")
	b.WriteString("Decide whether the user's request requires one of these tools:\n\n")
	b.WriteString(c.registry.Description())
	if hadToolData {
		b.WriteString("\n\nContext: the previous reply already used data fetched by a tool. ")
		b.WriteString("Follow-up questions about that answer need no new tool.")
	} else {
		b.WriteString("\n\nContext: the previous reply used no tool.")
	}
	b.WriteString("\n\nRespond with exactly one word: the tool name, or \"none\" if no tool applies. ")
	b.WriteString("When in doubt, respond \"none\".")
	return b.String()
}

// normalizeLabel reduces a model reply to a bare lowercase label.
// Models wrap labels in quotes, add trailing periods, or prepend phrases
// like "Tool:"; only the last whitespace-delimited token is kept.
func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return NoTool
	}

	fields := strings.Fields(s)
	s = fields[len(fields)-1]
	s = strings.Trim(s, "\"'`.,:;!?()[]")
	if s == "" {
		return NoTool
	}
	return s
}
