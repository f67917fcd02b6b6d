// LLM-driven argument extraction.
//
// Information Hiding:
// - Extraction prompt construction hidden
// - JSON recovery from decorated model output hidden (internal/json)
//
// Arguments always come from the model reading the utterance, never from
// keyword matching. Extraction runs on the fast tier; tools that declare no
// parameters skip the round trip entirely.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ijson "github.com/voxahq/voxa/internal/json"
	"github.com/voxahq/voxa/llm"
)

// Extractor pulls tool arguments out of a natural-language utterance.
type Extractor struct {
	client *llm.Client
}

// NewExtractor creates an extractor on the given client's fast tier.
func NewExtractor(client *llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract returns a JSON argument payload for the tool, built by the model
// from the utterance. Missing optional parameters are simply absent; a
// missing required parameter is left for the tool's Validate to reject.
func (e *Extractor) Extract(ctx context.Context, tool Tool, utterance string) (json.RawMessage, error) {
	meta := tool.Metadata()
	if len(meta.Parameters) == 0 {
		return EmptyArgs, nil
	}

	messages := []llm.ChatMessage{
		llm.SystemMessage(buildExtractionPrompt(meta)),
		llm.UserMessage(utterance),
	}

	raw, err := e.client.ChatWithFormat(ctx, llm.TierFast, messages, llm.NewJSONObjectFormat())
	if err != nil {
		return nil, fmt.Errorf("argument extraction for '%s' failed: %w", meta.Name, err)
	}

	args, err := ijson.ExtractJSONFromResponse[map[string]any](raw)
	if err != nil {
		return nil, fmt.Errorf("argument extraction for '%s' returned malformed JSON: %w", meta.Name, err)
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode extracted arguments: %w", err)
	}
	return payload, nil
}

// buildExtractionPrompt renders the per-tool extraction instruction.
func buildExtractionPrompt(meta ToolMetadata) string {
	var b strings.Builder
	b.WriteString("Extract the arguments for the tool \"")
	b.WriteString(meta.Name)
	b.WriteString("\" from the user's request.\n\nTool: ")
	b.WriteString(meta.Description)
	b.WriteString("\nParameters:\n")
	for _, p := range meta.Parameters {
		required := "optional"
		if p.Required {
			required = "required"
		}
		fmt.Fprintf(&b, "  - %s (%s): %s [%s]\n", p.Name, p.ParamType, p.Description, required)
	}
	b.WriteString("\nRespond with a JSON object mapping parameter names to values. ")
	b.WriteString("Omit parameters the request does not mention. Respond with JSON only.")
	return b.String()
}
