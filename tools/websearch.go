// Web Search Tool backed by the DuckDuckGo Instant Answer API.
//
// Information Hiding:
// - API endpoint and response shape hidden
// - Fallback from abstract to related topics hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const duckDuckGoEndpoint = "https://api.duckduckgo.com/"

// WebSearchTool answers search queries via DuckDuckGo instant answers.
type WebSearchTool struct {
	BaseTool
	client      *http.Client
	timeoutSecs uint64
	endpoint    string
}

// NewWebSearchTool creates a new web search tool with the given timeout.
func NewWebSearchTool(timeoutSecs uint64) *WebSearchTool {
	return &WebSearchTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
		endpoint:    duckDuckGoEndpoint,
	}
}

// WithEndpoint overrides the API endpoint (used in tests).
func (t *WebSearchTool) WithEndpoint(endpoint string) *WebSearchTool {
	t.endpoint = endpoint
	return t
}

// Metadata returns the tool metadata.
func (t *WebSearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "web_search",
		Description: "Search the web for current information on a topic",
		Parameters: []ToolParameter{
			{
				Name:        "query",
				ParamType:   "string",
				Description: "The search query",
				Required:    true,
			},
		},
	}
}

type webSearchArgs struct {
	Query string `json:"query"`
}

// Validate validates the tool arguments.
func (t *WebSearchTool) Validate(args json.RawMessage) error {
	var a webSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// duckDuckGoResponse is the subset of the instant answer payload we read.
type duckDuckGoResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	Answer        string `json:"Answer"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Execute runs the search.
func (t *WebSearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a webSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if strings.TrimSpace(a.Query) == "" {
		return FailureResultf("query cannot be empty"), nil
	}

	query := url.Values{}
	query.Set("q", a.Query)
	query.Set("format", "json")
	query.Set("no_html", "1")
	query.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err)), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return FailureResultf("search timed out after %d seconds", t.timeoutSecs), nil
		}
		return FailureResult(fmt.Errorf("search request failed: %w", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FailureResultf("search returned HTTP %s", resp.Status), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read search response: %w", err)), nil
	}

	var answer duckDuckGoResponse
	if err := json.Unmarshal(body, &answer); err != nil {
		return FailureResult(fmt.Errorf("failed to parse search response: %w", err)), nil
	}

	return SuccessResult(formatSearchResult(a.Query, answer)), nil
}

// formatSearchResult prefers the direct answer, then the abstract, then the
// first few related topics.
func formatSearchResult(query string, r duckDuckGoResponse) string {
	if r.Answer != "" {
		return r.Answer
	}
	if r.AbstractText != "" {
		if r.AbstractURL != "" {
			return fmt.Sprintf("%s (source: %s)", r.AbstractText, r.AbstractURL)
		}
		return r.AbstractText
	}

	var topics []string
	for _, topic := range r.RelatedTopics {
		if topic.Text == "" {
			continue
		}
		topics = append(topics, topic.Text)
		if len(topics) == 3 {
			break
		}
	}
	if len(topics) > 0 {
		return strings.Join(topics, "\n")
	}

	return fmt.Sprintf("No results found for '%s'", query)
}
