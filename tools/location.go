// Location Tool backed by the ipinfo.io geolocation API.
//
// Information Hiding:
// - API endpoint and response shape hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const ipinfoEndpoint = "https://ipinfo.io/json"

// LocationTool reports the approximate location based on the public IP.
type LocationTool struct {
	BaseTool
	client      *http.Client
	timeoutSecs uint64
	endpoint    string
}

// NewLocationTool creates a new location tool with the given timeout.
func NewLocationTool(timeoutSecs uint64) *LocationTool {
	return &LocationTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
		endpoint:    ipinfoEndpoint,
	}
}

// WithEndpoint overrides the API endpoint (used in tests).
func (t *LocationTool) WithEndpoint(endpoint string) *LocationTool {
	t.endpoint = endpoint
	return t
}

// Metadata returns the tool metadata.
func (t *LocationTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_location",
		Description: "Get the user's approximate current location",
		Parameters:  nil,
	}
}

type ipinfoResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Execute looks up the location.
func (t *LocationTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err)), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return FailureResultf("location lookup timed out after %d seconds", t.timeoutSecs), nil
		}
		return FailureResult(fmt.Errorf("location request failed: %w", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FailureResultf("location service returned HTTP %s", resp.Status), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read location response: %w", err)), nil
	}

	var info ipinfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return FailureResult(fmt.Errorf("failed to parse location response: %w", err)), nil
	}

	var parts []string
	for _, p := range []string{info.City, info.Region, info.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return FailureResultf("location service returned no usable data"), nil
	}

	return SuccessResult("You appear to be in " + strings.Join(parts, ", ")), nil
}
