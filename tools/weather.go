// Weather Tool backed by the OpenWeatherMap current weather API.
//
// Information Hiding:
// - API endpoint, key handling, and response shape hidden
// - Unit formatting hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const openWeatherMapEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// WeatherTool reports current weather for a city.
type WeatherTool struct {
	BaseTool
	client      *http.Client
	timeoutSecs uint64
	endpoint    string
	apiKey      string
}

// NewWeatherTool creates a new weather tool with the given timeout.
// The API key is read from OPENWEATHERMAP_API_KEY.
func NewWeatherTool(timeoutSecs uint64) *WeatherTool {
	return &WeatherTool{
		client: &http.Client{
			Timeout: time.Duration(timeoutSecs) * time.Second,
		},
		timeoutSecs: timeoutSecs,
		endpoint:    openWeatherMapEndpoint,
		apiKey:      os.Getenv("OPENWEATHERMAP_API_KEY"),
	}
}

// WithEndpoint overrides the API endpoint (used in tests).
func (t *WeatherTool) WithEndpoint(endpoint string) *WeatherTool {
	t.endpoint = endpoint
	return t
}

// WithAPIKey overrides the API key.
func (t *WeatherTool) WithAPIKey(key string) *WeatherTool {
	t.apiKey = key
	return t
}

// Metadata returns the tool metadata.
func (t *WeatherTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "get_weather",
		Description: "Get the current weather for a city",
		Parameters: []ToolParameter{
			{
				Name:        "city",
				ParamType:   "string",
				Description: "The city name, optionally with country code (e.g. 'Paris' or 'Paris,FR')",
				Required:    true,
			},
		},
	}
}

type weatherArgs struct {
	City string `json:"city"`
}

// Validate validates the tool arguments.
func (t *WeatherTool) Validate(args json.RawMessage) error {
	var a weatherArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(a.City) == "" {
		return fmt.Errorf("city cannot be empty")
	}
	return nil
}

// openWeatherResponse is the subset of the API payload we read.
type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Execute fetches the current weather.
func (t *WeatherTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a weatherArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if strings.TrimSpace(a.City) == "" {
		return FailureResultf("city cannot be empty"), nil
	}
	if t.apiKey == "" {
		return FailureResultf("weather lookup needs OPENWEATHERMAP_API_KEY to be set"), nil
	}

	query := url.Values{}
	query.Set("q", a.City)
	query.Set("appid", t.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create request: %w", err)), nil
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return FailureResultf("weather lookup timed out after %d seconds", t.timeoutSecs), nil
		}
		return FailureResult(fmt.Errorf("weather request failed: %w", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return FailureResultf("no weather data found for '%s'", a.City), nil
	}
	if resp.StatusCode != http.StatusOK {
		return FailureResultf("weather service returned HTTP %s", resp.Status), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read weather response: %w", err)), nil
	}

	var w openWeatherResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return FailureResult(fmt.Errorf("failed to parse weather response: %w", err)), nil
	}

	description := "unknown conditions"
	if len(w.Weather) > 0 {
		description = w.Weather[0].Description
	}

	return SuccessResult(fmt.Sprintf(
		"Weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%, wind %.1f m/s",
		w.Name, description, w.Main.Temp, w.Main.FeelsLike, w.Main.Humidity, w.Wind.Speed)), nil
}
