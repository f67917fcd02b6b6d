package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func searchArgs(query string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"query": query})
	return b
}

func TestWebSearchAbstractAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go programming" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Write([]byte(`{"AbstractText": "Go is a programming language.", "AbstractURL": "https://go.dev"}`))
	}))
	defer server.Close()

	tool := NewWebSearchTool(5).WithEndpoint(server.URL)
	result, err := tool.Execute(context.Background(), searchArgs("go programming"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("search failed: %v", result.Error)
	}
	if !strings.Contains(result.Output, "Go is a programming language.") {
		t.Errorf("unexpected output: %q", result.Output)
	}
	if !strings.Contains(result.Output, "go.dev") {
		t.Errorf("expected source URL in output: %q", result.Output)
	}
}

func TestWebSearchFallsBackToRelatedTopics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RelatedTopics": [{"Text": "First topic"}, {"Text": "Second topic"}]}`))
	}))
	defer server.Close()

	tool := NewWebSearchTool(5).WithEndpoint(server.URL)
	result, err := tool.Execute(context.Background(), searchArgs("obscure"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Output, "First topic") {
		t.Errorf("unexpected output: %q", result.Output)
	}
}

func TestWebSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tool := NewWebSearchTool(5).WithEndpoint(server.URL)
	result, err := tool.Execute(context.Background(), searchArgs("nothing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Output, "No results") {
		t.Errorf("unexpected output: %q", result.Output)
	}
}

func TestWebSearchEmptyQuery(t *testing.T) {
	tool := NewWebSearchTool(5)
	result, err := tool.Execute(context.Background(), searchArgs("  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for empty query")
	}
}

func TestWeatherToolFormatsReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Paris" {
			t.Errorf("unexpected city: %q", got)
		}
		if got := r.URL.Query().Get("units"); got != "metric" {
			t.Errorf("expected metric units, got %q", got)
		}
		w.Write([]byte(`{
			"name": "Paris",
			"weather": [{"description": "light rain"}],
			"main": {"temp": 14.2, "feels_like": 13.1, "humidity": 82},
			"wind": {"speed": 3.4}
		}`))
	}))
	defer server.Close()

	tool := NewWeatherTool(5).WithEndpoint(server.URL).WithAPIKey("test-key")
	args, _ := json.Marshal(map[string]string{"city": "Paris"})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("weather lookup failed: %v", result.Error)
	}
	for _, want := range []string{"Paris", "light rain", "14.2", "82%"} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("output missing %q: %s", want, result.Output)
		}
	}
}

func TestWeatherToolUnknownCity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tool := NewWeatherTool(5).WithEndpoint(server.URL).WithAPIKey("test-key")
	args, _ := json.Marshal(map[string]string{"city": "Nowhereville"})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for unknown city")
	}
}

func TestWeatherToolRequiresAPIKey(t *testing.T) {
	tool := NewWeatherTool(5).WithAPIKey("")
	args, _ := json.Marshal(map[string]string{"city": "Paris"})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure without API key")
	}
}

func TestLocationTool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city": "Berlin", "region": "Berlin", "country": "DE"}`))
	}))
	defer server.Close()

	tool := NewLocationTool(5).WithEndpoint(server.URL)
	result, err := tool.Execute(context.Background(), EmptyArgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Output, "Berlin") || !strings.Contains(result.Output, "DE") {
		t.Errorf("unexpected output: %q", result.Output)
	}
}
