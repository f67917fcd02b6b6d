package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxahq/voxa/llm"
)

func classifierWith(t *testing.T, provider *llm.FakeProvider) *Classifier {
	t.Helper()
	registry := NewRegistry()
	if err := registry.Register(NewCalculateTool()); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(NewWeatherTool(5)); err != nil {
		t.Fatal(err)
	}
	return NewClassifier(llm.NewSingleTierClient(provider), registry)
}

func TestClassifierReturnsToolName(t *testing.T) {
	c := classifierWith(t, llm.NewFakeProvider("get_weather"))
	if got := c.Classify(context.Background(), "what's the weather in Paris", false); got != "get_weather" {
		t.Errorf("got %q, want get_weather", got)
	}
}

func TestClassifierNormalizesDecoratedLabels(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"get_weather", "get_weather"},
		{"GET_WEATHER", "get_weather"},
		{"\"get_weather\"", "get_weather"},
		{"get_weather.", "get_weather"},
		{"Tool: get_weather", "get_weather"},
		{"The right tool is calculate", "calculate"},
		{"none", NoTool},
		{"None.", NoTool},
		{"", NoTool},
		{"   ", NoTool},
	}

	for _, tt := range tests {
		c := classifierWith(t, llm.NewFakeProvider(tt.reply))
		if got := c.Classify(context.Background(), "anything", false); got != tt.want {
			t.Errorf("reply %q: got %q, want %q", tt.reply, got, tt.want)
		}
	}
}

func TestClassifierUnknownLabelFallsBack(t *testing.T) {
	c := classifierWith(t, llm.NewFakeProvider("launch_rockets"))
	if got := c.Classify(context.Background(), "anything", false); got != NoTool {
		t.Errorf("unknown label should map to none, got %q", got)
	}
}

func TestClassifierErrorFallsBack(t *testing.T) {
	provider := llm.NewFakeProvider().WithError(errors.New("connection refused"))
	c := classifierWith(t, provider)
	if got := c.Classify(context.Background(), "anything", false); got != NoTool {
		t.Errorf("classifier error should map to none, got %q", got)
	}
}

func TestClassifierPromptCarriesToolDataHint(t *testing.T) {
	provider := llm.NewFakeProvider("none")
	c := classifierWith(t, provider)

	c.Classify(context.Background(), "and tomorrow?", true)
	c.Classify(context.Background(), "what's the weather", false)

	calls := provider.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if !strings.Contains(calls[0][0].Content, "already used data fetched by a tool") {
		t.Error("prompt is missing the follow-up hint")
	}
	if strings.Contains(calls[1][0].Content, "already used data fetched by a tool") {
		t.Error("hint present without prior tool data")
	}
}

func TestClassifierEmptyRegistry(t *testing.T) {
	provider := llm.NewFakeProvider("calculate")
	c := NewClassifier(llm.NewSingleTierClient(provider), NewRegistry())
	if got := c.Classify(context.Background(), "2+2", false); got != NoTool {
		t.Errorf("empty registry should map to none, got %q", got)
	}
	if provider.CallCount() != 0 {
		t.Error("empty registry should not call the model")
	}
}
