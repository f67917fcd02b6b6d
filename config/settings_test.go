package config

import (
	"testing"

	"github.com/voxahq/voxa/llm"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != llm.ProviderOpenAI {
		t.Errorf("expected openai provider, got %v", settings.LLM.Provider)
	}
	if settings.LLM.ResponseModel == "" || settings.LLM.FastModel == "" {
		t.Error("expected default models for both tiers")
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != llm.ProviderAnthropic {
		t.Errorf("expected anthropic (normalized from 'claude'), got %v", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestModelOverridesFromEnv(t *testing.T) {
	t.Setenv("VOXA_RESPONSE_MODEL", "gpt-4o-2024-11-20")
	t.Setenv("VOXA_FAST_MODEL", "gpt-4o-mini")

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.ResponseModel != "gpt-4o-2024-11-20" {
		t.Errorf("response model override ignored: %q", settings.LLM.ResponseModel)
	}
	if settings.LLM.FastModel != "gpt-4o-mini" {
		t.Errorf("fast model override ignored: %q", settings.LLM.FastModel)
	}
}

func TestProfileDefaultsAndOverride(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatal(err)
	}
	if settings.Profile != "default" {
		t.Errorf("expected default profile, got %q", settings.Profile)
	}

	t.Setenv("VOXA_PROFILE", "alice")
	settings, err = New("openai")
	if err != nil {
		t.Fatal(err)
	}
	if settings.Profile != "alice" {
		t.Errorf("profile override ignored: %q", settings.Profile)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestNewWithInvalidVoice(t *testing.T) {
	t.Setenv("VOXA_VOICE", "kazoo")

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid VOXA_VOICE")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}
