// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider and model tier resolution

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/voxahq/voxa/llm"
)

// Settings holds all application configuration.
type Settings struct {
	LLM     LLMConfig
	Speech  SpeechConfig
	Profile string
	DBPath  string
}

// LLMConfig holds model configuration for both tiers.
type LLMConfig struct {
	Provider      llm.ProviderType
	ResponseModel string
	FastModel     string
	MaxTokens     uint32
	Temperature   float64
}

// SpeechConfig holds transcription and synthesis configuration.
type SpeechConfig struct {
	// Voice selects the TTS backend: "openai" or "elevenlabs".
	Voice string

	// ElevenLabsVoiceID is required when Voice is "elevenlabs".
	ElevenLabsVoiceID string
}

// New creates settings for the specified provider, loading values from
// environment variables. Returns an error if the provider is unknown or
// environment variables contain invalid values.
func New(provider string) (Settings, error) {
	providerType, err := llm.ParseProviderType(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 1024)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	responseModel := os.Getenv("VOXA_RESPONSE_MODEL")
	if responseModel == "" {
		responseModel = providerType.DefaultModel()
	}
	fastModel := os.Getenv("VOXA_FAST_MODEL")
	if fastModel == "" {
		fastModel = providerType.DefaultFastModel()
	}

	profile := os.Getenv("VOXA_PROFILE")
	if profile == "" {
		profile = "default"
	}

	dbPath := os.Getenv("VOXA_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	voice := os.Getenv("VOXA_VOICE")
	if voice == "" {
		voice = "openai"
	}
	if voice != "openai" && voice != "elevenlabs" {
		return Settings{}, fmt.Errorf("invalid value for VOXA_VOICE: %q (want openai or elevenlabs)", voice)
	}

	return Settings{
		LLM: LLMConfig{
			Provider:      providerType,
			ResponseModel: responseModel,
			FastModel:     fastModel,
			MaxTokens:     maxTokens,
			Temperature:   temperature,
		},
		Speech: SpeechConfig{
			Voice:             voice,
			ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		},
		Profile: profile,
		DBPath:  dbPath,
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// DefaultDBPath puts the database under the user's home directory.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "voxa.db"
	}
	return filepath.Join(home, ".voxa", "voxa.db")
}

// Environment variable helpers with proper error handling

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
