// OpenAI text-to-speech.
//
// Information Hiding:
// - Synthesis API parameters hidden
// - Handoff from synthesis stream to player hidden

package speech

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAISynthesizer speaks via the OpenAI speech API.
type OpenAISynthesizer struct {
	client *openai.Client
	player Player
	voice  openai.SpeechVoice
	model  openai.SpeechModel
}

// NewOpenAISynthesizer creates a synthesizer on the given client. The
// client is shared with the chat provider so one API key covers both.
func NewOpenAISynthesizer(client *openai.Client, player Player) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		client: client,
		player: player,
		voice:  openai.VoiceNova,
		model:  openai.TTSModel1,
	}
}

// WithVoice overrides the voice.
func (s *OpenAISynthesizer) WithVoice(voice openai.SpeechVoice) *OpenAISynthesizer {
	s.voice = voice
	return s
}

// Speak synthesizes the text and starts playback.
func (s *OpenAISynthesizer) Speak(ctx context.Context, text string) (Playback, error) {
	if text == "" {
		done := newDonePlayback(func() {})
		done.finish(nil)
		return done, nil
	}

	stream, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: s.model,
		Input: text,
		Voice: s.voice,
	})
	if err != nil {
		return nil, WrapError("openai", fmt.Errorf("synthesis failed: %w", err))
	}

	playback, err := s.player.Play(ctx, stream)
	if err != nil {
		stream.Close()
		return nil, WrapError("openai", err)
	}
	return playback, nil
}

// Close releases resources.
func (s *OpenAISynthesizer) Close() error {
	return nil
}

// Verify OpenAISynthesizer implements Synthesizer
var _ Synthesizer = (*OpenAISynthesizer)(nil)
