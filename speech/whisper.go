// Whisper transcription via the OpenAI audio API.
//
// Information Hiding:
// - Upload format and API parameters hidden

package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes WAV audio with the Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

// NewWhisperTranscriber creates a transcriber on the given client. The
// client is shared with the chat provider so one API key covers both.
func NewWhisperTranscriber(client *openai.Client) *WhisperTranscriber {
	return &WhisperTranscriber{
		client: client,
		model:  openai.Whisper1,
	}
}

// Transcribe converts a WAV utterance to text. The returned text is
// trimmed; silence transcribes to an empty string, not an error.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if len(wav) == 0 {
		return "", ErrEmptyAudio
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(wav),
		FilePath: "utterance.wav",
	})
	if err != nil {
		return "", WrapError("whisper", fmt.Errorf("transcription failed: %w", err))
	}

	return strings.TrimSpace(resp.Text), nil
}

// Verify WhisperTranscriber implements Transcriber
var _ Transcriber = (*WhisperTranscriber)(nil)
