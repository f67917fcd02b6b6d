// ElevenLabs streaming text-to-speech over WebSocket.
//
// Information Hiding:
// - WebSocket protocol (BOS/text/EOS framing, base64 audio) hidden
// - Streaming handoff into the player hidden
//
// Each utterance opens its own stream-input connection: the assistant
// speaks one reply at a time, and a fresh dial keeps interruption simple
// (stopping the playback tears the connection down with it).

package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxahq/voxa/internal/log"
)

const (
	elevenLabsWSBaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsDialWait  = 10 * time.Second

	// DefaultElevenLabsModel is the low-latency streaming model.
	DefaultElevenLabsModel = "eleven_turbo_v2_5"
)

// ElevenLabsSynthesizer speaks via the ElevenLabs streaming API.
type ElevenLabsSynthesizer struct {
	apiKey  string
	voiceID string
	modelID string
	player  Player
	baseURL string

	stability       float64
	similarityBoost float64
}

// NewElevenLabsSynthesizer creates a synthesizer for the given voice.
func NewElevenLabsSynthesizer(apiKey, voiceID string, player Player) (*ElevenLabsSynthesizer, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if voiceID == "" {
		return nil, ErrNoVoiceID
	}
	return &ElevenLabsSynthesizer{
		apiKey:          apiKey,
		voiceID:         voiceID,
		modelID:         DefaultElevenLabsModel,
		player:          player,
		baseURL:         elevenLabsWSBaseURL,
		stability:       0.5,
		similarityBoost: 0.75,
	}, nil
}

// WithModel overrides the model ID.
func (s *ElevenLabsSynthesizer) WithModel(modelID string) *ElevenLabsSynthesizer {
	s.modelID = modelID
	return s
}

// WithBaseURL overrides the WebSocket endpoint (used in tests).
func (s *ElevenLabsSynthesizer) WithBaseURL(baseURL string) *ElevenLabsSynthesizer {
	s.baseURL = baseURL
	return s
}

// Speak synthesizes the text and starts playback.
func (s *ElevenLabsSynthesizer) Speak(ctx context.Context, text string) (Playback, error) {
	if text == "" {
		done := newDonePlayback(func() {})
		done.finish(nil)
		return done, nil
	}

	url := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=mp3_44100_128",
		s.baseURL, s.voiceID, s.modelID)

	headers := http.Header{}
	headers.Set("xi-api-key", s.apiKey)

	dialer := websocket.Dialer{HandshakeTimeout: elevenLabsDialWait}
	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, WrapError("elevenlabs", fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err))
		}
		return nil, WrapError("elevenlabs", fmt.Errorf("websocket dial failed: %w", err))
	}

	// BOS, the full text, then EOS. The server streams audio back as the
	// text is synthesized.
	bos := map[string]interface{}{
		"text": " ",
		"voice_settings": map[string]interface{}{
			"stability":        s.stability,
			"similarity_boost": s.similarityBoost,
		},
	}
	if err := conn.WriteJSON(bos); err != nil {
		conn.Close()
		return nil, WrapError("elevenlabs", fmt.Errorf("send BOS: %w", err))
	}
	if err := conn.WriteJSON(map[string]interface{}{"text": text + " "}); err != nil {
		conn.Close()
		return nil, WrapError("elevenlabs", fmt.Errorf("send text: %w", err))
	}
	if err := conn.WriteJSON(map[string]interface{}{"text": ""}); err != nil {
		conn.Close()
		return nil, WrapError("elevenlabs", fmt.Errorf("send EOS: %w", err))
	}

	pr, pw := io.Pipe()
	go s.readAudio(conn, pw)

	playback, err := s.player.Play(ctx, pr)
	if err != nil {
		conn.Close()
		pr.Close()
		return nil, WrapError("elevenlabs", err)
	}

	return &elevenLabsPlayback{Playback: playback, conn: conn, reader: pr}, nil
}

// readAudio decodes base64 audio chunks from the socket into the pipe
// until the server marks the stream final.
func (s *ElevenLabsSynthesizer) readAudio(conn *websocket.Conn, pw *io.PipeWriter) {
	defer conn.Close()
	defer pw.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("elevenlabs stream read error", "error", err)
			}
			return
		}

		var chunk struct {
			Audio   string `json:"audio"`
			IsFinal bool   `json:"isFinal"`
		}
		if err := json.Unmarshal(message, &chunk); err != nil {
			log.Warn("elevenlabs sent unparseable frame", "error", err)
			continue
		}

		if chunk.Audio != "" {
			audio, err := base64.StdEncoding.DecodeString(chunk.Audio)
			if err != nil {
				log.Warn("elevenlabs sent undecodable audio", "error", err)
				continue
			}
			if _, err := pw.Write(audio); err != nil {
				// Player side closed, playback was stopped.
				return
			}
		}

		if chunk.IsFinal {
			return
		}
	}
}

// elevenLabsPlayback tears the socket down along with the playback.
type elevenLabsPlayback struct {
	Playback
	conn   *websocket.Conn
	reader *io.PipeReader
}

func (p *elevenLabsPlayback) Stop() {
	p.conn.Close()
	p.reader.Close()
	p.Playback.Stop()
}

// Close releases resources.
func (s *ElevenLabsSynthesizer) Close() error {
	return nil
}

// Verify ElevenLabsSynthesizer implements Synthesizer
var _ Synthesizer = (*ElevenLabsSynthesizer)(nil)
