// Package voice turns recipe text into spoken audio.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-kitchen/internal/config"
)

// ModelID is the ElevenLabs model used for narration.
const ModelID = "eleven_turbo_v2_5"

// MaxTextLength bounds a single narration request.
const MaxTextLength = 5000

var (
	ErrEmptyText     = errors.New("text is required")
	ErrTextTooLong   = fmt.Errorf("text exceeds %d characters", MaxTextLength)
	ErrNotConfigured = errors.New("voice synthesis is not configured")
)

// Synthesizer converts text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// elevenLabsClient is a client for the ElevenLabs text-to-speech API.
type elevenLabsClient struct {
	baseURL    string
	apiKey     string
	voiceID    string
	httpClient *http.Client
}

// NewElevenLabsClient creates a Synthesizer for the configured voice.
func NewElevenLabsClient(cfg *config.Config) Synthesizer {
	return &elevenLabsClient{
		baseURL: strings.TrimRight(cfg.ElevenLabsAPIURL, "/"),
		apiKey:  cfg.ElevenLabsAPIKey,
		voiceID: cfg.ElevenLabsVoiceID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Synthesize returns audio/mpeg bytes for text. Markup is stripped first.
func (c *elevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" || c.voiceID == "" {
		return nil, ErrNotConfigured
	}

	text, err := PlainText(text)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > MaxTextLength {
		return nil, ErrTextTooLong
	}

	body, err := json.Marshal(ttsRequest{Text: text, ModelID: ModelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, url.PathEscape(c.voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs api error: status=%d body=%s", resp.StatusCode, string(b))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}
