package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ai-kitchen/internal/cooking"
	"ai-kitchen/internal/voice"
)

// HelpResult is the envelope for step-level cooking help.
type HelpResult struct {
	Success     bool   `json:"success"`
	Instruction string `json:"instruction,omitempty"`
	Error       string `json:"error,omitempty"`
}

// VoiceResult is the envelope for narration. Audio is served raw, not as
// JSON.
type VoiceResult struct {
	Success     bool   `json:"success"`
	Audio       []byte `json:"-"`
	ContentType string `json:"-"`
	Error       string `json:"error,omitempty"`
}

// GetRecipeHelp answers a question about the current recipe step.
func (a *App) GetRecipeHelp(ctx context.Context, req cooking.HelpRequest) (res HelpResult) {
	defer func() { a.observe("getRecipeHelp", res.Success) }()

	if err := req.Validate(); err != nil {
		return HelpResult{Error: MsgInvalidHelpRequest}
	}

	out, err := a.helper.Help(ctx, req)
	a.recordMeta(out.Meta)
	if err != nil {
		slog.Error("recipe help failed", slog.String("recipe", req.RecipeName), slog.Any("error", err))
		return HelpResult{Error: MsgHelpFailed}
	}
	return HelpResult{Success: true, Instruction: out.Instruction}
}

// Narrate reads text aloud and returns audio/mpeg bytes.
func (a *App) Narrate(ctx context.Context, text string) (res VoiceResult) {
	defer func() { a.observe("narrate", res.Success) }()

	if strings.TrimSpace(text) == "" {
		return VoiceResult{Error: MsgTextRequired}
	}
	if a.narrator == nil {
		return VoiceResult{Error: MsgVoiceUnavailable}
	}

	audio, err := a.narrator.Synthesize(ctx, text)
	if err != nil {
		switch {
		case errors.Is(err, voice.ErrEmptyText):
			return VoiceResult{Error: MsgTextRequired}
		case errors.Is(err, voice.ErrTextTooLong):
			return VoiceResult{Error: MsgTextTooLong}
		case errors.Is(err, voice.ErrNotConfigured):
			return VoiceResult{Error: MsgVoiceUnavailable}
		}
		slog.Error("voice generation failed", slog.Int("text_length", len(text)), slog.Any("error", err))
		return VoiceResult{Error: MsgVoiceFailed}
	}
	return VoiceResult{Success: true, Audio: audio, ContentType: "audio/mpeg"}
}
