// Package cooking answers questions about a single recipe step while the
// user is cooking.
package cooking

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/shared"
)

//go:embed help_prompt.md
var helpPrompt string

var helpTmpl = template.Must(template.New("help").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(helpPrompt))

// ErrEmptyAnswer is returned when the model answers with nothing.
var ErrEmptyAnswer = errors.New("empty answer from model")

// HelpRequest is the step the user is on and what they asked about it.
type HelpRequest struct {
	RecipeName          string   `json:"recipeName" validate:"required,max=200"`
	CurrentStep         int      `json:"currentStep" validate:"gte=0"`
	StepInstruction     string   `json:"stepInstruction" validate:"required,max=2000"`
	UserQuery           string   `json:"userQuery" validate:"required,max=1000"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
}

// Validate checks the request before any model call.
func (r HelpRequest) Validate() error {
	return llm.Validate(r)
}

// HelpResult is the guidance text plus the agent metadata.
type HelpResult struct {
	Instruction string
	Meta        shared.AgentMeta
}

// Assistant gives short, step-specific cooking advice.
type Assistant struct {
	textGen llm.TextGenerator
}

// NewAssistant creates a new Assistant. textGen is expected to be a small,
// low-temperature model.
func NewAssistant(textGen llm.TextGenerator) *Assistant {
	return &Assistant{textGen: textGen}
}

// Help answers req with a plain-text paragraph.
func (a *Assistant) Help(ctx context.Context, req HelpRequest) (HelpResult, error) {
	if err := req.Validate(); err != nil {
		return HelpResult{}, err
	}

	var prompt bytes.Buffer
	if err := helpTmpl.Execute(&prompt, req); err != nil {
		return HelpResult{}, fmt.Errorf("failed to build help prompt: %w", err)
	}

	start := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, llm.Request{User: prompt.String()})
	if err != nil {
		return HelpResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}
	meta := shared.AgentMeta{AgentName: "CookingAssistant", Usage: resp.Usage, Latency: time.Since(start)}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return HelpResult{Meta: meta}, ErrEmptyAnswer
	}
	return HelpResult{Instruction: answer, Meta: meta}, nil
}
