package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/shared"
)

//go:embed outline_prompt.md
var outlinePrompt string

var outlineTmpl = template.Must(template.New("outline").Parse(outlinePrompt))

type outlinePromptData struct {
	DaysCount   int
	StartDate   string
	Preferences preferences.Preferences
}

// OutlineResult is the validated outline plus the agent metadata.
type OutlineResult struct {
	Outline Outline
	Meta    shared.AgentMeta
}

// runOutline asks for the day-by-day meal slots. The outline must cover
// exactly the requested calendar days, in order; the meal mix per day is
// left to the model.
func (p *Planner) runOutline(ctx context.Context, dates []string, prefs preferences.Preferences) (OutlineResult, error) {
	system, err := buildOutlinePrompt(outlinePromptData{
		DaysCount:   len(dates),
		StartDate:   dates[0],
		Preferences: prefs,
	})
	if err != nil {
		return OutlineResult{}, err
	}

	outline, meta, err := llm.DecodeJSON[Outline](ctx, p.textGen, llm.Request{
		System: system,
		User:   fmt.Sprintf("Create a %d-day meal plan outline starting from %s.", len(dates), dates[0]),
	}, "Outline")
	if err != nil {
		return OutlineResult{Meta: meta}, fmt.Errorf("failed to generate meal plan outline: %w", err)
	}

	if err := checkOutlineDates(outline, dates); err != nil {
		return OutlineResult{Meta: meta}, fmt.Errorf("failed to generate meal plan outline: %w", err)
	}

	return OutlineResult{Outline: outline, Meta: meta}, nil
}

func checkOutlineDates(outline Outline, dates []string) error {
	if len(outline.Days) != len(dates) {
		return llm.NewSchemaError("Outline",
			fmt.Sprintf("expected %d days, got %d", len(dates), len(outline.Days)), "")
	}
	for i, day := range outline.Days {
		if day.Date != dates[i] {
			return llm.NewSchemaError("Outline",
				fmt.Sprintf("day %d: expected date %s, got %q", i+1, dates[i], day.Date), "")
		}
	}
	return nil
}

func buildOutlinePrompt(data outlinePromptData) (string, error) {
	var buf bytes.Buffer
	if err := outlineTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build outline prompt: %w", err)
	}
	return buf.String(), nil
}
