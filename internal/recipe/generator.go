package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/shared"
)

//go:embed detail_prompt.md
var detailPrompt string

var detailTmpl = template.Must(template.New("detail").Parse(detailPrompt))

// DetailRequest names one meal slot to expand into a full recipe.
type DetailRequest struct {
	RecipeName  string
	MealType    MealType
	Date        string
	Preferences preferences.Preferences
}

// DetailResult is a generated recipe plus the agent metadata.
type DetailResult struct {
	Recipe Recipe
	Meta   shared.AgentMeta
}

// Generator turns a meal slot into a fully detailed recipe.
type Generator struct {
	textGen llm.TextGenerator
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen}
}

// Generate asks the model for one recipe. Every call is independent; nothing
// is shared between sibling slots. Numbers are kept as the model returns them.
func (g *Generator) Generate(ctx context.Context, req DetailRequest) (DetailResult, error) {
	system, err := buildDetailPrompt(req)
	if err != nil {
		return DetailResult{}, err
	}

	rec, meta, err := llm.DecodeJSON[Recipe](ctx, g.textGen, llm.Request{
		System: system,
		User:   fmt.Sprintf("Create a detailed recipe for \"%s\" as a %s for %s.", req.RecipeName, req.MealType, req.Date),
	}, "RecipeDetail")
	if err != nil {
		return DetailResult{Meta: meta}, fmt.Errorf("failed to generate recipe %q: %w", req.RecipeName, err)
	}

	// Identity fields belong to the persistence layer.
	rec.ID = ""
	rec.UserID = ""
	rec.CreatedAt = time.Time{}

	return DetailResult{Recipe: rec, Meta: meta}, nil
}

func buildDetailPrompt(req DetailRequest) (string, error) {
	var buf bytes.Buffer
	if err := detailTmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("failed to build recipe prompt: %w", err)
	}
	return buf.String(), nil
}
