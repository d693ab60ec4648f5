// Package pantry works from what the user already has: it reads ingredients
// off a photo and suggests recipes that use them.
package pantry

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/shared"
)

//go:embed extract_prompt.md
var extractPrompt string

// ErrNoImage is returned when there is nothing to look at.
var ErrNoImage = errors.New("no image provided")

type extraction struct {
	Ingredients []string `json:"ingredients"`
}

// ExtractResult is the list of ingredients seen in a photo plus the agent
// metadata.
type ExtractResult struct {
	Ingredients []string
	Meta        shared.AgentMeta
}

// Extractor identifies ingredients in a photo with a vision-capable model.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates a new Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// Extract lists the ingredients visible in image. The MIME type is sniffed
// from the bytes. An empty list is a valid answer.
func (e *Extractor) Extract(ctx context.Context, image []byte) (ExtractResult, error) {
	if len(image) == 0 {
		return ExtractResult{}, ErrNoImage
	}

	out, meta, err := llm.DecodeJSON[extraction](ctx, e.textGen, llm.Request{
		System: extractPrompt,
		User:   "What ingredients can you identify in this recipe image? Please list them as clear items.",
		Images: []llm.Image{{MIMEType: http.DetectContentType(image), Data: image}},
	}, "IngredientExtractor")
	if err != nil {
		return ExtractResult{Meta: meta}, fmt.Errorf("failed to extract ingredients: %w", err)
	}

	return ExtractResult{Ingredients: cleanList(out.Ingredients), Meta: meta}, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
