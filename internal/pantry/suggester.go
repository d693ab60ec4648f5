package pantry

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/shared"

	"golang.org/x/sync/errgroup"
)

//go:embed suggest_prompt.md
var suggestPrompt string

// SuggestionCount is how many recipes one request asks for.
const SuggestionCount = 3

// ErrNoIngredients is returned before any model call when the list is empty.
var ErrNoIngredients = errors.New("no ingredients provided")

// Suggestion is a recipe built around the user's ingredients. It is returned
// to the caller and never persisted.
type Suggestion struct {
	Title        string   `json:"title" validate:"required"`
	Tags         []string `json:"tags"`
	Allergens    []string `json:"allergens"`
	Ingredients  []string `json:"ingredients" validate:"min=1"`
	Instructions []string `json:"instructions" validate:"min=1"`
	Keyword      string   `json:"keyword"`
	Image        *string  `json:"image"`
}

type suggestions struct {
	Recipes []Suggestion `json:"recipes" validate:"min=1,dive"`
}

// ImageFinder looks up an optional image for a keyword.
type ImageFinder interface {
	OptionalImageURL(ctx context.Context, keyword string, fetch bool) (*string, error)
}

// SuggestRequest is one recipes-from-ingredients call.
type SuggestRequest struct {
	Ingredients []string
	Preferences preferences.Preferences
	FetchImages bool
}

// SuggestResult holds the suggestions plus the agent metadata.
type SuggestResult struct {
	Recipes []Suggestion
	Meta    shared.AgentMeta
}

// Suggester proposes recipes from a list of available ingredients.
type Suggester struct {
	textGen llm.TextGenerator
	images  ImageFinder
}

// NewSuggester creates a new Suggester.
func NewSuggester(textGen llm.TextGenerator, images ImageFinder) *Suggester {
	return &Suggester{textGen: textGen, images: images}
}

// Suggest asks for SuggestionCount recipes and then looks up an image for
// each of them in parallel.
func (s *Suggester) Suggest(ctx context.Context, req SuggestRequest) (SuggestResult, error) {
	ingredients := cleanList(req.Ingredients)
	if len(ingredients) == 0 {
		return SuggestResult{}, ErrNoIngredients
	}

	prefs, err := json.Marshal(req.Preferences)
	if err != nil {
		return SuggestResult{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}

	out, meta, err := llm.DecodeJSON[suggestions](ctx, s.textGen, llm.Request{
		System: suggestPrompt,
		User: fmt.Sprintf(
			"I have the following ingredients: %s. Please suggest %d recipes I could make with these ingredients, "+
				"possibly adding a few common ingredients I might have in my pantry. My dietary preferences are: %s.",
			strings.Join(ingredients, ", "), SuggestionCount, prefs),
	}, "RecipeSuggester")
	if err != nil {
		return SuggestResult{Meta: meta}, fmt.Errorf("failed to generate recipes from ingredients: %w", err)
	}

	recipes := out.Recipes
	g, gctx := errgroup.WithContext(ctx)
	for i := range recipes {
		g.Go(func() error {
			keyword := recipes[i].Keyword
			if keyword == "" {
				keyword = recipes[i].Title
			}
			img, err := s.images.OptionalImageURL(gctx, keyword, req.FetchImages)
			if err != nil {
				return err
			}
			recipes[i].Image = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SuggestResult{Meta: meta}, fmt.Errorf("failed to fetch recipe images: %w", err)
	}

	return SuggestResult{Recipes: recipes, Meta: meta}, nil
}
