package app

import (
	"context"
	"errors"
	"log/slog"

	"ai-kitchen/internal/pantry"
	"ai-kitchen/internal/preferences"
)

// RecipesResult is the envelope for recipes suggested from ingredients.
type RecipesResult struct {
	Success bool                `json:"success"`
	Recipes []pantry.Suggestion `json:"recipes"`
	Error   string              `json:"error,omitempty"`
}

// IngredientsResult is the envelope for ingredients read off a photo.
type IngredientsResult struct {
	Success     bool     `json:"success"`
	Ingredients []string `json:"ingredients"`
	Error       string   `json:"error,omitempty"`
}

// GenerateRecipesFromIngredients suggests recipes built around ingredients.
// An empty list fails before any model call.
func (a *App) GenerateRecipesFromIngredients(ctx context.Context, ingredients []string, prefs preferences.Preferences) (res RecipesResult) {
	defer func() { a.observe("generateRecipesFromIngredients", res.Success) }()

	empty := []pantry.Suggestion{}
	if len(ingredients) == 0 {
		return RecipesResult{Recipes: empty, Error: MsgNoIngredients}
	}
	if err := prefs.Validate(); err != nil {
		return RecipesResult{Recipes: empty, Error: MsgInvalidPreferences}
	}

	out, err := a.suggester.Suggest(ctx, pantry.SuggestRequest{
		Ingredients: ingredients,
		Preferences: prefs,
		FetchImages: a.fetchImages,
	})
	a.recordMeta(out.Meta)
	if err != nil {
		if errors.Is(err, pantry.ErrNoIngredients) {
			return RecipesResult{Recipes: empty, Error: MsgNoIngredients}
		}
		slog.Error("recipe generation failed", slog.Int("ingredients", len(ingredients)), slog.Any("error", err))
		return RecipesResult{Recipes: empty, Error: MsgRecipesFailed}
	}

	return RecipesResult{Success: true, Recipes: out.Recipes}
}

// ExtractIngredients lists the ingredients visible in image.
func (a *App) ExtractIngredients(ctx context.Context, image []byte) (res IngredientsResult) {
	defer func() { a.observe("extractIngredients", res.Success) }()

	if len(image) == 0 {
		return IngredientsResult{Ingredients: []string{}, Error: MsgNoImage}
	}

	out, err := a.extractor.Extract(ctx, image)
	a.recordMeta(out.Meta)
	if err != nil {
		slog.Error("ingredient extraction failed", slog.Int("image_bytes", len(image)), slog.Any("error", err))
		return IngredientsResult{Ingredients: []string{}, Error: MsgImageFailed}
	}

	ingredients := out.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return IngredientsResult{Success: true, Ingredients: ingredients}
}
