package handler

import (
	"context"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/cooking"
	"ai-kitchen/internal/preferences"
)

// Actions is the application surface served over HTTP. *app.App implements
// it.
type Actions interface {
	GenerateMealPlan(ctx context.Context, userID, startDate string, daysCount int, prefs preferences.Preferences) app.MealPlanResult
	GetMealPlan(ctx context.Context, userID, planID string) app.MealPlanResult
	ListMealPlans(ctx context.Context, userID string) app.MealPlansResult
	ShoppingList(ctx context.Context, userID, planID string) app.ShoppingListResult
	GenerateRecipesFromIngredients(ctx context.Context, ingredients []string, prefs preferences.Preferences) app.RecipesResult
	ExtractIngredients(ctx context.Context, image []byte) app.IngredientsResult
	GetRecipeHelp(ctx context.Context, req cooking.HelpRequest) app.HelpResult
	Narrate(ctx context.Context, text string) app.VoiceResult
	SavePreferences(ctx context.Context, userID string, prefs preferences.Preferences) app.PreferencesResult
	GetPreferences(ctx context.Context, userID string) app.PreferencesResult
	HasPreferences(ctx context.Context, userID string) app.PreferencesResult
}

var _ Actions = (*app.App)(nil)
