// Package app is the caller-facing action surface. Every action returns an
// envelope with a success flag and either a payload or a short, static
// error message; internal errors are logged, never returned.
package app

import (
	"context"
	"log/slog"
	"time"

	"ai-kitchen/internal/cooking"
	"ai-kitchen/internal/pantry"
	"ai-kitchen/internal/planner"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/recipe"
	"ai-kitchen/internal/shared"
)

// Messages surfaced to callers.
const (
	MsgNotAuthenticated    = "User not authenticated"
	MsgInvalidStartDate    = "Invalid start date"
	MsgInvalidDaysCount    = "Invalid days count"
	MsgInvalidPreferences  = "Invalid preferences"
	MsgMealPlanFailed      = "Failed to generate meal plan"
	MsgMealPlanNotFound    = "Meal plan not found"
	MsgMealPlanLoadFailed  = "Failed to load meal plan"
	MsgNoIngredients       = "No ingredients provided"
	MsgRecipesFailed       = "Failed to generate recipes"
	MsgNoImage             = "No image file provided"
	MsgImageFailed         = "Failed to process image"
	MsgInvalidHelpRequest  = "Invalid recipe help request"
	MsgHelpFailed          = "Failed to get recipe help"
	MsgTextRequired        = "Text is required"
	MsgTextTooLong         = "Text is too long"
	MsgVoiceUnavailable    = "Voice is not available"
	MsgVoiceFailed         = "Failed to generate voice"
	MsgPreferencesFailed   = "Failed to save preferences"
	MsgPreferencesNotFound = "Preferences not found"
	MsgPreferencesLoad     = "Failed to load preferences"
)

// DefaultDays is the plan length used when the caller does not ask for one.
const DefaultDays = planner.DefaultDays

// ListLimit caps how many meal plans ListMealPlans returns.
const ListLimit = 20

// MealPlanner generates and stores a meal plan.
type MealPlanner interface {
	GeneratePlan(ctx context.Context, req planner.Request) (*planner.Result, error)
}

// PlanReader reads stored meal plans.
type PlanReader interface {
	Get(ctx context.Context, id string) (*planner.MealPlan, error)
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]planner.MealPlan, error)
}

// RecipeReader reads stored recipes.
type RecipeReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]recipe.Recipe, error)
}

// PreferenceStore keeps each user's saved preferences.
type PreferenceStore interface {
	Upsert(ctx context.Context, userID string, prefs preferences.Preferences) error
	Get(ctx context.Context, userID string) (*preferences.Preferences, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// IngredientExtractor reads ingredients off a photo.
type IngredientExtractor interface {
	Extract(ctx context.Context, image []byte) (pantry.ExtractResult, error)
}

// RecipeSuggester proposes recipes from ingredients.
type RecipeSuggester interface {
	Suggest(ctx context.Context, req pantry.SuggestRequest) (pantry.SuggestResult, error)
}

// CookingHelper answers questions about a recipe step.
type CookingHelper interface {
	Help(ctx context.Context, req cooking.HelpRequest) (cooking.HelpResult, error)
}

// Narrator converts text into audio.
type Narrator interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ActionObserver is told the outcome of every action.
type ActionObserver interface {
	RecordAction(action string, success bool)
}

// Deps wires an App. Narrator may be nil when voice is not configured.
type Deps struct {
	Planner     MealPlanner
	Plans       PlanReader
	Recipes     RecipeReader
	Preferences PreferenceStore
	Extractor   IngredientExtractor
	Suggester   RecipeSuggester
	Helper      CookingHelper
	Narrator    Narrator
	Metrics     shared.MetaRecorder
	Observer    ActionObserver
	FetchImages bool
	Now         func() time.Time
}

// App holds the application's dependencies.
type App struct {
	planner     MealPlanner
	plans       PlanReader
	recipes     RecipeReader
	prefs       PreferenceStore
	extractor   IngredientExtractor
	suggester   RecipeSuggester
	helper      CookingHelper
	narrator    Narrator
	metrics     shared.MetaRecorder
	observer    ActionObserver
	fetchImages bool
	now         func() time.Time
}

// NewApp creates and initializes a new App instance.
func NewApp(d Deps) *App {
	a := &App{
		planner:     d.Planner,
		plans:       d.Plans,
		recipes:     d.Recipes,
		prefs:       d.Preferences,
		extractor:   d.Extractor,
		suggester:   d.Suggester,
		helper:      d.Helper,
		narrator:    d.Narrator,
		metrics:     d.Metrics,
		observer:    d.Observer,
		fetchImages: d.FetchImages,
		now:         d.Now,
	}
	if a.metrics == nil {
		a.metrics = shared.DiscardMeta{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// FetchImages reports whether image lookups are enabled for new requests.
func (a *App) FetchImages() bool {
	return a.fetchImages
}

func (a *App) observe(action string, success bool) {
	if a.observer != nil {
		a.observer.RecordAction(action, success)
	}
}

func (a *App) recordMeta(meta shared.AgentMeta) {
	if meta.AgentName == "" {
		return
	}
	if err := a.metrics.RecordMeta(meta); err != nil {
		slog.Warn("failed to record agent metrics", slog.String("agent", meta.AgentName), slog.Any("error", err))
	}
}
