package app

import (
	"context"
	"log/slog"
	"time"

	"ai-kitchen/internal/planner"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/recipe"
	"ai-kitchen/internal/shopping"
)

// MealPlanData is the payload of a meal plan envelope.
type MealPlanData struct {
	MealPlan *planner.MealPlan `json:"mealPlan"`
	Recipes  []recipe.Recipe   `json:"recipes,omitempty"`
}

// MealPlanResult is the envelope for a single meal plan.
type MealPlanResult struct {
	Success bool          `json:"success"`
	Data    *MealPlanData `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// MealPlansResult is the envelope for a list of meal plans.
type MealPlansResult struct {
	Success   bool               `json:"success"`
	MealPlans []planner.MealPlan `json:"mealPlans"`
	Error     string             `json:"error,omitempty"`
}

// ShoppingListResult is the envelope for a plan's shopping list.
type ShoppingListResult struct {
	Success      bool           `json:"success"`
	ShoppingList *shopping.List `json:"shoppingList,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// GenerateMealPlan builds a plan of daysCount days starting at startDate
// (YYYY-MM-DD, today when empty). daysCount <= 0 means DefaultDays.
func (a *App) GenerateMealPlan(ctx context.Context, userID, startDate string, daysCount int, prefs preferences.Preferences) (res MealPlanResult) {
	defer func() { a.observe("generateMealPlan", res.Success) }()

	if userID == "" {
		return MealPlanResult{Error: MsgNotAuthenticated}
	}

	start := a.now()
	if startDate != "" {
		parsed, err := time.Parse(planner.DateLayout, startDate)
		if err != nil {
			return MealPlanResult{Error: MsgInvalidStartDate}
		}
		start = parsed
	}

	if daysCount <= 0 {
		daysCount = DefaultDays
	}
	if daysCount > planner.MaxDays {
		return MealPlanResult{Error: MsgInvalidDaysCount}
	}
	if err := prefs.Validate(); err != nil {
		return MealPlanResult{Error: MsgInvalidPreferences}
	}

	out, err := a.planner.GeneratePlan(ctx, planner.Request{
		UserID:      userID,
		StartDate:   start,
		DaysCount:   daysCount,
		Preferences: prefs,
		Options:     planner.Options{FetchImages: a.fetchImages},
	})
	if err != nil {
		slog.Error("meal plan generation failed",
			slog.String("user_id", userID),
			slog.Int("days", daysCount),
			slog.Any("error", err),
		)
		return MealPlanResult{Error: MsgMealPlanFailed}
	}

	return MealPlanResult{
		Success: true,
		Data:    &MealPlanData{MealPlan: out.Plan, Recipes: out.Recipes},
	}
}

// GetMealPlan returns a stored plan owned by userID with its recipes in
// plan order.
func (a *App) GetMealPlan(ctx context.Context, userID, planID string) (res MealPlanResult) {
	defer func() { a.observe("getMealPlan", res.Success) }()

	plan, recipes, msg := a.loadPlan(ctx, userID, planID)
	if msg != "" {
		return MealPlanResult{Error: msg}
	}
	return MealPlanResult{Success: true, Data: &MealPlanData{MealPlan: plan, Recipes: recipes}}
}

// ListMealPlans returns the user's most recent plans, newest first.
func (a *App) ListMealPlans(ctx context.Context, userID string) (res MealPlansResult) {
	defer func() { a.observe("listMealPlans", res.Success) }()

	if userID == "" {
		return MealPlansResult{MealPlans: []planner.MealPlan{}, Error: MsgNotAuthenticated}
	}
	plans, err := a.plans.ListRecentByUserID(ctx, userID, ListLimit)
	if err != nil {
		slog.Error("failed to list meal plans", slog.String("user_id", userID), slog.Any("error", err))
		return MealPlansResult{MealPlans: []planner.MealPlan{}, Error: MsgMealPlanLoadFailed}
	}
	if plans == nil {
		plans = []planner.MealPlan{}
	}
	return MealPlansResult{Success: true, MealPlans: plans}
}

// ShoppingList merges the ingredients of every recipe in a stored plan.
func (a *App) ShoppingList(ctx context.Context, userID, planID string) (res ShoppingListResult) {
	defer func() { a.observe("shoppingList", res.Success) }()

	plan, recipes, msg := a.loadPlan(ctx, userID, planID)
	if msg != "" {
		return ShoppingListResult{Error: msg}
	}
	return ShoppingListResult{Success: true, ShoppingList: shopping.BuildList(plan.ID, userID, recipes)}
}

// loadPlan fetches a plan and its recipes. A plan owned by someone else is
// reported as not found.
func (a *App) loadPlan(ctx context.Context, userID, planID string) (*planner.MealPlan, []recipe.Recipe, string) {
	if userID == "" {
		return nil, nil, MsgNotAuthenticated
	}

	plan, err := a.plans.Get(ctx, planID)
	if err != nil {
		slog.Error("failed to load meal plan", slog.String("plan_id", planID), slog.Any("error", err))
		return nil, nil, MsgMealPlanLoadFailed
	}
	if plan == nil || plan.UserID != userID {
		return nil, nil, MsgMealPlanNotFound
	}

	ids := plan.RecipeIDs()
	found, err := a.recipes.GetByIDs(ctx, ids)
	if err != nil {
		slog.Error("failed to load meal plan recipes", slog.String("plan_id", planID), slog.Any("error", err))
		return nil, nil, MsgMealPlanLoadFailed
	}
	return plan, inPlanOrder(ids, found), ""
}

// inPlanOrder lines recipes up with ids. An id referenced twice yields the
// recipe once; ids without a stored recipe are skipped.
func inPlanOrder(ids []string, found []recipe.Recipe) []recipe.Recipe {
	byID := make(map[string]recipe.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		delete(byID, id)
		ordered = append(ordered, r)
	}
	return ordered
}
