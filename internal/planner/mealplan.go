package planner

import (
	"time"

	"ai-kitchen/internal/recipe"
)

// DateLayout is the calendar date format used throughout meal plans.
const DateLayout = "2006-01-02"

// RecipeRef points at a persisted recipe.
type RecipeRef struct {
	ID string `json:"id"`
}

// DailyMealSet holds one day's recipe references.
type DailyMealSet struct {
	Date      string      `json:"date"`
	Breakfast *RecipeRef  `json:"breakfast"`
	Lunch     *RecipeRef  `json:"lunch"`
	Dinner    *RecipeRef  `json:"dinner"`
	Snacks    []RecipeRef `json:"snacks"`
}

// RecipeIDs lists the day's references in breakfast, lunch, dinner, snacks order.
func (d DailyMealSet) RecipeIDs() []string {
	var ids []string
	for _, ref := range []*RecipeRef{d.Breakfast, d.Lunch, d.Dinner} {
		if ref != nil {
			ids = append(ids, ref.ID)
		}
	}
	for _, s := range d.Snacks {
		ids = append(ids, s.ID)
	}
	return ids
}

// MealPlan is the root aggregate written once per generation request.
type MealPlan struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Goal        string         `json:"goal"`
	DailyMeals  []DailyMealSet `json:"daily_meals"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RecipeIDs lists every referenced recipe in plan order.
func (p *MealPlan) RecipeIDs() []string {
	var ids []string
	for _, d := range p.DailyMeals {
		ids = append(ids, d.RecipeIDs()...)
	}
	return ids
}

// Outline is the coarse plan the model proposes before any recipe exists.
type Outline struct {
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	Goal        string       `json:"goal"`
	Days        []OutlineDay `json:"daily_meals_overview" validate:"min=1,dive"`
}

// OutlineDay is one day of the outline.
type OutlineDay struct {
	Date  string        `json:"date" validate:"required"`
	Meals []OutlineMeal `json:"meals" validate:"min=1,dive"`
}

// OutlineMeal is a single meal slot: what kind, what dish, and an image keyword.
type OutlineMeal struct {
	Type    recipe.MealType `json:"type" validate:"oneof=breakfast lunch dinner snack"`
	Name    string          `json:"name" validate:"required"`
	Keyword string          `json:"keyword"`
}

// calendarDates returns n consecutive dates starting at start.
func calendarDates(start time.Time, n int) []string {
	dates := make([]string, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates
}
