package recipe

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MealType is the position a recipe fills in a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// SingleOccupancy reports whether a day holds at most one recipe of this type.
func (m MealType) SingleOccupancy() bool {
	return m == Breakfast || m == Lunch || m == Dinner
}

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	return m.SingleOccupancy() || m == Snack
}

// NutritionInfo is the per-serving nutrition estimate.
type NutritionInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Recipe is a fully detailed recipe. ID, UserID and CreatedAt are assigned
// when it is persisted.
type Recipe struct {
	ID            string        `json:"id,omitempty"`
	UserID        string        `json:"user_id,omitempty"`
	Name          string        `json:"name" validate:"required"`
	Description   string        `json:"description"`
	PrepTime      float64       `json:"prep_time"`
	CookTime      float64       `json:"cook_time"`
	Servings      float64       `json:"servings"`
	Tags          []string      `json:"tags"`
	Ingredients   []string      `json:"ingredients" validate:"min=1"`
	Instructions  []string      `json:"instructions" validate:"min=1"`
	NutritionInfo NutritionInfo `json:"nutrition_info"`
	Keyword       string        `json:"keyword"`
	ImageURL      string        `json:"image_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at,omitempty"`
}

// SearchKeyword is the image search query for the recipe.
func (r Recipe) SearchKeyword() string {
	if k := strings.TrimSpace(r.Keyword); k != "" {
		return k
	}
	return r.Name
}

// TotalTime is prep plus cook time in minutes, as returned by the model.
func (r Recipe) TotalTime() float64 {
	return r.PrepTime + r.CookTime
}

// Summary is a one-line description used by chat front-ends. The total time
// is rounded to whole minutes.
func (r Recipe) Summary() string {
	if mins := int(math.Round(r.TotalTime())); mins > 0 {
		return fmt.Sprintf("%s (%d mins)", r.Name, mins)
	}
	return r.Name
}
