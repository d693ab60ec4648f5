package preferences

import (
	"strings"

	"ai-kitchen/internal/llm"
)

// DefaultCalorieTarget is used when the caller does not state a daily target.
const DefaultCalorieTarget = 2000

// Dietary preference values accepted from callers.
const (
	DietVegetarianVegan = "vegetarian-vegan"
	DietNoPreference    = "no-preference"
	DietKetoLowCarb     = "keto-lowcarb"
	DietGlutenDairyFree = "gluten-dairy-free"
)

// OnboardingGoals are the goals offered when a user first signs up.
var OnboardingGoals = []string{
	"cook-with-ingredients",
	"quick-recipes",
	"healthy-meals",
	"shopping-list",
	"improve-skills",
}

// PlanGoals are the goals offered on the meal plan form.
var PlanGoals = []string{
	"Weight Management",
	"Muscle Building",
	"Weight Loss",
	"Healthy Eating",
	"Energy Boost",
}

// Preferences is the request-scoped input that shapes every generation call.
type Preferences struct {
	Goal               string   `json:"goal" validate:"max=100"`
	DietaryPreferences []string `json:"dietaryPreferences" validate:"dive,oneof=vegetarian-vegan no-preference keto-lowcarb gluten-dairy-free"`
	Allergies          string   `json:"allergies" validate:"max=500"`
	CalorieTarget      int      `json:"calorieTarget,omitempty" validate:"gte=0,lte=10000"`
}

// Validate checks the preferences against the accepted values.
func (p Preferences) Validate() error {
	return llm.Validate(p)
}

// DailyCalories returns the calorie target, defaulting to 2000.
func (p Preferences) DailyCalories() int {
	if p.CalorieTarget <= 0 {
		return DefaultCalorieTarget
	}
	return p.CalorieTarget
}

// DietaryList renders the dietary preferences for a prompt.
func (p Preferences) DietaryList() string {
	return strings.Join(p.DietaryPreferences, ", ")
}
