package shopping

import (
	"strings"

	"ai-kitchen/internal/recipe"
)

// List represents a shopping list for a meal plan.
type List struct {
	MealPlanID string   `json:"meal_plan_id"`
	UserID     string   `json:"user_id"`
	Items      []string `json:"items"`
	Count      int      `json:"count"`
}

// BuildList merges the ingredients of recipes into one list. recipes must be
// in plan order; an ingredient keeps the spelling of its first appearance and
// repeats are matched case-insensitively after trimming.
func BuildList(mealPlanID, userID string, recipes []recipe.Recipe) *List {
	seen := make(map[string]bool)
	items := []string{}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			ing = strings.TrimSpace(ing)
			if ing == "" {
				continue
			}
			key := strings.ToLower(ing)
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, ing)
		}
	}
	return &List{
		MealPlanID: mealPlanID,
		UserID:     userID,
		Items:      items,
		Count:      len(items),
	}
}
