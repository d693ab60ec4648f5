package planner

import (
	"ai-kitchen/internal/recipe"
)

// slot is one outline meal that will be expanded into a recipe.
type slot struct {
	Meal OutlineMeal
}

// selectSlots walks the day's outline in order. The first breakfast, lunch
// and dinner win; later duplicates are dropped so they are never generated
// or stored. Every snack is kept, in outline order.
func selectSlots(meals []OutlineMeal) []slot {
	taken := make(map[recipe.MealType]bool)
	var slots []slot
	for _, m := range meals {
		if m.Type.SingleOccupancy() {
			if taken[m.Type] {
				continue
			}
			taken[m.Type] = true
		}
		slots = append(slots, slot{Meal: m})
	}
	return slots
}

// assembleDay folds finished slots into a DailyMealSet. ids[i] belongs to
// slots[i], so the layout depends only on outline order.
func assembleDay(date string, slots []slot, ids []string) DailyMealSet {
	set := DailyMealSet{Date: date, Snacks: []RecipeRef{}}
	for i, s := range slots {
		ref := RecipeRef{ID: ids[i]}
		switch s.Meal.Type {
		case recipe.Breakfast:
			set.Breakfast = &ref
		case recipe.Lunch:
			set.Lunch = &ref
		case recipe.Dinner:
			set.Dinner = &ref
		case recipe.Snack:
			set.Snacks = append(set.Snacks, ref)
		}
	}
	return set
}
