package recipe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"ai-kitchen/internal/database"
	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/shared"
)

type mockTextGen struct {
	content string
	err     error
	reqs    []llm.Request
}

func (m *mockTextGen) GenerateContent(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{Content: m.content, Usage: shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, Model: "mock"}}, nil
}

const oatsJSON = `{
	"name": "Overnight Oats",
	"description": "Creamy oats soaked overnight",
	"prep_time": 10,
	"cook_time": 0,
	"servings": 1,
	"tags": ["vegetarian"],
	"ingredients": ["1/2 cup oats", "1/2 cup almond milk"],
	"instructions": ["Mix", "Refrigerate overnight"],
	"nutrition_info": {"calories": 320, "protein": 12, "carbs": 50, "fat": 8, "fiber": 7},
	"keyword": "overnight oats"
}`

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestGenerator(t *testing.T) {
	ctx := context.Background()
	prefs := preferences.Preferences{
		Goal:               "Weight Management",
		DietaryPreferences: []string{"vegetarian-vegan"},
		Allergies:          "peanuts",
	}

	t.Run("Success", func(t *testing.T) {
		gen := &mockTextGen{content: oatsJSON}
		g := NewGenerator(gen)

		res, err := g.Generate(ctx, DetailRequest{RecipeName: "Overnight Oats", MealType: Breakfast, Date: "2024-01-01", Preferences: prefs})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if res.Recipe.Name != "Overnight Oats" || res.Recipe.NutritionInfo.Fiber != 7 {
			t.Errorf("Unexpected recipe %+v", res.Recipe)
		}
		if res.Meta.AgentName != "RecipeDetail" || res.Meta.Usage.PromptTokens != 100 {
			t.Errorf("Unexpected meta %+v", res.Meta)
		}

		req := gen.reqs[0]
		for _, want := range []string{
			`Create a detailed recipe for "Overnight Oats" as a breakfast meal.`,
			"Follow these dietary preferences: vegetarian-vegan",
			"Avoid these allergens: peanuts",
			"within a 2000 calorie daily target",
		} {
			if !strings.Contains(req.System, want) {
				t.Errorf("Expected system prompt to contain %q", want)
			}
		}
		if req.User != `Create a detailed recipe for "Overnight Oats" as a breakfast for 2024-01-01.` {
			t.Errorf("Unexpected user message %q", req.User)
		}
	})

	t.Run("NumbersPassThrough", func(t *testing.T) {
		content := strings.NewReplacer(
			`"prep_time": 10`, `"prep_time": 7.5`,
			`"cook_time": 0`, `"cook_time": -3`,
			`"servings": 1`, `"servings": 1.5`,
		).Replace(oatsJSON)
		gen := &mockTextGen{content: content}

		res, err := NewGenerator(gen).Generate(ctx, DetailRequest{RecipeName: "Overnight Oats", MealType: Breakfast, Preferences: prefs})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		got := res.Recipe
		if got.PrepTime != 7.5 || got.CookTime != -3 || got.Servings != 1.5 {
			t.Errorf("Expected numbers to pass through unchanged, got prep %v cook %v servings %v", got.PrepTime, got.CookTime, got.Servings)
		}
		if got.TotalTime() != 4.5 {
			t.Errorf("Expected total time 4.5, got %v", got.TotalTime())
		}
	})

	t.Run("MissingInstructions", func(t *testing.T) {
		gen := &mockTextGen{content: `{"name": "Toast", "ingredients": ["bread"], "instructions": []}`}

		_, err := NewGenerator(gen).Generate(ctx, DetailRequest{RecipeName: "Toast", MealType: Snack, Preferences: prefs})
		if !errors.Is(err, llm.ErrSchemaMismatch) {
			t.Fatalf("Expected schema mismatch, got %v", err)
		}
	})

	t.Run("ProviderError", func(t *testing.T) {
		gen := &mockTextGen{err: errors.New("boom")}

		_, err := NewGenerator(gen).Generate(ctx, DetailRequest{RecipeName: "Toast", MealType: Snack, Preferences: prefs})
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		expected := `failed to generate recipe "Toast": failed to get LLM response: boom`
		if err.Error() != expected {
			t.Errorf("Expected error '%s', got '%s'", expected, err.Error())
		}
	})
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := Recipe{
		Name:         "Hummus Wrap",
		Tags:         []string{"vegan"},
		Ingredients:  []string{"wrap", "hummus"},
		Instructions: []string{"Spread", "Roll"},
		ImageURL:     "/placeholder.jpg",
	}

	id1, err := repo.Insert(ctx, "user-1", Lunch, rec)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id2, err := repo.Insert(ctx, "user-1", Snack, Recipe{Name: "Apple", Tags: []string{"snack"}, Ingredients: []string{"apple"}, Instructions: []string{"Eat"}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("Expected distinct IDs, got %q and %q", id1, id2)
	}

	t.Run("Get", func(t *testing.T) {
		got, err := repo.Get(ctx, id1)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ID != id1 || got.UserID != "user-1" || got.Name != "Hummus Wrap" {
			t.Errorf("Unexpected recipe %+v", got)
		}
		if strings.Join(got.Tags, ",") != "vegan,lunch" {
			t.Errorf("Expected meal type folded into tags, got %v", got.Tags)
		}
		if got.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("TagNotDuplicated", func(t *testing.T) {
		got, _ := repo.Get(ctx, id2)
		if len(got.Tags) != 1 || got.Tags[0] != "snack" {
			t.Errorf("Expected a single snack tag, got %v", got.Tags)
		}
	})

	t.Run("TagsNormalized", func(t *testing.T) {
		repo := newTestRepository(t)
		id, err := repo.Insert(ctx, "user-3", Lunch, Recipe{
			Name:         "Lentil Soup",
			Tags:         []string{" vegan", "Vegan", "", "  ", "LUNCH ", "soup"},
			Ingredients:  []string{"lentils"},
			Instructions: []string{"Simmer"},
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		got, _ := repo.Get(ctx, id)
		if strings.Join(got.Tags, ",") != "vegan,LUNCH,soup" {
			t.Errorf("Expected trimmed, deduplicated tags, got %q", got.Tags)
		}
	})

	t.Run("FractionalNumbersStored", func(t *testing.T) {
		repo := newTestRepository(t)
		id, err := repo.Insert(ctx, "user-3", Dinner, Recipe{
			Name:         "Risotto",
			PrepTime:     7.5,
			CookTime:     22.5,
			Servings:     2.5,
			Ingredients:  []string{"rice"},
			Instructions: []string{"Stir"},
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		got, _ := repo.Get(ctx, id)
		if got.PrepTime != 7.5 || got.CookTime != 22.5 || got.Servings != 2.5 {
			t.Errorf("Expected fractional values to survive storage, got %+v", got)
		}
		if got.Summary() != "Risotto (30 mins)" {
			t.Errorf("Unexpected summary %q", got.Summary())
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, "nope")
		if err != nil || got != nil {
			t.Errorf("Expected nil, nil for missing recipe, got %v, %v", got, err)
		}
	})

	t.Run("GetByIDs", func(t *testing.T) {
		got, err := repo.GetByIDs(ctx, []string{id1, id2, "missing"})
		if err != nil {
			t.Fatalf("GetByIDs failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 recipes, got %d", len(got))
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		got, err := repo.ListByUser(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("Expected 2 recipes, got %d", len(got))
		}
		other, _ := repo.ListByUser(ctx, "user-2")
		if len(other) != 0 {
			t.Errorf("Expected no recipes for another user, got %d", len(other))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		n, err := repo.Delete(ctx, id1, "missing")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 deleted row, got %d", n)
		}
		count, _ := repo.Count(ctx)
		if count != 1 {
			t.Errorf("Expected 1 remaining recipe, got %d", count)
		}
	})
}

func TestMealType(t *testing.T) {
	if !Breakfast.SingleOccupancy() || Snack.SingleOccupancy() {
		t.Error("Unexpected single occupancy classification")
	}
	if MealType("brunch").Valid() {
		t.Error("Expected brunch to be invalid")
	}
}
