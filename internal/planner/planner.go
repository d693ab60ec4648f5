package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/recipe"
	"ai-kitchen/internal/shared"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDays is used when the caller does not ask for a plan length.
	DefaultDays = 7
	// MaxDays caps a single generation request.
	MaxDays = 31

	compensationTimeout = 30 * time.Second
)

var (
	ErrMissingUser  = errors.New("user id is required")
	ErrInvalidDays  = fmt.Errorf("days count must be between 1 and %d", MaxDays)
	ErrInvalidStart = errors.New("start date is required")
)

// RecipeStore persists generated recipes.
type RecipeStore interface {
	Insert(ctx context.Context, userID string, mealType recipe.MealType, rec recipe.Recipe) (string, error)
	Delete(ctx context.Context, ids ...string) (int64, error)
}

// PlanStore persists finished meal plans.
type PlanStore interface {
	Insert(ctx context.Context, plan *MealPlan) error
}

// DetailGenerator expands a meal slot into a full recipe.
type DetailGenerator interface {
	Generate(ctx context.Context, req recipe.DetailRequest) (recipe.DetailResult, error)
}

// ImageFinder picks an image for a recipe keyword.
type ImageFinder interface {
	ImageURL(ctx context.Context, keyword string, fetch bool) (string, error)
}

// Observer is told how each run went.
type Observer interface {
	RecordPlan(success bool, days int)
	RecordRecipesPersisted(n int)
	RecordCompensation(deleted int64, err error)
}

// Options are request-scoped switches.
type Options struct {
	FetchImages bool
}

// Request is everything one meal plan generation needs.
type Request struct {
	UserID      string
	StartDate   time.Time
	DaysCount   int
	Preferences preferences.Preferences
	Options     Options
}

// Result is a persisted plan with the recipes it references, in plan order.
type Result struct {
	Plan    *MealPlan
	Recipes []recipe.Recipe
	Metas   []shared.AgentMeta
}

// Deps wires a Planner to its collaborators.
type Deps struct {
	TextGen  llm.TextGenerator
	Details  DetailGenerator
	Recipes  RecipeStore
	Plans    PlanStore
	Images   ImageFinder
	Metrics  shared.MetaRecorder
	Observer Observer
}

// Planner handles the generation of meal plans.
type Planner struct {
	textGen  llm.TextGenerator
	details  DetailGenerator
	recipes  RecipeStore
	plans    PlanStore
	images   ImageFinder
	metrics  shared.MetaRecorder
	observer Observer
}

// NewPlanner creates a new Planner instance.
func NewPlanner(d Deps) *Planner {
	p := &Planner{
		textGen:  d.TextGen,
		details:  d.Details,
		recipes:  d.Recipes,
		plans:    d.Plans,
		images:   d.Images,
		metrics:  d.Metrics,
		observer: d.Observer,
	}
	if p.details == nil {
		p.details = recipe.NewGenerator(d.TextGen)
	}
	if p.metrics == nil {
		p.metrics = shared.DiscardMeta{}
	}
	return p
}

// GeneratePlan builds and stores a multi-day meal plan.
//
// The outline is generated first. Days are then processed one after another;
// inside a day every slot runs generate, image, persist concurrently and the
// day only completes when all of them do. The first failure stops the run,
// no plan is written, and every recipe this run stored is deleted again.
func (p *Planner) GeneratePlan(ctx context.Context, req Request) (res *Result, err error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	run := &planRun{planner: p, req: req}
	defer func() {
		if err != nil {
			run.compensate(ctx)
		}
		if p.observer != nil {
			p.observer.RecordPlan(err == nil, req.DaysCount)
		}
	}()

	dates := calendarDates(req.StartDate, req.DaysCount)

	outlineRes, err := p.runOutline(ctx, dates, req.Preferences)
	run.recordMeta(outlineRes.Meta)
	if err != nil {
		return nil, err
	}
	outline := outlineRes.Outline

	goal := outline.Goal
	if goal == "" {
		goal = req.Preferences.Goal
	}

	plan := &MealPlan{
		UserID:      req.UserID,
		Title:       outline.Title,
		Description: outline.Description,
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		Goal:        goal,
	}

	var recipes []recipe.Recipe
	for _, day := range outline.Days {
		set, dayRecipes, err := run.processDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("failed to process meals for %s: %w", day.Date, err)
		}
		plan.DailyMeals = append(plan.DailyMeals, set)
		recipes = append(recipes, dayRecipes...)
	}

	if err := p.plans.Insert(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}

	slog.Info("meal plan generated",
		slog.String("plan_id", plan.ID),
		slog.String("user_id", req.UserID),
		slog.Int("days", len(plan.DailyMeals)),
		slog.Int("recipes", len(recipes)),
	)

	return &Result{Plan: plan, Recipes: recipes, Metas: run.allMetas()}, nil
}

func checkRequest(req Request) error {
	if req.UserID == "" {
		return ErrMissingUser
	}
	if req.StartDate.IsZero() {
		return ErrInvalidStart
	}
	if req.DaysCount < 1 || req.DaysCount > MaxDays {
		return ErrInvalidDays
	}
	if err := req.Preferences.Validate(); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	return nil
}

// planRun is the mutable state of one GeneratePlan call. Slot goroutines
// write to it, hence the mutex.
type planRun struct {
	planner *Planner
	req     Request

	mu     sync.Mutex
	stored []string
	metas  []shared.AgentMeta
}

func (r *planRun) recordMeta(meta shared.AgentMeta) {
	if meta.AgentName == "" {
		return
	}
	r.mu.Lock()
	r.metas = append(r.metas, meta)
	r.mu.Unlock()

	if err := r.planner.metrics.RecordMeta(meta); err != nil {
		slog.Warn("failed to record agent metrics", slog.String("agent", meta.AgentName), slog.Any("error", err))
	}
}

func (r *planRun) trackStored(id string) {
	r.mu.Lock()
	r.stored = append(r.stored, id)
	r.mu.Unlock()
}

func (r *planRun) allMetas() []shared.AgentMeta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]shared.AgentMeta(nil), r.metas...)
}

// processDay runs every slot of one day concurrently. It is all-or-nothing:
// the first error cancels the remaining slots and is returned.
func (r *planRun) processDay(ctx context.Context, day OutlineDay) (DailyMealSet, []recipe.Recipe, error) {
	slots := selectSlots(day.Meals)
	ids := make([]string, len(slots))
	recipes := make([]recipe.Recipe, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range slots {
		g.Go(func() error {
			rec, err := r.runSlot(gctx, day.Date, s.Meal)
			if err != nil {
				return err
			}
			ids[i] = rec.ID
			recipes[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return DailyMealSet{}, nil, err
	}

	return assembleDay(day.Date, slots, ids), recipes, nil
}

// runSlot is the per-meal pipeline: generate detail, pick an image, persist.
func (r *planRun) runSlot(ctx context.Context, date string, meal OutlineMeal) (recipe.Recipe, error) {
	p := r.planner

	detail, err := p.details.Generate(ctx, recipe.DetailRequest{
		RecipeName:  meal.Name,
		MealType:    meal.Type,
		Date:        date,
		Preferences: r.req.Preferences,
	})
	r.recordMeta(detail.Meta)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("%s %q: %w", meal.Type, meal.Name, err)
	}
	rec := detail.Recipe

	imageURL, err := p.images.ImageURL(ctx, rec.SearchKeyword(), r.req.Options.FetchImages)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("%s %q: %w", meal.Type, meal.Name, err)
	}
	rec.ImageURL = imageURL

	id, err := p.recipes.Insert(ctx, r.req.UserID, meal.Type, rec)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("%s %q: %w", meal.Type, meal.Name, err)
	}
	r.trackStored(id)
	if p.observer != nil {
		p.observer.RecordRecipesPersisted(1)
	}

	rec.ID = id
	rec.UserID = r.req.UserID
	return rec, nil
}

// compensate deletes the recipes stored by a failed run. It runs detached
// from the caller's cancellation and only logs its own failure.
func (r *planRun) compensate(ctx context.Context) {
	r.mu.Lock()
	ids := append([]string(nil), r.stored...)
	r.mu.Unlock()
	if len(ids) == 0 {
		return
	}

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	deleted, err := r.planner.recipes.Delete(cctx, ids...)
	if r.planner.observer != nil {
		r.planner.observer.RecordCompensation(deleted, err)
	}
	if err != nil {
		slog.Error("failed to delete recipes of failed meal plan run",
			slog.String("user_id", r.req.UserID),
			slog.Int("recipes", len(ids)),
			slog.Any("error", err),
		)
		return
	}
	slog.Warn("deleted recipes of failed meal plan run",
		slog.String("user_id", r.req.UserID),
		slog.Int64("deleted", deleted),
	)
}
