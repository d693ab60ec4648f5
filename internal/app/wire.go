package app

import (
	"context"
	"database/sql"
	"fmt"

	"ai-kitchen/internal/config"
	"ai-kitchen/internal/cooking"
	"ai-kitchen/internal/imagesearch"
	"ai-kitchen/internal/llm"
	"ai-kitchen/internal/metrics"
	"ai-kitchen/internal/pantry"
	"ai-kitchen/internal/planner"
	"ai-kitchen/internal/preferences"
	"ai-kitchen/internal/recipe"
	"ai-kitchen/internal/shared"
	"ai-kitchen/internal/voice"
)

// Model settings for each generator role. The model name comes from config.
var (
	PlannerModelOptions   = llm.ModelOptions{Temperature: 0.7, MaxTokens: 4000}
	HelperModelOptions    = llm.ModelOptions{Temperature: 0.3, MaxTokens: 1000}
	ExtractorModelOptions = llm.ModelOptions{Temperature: 0.2, MaxTokens: 1024}
	SuggesterModelOptions = llm.ModelOptions{Temperature: 0.7, MaxTokens: 2048}
)

type modelRoles struct {
	planner   llm.ModelOptions
	helper    llm.ModelOptions
	extractor llm.ModelOptions
	suggester llm.ModelOptions
}

// rolesFor resolves the per-role options. Extraction and suggestion run on
// the planner model with their own token budgets.
func rolesFor(cfg *config.Config) modelRoles {
	roles := modelRoles{
		planner:   PlannerModelOptions,
		helper:    HelperModelOptions,
		extractor: ExtractorModelOptions,
		suggester: SuggesterModelOptions,
	}
	roles.planner.Model = cfg.PlannerModel
	roles.helper.Model = cfg.HelperModel
	roles.extractor.Model = cfg.PlannerModel
	roles.suggester.Model = cfg.PlannerModel
	return roles
}

// Runtime is a fully wired App plus the pieces the binaries use directly.
type Runtime struct {
	App   *App
	Usage *metrics.Store

	closers []func() error
}

// Close releases the model clients.
func (r *Runtime) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Wire builds the App from configuration. collector may be nil, in which
// case nothing is exported to Prometheus.
func Wire(ctx context.Context, cfg *config.Config, db *sql.DB, collector *metrics.Collector) (*Runtime, error) {
	rt := &Runtime{Usage: metrics.NewStore(db)}

	roles := rolesFor(cfg)
	plannerGen, err := rt.generator(ctx, cfg, "planner", roles.planner)
	if err != nil {
		return nil, err
	}
	helperGen, err := rt.generator(ctx, cfg, "helper", roles.helper)
	if err != nil {
		return nil, err
	}
	extractorGen, err := rt.generator(ctx, cfg, "extractor", roles.extractor)
	if err != nil {
		return nil, err
	}
	suggesterGen, err := rt.generator(ctx, cfg, "suggester", roles.suggester)
	if err != nil {
		return nil, err
	}

	var searcher imagesearch.Searcher
	if cfg.UnsplashAccessKey != "" {
		searcher = imagesearch.NewUnsplashClient(cfg)
	}

	var metaRecorder shared.MetaRecorder = rt.Usage
	var planObserver planner.Observer
	var actionObs ActionObserver
	images := imagesearch.NewEnricher(searcher, nil)
	if collector != nil {
		metaRecorder = metrics.MultiRecorder{rt.Usage, collector}
		images = imagesearch.NewEnricher(searcher, collector)
		planObserver = collector
		actionObs = collector
	}

	recipeRepo := recipe.NewRepository(db)
	planRepo := planner.NewPlanRepository(db)

	var narrator Narrator
	if cfg.VoiceEnabled() {
		narrator = voice.NewElevenLabsClient(cfg)
	}

	rt.App = NewApp(Deps{
		Planner: planner.NewPlanner(planner.Deps{
			TextGen:  plannerGen,
			Recipes:  recipeRepo,
			Plans:    planRepo,
			Images:   images,
			Metrics:  metaRecorder,
			Observer: planObserver,
		}),
		Plans:       planRepo,
		Recipes:     recipeRepo,
		Preferences: preferences.NewRepository(db),
		Extractor:   pantry.NewExtractor(extractorGen),
		Suggester:   pantry.NewSuggester(suggesterGen, images),
		Helper:      cooking.NewAssistant(helperGen),
		Narrator:    narrator,
		Metrics:     metaRecorder,
		Observer:    actionObs,
		FetchImages: cfg.FetchImages,
	})
	return rt, nil
}

// generator creates a model client for role and registers its closer. On
// failure every client created so far is closed.
func (r *Runtime) generator(ctx context.Context, cfg *config.Config, role string, opts llm.ModelOptions) (llm.TextGenerator, error) {
	gen, closeFn, err := llm.NewGenerator(ctx, cfg, opts)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create %s model: %w", role, err)
	}
	r.closers = append(r.closers, closeFn)
	return gen, nil
}
