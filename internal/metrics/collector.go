package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"ai-kitchen/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes generation activity as Prometheus metrics. It satisfies
// the observer interfaces of the planner and the image enricher, and
// shared.MetaRecorder.
type Collector struct {
	tokens            *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	plans             *prometheus.CounterVec
	planDays          prometheus.Histogram
	recipesPersisted  prometheus.Counter
	compensations     *prometheus.CounterVec
	compensatedRows   prometheus.Counter
	imageSearches     *prometheus.CounterVec
	actions           *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchen_llm_tokens_total",
			Help: "Tokens used by LLM calls, by agent and token kind.",
		}, []string{"agent", "kind"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kitchen_llm_generation_seconds",
			Help:    "Latency of LLM calls by agent.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}, []string{"agent"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchen_meal_plans_total",
			Help: "Meal plan generation runs by outcome.",
		}, []string{"outcome"}),
		planDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kitchen_meal_plan_days",
			Help:    "Requested meal plan length in days.",
			Buckets: []float64{1, 3, 7, 14, 31},
		}),
		recipesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kitchen_recipes_persisted_total",
			Help: "Recipes written by meal plan runs.",
		}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchen_compensations_total",
			Help: "Compensating deletes after failed runs, by outcome.",
		}, []string{"outcome"}),
		compensatedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kitchen_compensated_recipes_total",
			Help: "Recipes deleted by compensating deletes.",
		}),
		imageSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchen_image_searches_total",
			Help: "Image searches by result.",
		}, []string{"result"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kitchen_actions_total",
			Help: "Caller-facing actions by name and outcome.",
		}, []string{"action", "outcome"}),
	}

	reg.MustRegister(
		c.tokens,
		c.generationLatency,
		c.plans,
		c.planDays,
		c.recipesPersisted,
		c.compensations,
		c.compensatedRows,
		c.imageSearches,
		c.actions,
	)

	return c
}

// RecordMeta records token usage and latency of one agent call.
func (c *Collector) RecordMeta(meta shared.AgentMeta) error {
	c.tokens.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.tokens.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
	if meta.Latency > 0 {
		c.generationLatency.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())
	}
	return nil
}

// RecordPlan records the outcome of one meal plan run.
func (c *Collector) RecordPlan(success bool, days int) {
	c.plans.WithLabelValues(outcome(success)).Inc()
	c.planDays.Observe(float64(days))
}

// RecordRecipesPersisted counts stored recipes.
func (c *Collector) RecordRecipesPersisted(n int) {
	c.recipesPersisted.Add(float64(n))
}

// RecordCompensation records a compensating delete.
func (c *Collector) RecordCompensation(deleted int64, err error) {
	c.compensations.WithLabelValues(outcome(err == nil)).Inc()
	c.compensatedRows.Add(float64(deleted))
}

// RecordImageSearch records one image lookup.
func (c *Collector) RecordImageSearch(found bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case found:
		result = "hit"
	}
	c.imageSearches.WithLabelValues(result).Inc()
}

// RecordAction records the envelope outcome of a caller-facing action.
func (c *Collector) RecordAction(action string, success bool) {
	c.actions.WithLabelValues(action, outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// MultiRecorder sends agent metadata to several recorders.
type MultiRecorder []shared.MetaRecorder

// RecordMeta forwards meta to every recorder and joins their errors.
func (m MultiRecorder) RecordMeta(meta shared.AgentMeta) error {
	var errs []error
	for i, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordMeta(meta); err != nil {
			errs = append(errs, fmt.Errorf("recorder %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
