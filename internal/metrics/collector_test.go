package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-kitchen/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return nil
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPlan(true, 7)
	c.RecordPlan(false, 3)
	c.RecordPlan(true, 1)
	c.RecordRecipesPersisted(4)
	c.RecordCompensation(3, nil)
	c.RecordImageSearch(true, nil)
	c.RecordImageSearch(false, errors.New("boom"))
	c.RecordAction("generateMealPlan", false)
	_ = c.RecordMeta(shared.AgentMeta{AgentName: "Outline", Usage: shared.TokenUsage{PromptTokens: 10, CompletionTokens: 5}, Latency: time.Second})

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"kitchen_meal_plans_total", map[string]string{"outcome": "success"}, 2},
		{"kitchen_meal_plans_total", map[string]string{"outcome": "failure"}, 1},
		{"kitchen_recipes_persisted_total", nil, 4},
		{"kitchen_compensated_recipes_total", nil, 3},
		{"kitchen_compensations_total", map[string]string{"outcome": "success"}, 1},
		{"kitchen_image_searches_total", map[string]string{"result": "hit"}, 1},
		{"kitchen_image_searches_total", map[string]string{"result": "error"}, 1},
		{"kitchen_actions_total", map[string]string{"action": "generateMealPlan", "outcome": "failure"}, 1},
		{"kitchen_llm_tokens_total", map[string]string{"agent": "Outline", "kind": "prompt"}, 10},
	}
	for _, tc := range tests {
		m := findMetric(t, reg, tc.name, tc.labels)
		if got := m.GetCounter().GetValue(); got != tc.want {
			t.Errorf("%s %v = %v, want %v", tc.name, tc.labels, got, tc.want)
		}
	}

	latency := findMetric(t, reg, "kitchen_llm_generation_seconds", map[string]string{"agent": "Outline"})
	if latency.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("Expected one latency sample, got %d", latency.GetHistogram().GetSampleCount())
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPlan(true, 7)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "kitchen_meal_plans_total") {
		t.Error("response should contain kitchen_meal_plans_total metric")
	}
}

type failingRecorder struct{}

func (failingRecorder) RecordMeta(meta shared.AgentMeta) error { return errors.New("disk full") }

func TestMultiRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	err := MultiRecorder{c, failingRecorder{}}.RecordMeta(shared.AgentMeta{AgentName: "Chef", Usage: shared.TokenUsage{PromptTokens: 3}})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Expected the failing recorder's error, got %v", err)
	}

	m := findMetric(t, reg, "kitchen_llm_tokens_total", map[string]string{"agent": "Chef", "kind": "prompt"})
	if m.GetCounter().GetValue() != 3 {
		t.Error("Expected the collector to be called despite the other failure")
	}
}
