package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ai-kitchen/internal/preferences"
)

// generateMealPlanRequest is the body of POST /api/meal-plans.
type generateMealPlanRequest struct {
	StartDate   string                  `json:"startDate"`
	DaysCount   int                     `json:"daysCount"`
	Preferences preferences.Preferences `json:"preferences"`
}

// MealPlanHandler serves meal plan endpoints.
type MealPlanHandler struct {
	actions Actions
}

// NewMealPlanHandler creates a MealPlanHandler.
func NewMealPlanHandler(actions Actions) *MealPlanHandler {
	return &MealPlanHandler{actions: actions}
}

// Generate creates a meal plan.
// POST /api/meal-plans
func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateMealPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.actions.GenerateMealPlan(r.Context(), userID(r), req.StartDate, req.DaysCount, req.Preferences)
	writeEnvelope(w, res.Error, res)
}

// List returns the caller's recent meal plans.
// GET /api/meal-plans
func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	res := h.actions.ListMealPlans(r.Context(), userID(r))
	writeEnvelope(w, res.Error, res)
}

// Get returns one meal plan with its recipes.
// GET /api/meal-plans/{id}
func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	res := h.actions.GetMealPlan(r.Context(), userID(r), chi.URLParam(r, "id"))
	writeEnvelope(w, res.Error, res)
}

// ShoppingList returns the merged ingredients of a meal plan.
// GET /api/meal-plans/{id}/shopping-list
func (h *MealPlanHandler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	res := h.actions.ShoppingList(r.Context(), userID(r), chi.URLParam(r, "id"))
	writeEnvelope(w, res.Error, res)
}
