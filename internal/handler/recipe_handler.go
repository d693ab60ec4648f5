package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/cooking"
	"ai-kitchen/internal/preferences"
)

// maxImageBytes caps uploaded ingredient photos.
const maxImageBytes = 10 << 20

type fromIngredientsRequest struct {
	Ingredients []string                `json:"ingredients"`
	Preferences preferences.Preferences `json:"preferences"`
}

type narrateRequest struct {
	Text string `json:"text"`
}

// RecipeHandler serves the ingredient, cooking help and voice endpoints.
type RecipeHandler struct {
	actions Actions
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(actions Actions) *RecipeHandler {
	return &RecipeHandler{actions: actions}
}

// FromIngredients suggests recipes for a list of ingredients.
// POST /api/recipes/from-ingredients
func (h *RecipeHandler) FromIngredients(w http.ResponseWriter, r *http.Request) {
	var req fromIngredientsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.actions.GenerateRecipesFromIngredients(r.Context(), req.Ingredients, req.Preferences)
	writeEnvelope(w, res.Error, res)
}

// ExtractIngredients reads ingredients off the uploaded "image" form file.
// POST /api/ingredients/extract
func (h *RecipeHandler) ExtractIngredients(w http.ResponseWriter, r *http.Request) {
	image, err := readImage(w, r)
	if err != nil {
		slog.Warn("failed to read uploaded image", slog.Any("error", err))
		res := app.IngredientsResult{Ingredients: []string{}, Error: app.MsgNoImage}
		writeEnvelope(w, res.Error, res)
		return
	}
	res := h.actions.ExtractIngredients(r.Context(), image)
	writeEnvelope(w, res.Error, res)
}

func readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+1<<10)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errors.New("image too large")
	}
	return data, nil
}

// Help answers a question about the current recipe step.
// POST /api/recipes/help
func (h *RecipeHandler) Help(w http.ResponseWriter, r *http.Request) {
	var req cooking.HelpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.actions.GetRecipeHelp(r.Context(), req)
	writeEnvelope(w, res.Error, res)
}

// Narrate returns the text read aloud as audio/mpeg.
// POST /api/voice
func (h *RecipeHandler) Narrate(w http.ResponseWriter, r *http.Request) {
	var req narrateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.actions.Narrate(r.Context(), req.Text)
	if !res.Success {
		writeEnvelope(w, res.Error, res)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Audio); err != nil {
		slog.Warn("failed to write audio response", slog.Any("error", err))
	}
}
