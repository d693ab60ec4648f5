package handler

import (
	"net/http"

	"ai-kitchen/internal/preferences"
)

// PreferencesHandler serves the saved preference endpoints.
type PreferencesHandler struct {
	actions Actions
}

// NewPreferencesHandler creates a PreferencesHandler.
func NewPreferencesHandler(actions Actions) *PreferencesHandler {
	return &PreferencesHandler{actions: actions}
}

// Get returns the caller's saved preferences.
// GET /api/preferences
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	res := h.actions.GetPreferences(r.Context(), userID(r))
	writeEnvelope(w, res.Error, res)
}

// Save replaces the caller's saved preferences.
// PUT /api/preferences
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var prefs preferences.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}
	res := h.actions.SavePreferences(r.Context(), userID(r), prefs)
	writeEnvelope(w, res.Error, res)
}

// Exists reports whether the caller has saved preferences.
// GET /api/preferences/exists
func (h *PreferencesHandler) Exists(w http.ResponseWriter, r *http.Request) {
	res := h.actions.HasPreferences(r.Context(), userID(r))
	writeEnvelope(w, res.Error, res)
}
