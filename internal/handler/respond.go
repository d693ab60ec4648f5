// Package handler exposes the application actions over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ai-kitchen/internal/app"
	"ai-kitchen/internal/middleware"
)

// MsgInvalidBody is returned when a request body cannot be decoded.
const MsgInvalidBody = "Invalid request body"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// errorEnvelope is the body for failures detected before an action runs.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusFor maps an envelope error message to an HTTP status.
func statusFor(msg string) int {
	switch msg {
	case "":
		return http.StatusOK
	case app.MsgNotAuthenticated:
		return http.StatusUnauthorized
	case app.MsgMealPlanNotFound, app.MsgPreferencesNotFound:
		return http.StatusNotFound
	case app.MsgInvalidStartDate, app.MsgInvalidDaysCount, app.MsgInvalidPreferences,
		app.MsgNoIngredients, app.MsgNoImage, app.MsgInvalidHelpRequest,
		app.MsgTextRequired, app.MsgTextTooLong, MsgInvalidBody:
		return http.StatusBadRequest
	case app.MsgVoiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeEnvelope writes an action envelope with the status its error implies.
func writeEnvelope(w http.ResponseWriter, errMsg string, body any) {
	writeJSON(w, statusFor(errMsg), body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// decodeJSON reads a JSON body into dst. On failure it writes a 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Warn("failed to decode request body", slog.String("path", r.URL.Path), slog.Any("error", err))
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: MsgInvalidBody})
		return false
	}
	return true
}

// userID returns the authenticated caller. The auth middleware guarantees
// one on every /api route, so an empty ID only reaches the actions when the
// router is misconfigured, and they reject it.
func userID(r *http.Request) string {
	id, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		return ""
	}
	return id
}
